package todotests

import (
	"net/http"
	"strings"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework/ldtest"
	"github.com/todo-contract-tests/todo-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// largest integer that JSON clients in any language can represent exactly
const maxSafeInteger = 1<<53 - 1

// DoAPIResourceTests walks one todo through its whole lifecycle. The subtests depend on
// each other and must run in the order given.
func DoAPIResourceTests(t *ldtest.T) {
	ctx := requireContext(t)
	api := NewTodoAPI(t)

	require.NoError(t, api.DeleteAllTodos())
	require.NoError(t, api.DeleteAllAssignees())
	for x := 0; x < 3; x++ {
		api.RequireCreated(api.CreateAssignee(ctx.fixtures.GenerateAssignee()))
	}
	var assigneeIDs []int64
	for _, a := range api.RequireAssignees() {
		assigneeIDs = append(assigneeIDs, a.ID)
	}
	require.Len(t, assigneeIDs, 3, "service should list exactly the assignees that were just created")

	sharedTodo := ctx.fixtures.GenerateTodo(assigneeIDs)
	var sharedID int64

	t.Run("create a valid todo (201, id returned)", func(t *ldtest.T) {
		resp, err := NewTodoAPI(t).CreateTodo(sharedTodo)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var created servicedef.CreatedResponse
		require.NoError(t, resp.DecodeJSON(&created))
		assert.True(t, created.ID.IsInt(), "id should be an integer, got %s", created.ID.JSONString())
		assert.GreaterOrEqual(t, created.ID.Float64Value(), float64(0))
	})

	t.Run("retrieve all todos (check for the newly created one)", func(t *ldtest.T) {
		list := NewTodoAPI(t).RequireTodos()
		require.Len(t, list, 1)
		requireTodoMatches(t, ctx, sharedTodo, assigneeIDs, list[0])

		sharedID = list[0].ID
	})

	t.Run("retrieve the created todo (check for attributes)", func(t *ldtest.T) {
		todo := NewTodoAPI(t).RequireTodo(sharedID)
		requireTodoMatches(t, ctx, sharedTodo, assigneeIDs, todo)
	})

	t.Run("delete an assignee (200) and check if the todo is updated", func(t *ldtest.T) {
		api := NewTodoAPI(t)
		resp, err := api.DeleteAssignee(assigneeIDs[0])
		RequireStatus(t, http.StatusOK, resp, err)

		todo := api.RequireTodo(sharedID)
		assert.NotContains(t, todo.AssigneeIDs(), assigneeIDs[0])
		assert.Len(t, todo.AssigneeList, len(assigneeIDs)-1)
	})

	t.Run("edit the created todo (200) and retrieve it with the change", func(t *ldtest.T) {
		api := NewTodoAPI(t)
		finished := true
		sharedTodo.Description = ctx.fixtures.GenerateTodoDescription()
		sharedTodo.AssigneeIDList = []int64{}
		sharedTodo.Finished = &finished

		resp, err := api.UpdateTodo(sharedID, sharedTodo)
		RequireStatus(t, http.StatusOK, resp, err)

		updated := api.RequireTodo(sharedID)
		assert.Equal(t, sharedTodo.Description, updated.Description)
		assert.Equal(t, sharedTodo.AssigneeIDList, updated.AssigneeIDs())
		assert.True(t, updated.Finished)
		require.True(t, updated.FinishedDate.IsDefined(), "finishedDate should be set once a todo is finished")
		assert.WithinDuration(t, time.Now(), servicedef.TimeFromTimestamp(int64(updated.FinishedDate.IntValue())),
			ctx.config.FinishedWithin, "finishedDate is not recent")
	})

	t.Run("validation: todo with empty title fails (400)", func(t *ldtest.T) {
		todo := sharedTodo
		todo.Title = ""
		_, err := NewTodoAPI(t).CreateTodo(todo)
		RequireRejected(t, http.StatusBadRequest, err)
	})

	t.Run("validation: todo with invalid assigneeIds fails (400)", func(t *ldtest.T) {
		api := NewTodoAPI(t)
		todo := ctx.fixtures.GenerateTodo([]int64{-99})
		_, err := api.CreateTodo(todo)
		RequireRejected(t, http.StatusBadRequest, err)

		todo.AssigneeIDList = []int64{maxSafeInteger}
		_, err = api.CreateTodo(todo)
		RequireRejected(t, http.StatusBadRequest, err)
	})

	t.Run("validation: todo with 3x the same assigneeId fails (400)", func(t *ldtest.T) {
		// assigneeIDs[0] was deleted above, so use one that still exists; otherwise the
		// request could be rejected for the wrong reason
		id := assigneeIDs[1]
		todo := ctx.fixtures.GenerateTodo([]int64{id, id, id})
		_, err := NewTodoAPI(t).CreateTodo(todo)
		RequireRejected(t, http.StatusBadRequest, err)
	})

	t.Run("validation: todo with invalid dueDate fails (400)", func(t *ldtest.T) {
		api := NewTodoAPI(t)
		todo := ctx.fixtures.GenerateTodo(nil, ldvalue.String("01.01.2022"))
		_, err := api.CreateTodo(todo)
		RequireRejected(t, http.StatusBadRequest, err)

		todo.DueDate = ldvalue.String("YOU SHALL NOT PASS!!!")
		_, err = api.CreateTodo(todo)
		RequireRejected(t, http.StatusBadRequest, err)
	})

	t.Run("delete the created todo (200)", func(t *ldtest.T) {
		resp, err := NewTodoAPI(t).DeleteTodo(sharedID)
		RequireStatus(t, http.StatusOK, resp, err)
	})

	t.Run("edit for non-existing todo fails (404)", func(t *ldtest.T) {
		_, err := NewTodoAPI(t).UpdateTodo(sharedID, ctx.fixtures.GenerateTodo(nil))
		RequireRejected(t, http.StatusNotFound, err)
	})

	t.Run("delete for non-existing todo fails (404)", func(t *ldtest.T) {
		_, err := NewTodoAPI(t).DeleteTodo(sharedID)
		RequireRejected(t, http.StatusNotFound, err)
	})
}

// requireTodoMatches compares a todo read back from the service with the parameters it was
// created from, and checks the server-assigned fields for plausibility.
func requireTodoMatches(
	t *ldtest.T,
	ctx TodoTestContext,
	expected servicedef.TodoParams,
	expectedAssigneeIDs []int64,
	actual servicedef.Todo,
) {
	assert.Equal(t, expected.Title, actual.Title)
	assert.Equal(t, expected.Description, actual.Description)
	assert.False(t, actual.Finished)
	assert.Equal(t, int64(expected.DueDate.Float64Value()), actual.DueDate, "dueDate")

	require.Len(t, actual.AssigneeList, len(expectedAssigneeIDs))
	for _, assignee := range actual.AssigneeList {
		assert.Contains(t, expectedAssigneeIDs, assignee.ID)
		assert.NotEmpty(t, assignee.Prename)
		assert.NotEmpty(t, assignee.Name)
		assert.True(t, strings.HasSuffix(assignee.Email, ctx.config.EmailSuffix),
			"email %q should end with %q", assignee.Email, ctx.config.EmailSuffix)
	}

	assert.WithinDuration(t, time.Now(), servicedef.TimeFromTimestamp(actual.CreatedDate),
		ctx.config.CreatedWithin, "createdDate is not recent")
}
