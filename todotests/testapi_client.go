package todotests

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework/harness"
	"github.com/todo-contract-tests/todo-api-contract-tests/framework/ldtest"
	"github.com/todo-contract-tests/todo-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const bulkDeleteConcurrency = 8

// TodoAPI issues typed requests against the Todo API on behalf of one test. Every request
// and response is written to that test's debug log.
//
// Methods that return an error leave it to the test to decide what a failure means; the
// Require methods fail the test immediately instead.
type TodoAPI struct {
	t       *ldtest.T
	harness *harness.TestHarness
}

func NewTodoAPI(t *ldtest.T) *TodoAPI {
	return &TodoAPI{t: t, harness: requireContext(t).harness}
}

func (a *TodoAPI) ListAssignees() ([]servicedef.Assignee, error) {
	var assignees []servicedef.Assignee
	err := a.harness.GetJSON(servicedef.AssigneesPath, &assignees, a.t.DebugLogger())
	return assignees, err
}

func (a *TodoAPI) CreateAssignee(params servicedef.AssigneeParams) (*harness.Response, error) {
	return a.harness.Post(servicedef.AssigneesPath, params, a.t.DebugLogger())
}

func (a *TodoAPI) DeleteAssignee(id int64) (*harness.Response, error) {
	return a.harness.Delete(servicedef.AssigneePath(id), a.t.DebugLogger())
}

func (a *TodoAPI) ListTodos() ([]servicedef.Todo, error) {
	var todos []servicedef.Todo
	err := a.harness.GetJSON(servicedef.TodosPath, &todos, a.t.DebugLogger())
	return todos, err
}

func (a *TodoAPI) GetTodo(id int64) (servicedef.Todo, error) {
	var todo servicedef.Todo
	err := a.harness.GetJSON(servicedef.TodoPath(id), &todo, a.t.DebugLogger())
	return todo, err
}

func (a *TodoAPI) CreateTodo(params servicedef.TodoParams) (*harness.Response, error) {
	return a.harness.Post(servicedef.TodosPath, params, a.t.DebugLogger())
}

func (a *TodoAPI) UpdateTodo(id int64, params servicedef.TodoParams) (*harness.Response, error) {
	return a.harness.Put(servicedef.TodoPath(id), params, a.t.DebugLogger())
}

func (a *TodoAPI) DeleteTodo(id int64) (*harness.Response, error) {
	return a.harness.Delete(servicedef.TodoPath(id), a.t.DebugLogger())
}

func (a *TodoAPI) DownloadTodosCSV() (*harness.Response, error) {
	return a.harness.Get(servicedef.TodosCSVPath, a.t.DebugLogger())
}

// DeleteAllTodos deletes every todo the service currently lists. The deletes are sent
// concurrently and all of them have finished when this returns. Individual failures are
// only written to the debug log; the returned error is for the initial listing.
func (a *TodoAPI) DeleteAllTodos() error {
	todos, err := a.ListTodos()
	if err != nil {
		return fmt.Errorf("could not list todos: %w", err)
	}
	ids := make([]int64, 0, len(todos))
	for _, todo := range todos {
		ids = append(ids, todo.ID)
	}
	a.deleteAll("todo", ids, a.DeleteTodo)
	return nil
}

// DeleteAllAssignees is the assignee equivalent of DeleteAllTodos.
func (a *TodoAPI) DeleteAllAssignees() error {
	assignees, err := a.ListAssignees()
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}
	ids := make([]int64, 0, len(assignees))
	for _, assignee := range assignees {
		ids = append(ids, assignee.ID)
	}
	a.deleteAll("assignee", ids, a.DeleteAssignee)
	return nil
}

func (a *TodoAPI) deleteAll(kind string, ids []int64, del func(int64) (*harness.Response, error)) {
	var g errgroup.Group
	g.SetLimit(bulkDeleteConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if _, err := del(id); err != nil {
				a.t.Debug("ignoring failure to delete %s %d: %s", kind, id, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (a *TodoAPI) RequireAssignees() []servicedef.Assignee {
	assignees, err := a.ListAssignees()
	require.NoError(a.t, err)
	return assignees
}

func (a *TodoAPI) RequireTodos() []servicedef.Todo {
	todos, err := a.ListTodos()
	require.NoError(a.t, err)
	return todos
}

func (a *TodoAPI) RequireTodo(id int64) servicedef.Todo {
	todo, err := a.GetTodo(id)
	require.NoError(a.t, err)
	return todo
}

// RequireCreated checks that a create request returned 201 and returns the new id.
func (a *TodoAPI) RequireCreated(resp *harness.Response, err error) int64 {
	require.NoError(a.t, err)
	assert.Equal(a.t, http.StatusCreated, resp.StatusCode)
	var created servicedef.CreatedResponse
	require.NoError(a.t, resp.DecodeJSON(&created))
	require.True(a.t, created.ID.IsInt(), "id must be an integer, got %s", created.ID.JSONString())
	return int64(created.ID.Float64Value())
}

// RequireStatus checks that a request succeeded with exactly the given status.
func RequireStatus(t *ldtest.T, status int, resp *harness.Response, err error) {
	require.NoError(t, err)
	assert.Equal(t, status, resp.StatusCode, "unexpected HTTP status")
}

// RequireRejected checks that a request failed with the given HTTP status.
func RequireRejected(t *ldtest.T, status int, err error) {
	require.Error(t, err, "request should have failed with status code %d", status)
	var se *harness.StatusError
	require.True(t, errors.As(err, &se), "expected an HTTP error status but got: %s", err)
	assert.Equal(t, status, se.StatusCode(), "unexpected HTTP status")
	assert.Equal(t, fmt.Sprintf("Request failed with status code %d", status), se.Error())
}
