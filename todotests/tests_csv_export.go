package todotests

import (
	"net/http"
	"strings"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/csvparse"
	"github.com/todo-contract-tests/todo-api-contract-tests/framework/ldtest"
	"github.com/todo-contract-tests/todo-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DoCSVExportTests checks the CSV rendering of a known set of todos. It starts from an empty
// todo list and creates any assignees it needs, so it can run on its own.
func DoCSVExportTests(t *ldtest.T) {
	ctx := requireContext(t)
	api := NewTodoAPI(t)

	require.NoError(t, api.DeleteAllTodos())
	assignees := api.RequireAssignees()
	if len(assignees) < 2 {
		for x := len(assignees); x < 2; x++ {
			api.RequireCreated(api.CreateAssignee(ctx.fixtures.GenerateAssignee()))
		}
		assignees = api.RequireAssignees()
		require.GreaterOrEqual(t, len(assignees), 2)
	}

	todos := []servicedef.TodoParams{
		ctx.fixtures.GenerateTodo([]int64{assignees[0].ID, assignees[1].ID}),
		ctx.fixtures.GenerateTodo(nil),
	}
	for _, todo := range todos {
		api.RequireCreated(api.CreateTodo(todo))
	}

	resp, err := api.DownloadTodosCSV()
	RequireStatus(t, http.StatusOK, resp, err)
	assert.Contains(t, []string{servicedef.CSVMediaType, servicedef.AltCSVMediaType}, resp.ContentType(),
		"unexpected content type %q", resp.Header.Get("Content-Type"))

	body := string(resp.Body)
	csv := csvparse.Parse(body)
	assert.Empty(t, csv.Errors, "CSV parse errors")
	assert.Equal(t, ",", csv.Meta.Delimiter)
	require.Equal(t, servicedef.TodoCSVColumns, csv.Meta.Fields, "CSV header")
	require.Len(t, csv.Data, len(todos))

	var rows []servicedef.TodoCSVRow
	require.NoError(t, csvparse.Decode(body, csv.Meta.Delimiter, &rows))
	require.Len(t, rows, len(todos))

	assert.Equal(t, todos[0].Title, rows[0].Title)
	assert.Equal(t, todos[1].Description, rows[1].Description)
	assert.Equal(t, "FALSE", strings.ToUpper(rows[0].Finished))

	// either order of the two assignees is acceptable
	first, second := assignees[0].DisplayName(), assignees[1].DisplayName()
	assert.Contains(t, []string{
		first + servicedef.AssigneeNameJoin + second,
		second + servicedef.AssigneeNameJoin + first,
	}, rows[0].Assignees)
	assert.Equal(t, "", rows[1].Assignees)

	assert.Equal(t, "", rows[0].FinishedDate)
	assert.Equal(t, servicedef.TimestampToDateString(servicedef.Timestamp(time.Now()), ctx.location), rows[1].CreatedDate)
	assert.Equal(t, servicedef.TimestampToDateString(int64(todos[1].DueDate.Float64Value()), ctx.location), rows[1].DueDate)
	for _, row := range rows {
		assert.Contains(t, ctx.config.Categories, row.Category)
	}
}
