// Package servicedef describes the wire format of the Todo API under test.
package servicedef

import (
	"strconv"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Resource paths, relative to the API base URL.
const (
	AssigneesPath    = "/assignees"
	TodosPath        = "/todos"
	TodosCSVPath     = "/csv-downloads/todos"
	CSVMediaType     = "text/csv"
	AltCSVMediaType  = "application/csv"
	AssigneeNameJoin = "+"
)

// TodoCSVColumns lists the header fields of the CSV export, in order.
var TodoCSVColumns = []string{
	"id",
	"title",
	"description",
	"finished",
	"assignees",
	"createdDate",
	"dueDate",
	"finishedDate",
	"category",
}

func AssigneePath(id int64) string { return AssigneesPath + "/" + strconv.FormatInt(id, 10) }

func TodoPath(id int64) string { return TodosPath + "/" + strconv.FormatInt(id, 10) }

// AssigneeParams is the request body for creating an assignee.
type AssigneeParams struct {
	Prename string `json:"prename"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type Assignee struct {
	ID      int64  `json:"id"`
	Prename string `json:"prename"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// DisplayName is how an assignee appears in the CSV export.
func (a Assignee) DisplayName() string {
	return a.Prename + " " + a.Name
}

// TodoParams is the request body for creating or updating a todo.
//
// DueDate is normally a millisecond timestamp, but it is an arbitrary JSON value so that
// tests can send malformed dates. Finished is omitted when nil.
type TodoParams struct {
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	AssigneeIDList []int64       `json:"assigneeIdList"`
	DueDate        ldvalue.Value `json:"dueDate"`
	Finished       *bool         `json:"finished,omitempty"`
}

// Todo is a todo as returned by the API. All timestamps are in milliseconds since the
// Unix epoch; FinishedDate is undefined until the todo is finished.
type Todo struct {
	ID           int64               `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	AssigneeList []Assignee          `json:"assigneeList"`
	DueDate      int64               `json:"dueDate"`
	Finished     bool                `json:"finished"`
	CreatedDate  int64               `json:"createdDate"`
	FinishedDate ldvalue.OptionalInt `json:"finishedDate"`
	Category     string              `json:"category"`
}

// AssigneeIDs returns the ids of the todo's assignees in the order the API returned them.
func (t Todo) AssigneeIDs() []int64 {
	ids := make([]int64, 0, len(t.AssigneeList))
	for _, a := range t.AssigneeList {
		ids = append(ids, a.ID)
	}
	return ids
}

// CreatedResponse is the body of a 201 response. ID is kept as a raw JSON value so that a
// non-integer id can be detected instead of being silently truncated.
type CreatedResponse struct {
	ID ldvalue.Value `json:"id"`
}

// TodoCSVRow is one data row of the CSV export. Every column is kept as text, exactly as
// exported.
type TodoCSVRow struct {
	ID           string `csv:"id"`
	Title        string `csv:"title"`
	Description  string `csv:"description"`
	Finished     string `csv:"finished"`
	Assignees    string `csv:"assignees"`
	CreatedDate  string `csv:"createdDate"`
	DueDate      string `csv:"dueDate"`
	FinishedDate string `csv:"finishedDate"`
	Category     string `csv:"category"`
}
