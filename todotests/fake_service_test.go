package todotests

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/servicedef"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// fakeTodoService is an in-memory implementation of the Todo API. The misbehavior flags
// make it break specific parts of the contract.
type fakeTodoService struct {
	assignees map[int64]servicedef.Assignee
	todos     map[int64]*servicedef.Todo
	lastID    int64
	lock      sync.Mutex

	acceptEmptyTitle         bool
	acceptUnknownAssignees   bool
	acceptDuplicateAssignees bool
	acceptAnyDueDate         bool
	missingTodoStatus        int
	csvContentType           string
	forgetFinishedDate       bool
}

type fakeTodoParams struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	AssigneeIDList []int64         `json:"assigneeIdList"`
	DueDate        json.RawMessage `json:"dueDate"`
	Finished       *bool           `json:"finished"`
}

func newFakeTodoService() *fakeTodoService {
	return &fakeTodoService{
		assignees:         make(map[int64]servicedef.Assignee),
		todos:             make(map[int64]*servicedef.Todo),
		csvContentType:    "text/csv; charset=utf-8",
		missingTodoStatus: http.StatusNotFound,
	}
}

func (s *fakeTodoService) handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	api := e.Group("/api/v1")
	api.GET("/assignees", s.listAssignees)
	api.POST("/assignees", s.createAssignee)
	api.DELETE("/assignees/:id", s.deleteAssignee)
	api.GET("/todos", s.listTodos)
	api.POST("/todos", s.createTodo)
	api.GET("/todos/:id", s.getTodo)
	api.PUT("/todos/:id", s.updateTodo)
	api.DELETE("/todos/:id", s.deleteTodo)
	api.GET("/csv-downloads/todos", s.exportTodos)
	return e
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (s *fakeTodoService) nextID() int64 {
	s.lastID++
	return s.lastID
}

func (s *fakeTodoService) listAssignees(c echo.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := []servicedef.Assignee{}
	for _, id := range sortedKeys(s.assignees) {
		ret = append(ret, s.assignees[id])
	}
	return c.JSON(http.StatusOK, ret)
}

func (s *fakeTodoService) createAssignee(c echo.Context) error {
	var params servicedef.AssigneeParams
	if err := json.NewDecoder(c.Request().Body).Decode(&params); err != nil || params.Name == "" || params.Prename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assignee")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	a := servicedef.Assignee{ID: s.nextID(), Prename: params.Prename, Name: params.Name, Email: params.Email}
	s.assignees[a.ID] = a
	return c.JSON(http.StatusCreated, map[string]int64{"id": a.ID})
}

func (s *fakeTodoService) deleteAssignee(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.assignees[id]; !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	delete(s.assignees, id)
	for _, todo := range s.todos {
		kept := []servicedef.Assignee{}
		for _, a := range todo.AssigneeList {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		todo.AssigneeList = kept
	}
	return c.NoContent(http.StatusOK)
}

func (s *fakeTodoService) listTodos(c echo.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := []servicedef.Todo{}
	for _, id := range sortedKeys(s.todos) {
		ret = append(ret, *s.todos[id])
	}
	return c.JSON(http.StatusOK, ret)
}

func (s *fakeTodoService) getTodo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	todo, ok := s.todos[id]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, todo)
}

// validate must be called with the lock held.
func (s *fakeTodoService) validate(c echo.Context) (fakeTodoParams, []servicedef.Assignee, int64, error) {
	var params fakeTodoParams
	if err := json.NewDecoder(c.Request().Body).Decode(&params); err != nil {
		return params, nil, 0, echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if params.Title == "" && !s.acceptEmptyTitle {
		return params, nil, 0, echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	var dueDate int64
	if err := json.Unmarshal(params.DueDate, &dueDate); err != nil && !s.acceptAnyDueDate {
		return params, nil, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid dueDate")
	}
	assignees := []servicedef.Assignee{}
	seen := make(map[int64]bool)
	for _, id := range params.AssigneeIDList {
		a, ok := s.assignees[id]
		if !ok && s.acceptUnknownAssignees {
			continue
		}
		if !ok {
			return params, nil, 0, echo.NewHTTPError(http.StatusBadRequest, "unknown assignee")
		}
		if seen[id] && !s.acceptDuplicateAssignees {
			return params, nil, 0, echo.NewHTTPError(http.StatusBadRequest, "duplicate assignee")
		}
		seen[id] = true
		assignees = append(assignees, a)
	}
	return params, assignees, dueDate, nil
}

func (s *fakeTodoService) createTodo(c echo.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	params, assignees, dueDate, err := s.validate(c)
	if err != nil {
		return err
	}
	todo := &servicedef.Todo{
		ID:           s.nextID(),
		Title:        params.Title,
		Description:  params.Description,
		AssigneeList: assignees,
		DueDate:      dueDate,
		CreatedDate:  servicedef.Timestamp(time.Now()),
		Category:     "work",
	}
	s.todos[todo.ID] = todo
	return c.JSON(http.StatusCreated, map[string]int64{"id": todo.ID})
}

func (s *fakeTodoService) updateTodo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	todo, ok := s.todos[id]
	if !ok {
		return s.missingTodo(c)
	}
	params, assignees, dueDate, err := s.validate(c)
	if err != nil {
		return err
	}
	todo.Title, todo.Description, todo.AssigneeList, todo.DueDate = params.Title, params.Description, assignees, dueDate
	if params.Finished != nil {
		switch {
		case !*params.Finished:
			todo.FinishedDate = ldvalue.OptionalInt{}
		case !todo.Finished && !s.forgetFinishedDate:
			todo.FinishedDate = ldvalue.NewOptionalInt(int(servicedef.Timestamp(time.Now())))
		}
		todo.Finished = *params.Finished
	}
	return c.NoContent(http.StatusOK)
}

func (s *fakeTodoService) deleteTodo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.todos[id]; !ok {
		return s.missingTodo(c)
	}
	delete(s.todos, id)
	return c.NoContent(http.StatusOK)
}

func (s *fakeTodoService) missingTodo(c echo.Context) error {
	if s.missingTodoStatus == http.StatusNotFound {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.NoContent(s.missingTodoStatus)
}

func (s *fakeTodoService) exportTodos(c echo.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	rows := []servicedef.TodoCSVRow{}
	for _, id := range sortedKeys(s.todos) {
		todo := s.todos[id]
		var names []string
		for _, a := range todo.AssigneeList {
			names = append(names, a.DisplayName())
		}
		row := servicedef.TodoCSVRow{
			ID:          strconv.FormatInt(todo.ID, 10),
			Title:       todo.Title,
			Description: todo.Description,
			Finished:    strconv.FormatBool(todo.Finished),
			Assignees:   strings.Join(names, servicedef.AssigneeNameJoin),
			CreatedDate: servicedef.TimestampToDateString(todo.CreatedDate, nil),
			DueDate:     servicedef.TimestampToDateString(todo.DueDate, nil),
			Category:    todo.Category,
		}
		if todo.FinishedDate.IsDefined() {
			row.FinishedDate = servicedef.TimestampToDateString(int64(todo.FinishedDate.IntValue()), nil)
		}
		rows = append(rows, row)
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, s.csvContentType, data)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
