package harness

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second * 2

func newTestHarness(t *testing.T, server *httptest.Server) *TestHarness {
	h, err := NewTestHarness(server.URL+"/api/v1", "/todos", testTimeout, testTimeout, nil, io.Discard)
	require.NoError(t, err)
	return h
}

func TestNewTestHarnessQueriesStatusPath(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := newTestHarness(t, server)
		assert.Equal(t, server.URL+"/api/v1", h.BaseURL())

		r := <-requestsCh
		assert.Equal(t, "GET", r.Request.Method)
		assert.Equal(t, "/api/v1/todos", r.Request.URL.Path)
	})
}

func TestNewTestHarnessRetriesUntilServiceIsReady(t *testing.T) {
	handler := httphelpers.SequentialHandler(
		httphelpers.HandlerWithStatus(503),
		httphelpers.HandlerWithStatus(503),
		httphelpers.HandlerWithStatus(200),
	)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var logger framework.CapturingLogger
		_, err := NewTestHarness(server.URL, "/todos", testTimeout, testTimeout, &logger, io.Discard)
		require.NoError(t, err)
		assert.Len(t, logger.Output(), 3)
	})
}

func TestNewTestHarnessTimesOut(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		_, err := NewTestHarness(server.URL, "/todos", testTimeout, time.Millisecond*250, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code 500")
	})
}

func TestPostSendsJSONBody(t *testing.T) {
	respHeaders := make(http.Header)
	respHeaders.Set("Content-Type", "application/json")
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.SequentialHandler(
		httphelpers.HandlerWithStatus(200),
		httphelpers.HandlerWithResponse(201, respHeaders, []byte(`{"id":7}`)),
	))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := newTestHarness(t, server)
		<-requestsCh // status query

		resp, err := h.Post("/todos", map[string]string{"title": "x"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, "application/json", resp.ContentType())

		var created struct {
			ID int `json:"id"`
		}
		require.NoError(t, resp.DecodeJSON(&created))
		assert.Equal(t, 7, created.ID)

		r := <-requestsCh
		assert.Equal(t, "POST", r.Request.Method)
		assert.Equal(t, "/api/v1/todos", r.Request.URL.Path)
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Request.Header.Get(RequestIDHeader))
		assert.JSONEq(t, `{"title":"x"}`, string(r.Body))
	})
}

func TestErrorStatusReturnsStatusError(t *testing.T) {
	handler := httphelpers.SequentialHandler(
		httphelpers.HandlerWithStatus(200),
		httphelpers.HandlerWithResponse(404, nil, []byte("no such todo")),
	)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := newTestHarness(t, server)

		resp, err := h.Delete("/todos/1", nil)
		require.Error(t, err)
		assert.Equal(t, "Request failed with status code 404", err.Error())

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 404, se.StatusCode())
		assert.Equal(t, "DELETE", se.Method)
		assert.Equal(t, "no such todo", string(resp.Body))
	})
}

func TestGetJSONReportsMalformedBody(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithResponse(200, nil, []byte("not json")), func(server *httptest.Server) {
		h := newTestHarness(t, server)
		var out []int
		err := h.GetJSON("/todos", &out, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed JSON response (not json)")
	})
}

func TestRequestsAreLogged(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithJSONResponse([]int{1, 2}, nil), func(server *httptest.Server) {
		h := newTestHarness(t, server)
		var logger framework.CapturingLogger
		var out []int
		require.NoError(t, h.GetJSON("todos", &out, &logger))
		assert.Equal(t, []int{1, 2}, out)

		output := logger.Output()
		require.Len(t, output, 2)
		assert.Contains(t, output[0].Message, "GET "+server.URL+"/api/v1/todos")
		assert.Contains(t, output[1].Message, "HTTP 200 [1,2]")
	})
}

func TestResponseContentTypeWithParameters(t *testing.T) {
	r := &Response{Header: http.Header{"Content-Type": []string{"text/csv; charset=utf-8"}}}
	assert.Equal(t, "text/csv", r.ContentType())
	assert.Equal(t, "", (&Response{Header: http.Header{}}).ContentType())
}

func TestUnencodableBody(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		h := newTestHarness(t, server)
		_, err := h.Post("/todos", json.RawMessage("{"), nil)
		assert.Error(t, err)
	})
}
