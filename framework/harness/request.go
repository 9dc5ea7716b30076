package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework"

	"github.com/google/uuid"
)

// RequestIDHeader is sent with every request so that service logs can be correlated with
// the harness's debug output.
const RequestIDHeader = "X-Request-Id"

const maxLoggedBody = 2000

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the media type of the response without parameters, or "" if there
// is none.
func (r *Response) ContentType() string {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mediaType
}

// DecodeJSON unmarshals the response body into out.
func (r *Response) DecodeJSON(out interface{}) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("malformed JSON response (%s): %w", truncate(r.Body), err)
	}
	return nil
}

// StatusError is returned when the service responds with a status outside the 2xx range.
// The response is still available for inspection.
type StatusError struct {
	Method   string
	URL      string
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.Response.StatusCode)
}

// StatusCode returns the HTTP status of the failed request.
func (e *StatusError) StatusCode() int {
	return e.Response.StatusCode
}

// Do sends a request to a path relative to the base URL. If body is non-nil, it is encoded
// as JSON. Request and response are written to logger, which may be nil.
//
// The returned error is a *StatusError if the service answered with a non-2xx status; in
// that case the Response is returned as well.
func (h *TestHarness) Do(method, path string, body interface{}, logger framework.Logger) (*Response, error) {
	if logger == nil {
		logger = h.logger
	}
	url := h.resolve(path)

	var reqBody io.Reader
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("could not encode request body for %s %s: %w", method, url, err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json, text/csv, application/csv, */*")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		logger.Printf("[%s] %s %s %s", requestID, method, url, truncate(data))
	} else {
		logger.Printf("[%s] %s %s", requestID, method, url)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		logger.Printf("[%s] request failed: %s", requestID, err)
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response to %s %s: %w", method, url, err)
	}
	logger.Printf("[%s] HTTP %d %s", requestID, resp.StatusCode, truncate(respData))

	r := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respData}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return r, &StatusError{Method: method, URL: url, Response: r}
	}
	return r, nil
}

// Get is shorthand for Do with the GET method.
func (h *TestHarness) Get(path string, logger framework.Logger) (*Response, error) {
	return h.Do(http.MethodGet, path, nil, logger)
}

// Post is shorthand for Do with the POST method.
func (h *TestHarness) Post(path string, body interface{}, logger framework.Logger) (*Response, error) {
	return h.Do(http.MethodPost, path, body, logger)
}

// Put is shorthand for Do with the PUT method.
func (h *TestHarness) Put(path string, body interface{}, logger framework.Logger) (*Response, error) {
	return h.Do(http.MethodPut, path, body, logger)
}

// Delete is shorthand for Do with the DELETE method.
func (h *TestHarness) Delete(path string, logger framework.Logger) (*Response, error) {
	return h.Do(http.MethodDelete, path, nil, logger)
}

// GetJSON sends a GET request and decodes the JSON response into out.
func (h *TestHarness) GetJSON(path string, out interface{}, logger framework.Logger) error {
	resp, err := h.Get(path, logger)
	if err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

func truncate(data []byte) string {
	if len(data) > maxLoggedBody {
		return string(data[:maxLoggedBody]) + "..."
	}
	return string(data)
}
