package harness

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework"
)

const statusPollInterval = time.Millisecond * 100

// TestHarness holds the connection settings for the service under test. It is safe for
// concurrent use.
type TestHarness struct {
	baseURL    string
	httpClient *http.Client
	logger     framework.Logger
}

// NewTestHarness creates a TestHarness for the service at baseURL, and verifies that the
// service is responding by polling statusPath (relative to baseURL) until it returns a 200
// status or statusQueryTimeout elapses. Progress is written to startupOutput.
//
// requestTimeout applies to every request made through the harness.
func NewTestHarness(
	baseURL string,
	statusPath string,
	requestTimeout time.Duration,
	statusQueryTimeout time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}
	h := &TestHarness{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     debugLogger,
	}
	if err := h.awaitServiceStatus(statusPath, statusQueryTimeout, startupOutput); err != nil {
		return nil, err
	}
	return h, nil
}

// BaseURL returns the base URL of the service, without a trailing slash.
func (h *TestHarness) BaseURL() string {
	return h.baseURL
}

func (h *TestHarness) awaitServiceStatus(statusPath string, timeout time.Duration, output io.Writer) error {
	url := h.resolve(statusPath)
	fmt.Fprintf(output, "Connecting to service under test at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := h.httpClient.Get(url)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				fmt.Fprintln(output)
				h.logger.Printf("Service status query to %s succeeded", url)
				return nil
			}
			err = fmt.Errorf("status code %d", resp.StatusCode)
		}
		h.logger.Printf("Service status query to %s failed: %s", url, err)
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out waiting for service, result of last query was: %w", err)
		}
		time.Sleep(statusPollInterval)
	}
}

func (h *TestHarness) resolve(path string) string {
	if strings.HasPrefix(path, "http:") || strings.HasPrefix(path, "https:") {
		return path
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return h.baseURL + path
}
