package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework"
	"github.com/todo-contract-tests/todo-api-contract-tests/framework/ldtest"

	"github.com/fatih/color"
)

// ConsoleTestLogger prints test progress as an indented tree: each top-level scope gets a
// header, and every test ends with a PASS or FAIL line showing how long it took.
type ConsoleTestLogger struct {
	Output               io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	started map[string]time.Time
}

func (c *ConsoleTestLogger) TestStarted(id ldtest.TestID) {
	if c.started == nil {
		c.started = make(map[string]time.Time)
	}
	c.started[id.String()] = time.Now()
	if len(id.Path) == 1 {
		color.New(color.Bold).Fprintf(c.Output, "=== %s\n", id.Path[0])
		return
	}
	fmt.Fprintf(c.Output, "%s[%s]\n", indent(id), id.Path[len(id.Path)-1])
}

func (c *ConsoleTestLogger) TestError(id ldtest.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Output, "%s  %s\n", indent(id), line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id ldtest.TestID, failed bool, debugOutput framework.CapturedOutput) {
	elapsed := time.Since(c.started[id.String()]).Round(time.Millisecond)
	delete(c.started, id.String())
	if failed {
		fmt.Fprintf(c.Output, "%s%s %s (%s)\n", indent(id), color.RedString("FAIL"), id, elapsed)
	} else {
		fmt.Fprintf(c.Output, "%s%s (%s)\n", indent(id), color.GreenString("PASS"), elapsed)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Output, indent(id)+"  DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id ldtest.TestID, reason string) {
	delete(c.started, id.String())
	line := indent(id) + color.YellowString("SKIP") + " " + id.String()
	if reason != "" {
		line += " (" + reason + ")"
	}
	fmt.Fprintln(c.Output, line)
}

func indent(id ldtest.TestID) string {
	if len(id.Path) < 2 {
		return ""
	}
	return strings.Repeat("  ", len(id.Path)-1)
}
