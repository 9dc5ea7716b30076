package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework"
	"github.com/todo-contract-tests/todo-api-contract-tests/framework/harness"
	"github.com/todo-contract-tests/todo-api-contract-tests/framework/ldtest"
	"github.com/todo-contract-tests/todo-api-contract-tests/todotests"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Invalid .env file: %s\n", err)
		os.Exit(1)
	}

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	config, err := params.Config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		logger := logrus.New()
		logger.SetOutput(os.Stdout)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		mainDebugLogger = logger
	}

	h, err := harness.NewTestHarness(
		config.BaseURL,
		config.StatusPath,
		config.RequestTimeout,
		config.ReadyTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Todo API error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println()
	ldtest.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Printf("Running test suite (seed %d)\n", config.Seed)

	testLogger := &ConsoleTestLogger{
		Output:               os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results, err := todotests.RunTestSuite(h, config, params.filters.AsFilter, testLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}

	fmt.Println()
	ldtest.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun the failed tests:")
		fmt.Printf("  %s\n", params.rerunCommand(os.Args[0], config, results))
		os.Exit(1)
	}
}
