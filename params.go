package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework/ldtest"
	"github.com/todo-contract-tests/todo-api-contract-tests/todotests"

	"github.com/alessio/shellescape"
)

const (
	envServiceURL = "TODO_API_URL"
	envTimeout    = "TODO_API_TIMEOUT"
	envSeed       = "TODO_API_SEED"
)

type commandParams struct {
	configFile string
	serviceURL string
	timeout    time.Duration
	seed       int64
	timeZone   string
	filters    ldtest.RegexFilters
	debug      bool
	debugAll   bool
	setFlags   map[string]bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&c.serviceURL, "url", "", "base URL of the Todo API (default "+todotests.DefaultConfig().BaseURL+")")
	fs.DurationVar(&c.timeout, "timeout", 0, "how long to wait for the Todo API to become available")
	fs.Int64Var(&c.seed, "seed", 0, "random seed for generated test data (0 picks one)")
	fs.StringVar(&c.timeZone, "tz", "", "time zone the service uses for dates in the CSV export")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	c.setFlags = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.setFlags[f.Name] = true })
	return true
}

// Config builds the run configuration. Later sources win: defaults, the config file, the
// environment, then command-line flags.
func (c *commandParams) Config() (todotests.Config, error) {
	config := todotests.DefaultConfig()
	if c.configFile != "" {
		if err := todotests.LoadConfigFile(c.configFile, &config); err != nil {
			return config, err
		}
	}
	if err := applyEnvironment(&config); err != nil {
		return config, err
	}
	if c.setFlags["url"] {
		config.BaseURL = c.serviceURL
	}
	if c.setFlags["timeout"] {
		config.ReadyTimeout = c.timeout
	}
	if c.setFlags["seed"] {
		config.Seed = c.seed
	}
	if c.setFlags["tz"] {
		config.TimeZone = c.timeZone
	}
	return config, nil
}

func applyEnvironment(config *todotests.Config) error {
	if s := os.Getenv(envServiceURL); s != "" {
		config.BaseURL = s
	}
	if s := os.Getenv(envTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envTimeout, err)
		}
		config.ReadyTimeout = d
	}
	if s := os.Getenv(envSeed); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envSeed, err)
		}
		config.Seed = seed
	}
	return nil
}

// rerunCommand returns a command line that runs the failed tests again with the same
// service, config file, and seed. Tests within a scope depend on each other, so it selects
// whole top-level scopes.
func (c *commandParams) rerunCommand(program string, config todotests.Config, results ldtest.Results) string {
	var cmd commandBuilder
	cmd.add(program, "-url", config.BaseURL)
	if c.configFile != "" {
		cmd.add("-config", c.configFile)
	}
	cmd.add("-seed", strconv.FormatInt(config.Seed, 10))
	if config.TimeZone != "" {
		cmd.add("-tz", config.TimeZone)
	}
	seen := make(map[string]bool)
	for _, f := range results.Failures {
		if len(f.TestID.Path) == 0 || seen[f.TestID.Path[0]] {
			continue
		}
		seen[f.TestID.Path[0]] = true
		cmd.add("-run", "^"+regexp.QuoteMeta(f.TestID.Path[0])+"$")
	}
	if c.debug || c.debugAll {
		cmd.add("-debug")
	}
	return cmd.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
