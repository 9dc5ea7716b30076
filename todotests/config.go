package todotests

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of a test run. Durations in YAML use Go syntax such as "30s".
type Config struct {
	BaseURL        string        `yaml:"baseUrl"`
	StatusPath     string        `yaml:"statusPath"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	ReadyTimeout   time.Duration `yaml:"readyTimeout"`

	// CreatedWithin and FinishedWithin bound how far server-assigned timestamps may be from
	// the harness's clock.
	CreatedWithin  time.Duration `yaml:"createdWithin"`
	FinishedWithin time.Duration `yaml:"finishedWithin"`

	// EmailDomain is used for generated assignees; EmailSuffix is what every assignee
	// email returned by the service must end with.
	EmailDomain string `yaml:"emailDomain"`
	EmailSuffix string `yaml:"emailSuffix"`

	Categories []string `yaml:"categories"`

	// TimeZone is the IANA zone the service uses when it renders dates in the CSV export.
	// Empty means the local zone.
	TimeZone string `yaml:"timeZone"`

	// Seed makes the generated fixture data reproducible. Zero picks a random seed.
	Seed int64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8080/api/v1",
		StatusPath:     "/todos",
		RequestTimeout: time.Second * 10,
		ReadyTimeout:   time.Second * 10,
		CreatedWithin:  time.Second * 30,
		FinishedWithin: time.Second * 20,
		EmailDomain:    "iste.uni-stuttgart.de",
		EmailSuffix:    "uni-stuttgart.de",
		Categories:     []string{"work", "private"},
	}
}

// LoadConfigFile overlays the settings in a YAML file onto config. Unknown keys are an
// error.
func LoadConfigFile(path string, config *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

// Location returns the time zone named by TimeZone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("base URL is required")
	case c.CreatedWithin <= 0 || c.FinishedWithin <= 0:
		return errors.New("createdWithin and finishedWithin must be positive")
	case c.EmailDomain == "":
		return errors.New("emailDomain is required")
	case len(c.Categories) == 0:
		return errors.New("at least one category is required")
	}
	_, err := c.Location()
	return err
}
