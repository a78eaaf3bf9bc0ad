package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileOverrides is the optional lyre.yaml tuning file. Only the fields that
// operators commonly tweak are exposed here; everything else stays env-only.
type FileOverrides struct {
	PollInterval    string `yaml:"poll_interval,omitempty"`
	PollMaxFailures int    `yaml:"poll_max_failures,omitempty"`
	MockPollsToDone int    `yaml:"mock_polls_to_done,omitempty"`
	SummaryModel    string `yaml:"summary_model,omitempty"`
	ASRBaseURL      string `yaml:"asr_base_url,omitempty"`
}

// ApplyFile merges overrides from the given yaml file into cfg. A missing
// file is not an error.
func ApplyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var overrides FileOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if overrides.PollInterval != "" {
		d, err := time.ParseDuration(overrides.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval in %s: %w", path, err)
		}
		cfg.PollInterval = d
	}
	if overrides.PollMaxFailures > 0 {
		cfg.PollMaxFailures = overrides.PollMaxFailures
	}
	if overrides.MockPollsToDone > 0 {
		cfg.MockPollsToDone = overrides.MockPollsToDone
	}
	if overrides.SummaryModel != "" {
		cfg.SummaryModel = overrides.SummaryModel
	}
	if overrides.ASRBaseURL != "" {
		cfg.ASRBaseURL = overrides.ASRBaseURL
	}

	return cfg.Validate()
}
