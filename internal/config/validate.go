package config

import (
	"fmt"
	"strings"
)

// Validate checks the fields every process needs before touching the ledger.
// Credentials for the LLM and YouTube services are checked by the stages that
// use them so the CLI can submit jobs with a minimal config.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		problems = append(problems, "paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must be set")
	}

	if c.Workflow.PollInterval <= 0 {
		problems = append(problems, "workflow.poll_interval must be positive")
	}
	if c.Workflow.MaxInFlight < 1 {
		problems = append(problems, "workflow.max_in_flight must be at least 1")
	}
	if c.Workflow.FetchBatch < 1 {
		problems = append(problems, "workflow.fetch_batch must be at least 1")
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		problems = append(problems, "workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		problems = append(problems, "workflow.error_retry_interval must be positive")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of console, json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		problems = append(problems, "render.width and render.height must be positive")
	}
	if c.Render.MaxCharsPerLine < 1 {
		problems = append(problems, "render.max_chars_per_line must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateLLM checks the fields the scripting stage requires.
func (c *Config) ValidateLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required (or set CLIPFORGE_LLM_API_KEY)")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// ValidateYouTube checks the fields the publishing stage requires.
func (c *Config) ValidateYouTube() error {
	var missing []string
	if strings.TrimSpace(c.YouTube.ClientID) == "" {
		missing = append(missing, "youtube.client_id")
	}
	if strings.TrimSpace(c.YouTube.ClientSecret) == "" {
		missing = append(missing, "youtube.client_secret")
	}
	if strings.TrimSpace(c.YouTube.RefreshToken) == "" {
		missing = append(missing, "youtube.refresh_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing YouTube credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}
