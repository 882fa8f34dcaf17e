package config

import (
	"os"
	"strings"
)

// normalize expands user-relative paths and applies environment overrides for
// the secrets that operators prefer to keep out of the config file.
func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Paths.DataDir,
		&c.Paths.StagingDir,
		&c.Paths.VoiceoverDir,
		&c.Paths.RenderDir,
		&c.Paths.BackgroundDir,
		&c.Paths.LogDir,
	}
	for _, field := range pathFields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	applyEnvOverride(&c.LLM.APIKey, "CLIPFORGE_LLM_API_KEY")
	applyEnvOverride(&c.YouTube.ClientID, "CLIPFORGE_YOUTUBE_CLIENT_ID")
	applyEnvOverride(&c.YouTube.ClientSecret, "CLIPFORGE_YOUTUBE_CLIENT_SECRET")
	applyEnvOverride(&c.YouTube.RefreshToken, "CLIPFORGE_YOUTUBE_REFRESH_TOKEN")
	applyEnvOverride(&c.Paths.APIToken, "CLIPFORGE_API_TOKEN")

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}

func applyEnvOverride(field *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*field = value
	}
}
