package config

const (
	defaultDataDir       = "~/.local/share/clipforge"
	defaultStagingDir    = "~/.local/share/clipforge/staging"
	defaultVoiceoverDir  = "~/.local/share/clipforge/voiceovers"
	defaultRenderDir     = "~/.local/share/clipforge/renders"
	defaultBackgroundDir = "~/.local/share/clipforge/backgrounds"
	defaultLogDir        = "~/.local/share/clipforge/logs"
	defaultAPIBind       = "127.0.0.1:8791"

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "openai/gpt-4o-mini"
	defaultLLMReferer        = "https://github.com/clipforge/clipforge"
	defaultLLMTitle          = "Clipforge Script Writer"
	defaultLLMTimeoutSeconds = 120

	defaultTTSCommand = "edge-tts"
	defaultTTSVoice   = "en-US-ChristopherNeural"

	defaultWhisperModel    = "base"
	defaultRenderFont      = "Arial"
	defaultRenderFontSize  = 24
	defaultMaxCharsPerLine = 38
	defaultRenderWidth     = 1080
	defaultRenderHeight    = 1920

	defaultYouTubeCategoryID = "22"

	defaultPollInterval       = 10
	defaultMaxInFlight        = 1
	defaultFetchBatch         = 10
	defaultHeartbeatInterval  = 15
	defaultErrorRetryInterval = 30

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			StagingDir:    defaultStagingDir,
			VoiceoverDir:  defaultVoiceoverDir,
			RenderDir:     defaultRenderDir,
			BackgroundDir: defaultBackgroundDir,
			LogDir:        defaultLogDir,
			APIBind:       defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		TTS: TTS{
			Command: defaultTTSCommand,
			Voice:   defaultTTSVoice,
		},
		Render: Render{
			WhisperModel:    defaultWhisperModel,
			Font:            defaultRenderFont,
			FontSize:        defaultRenderFontSize,
			MaxCharsPerLine: defaultMaxCharsPerLine,
			Width:           defaultRenderWidth,
			Height:          defaultRenderHeight,
		},
		YouTube: YouTube{
			CategoryID: defaultYouTubeCategoryID,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			MaxInFlight:        defaultMaxInFlight,
			FetchBatch:         defaultFetchBatch,
			HeartbeatInterval:  defaultHeartbeatInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
