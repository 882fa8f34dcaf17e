package main

import (
	"fmt"
	"log/slog"

	"clipforge/internal/config"
	"clipforge/internal/publishing"
	"clipforge/internal/queue"
	"clipforge/internal/rendering"
	"clipforge/internal/scripting"
	"clipforge/internal/stage"
	"clipforge/internal/voiceover"
)

func buildHandler(stg queue.Stage, cfg *config.Config, store *queue.Store, logger *slog.Logger) (stage.Handler, error) {
	switch stg {
	case queue.StageScript:
		return scripting.NewGenerator(cfg, store, logger), nil
	case queue.StageVoiceover:
		return voiceover.NewNarrator(cfg, store, logger), nil
	case queue.StageVideo:
		return rendering.NewComposer(cfg, store, logger), nil
	case queue.StagePublish:
		return publishing.NewPublisher(cfg, store, logger), nil
	default:
		return nil, fmt.Errorf("no handler for stage %q", stg)
	}
}
