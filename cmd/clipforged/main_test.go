package main

import (
	"strings"
	"testing"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/testsupport"
)

func TestRunRejectsUnknownStage(t *testing.T) {
	err := run("mastering", "", "")
	if err == nil || !strings.Contains(err.Error(), "unknown stage") {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildHandlerCoversEveryStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	for _, stg := range []queue.Stage{queue.StageScript, queue.StageVoiceover, queue.StageVideo, queue.StagePublish} {
		handler, err := buildHandler(stg, cfg, store, logging.NewNop())
		if err != nil {
			t.Fatalf("buildHandler(%s): %v", stg, err)
		}
		if handler.Stage() != stg {
			t.Fatalf("handler for %s reports stage %s", stg, handler.Stage())
		}
	}
}
