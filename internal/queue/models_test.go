package queue_test

import (
	"testing"
	"time"

	"clipforge/internal/queue"
)

func TestStageStatusAndActionMappings(t *testing.T) {
	cases := []struct {
		stg    queue.Stage
		status queue.Status
		action queue.Action
	}{
		{queue.StageScript, queue.StatusGeneratingScript, queue.ActionGenerateScript},
		{queue.StageVoiceover, queue.StatusCreatingVoiceover, queue.ActionGenerateVoiceover},
		{queue.StageVideo, queue.StatusRenderingVideo, queue.ActionCreateVideo},
		{queue.StagePublish, queue.StatusUploading, queue.ActionPostToYouTube},
	}
	for _, tc := range cases {
		if got := tc.stg.ProcessingStatus(); got != tc.status {
			t.Fatalf("%s: ProcessingStatus() = %s, want %s", tc.stg, got, tc.status)
		}
		if got := tc.stg.Action(); got != tc.action {
			t.Fatalf("%s: Action() = %s, want %s", tc.stg, got, tc.action)
		}
	}
}

func TestPipelineOrderExcludesPublish(t *testing.T) {
	for _, stg := range queue.PipelineOrder {
		if stg == queue.StagePublish {
			t.Fatal("publish must never appear in the auto-chain order")
		}
	}
	if len(queue.PipelineOrder) != 3 || queue.PipelineOrder[0] != queue.StageScript {
		t.Fatalf("unexpected pipeline order: %v", queue.PipelineOrder)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []queue.Status{queue.StatusCompleted, queue.StatusFailed} {
		if !queue.IsTerminal(status) {
			t.Fatalf("%s must be terminal", status)
		}
	}
	for _, status := range []queue.Status{queue.StatusPending, queue.StatusReady, queue.StatusUploading} {
		if queue.IsTerminal(status) {
			t.Fatalf("%s must not be terminal", status)
		}
	}
}

func TestIsProcessingStatus(t *testing.T) {
	processing := []queue.Status{
		queue.StatusGeneratingScript,
		queue.StatusCreatingVoiceover,
		queue.StatusRenderingVideo,
		queue.StatusUploading,
	}
	for _, status := range processing {
		if !queue.IsProcessingStatus(status) {
			t.Fatalf("%s should count as processing", status)
		}
	}
	if queue.IsProcessingStatus(queue.StatusPending) {
		t.Fatal("pending is not a processing status")
	}
}

func TestParseStatusAndStage(t *testing.T) {
	if status, ok := queue.ParseStatus(" Ready "); !ok || status != queue.StatusReady {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("bogus"); ok {
		t.Fatal("expected unknown status rejected")
	}
	if stg, ok := queue.ParseStage("VIDEO"); !ok || stg != queue.StageVideo {
		t.Fatalf("ParseStage = %q, %v", stg, ok)
	}
	if _, ok := queue.ParseStage("mystery"); ok {
		t.Fatal("expected unknown stage rejected")
	}
}

func TestHeartbeatStale(t *testing.T) {
	now := time.Now()
	hb := queue.WorkerHeartbeat{LastSeen: now.Add(-2 * time.Minute)}
	if !hb.Stale(time.Minute, now) {
		t.Fatal("expected stale heartbeat")
	}
	if hb.Stale(5*time.Minute, now) {
		t.Fatal("expected fresh heartbeat")
	}
}
