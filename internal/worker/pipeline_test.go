package worker

import (
	"context"
	"strings"
	"testing"

	"clipforge/internal/queue"
	"clipforge/internal/stage"
	"clipforge/internal/testsupport"
)

// pipelineHandler is a stage stub with real dependency checks, so a chain job
// can be walked through every stage over one shared store the way separate
// worker processes would.
type pipelineHandler struct {
	stg   queue.Stage
	deps  func(job *queue.Job) []string
	runFn func(job *queue.Job)
	runs  int
}

func (h *pipelineHandler) Stage() queue.Stage { return h.stg }

func (h *pipelineHandler) CheckDependencies(job *queue.Job) (bool, []string) {
	if h.deps == nil {
		return true, nil
	}
	missing := h.deps(job)
	return len(missing) == 0, missing
}

func (h *pipelineHandler) Run(_ context.Context, job *queue.Job) error {
	h.runs++
	if h.runFn != nil {
		h.runFn(job)
	}
	return nil
}

func (h *pipelineHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(string(h.stg))
}

func stepWorker(t *testing.T, w *Worker) {
	t.Helper()
	if err := w.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}
	w.dispatched.Wait()
}

func reload(t *testing.T, store *queue.Store, id string) *queue.Job {
	t.Helper()
	job, err := store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job == nil {
		t.Fatalf("job %s disappeared", id)
	}
	return job
}

func TestChainJobTravelsScriptToPublishedEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	script := &pipelineHandler{
		stg: queue.StageScript,
		deps: func(job *queue.Job) []string {
			if strings.TrimSpace(job.Topic) == "" {
				return []string{"topic"}
			}
			return nil
		},
		runFn: func(job *queue.Job) {
			job.Script = "narration about " + job.Topic
			job.Title = "Deep Ocean Facts"
			job.Description = "What lives below."
			job.Tags = []string{"ocean"}
		},
	}
	voiceover := &pipelineHandler{
		stg: queue.StageVoiceover,
		deps: func(job *queue.Job) []string {
			if job.Script == "" {
				return []string{"script"}
			}
			return nil
		},
		runFn: func(job *queue.Job) { job.VoiceoverRef = "/media/voiceovers/" + job.ID + ".mp3" },
	}
	video := &pipelineHandler{
		stg: queue.StageVideo,
		deps: func(job *queue.Job) []string {
			var missing []string
			if job.Script == "" {
				missing = append(missing, "script")
			}
			if job.VoiceoverRef == "" {
				missing = append(missing, "voiceover_ref")
			}
			return missing
		},
		runFn: func(job *queue.Job) { job.VideoRef = "/media/renders/" + job.ID + ".mp4" },
	}
	publish := &pipelineHandler{
		stg: queue.StagePublish,
		deps: func(job *queue.Job) []string {
			var missing []string
			if job.Title == "" {
				missing = append(missing, "title")
			}
			if job.VideoRef == "" {
				missing = append(missing, "video_ref")
			}
			return missing
		},
		runFn: func(job *queue.Job) {
			job.YouTubeID = "yt-1"
			job.YouTubeURL = "https://www.youtube.com/watch?v=yt-1"
		},
	}

	scriptWorker := New(store, script, nil, Options{Name: "script-w"})
	voiceoverWorker := New(store, voiceover, nil, Options{Name: "voiceover-w"})
	videoWorker := New(store, video, nil, Options{Name: "video-w"})
	publishWorker := New(store, publish, nil, Options{Name: "publish-w"})

	job := testsupport.NewChainJob(t, store, "the deep ocean")

	// Script hop: payload lands, chain re-asserted toward voiceover.
	stepWorker(t, scriptWorker)
	got := reload(t, store, job.ID)
	if got.Script == "" || got.Title == "" {
		t.Fatalf("script payload missing: %+v", got)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("after script: status = %s", got.Status)
	}
	if got.Meta.ActionNeeded != queue.ActionGenerateVoiceover || got.Meta.OriginalAction != queue.ActionRunAll {
		t.Fatalf("after script: actions = %q %q", got.Meta.ActionNeeded, got.Meta.OriginalAction)
	}
	if got.ClaimedBy != "" {
		t.Fatalf("after script: claim not released: %q", got.ClaimedBy)
	}

	// Voiceover hop.
	stepWorker(t, voiceoverWorker)
	got = reload(t, store, job.ID)
	if got.VoiceoverRef == "" {
		t.Fatal("voiceover ref missing")
	}
	if got.Status != queue.StatusPending || got.Meta.ActionNeeded != queue.ActionCreateVideo {
		t.Fatalf("after voiceover: status=%s action=%q", got.Status, got.Meta.ActionNeeded)
	}
	if got.Meta.OriginalAction != queue.ActionRunAll {
		t.Fatalf("after voiceover: sentinel = %q", got.Meta.OriginalAction)
	}

	// Video hop: job parks at ready, no publish hint, sentinel preserved.
	stepWorker(t, videoWorker)
	got = reload(t, store, job.ID)
	if got.VideoRef == "" {
		t.Fatal("video ref missing")
	}
	if got.Status != queue.StatusReady {
		t.Fatalf("after video: status = %s", got.Status)
	}
	if got.Meta.ActionNeeded != "" {
		t.Fatalf("after video: publish must not be auto-triggered, action = %q", got.Meta.ActionNeeded)
	}
	if got.Meta.OriginalAction != queue.ActionRunAll {
		t.Fatalf("after video: chain sentinel dropped at the park, got %q", got.Meta.OriginalAction)
	}

	// A polling publish worker must not touch the parked job.
	stepWorker(t, publishWorker)
	if publish.runs != 0 {
		t.Fatalf("publish ran %d times without an explicit trigger", publish.runs)
	}
	got = reload(t, store, job.ID)
	if got.Status != queue.StatusReady {
		t.Fatalf("parked job moved to %s without a trigger", got.Status)
	}

	// Explicit trigger is the only path into publish.
	routed, err := store.RequestStage(context.Background(), job.ID, queue.StagePublish, false)
	if err != nil || !routed {
		t.Fatalf("RequestStage: routed=%v err=%v", routed, err)
	}

	stepWorker(t, publishWorker)
	got = reload(t, store, job.ID)
	if publish.runs != 1 {
		t.Fatalf("publish runs = %d", publish.runs)
	}
	if got.Status != queue.StatusCompleted {
		t.Fatalf("after publish: status = %s", got.Status)
	}
	if got.YouTubeID != "yt-1" || got.YouTubeURL == "" {
		t.Fatalf("publish identity missing: %+v", got)
	}
	if got.Meta.ActionNeeded != "" || got.Meta.OriginalAction != "" {
		t.Fatalf("completed job must carry no routing: %+v", got.Meta)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed job missing completion timestamp")
	}

	if script.runs != 1 || voiceover.runs != 1 || video.runs != 1 {
		t.Fatalf("stage run counts: script=%d voiceover=%d video=%d", script.runs, voiceover.runs, video.runs)
	}
}
