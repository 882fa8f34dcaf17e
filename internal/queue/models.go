package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of a video job.
type Status string

const (
	StatusPending           Status = "pending"
	StatusGeneratingScript  Status = "generating_script"
	StatusCreatingVoiceover Status = "creating_voiceover"
	StatusRenderingVideo    Status = "rendering_video"
	StatusUploading         Status = "uploading"
	StatusReady             Status = "ready"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusGeneratingScript,
	StatusCreatingVoiceover,
	StatusRenderingVideo,
	StatusUploading,
	StatusReady,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusGeneratingScript:  {},
	StatusCreatingVoiceover: {},
	StatusRenderingVideo:    {},
	StatusUploading:         {},
}

// Stage identifies one pipeline phase.
type Stage string

const (
	StageScript    Stage = "script"
	StageVoiceover Stage = "voiceover"
	StageVideo     Stage = "video"
	StagePublish   Stage = "publish"
)

// PipelineOrder is the fixed stage order for auto-chained jobs. Publish is
// deliberately absent: it is never reached without an explicit trigger.
var PipelineOrder = []Stage{StageScript, StageVoiceover, StageVideo}

var allStages = []Stage{StageScript, StageVoiceover, StageVideo, StagePublish}

// ProcessingStatus returns the in-progress status a worker writes when it
// claims a job for this stage.
func (s Stage) ProcessingStatus() Status {
	switch s {
	case StageScript:
		return StatusGeneratingScript
	case StageVoiceover:
		return StatusCreatingVoiceover
	case StageVideo:
		return StatusRenderingVideo
	case StagePublish:
		return StatusUploading
	default:
		return ""
	}
}

// Action returns the routing signal that marks a job as awaiting this stage.
func (s Stage) Action() Action {
	switch s {
	case StageScript:
		return ActionGenerateScript
	case StageVoiceover:
		return ActionGenerateVoiceover
	case StageVideo:
		return ActionCreateVideo
	case StagePublish:
		return ActionPostToYouTube
	default:
		return ""
	}
}

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	for _, stg := range allStages {
		if stg == normalized {
			return stg, true
		}
	}
	return "", false
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Ready      int
	Failed     int
	Completed  int
}

// Job represents a video job persisted in SQLite.
//
// Payload fields (Script through YouTubeURL) accumulate over the job's life
// and are write-once: a stage must not overwrite a populated field unless the
// job carries an explicit regenerate request.
type Job struct {
	ID           string
	Topic        string
	Status       Status
	Script       string
	Title        string
	Description  string
	Tags         []string
	VoiceoverRef string
	VideoRef     string
	YouTubeID    string
	YouTubeURL   string
	ErrorMessage string
	ClaimedBy    string
	Meta         Metadata
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects a claimed, in-flight stage.
func (j *Job) IsProcessing() bool {
	return IsProcessingStatus(j.Status)
}

// IsProcessingStatus reports whether a status reflects a claimed, in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status is absorbing.
func IsTerminal(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
}

// WorkerHeartbeat is the best-effort liveness record each worker process
// upserts on its own timer.
type WorkerHeartbeat struct {
	WorkerName string
	Stage      Stage
	PID        int
	Hostname   string
	LastSeen   time.Time
}

// Stale reports whether the heartbeat is older than the cutoff.
func (h WorkerHeartbeat) Stale(cutoff time.Duration, now time.Time) bool {
	return now.Sub(h.LastSeen) > cutoff
}

// PublishRecord is an append-only log entry written after a successful upload.
type PublishRecord struct {
	ID          int64
	JobID       string
	YouTubeID   string
	YouTubeURL  string
	Title       string
	PublishedAt time.Time
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeTags(data string) []string {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return nil
	}
	return tags
}
