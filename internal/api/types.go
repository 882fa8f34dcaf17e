package api

import (
	"time"

	"clipforge/internal/queue"
)

// JobView is the wire representation of a queue job.
type JobView struct {
	ID                  string     `json:"id"`
	Topic               string     `json:"topic"`
	Status              string     `json:"status"`
	Title               string     `json:"title,omitempty"`
	Description         string     `json:"description,omitempty"`
	Tags                []string   `json:"tags,omitempty"`
	Script              string     `json:"script,omitempty"`
	VoiceoverRef        string     `json:"voiceover,omitempty"`
	VideoRef            string     `json:"video,omitempty"`
	YouTubeID           string     `json:"youtube_id,omitempty"`
	YouTubeURL          string     `json:"youtube_url,omitempty"`
	ErrorMessage        string     `json:"error,omitempty"`
	ClaimedBy           string     `json:"claimed_by,omitempty"`
	ActionNeeded        string     `json:"action_needed,omitempty"`
	OriginalAction      string     `json:"original_action,omitempty"`
	SubStatus           string     `json:"sub_status,omitempty"`
	MissingDependencies []string   `json:"missing_dependencies,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// FromJob converts a queue job into its wire view.
func FromJob(job *queue.Job) JobView {
	return JobView{
		ID:                  job.ID,
		Topic:               job.Topic,
		Status:              string(job.Status),
		Title:               job.Title,
		Description:         job.Description,
		Tags:                job.Tags,
		Script:              job.Script,
		VoiceoverRef:        job.VoiceoverRef,
		VideoRef:            job.VideoRef,
		YouTubeID:           job.YouTubeID,
		YouTubeURL:          job.YouTubeURL,
		ErrorMessage:        job.ErrorMessage,
		ClaimedBy:           job.ClaimedBy,
		ActionNeeded:        string(job.Meta.ActionNeeded),
		OriginalAction:      string(job.Meta.OriginalAction),
		SubStatus:           job.Meta.SubStatus,
		MissingDependencies: job.Meta.MissingDependencies,
		CreatedAt:           job.CreatedAt,
		UpdatedAt:           job.UpdatedAt,
		StartedAt:           job.StartedAt,
		CompletedAt:         job.CompletedAt,
	}
}

// WorkerView is the wire representation of a worker heartbeat.
type WorkerView struct {
	Name     string    `json:"name"`
	Stage    string    `json:"stage"`
	PID      int       `json:"pid"`
	Hostname string    `json:"hostname"`
	LastSeen time.Time `json:"last_seen"`
	Stale    bool      `json:"stale"`
}

// SubmitRequest creates a new job.
type SubmitRequest struct {
	Topic   string `json:"topic"`
	Chain   bool   `json:"chain"`
	Privacy string `json:"privacy,omitempty"`
}

// TriggerRequest routes an idle job to a stage.
type TriggerRequest struct {
	Stage      string `json:"stage"`
	Regenerate bool   `json:"regenerate,omitempty"`
}

// StatusResponse summarizes the deployment.
type StatusResponse struct {
	QueueDBPath string         `json:"queue_db_path"`
	Queue       map[string]int `json:"queue"`
	Workers     int            `json:"workers"`
}
