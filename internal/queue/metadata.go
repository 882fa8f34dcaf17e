package queue

import (
	"encoding/json"
	"strings"
)

// Action is the routing signal that tells a stage worker a job is waiting for
// it. ActionRunAll is the chain sentinel: it means "keep auto-advancing
// through the remaining stages".
type Action string

const (
	ActionGenerateScript    Action = "generate_script"
	ActionGenerateVoiceover Action = "generate_voiceover"
	ActionCreateVideo       Action = "create_video"
	ActionPostToYouTube     Action = "post_to_youtube"
	ActionRunAll            Action = "run_all"
)

var allActions = []Action{
	ActionGenerateScript,
	ActionGenerateVoiceover,
	ActionCreateVideo,
	ActionPostToYouTube,
	ActionRunAll,
}

// ParseAction converts a string into a known Action.
func ParseAction(value string) (Action, bool) {
	normalized := Action(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	for _, action := range allActions {
		if action == normalized {
			return action, true
		}
	}
	return "", false
}

// Metadata carries the pipeline-control signals that ride along with a job.
//
// ActionNeeded routes the job to the stage that should claim it next.
// OriginalAction preserves the chain sentinel across stage transitions so a
// later stage can tell whether to keep chaining; only the final stage clears
// it. MissingDependencies and SubStatus are diagnostic only and are never read
// by the claim protocol.
type Metadata struct {
	ActionNeeded        Action   `json:"action_needed,omitempty"`
	OriginalAction      Action   `json:"original_action,omitempty"`
	MissingDependencies []string `json:"missing_dependencies,omitempty"`
	SubStatus           string   `json:"sub_status,omitempty"`
	Privacy             string   `json:"privacy_status,omitempty"`
	Regenerate          bool     `json:"regenerate,omitempty"`
}

// ChainRequested reports whether the chain sentinel is present in either the
// current or the original action field.
func (m Metadata) ChainRequested() bool {
	return m.ActionNeeded == ActionRunAll || m.OriginalAction == ActionRunAll
}

// ClearRouting removes the routing signals and the diagnostics that only make
// sense while the job is awaiting a stage.
func (m *Metadata) ClearRouting() {
	m.ActionNeeded = ""
	m.OriginalAction = ""
	m.MissingDependencies = nil
	m.SubStatus = ""
}

// PrivacyOrDefault returns the configured privacy status, defaulting to
// private so a fresh upload is never public by accident.
func (m Metadata) PrivacyOrDefault() string {
	privacy := strings.TrimSpace(m.Privacy)
	if privacy == "" {
		return "private"
	}
	return privacy
}

func encodeMissing(missing []string) (string, error) {
	if len(missing) == 0 {
		return "", nil
	}
	data, err := json.Marshal(missing)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMissing(data string) []string {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	var missing []string
	if err := json.Unmarshal([]byte(data), &missing); err != nil {
		return nil
	}
	return missing
}
