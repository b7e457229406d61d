package types

import "strings"

// Status is the processing state of a session, assigned by the backend.
// The closed set below drives all client branching; error states are an
// open family of strings carrying the "error" prefix (e.g. "error: timeout").
type Status string

const (
	// StatusProcessing means the initial extraction pass is running.
	StatusProcessing Status = "processing"

	// StatusVLMAnalyzing means the vision-language model pass is running.
	// Legacy extraction data may already be present in the preview.
	StatusVLMAnalyzing Status = "vlm_analyzing"

	// StatusCompleted means all extraction passes finished.
	StatusCompleted Status = "completed"
)

// Terminal reports whether polling must stop for this status.
// Completed and any error-prefixed status are terminal.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s.Errored()
}

// Active reports whether the backend is still working on the session.
func (s Status) Active() bool {
	return s == StatusProcessing || s == StatusVLMAnalyzing
}

// Errored reports whether the status is in the error family.
func (s Status) Errored() bool {
	return strings.HasPrefix(string(s), "error")
}

// Label returns the Korean display label used across all surfaces,
// matching the labels of the original web frontend.
func (s Status) Label() string {
	switch {
	case s == StatusProcessing:
		return "처리 중"
	case s == StatusVLMAnalyzing:
		return "VLM 분석 중"
	case s == StatusCompleted:
		return "완료"
	case s.Errored():
		return "오류"
	default:
		return string(s)
	}
}
