// Package client implements the HTTP API client for the drawing-extraction
// backend.
//
// This file defines sentinel errors and error wrappers for classifying API
// failures. These enable callers to use errors.Is/errors.As for typed
// assertions rather than string matching. Each surface (upload, results,
// chat) maps transport failures to its own user-facing message.
package client

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound indicates the requested session id is unknown to the
// backend (404, or any non-2xx on a result fetch).
var ErrSessionNotFound = errors.New("세션을 찾을 수 없습니다")

// Surface identifies which client operation an error belongs to, so that
// transport failures render a distinct message per surface.
type Surface string

const (
	SurfaceUpload   Surface = "upload"
	SurfaceResults  Surface = "results"
	SurfaceChat     Surface = "chat"
	SurfaceSessions Surface = "sessions"
	SurfaceDownload Surface = "download"
)

// UploadRejectedError is a non-2xx upload response with a human-readable
// detail message decoded from the body. Non-fatal; the user may retry.
type UploadRejectedError struct {
	Code   int
	Detail string
}

func (e *UploadRejectedError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("업로드가 거부되었습니다 (status %d)", e.Code)
}

// StatusError is returned for non-2xx HTTP responses that carry no finer
// classification. Wrapping the status code lets callers distinguish
// retriable (5xx) from non-retriable (4xx) failures.
type StatusError struct {
	Surface Surface
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Surface, e.Code)
}

// NetworkError wraps a transport-level failure (connection refused, DNS,
// offline). Distinct from the HTTP-error path: the request never produced
// a response.
type NetworkError struct {
	Surface Surface
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Surface, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage returns the Korean fallback message for this surface,
// matching the per-surface messages of the original web frontend.
func (e *NetworkError) UserMessage() string {
	switch e.Surface {
	case SurfaceUpload:
		return "업로드 중 오류가 발생했습니다. 네트워크 연결을 확인해주세요."
	case SurfaceChat:
		return "죄송합니다. 응답을 가져오는 중 오류가 발생했습니다."
	default:
		return "결과를 불러오지 못했습니다. 네트워크 연결을 확인해주세요."
	}
}

// IsRetriable reports whether the error is a transient transport failure
// or a 5xx response. 4xx responses and session-not-found are never
// retriable.
func IsRetriable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500
	}
	return false
}
