package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sbai-works/drawctl/types"
)

// ErrUploadInFlight is returned when an upload is attempted while another
// one is outstanding. Exactly one file uploads at a time.
var ErrUploadInFlight = errors.New("이미 업로드가 진행 중입니다")

// Backend issues the upload request. Satisfied by *client.Client.
type Backend interface {
	Upload(ctx context.Context, path string) (*types.UploadResult, error)
}

// Uploader wraps the upload call with a single-flight lock and records
// accepted sessions in the history store. The control returns to idle
// whether the upload succeeded or failed.
type Uploader struct {
	mu       sync.Mutex
	inFlight bool
	backend  Backend
	store    *Store
	now      func() time.Time
}

// NewUploader creates an uploader feeding the given store.
func NewUploader(backend Backend, store *Store) *Uploader {
	return &Uploader{backend: backend, store: store, now: time.Now}
}

// InFlight reports whether an upload is outstanding.
func (u *Uploader) InFlight() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inFlight
}

// Upload sends one file. A second call while one is in flight returns
// ErrUploadInFlight without issuing a request. On success the new session
// is prepended to the history; on failure the history is untouched.
func (u *Uploader) Upload(ctx context.Context, path string) (*types.UploadResult, error) {
	u.mu.Lock()
	if u.inFlight {
		u.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	u.inFlight = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.inFlight = false
		u.mu.Unlock()
	}()

	result, err := u.backend.Upload(ctx, path)
	if err != nil {
		return nil, err
	}

	if u.store != nil {
		u.store.Prepend(result.Session(u.now().Format(time.RFC3339)))
	}
	return result, nil
}
