package client

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sbai-works/drawctl/iox"
	"github.com/sbai-works/drawctl/metrics"
	"github.com/sbai-works/drawctl/types"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *metrics.Collector) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	collector := metrics.NewCollector()
	c, err := New(Config{BaseURL: ts.URL + "/api"}, collector)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(iox.CloseFunc(c))
	return c, collector
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("expected error for empty base URL")
	}
}

func TestUploadSuccess(t *testing.T) {
	var gotField, gotName string
	c, collector := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer iox.DiscardClose(file)
		gotField = "file"
		gotName = header.Filename

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"session_id": "abc123",
			"file_name": "drawing1.dxf",
			"file_type": "dxf",
			"status": "processing",
			"message": "파일 업로드 완료. 처리 중입니다. (dxf)"
		}`))
	}))

	path := writeTempFile(t, "drawing1.dxf", "0\nSECTION")
	result, err := c.Upload(t.Context(), path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if gotField != "file" || gotName != "drawing1.dxf" {
		t.Errorf("multipart form = field %q name %q", gotField, gotName)
	}
	if result.SessionID != "abc123" || result.FileType != types.FileTypeDXF {
		t.Errorf("result = %+v", result)
	}
	if result.Status != types.StatusProcessing {
		t.Errorf("status = %q, want processing", result.Status)
	}

	if s := collector.Snapshot(); s.UploadsCompleted != 1 || s.UploadsFailed != 0 {
		t.Errorf("upload counters = %+v", s)
	}
}

func TestUploadRejectedDecodesDetail(t *testing.T) {
	c, collector := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "지원하지 않는 파일 형식입니다: notes.txt"}`))
	}))

	path := writeTempFile(t, "notes.txt", "hello")
	_, err := c.Upload(t.Context(), path)

	var rejected *UploadRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want *UploadRejectedError", err)
	}
	if rejected.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rejected.Code)
	}
	if rejected.Detail != "지원하지 않는 파일 형식입니다: notes.txt" {
		t.Errorf("detail = %q", rejected.Detail)
	}

	if s := collector.Snapshot(); s.UploadsFailed != 1 {
		t.Errorf("UploadsFailed = %d, want 1", s.UploadsFailed)
	}
}

func TestUploadNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close() // connection refused from here on

	c, err := New(Config{BaseURL: ts.URL + "/api"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	path := writeTempFile(t, "drawing1.dxf", "data")
	_, err = c.Upload(t.Context(), path)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
	if netErr.Surface != SurfaceUpload {
		t.Errorf("surface = %q, want upload", netErr.Surface)
	}
	if netErr.UserMessage() == "" {
		t.Error("empty user message")
	}
}

func TestGetResults(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/results/abc123" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"session_id": "abc123",
			"status": "completed",
			"file_type": "pid",
			"file_name": "drawing1.pdf",
			"files": [{"name": "valve_list.xlsx", "path": "/static/outputs/abc123/valve_list.xlsx", "size": 12345}],
			"images": [],
			"excel_files": [],
			"json_files": [],
			"preview": {"valves": {"total": 42, "by_type": {"gate": 42}, "by_size": {}, "sample": []}}
		}`))
	}))

	doc, err := c.GetResults(t.Context(), "abc123")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if doc.Status != types.StatusCompleted {
		t.Errorf("status = %q", doc.Status)
	}
	if doc.Preview.Valves == nil || doc.Preview.Valves.Total != 42 {
		t.Errorf("valve preview = %+v", doc.Preview.Valves)
	}
	if len(doc.Files) != 1 || doc.Files[0].Size != 12345 {
		t.Errorf("files = %+v", doc.Files)
	}
}

func TestGetResultsNotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "세션을 찾을 수 없습니다"}`))
	}))

	_, err := c.GetResults(t.Context(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestGetResultsAnyNon2xxIsNotFound(t *testing.T) {
	// The API exposes no finer-grained branching on this path.
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.GetResults(t.Context(), "abc123")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestListSessions(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessions": [
			{"id": "abc123", "created_at": "2026-08-28T10:00:00", "file_type": "dxf", "file_name": "drawing1.dxf", "status": "completed"},
			{"id": "def456", "created_at": "2026-08-27T09:00:00", "file_type": "pipe_bom", "file_name": "bom.pdf", "status": "processing"}
		]}`))
	}))

	sessions, err := c.ListSessions(t.Context())
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "abc123" {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestChat(t *testing.T) {
	c, collector := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !bytes.Contains(body, []byte(`"session_id":"abc123"`)) {
			t.Errorf("body = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": "총 42개의 밸브가 있습니다.",
			"sql_query": "SELECT COUNT(*) FROM valves",
			"data": [{"count": 42}]
		}`))
	}))

	reply, err := c.Chat(t.Context(), "abc123", "전체 밸브 수는 몇 개인가요?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Response != "총 42개의 밸브가 있습니다." {
		t.Errorf("response = %q", reply.Response)
	}
	if reply.SQLQuery != "SELECT COUNT(*) FROM valves" {
		t.Errorf("sql = %q", reply.SQLQuery)
	}
	if len(reply.Data) != 1 {
		t.Errorf("data = %+v", reply.Data)
	}

	if s := collector.Snapshot(); s.ChatSends != 1 {
		t.Errorf("ChatSends = %d, want 1", s.ChatSends)
	}
}

func TestDownloadArchiveAndSingleFile(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/download/abc123":
			_, _ = w.Write([]byte("zip-bytes"))
		case "/api/download/abc123/valve_list.xlsx":
			_, _ = w.Write([]byte("xlsx-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	var buf bytes.Buffer
	n, err := c.Download(t.Context(), "abc123", "", &buf)
	if err != nil {
		t.Fatalf("download archive: %v", err)
	}
	if n != int64(len("zip-bytes")) || buf.String() != "zip-bytes" {
		t.Errorf("archive = %q (%d bytes)", buf.String(), n)
	}

	buf.Reset()
	if _, err := c.Download(t.Context(), "abc123", "valve_list.xlsx", &buf); err != nil {
		t.Fatalf("download file: %v", err)
	}
	if buf.String() != "xlsx-bytes" {
		t.Errorf("file = %q", buf.String())
	}

	if _, err := c.Download(t.Context(), "missing", "", io.Discard); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network error", &NetworkError{Surface: SurfaceResults, Err: errors.New("refused")}, true},
		{"5xx status", &StatusError{Surface: SurfaceChat, Code: 502}, true},
		{"4xx status", &StatusError{Surface: SurfaceChat, Code: 400}, false},
		{"not found", ErrSessionNotFound, false},
		{"upload rejected", &UploadRejectedError{Code: 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetriable(tt.err); got != tt.want {
				t.Errorf("IsRetriable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
