package types

// FileType classifies an uploaded drawing. Detection happens server-side
// from the file name; the client only carries the value through.
type FileType string

const (
	// FileTypeDXF is an AutoCAD DXF drawing (dimension extraction).
	FileTypeDXF FileType = "dxf"

	// FileTypePID is a P&ID PDF (valve list + symbol legend extraction).
	FileTypePID FileType = "pid"

	// FileTypePipeBOM is a pipe bill-of-materials PDF.
	FileTypePipeBOM FileType = "pipe_bom"

	// FileTypePDF is a generic PDF where the backend tries both paths.
	FileTypePDF FileType = "pdf"
)

// UploadSession is one uploaded drawing and its processing state.
// The copy embedded in a fetched ResultDocument is authoritative and
// supersedes the one built from the upload response.
type UploadSession struct {
	ID        string   `json:"id" msgpack:"id"`
	CreatedAt string   `json:"created_at" msgpack:"created_at"`
	FileType  FileType `json:"file_type" msgpack:"file_type"`
	FileName  string   `json:"file_name" msgpack:"file_name"`
	Status    Status   `json:"status" msgpack:"status"`
}

// UploadResult is the backend's response to a successful upload.
type UploadResult struct {
	SessionID string   `json:"session_id"`
	FileName  string   `json:"file_name"`
	FileType  FileType `json:"file_type"`
	Status    Status   `json:"status"`
	Message   string   `json:"message"`
}

// Session converts the upload response into a session record for the
// in-memory history list.
func (r UploadResult) Session(createdAt string) UploadSession {
	return UploadSession{
		ID:        r.SessionID,
		CreatedAt: createdAt,
		FileType:  r.FileType,
		FileName:  r.FileName,
		Status:    r.Status,
	}
}
