package types

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// ChatReply is the backend's answer to one chat question.
// SQLQuery and Data are optional; Data rows are arbitrary key/value
// objects produced by the generated query.
type ChatReply struct {
	Response string           `json:"response"`
	SQLQuery string           `json:"sql_query,omitempty"`
	Data     []map[string]any `json:"data,omitempty"`
}

// ChatMessage is one append-only transcript entry. Bot messages may carry
// the generated query string and a tabular result set; the full row set is
// retained here regardless of any display cap.
type ChatMessage struct {
	Role     Role
	Content  string
	SQLQuery string
	Table    *Table
}

// Table is a tabular chat result: an explicit ordered column list plus
// rows of loosely-typed cells, rather than shapes inferred from the first
// row's keys at each render site.
type Table struct {
	Columns []string
	Rows    [][]any
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
