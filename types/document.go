// Package types defines the wire and domain types shared across drawctl.
//
// All JSON shapes mirror the backend API exactly; the client never invents
// fields. Msgpack tags exist only on types persisted by the completed-document
// cache.
package types

// FileEntry references a downloadable artifact produced for a session.
type FileEntry struct {
	Name string `json:"name" msgpack:"name"`
	Path string `json:"path" msgpack:"path"`
	Size int64  `json:"size" msgpack:"size"`
}

// ResultDocument is the full result view for one session as returned by
// GET /results/{id}. Status is the sole driver of polling and branching.
// Once Status is terminal the document is immutable; the client re-fetches
// only on explicit user refresh.
type ResultDocument struct {
	SessionID  string      `json:"session_id" msgpack:"session_id"`
	Status     Status      `json:"status" msgpack:"status"`
	FileType   FileType    `json:"file_type" msgpack:"file_type"`
	FileName   string      `json:"file_name" msgpack:"file_name"`
	Files      []FileEntry `json:"files" msgpack:"files"`
	Images     []FileEntry `json:"images" msgpack:"images"`
	ExcelFiles []FileEntry `json:"excel_files" msgpack:"excel_files"`
	JSONFiles  []FileEntry `json:"json_files" msgpack:"json_files"`
	Preview    Preview     `json:"preview" msgpack:"preview"`
}

// Preview is the loosely-typed union of optional extraction sub-documents.
// Any subset may be absent; at most one BOM-shaped variant is expected to
// be populated per session.
type Preview struct {
	Valves     *ValvePreview   `json:"valves,omitempty" msgpack:"valves,omitempty"`
	PipeBom    *PipeBomPreview `json:"pipe_bom,omitempty" msgpack:"pipe_bom,omitempty"`
	VlmBom     *VlmBomPreview  `json:"vlm_bom,omitempty" msgpack:"vlm_bom,omitempty"`
	Dimensions []Dimension     `json:"dimensions,omitempty" msgpack:"dimensions,omitempty"`
	Symbols    *SymbolPreview  `json:"symbols,omitempty" msgpack:"symbols,omitempty"`
	VlmStats   map[string]any  `json:"vlm_stats,omitempty" msgpack:"vlm_stats,omitempty"`
}

// BomKind identifies which BOM-shaped variant a document carries.
// Resolved once per document instead of shape-sniffed at every render site.
type BomKind int

const (
	BomNone BomKind = iota
	BomLegacy
	BomVLM
)

// BomKind resolves the BOM variant for this preview. The VLM variant wins
// when both are present, matching the original viewer's preference for the
// richer extraction path.
func (p Preview) BomKind() BomKind {
	switch {
	case p.VlmBom != nil && len(p.VlmBom.Pages) > 0:
		return BomVLM
	case p.PipeBom != nil && len(p.PipeBom.Pages) > 0:
		return BomLegacy
	default:
		return BomNone
	}
}

// ValvePreview summarizes valves extracted from a P&ID.
type ValvePreview struct {
	Total  int              `json:"total" msgpack:"total"`
	ByType map[string]int   `json:"by_type" msgpack:"by_type"`
	BySize map[string]int   `json:"by_size" msgpack:"by_size"`
	Sample []map[string]any `json:"sample" msgpack:"sample"`
}

// Dimension is one extracted DXF dimension record.
type Dimension struct {
	Value float64 `json:"value" msgpack:"value"`
	Text  string  `json:"text,omitempty" msgpack:"text,omitempty"`
	Type  string  `json:"type,omitempty" msgpack:"type,omitempty"`
}

// SymbolPreview summarizes the P&ID legend symbols.
type SymbolPreview struct {
	Total      int              `json:"total" msgpack:"total"`
	ByCategory map[string]int   `json:"by_category" msgpack:"by_category"`
	Categories []string         `json:"categories" msgpack:"categories"`
	Sample     []map[string]any `json:"sample" msgpack:"sample"`
}

// PipeBomPreview is the legacy text-extraction BOM summary plus all pages.
type PipeBomPreview struct {
	TotalPages    int       `json:"total_pages" msgpack:"total_pages"`
	ContentPages  int       `json:"content_pages" msgpack:"content_pages"`
	TotalPieces   int       `json:"total_pieces" msgpack:"total_pieces"`
	TotalWelds    int       `json:"total_welds" msgpack:"total_welds"`
	TotalLengthMm float64   `json:"total_length_mm" msgpack:"total_length_mm"`
	LooseCount    int       `json:"loose_count" msgpack:"loose_count"`
	Pages         []BomPage `json:"pages" msgpack:"pages"`
}

// BomPage is one page of legacy text-extracted BOM data, keyed by a
// 1-based page number. Pages arrive already ordered.
type BomPage struct {
	Page         int       `json:"page" msgpack:"page"`
	PipePieces   []string  `json:"pipe_pieces" msgpack:"pipe_pieces"`
	WeldCount    int       `json:"weld_count" msgpack:"weld_count"`
	DimensionsMm []float64 `json:"dimensions_mm" msgpack:"dimensions_mm"`
	HasLoose     bool      `json:"has_loose" msgpack:"has_loose"`
	IsCover      bool      `json:"is_cover,omitempty" msgpack:"is_cover,omitempty"`
}

// VlmBomPreview is the VLM analysis summary plus all per-page records.
type VlmBomPreview struct {
	TotalPages       int            `json:"total_pages" msgpack:"total_pages"`
	TotalPipePieces  int            `json:"total_pipe_pieces" msgpack:"total_pipe_pieces"`
	TotalComponents  int            `json:"total_components" msgpack:"total_components"`
	TotalWeldPoints  int            `json:"total_weld_points" msgpack:"total_weld_points"`
	TotalBomItems    int            `json:"total_bom_items" msgpack:"total_bom_items"`
	TotalDimensions  int            `json:"total_dimensions" msgpack:"total_dimensions"`
	TotalCutLengths  int            `json:"total_cut_lengths" msgpack:"total_cut_lengths"`
	ValveSummary     map[string]int `json:"valve_summary" msgpack:"valve_summary"`
	FittingSummary   map[string]int `json:"fitting_summary" msgpack:"fitting_summary"`
	UniqueLineNos    []string       `json:"unique_line_nos" msgpack:"unique_line_nos"`
	Pages            []VlmPageData  `json:"pages" msgpack:"pages"`
}

// VlmPageData is one page of VLM-extracted BOM data, keyed by a 1-based
// page number. Pages arrive already ordered. IsCover marks a page to be
// visually de-emphasized, not excluded from counts.
type VlmPageData struct {
	Page            int            `json:"page" msgpack:"page"`
	DrawingNumber   string         `json:"drawing_number,omitempty" msgpack:"drawing_number,omitempty"`
	LineNo          string         `json:"line_no,omitempty" msgpack:"line_no,omitempty"`
	PipeNo          string         `json:"pipe_no,omitempty" msgpack:"pipe_no,omitempty"`
	LineDescription string         `json:"line_description,omitempty" msgpack:"line_description,omitempty"`
	PipePieces      []PipePiece    `json:"pipe_pieces,omitempty" msgpack:"pipe_pieces,omitempty"`
	Components      []Component    `json:"components,omitempty" msgpack:"components,omitempty"`
	WeldPoints      []WeldPoint    `json:"weld_points,omitempty" msgpack:"weld_points,omitempty"`
	BomTable        []BomLineItem  `json:"bom_table,omitempty" msgpack:"bom_table,omitempty"`
	CutLengths      []CutLength    `json:"cut_lengths,omitempty" msgpack:"cut_lengths,omitempty"`
	DimensionsMm    []VlmDimension `json:"dimensions_mm,omitempty" msgpack:"dimensions_mm,omitempty"`
	TotalWeldCount  int            `json:"total_weld_count,omitempty" msgpack:"total_weld_count,omitempty"`
	HasLooseParts   bool           `json:"has_loose_parts,omitempty" msgpack:"has_loose_parts,omitempty"`
	Notes           string         `json:"notes,omitempty" msgpack:"notes,omitempty"`
	Confidence      float64        `json:"confidence,omitempty" msgpack:"confidence,omitempty"`
	IsCover         bool           `json:"is_cover,omitempty" msgpack:"is_cover,omitempty"`
	Error           string         `json:"error,omitempty" msgpack:"error,omitempty"`
}

// PipePiece is one pipe spool piece identified on a drawing.
type PipePiece struct {
	ID       string `json:"id" msgpack:"id"`
	Size     string `json:"size,omitempty" msgpack:"size,omitempty"`
	Schedule string `json:"schedule,omitempty" msgpack:"schedule,omitempty"`
	Material string `json:"material,omitempty" msgpack:"material,omitempty"`
}

// Component is one valve, fitting, flange or support on a drawing.
type Component struct {
	Type        string `json:"type" msgpack:"type"`
	Subtype     string `json:"subtype,omitempty" msgpack:"subtype,omitempty"`
	Size        string `json:"size,omitempty" msgpack:"size,omitempty"`
	Description string `json:"description,omitempty" msgpack:"description,omitempty"`
	Tag         string `json:"tag,omitempty" msgpack:"tag,omitempty"`
	Quantity    int    `json:"quantity,omitempty" msgpack:"quantity,omitempty"`
}

// WeldPoint is one weld marker (shop or field).
type WeldPoint struct {
	ID   string `json:"id" msgpack:"id"`
	Type string `json:"type,omitempty" msgpack:"type,omitempty"`
}

// BomLineItem is one row of the drawing's BOM table.
type BomLineItem struct {
	LetterCode   string  `json:"letter_code,omitempty" msgpack:"letter_code,omitempty"`
	Quantity     string  `json:"quantity,omitempty" msgpack:"quantity,omitempty"`
	SizeInches   string  `json:"size_inches,omitempty" msgpack:"size_inches,omitempty"`
	Description  string  `json:"description,omitempty" msgpack:"description,omitempty"`
	MaterialSpec string  `json:"material_spec,omitempty" msgpack:"material_spec,omitempty"`
	WeightKg     float64 `json:"weight_kg,omitempty" msgpack:"weight_kg,omitempty"`
	Remarks      string  `json:"remarks,omitempty" msgpack:"remarks,omitempty"`
}

// CutLength is one pipe cut from the cut-length table.
type CutLength struct {
	CutNo    int     `json:"cut_no" msgpack:"cut_no"`
	LengthMm float64 `json:"length_mm" msgpack:"length_mm"`
}

// VlmDimension is one measured run between two weld points.
type VlmDimension struct {
	FromPoint string  `json:"from_point,omitempty" msgpack:"from_point,omitempty"`
	ToPoint   string  `json:"to_point,omitempty" msgpack:"to_point,omitempty"`
	LengthMm  float64 `json:"length_mm" msgpack:"length_mm"`
	Direction string  `json:"direction,omitempty" msgpack:"direction,omitempty"`
}

// Session returns the authoritative session record embedded in the document.
func (d *ResultDocument) Session() UploadSession {
	return UploadSession{
		ID:       d.SessionID,
		FileType: d.FileType,
		FileName: d.FileName,
		Status:   d.Status,
	}
}
