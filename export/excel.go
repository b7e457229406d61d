// Package export writes a local XLSX summary workbook from a result
// document's preview, one sheet per populated section, so extraction
// results stay usable offline.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sbai-works/drawctl/iox"
	"github.com/sbai-works/drawctl/types"
)

const headerFill = "2F5496"

// Workbook writes the preview sections of doc to path.
// Returns the sheet names written, in order. A document with an empty
// preview yields an error instead of an empty workbook.
func Workbook(doc *types.ResultDocument, path string) ([]string, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document to export")
	}

	f := excelize.NewFile()
	defer iox.DiscardClose(f)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("workbook style: %w", err)
	}

	var sheets []string
	add := func(name string, write func(sheet string) error) error {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := write(name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		sheets = append(sheets, name)
		return nil
	}

	p := doc.Preview
	if p.Valves != nil {
		if err := add("Valve List", func(sheet string) error {
			return writeValves(f, sheet, headerStyle, p.Valves)
		}); err != nil {
			return nil, err
		}
	}
	if p.PipeBom != nil {
		if err := add("Pipe BOM", func(sheet string) error {
			return writePipeBom(f, sheet, headerStyle, p.PipeBom)
		}); err != nil {
			return nil, err
		}
	}
	if p.VlmBom != nil {
		if err := add("VLM BOM", func(sheet string) error {
			return writeVlmBom(f, sheet, headerStyle, p.VlmBom)
		}); err != nil {
			return nil, err
		}
	}
	if len(p.Dimensions) > 0 {
		if err := add("Dimensions", func(sheet string) error {
			return writeDimensions(f, sheet, headerStyle, p.Dimensions)
		}); err != nil {
			return nil, err
		}
	}
	if p.Symbols != nil {
		if err := add("Symbols", func(sheet string) error {
			return writeSymbols(f, sheet, headerStyle, p.Symbols)
		}); err != nil {
			return nil, err
		}
	}

	if len(sheets) == 0 {
		return nil, fmt.Errorf("session %s has no preview data to export", doc.SessionID)
	}

	// Drop the default sheet so the workbook opens on real data.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("save %s: %w", path, err)
	}
	return sheets, nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, start, &cells)
}

func writeValves(f *excelize.File, sheet string, style int, v *types.ValvePreview) error {
	if err := writeHeader(f, sheet, style, []string{"구분", "항목", "수량"}); err != nil {
		return err
	}
	row := 2
	if err := writeRow(f, sheet, row, []any{"합계", "밸브 총 수", v.Total}); err != nil {
		return err
	}
	row++
	for _, vt := range sortedKeys(v.ByType) {
		if err := writeRow(f, sheet, row, []any{"타입별", vt, v.ByType[vt]}); err != nil {
			return err
		}
		row++
	}
	for _, size := range sortedKeys(v.BySize) {
		if err := writeRow(f, sheet, row, []any{"사이즈별", size, v.BySize[size]}); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writePipeBom(f *excelize.File, sheet string, style int, b *types.PipeBomPreview) error {
	headers := []string{"Page", "Pipe Pieces", "Weld Count", "Pipe Lengths (mm)", "Total Length (mm)", "Loose Parts"}
	if err := writeHeader(f, sheet, style, headers); err != nil {
		return err
	}
	for i, page := range b.Pages {
		var total float64
		dims := make([]string, len(page.DimensionsMm))
		for j, d := range page.DimensionsMm {
			total += d
			dims[j] = fmt.Sprintf("%.0f", d)
		}
		loose := ""
		if page.HasLoose {
			loose = "O"
		}
		cells := []any{
			page.Page,
			strings.Join(page.PipePieces, ", "),
			page.WeldCount,
			strings.Join(dims, ", "),
			total,
			loose,
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeVlmBom(f *excelize.File, sheet string, style int, b *types.VlmBomPreview) error {
	headers := []string{"Page", "Line No.", "Pipe No.", "Description", "Pipe Pieces", "Components", "Weld Points", "BOM Items", "Cut Lengths", "Confidence"}
	if err := writeHeader(f, sheet, style, headers); err != nil {
		return err
	}
	for i, page := range b.Pages {
		cells := []any{
			page.Page,
			page.LineNo,
			page.PipeNo,
			page.LineDescription,
			len(page.PipePieces),
			len(page.Components),
			len(page.WeldPoints),
			len(page.BomTable),
			len(page.CutLengths),
			page.Confidence,
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeDimensions(f *excelize.File, sheet string, style int, dims []types.Dimension) error {
	if err := writeHeader(f, sheet, style, []string{"No.", "Value", "Text", "Type"}); err != nil {
		return err
	}
	for i, d := range dims {
		if err := writeRow(f, sheet, i+2, []any{i + 1, d.Value, d.Text, d.Type}); err != nil {
			return err
		}
	}
	return nil
}

func writeSymbols(f *excelize.File, sheet string, style int, s *types.SymbolPreview) error {
	if err := writeHeader(f, sheet, style, []string{"Category", "Count"}); err != nil {
		return err
	}
	row := 2
	if err := writeRow(f, sheet, row, []any{"합계", s.Total}); err != nil {
		return err
	}
	row++
	for _, cat := range sortedKeys(s.ByCategory) {
		if err := writeRow(f, sheet, row, []any{cat, s.ByCategory[cat]}); err != nil {
			return err
		}
		row++
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
