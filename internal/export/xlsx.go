package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const overviewSheet = "Overview"

// renderXLSX writes an overview sheet plus one sheet per section.
func (s *Sink) renderXLSX(w io.Writer, doc Document) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", overviewSheet); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	wrapStyle, err := file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create body style: %w", err)
	}

	rows := [][]any{
		{doc.Title},
		{doc.Subtitle},
		{"Generated", s.now().Format("2006-01-02 15:04")},
		{},
		{"Section", "Entries"},
	}
	for _, section := range doc.Sections {
		rows = append(rows, []any{section.Heading, len(section.Lines)})
	}
	if err := writeRows(file, overviewSheet, rows); err != nil {
		return err
	}
	_ = file.SetCellStyle(overviewSheet, "A1", "A1", headerStyle)
	_ = file.SetColWidth(overviewSheet, "A", "A", 40)

	used := map[string]bool{strings.ToLower(overviewSheet): true}
	for _, section := range doc.Sections {
		name := sheetName(section.Heading, used)
		if _, err := file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		sectionRows := [][]any{{section.Heading}}
		for _, line := range section.Lines {
			sectionRows = append(sectionRows, []any{line})
		}
		if err := writeRows(file, name, sectionRows); err != nil {
			return err
		}
		last := fmt.Sprintf("A%d", len(sectionRows))
		_ = file.SetCellStyle(name, "A1", "A1", headerStyle)
		_ = file.SetCellStyle(name, "A2", last, wrapStyle)
		_ = file.SetColWidth(name, "A", "A", 90)
	}
	file.SetActiveSheet(0)
	return file.Write(w)
}

func writeRows(file *excelize.File, sheet string, rows [][]any) error {
	for idx, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		values := row
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// sheetName derives a unique worksheet name within Excel's 31 character
// limit and character rules.
func sheetName(heading string, used map[string]bool) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		return r
	}, strings.TrimSpace(heading))
	cleaned = strings.Trim(strings.Join(strings.Fields(cleaned), " "), "'")
	if cleaned == "" {
		cleaned = "Section"
	}
	base := truncateRunes(cleaned, 31)
	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, 31-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
