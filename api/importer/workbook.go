package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Sheet is one spreadsheet tab flattened to trimmed string cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is the uniform in-memory view of an uploaded file, whatever
// format it arrived in.
type Workbook struct {
	Sheets []Sheet
}

var errUnsupportedFile = errors.New("unsupported file type: expected .xlsx, .xls or .csv content")

// magic numbers: xlsx is a zip archive, legacy xls an OLE2 compound file.
var (
	zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}
	oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0}
)

// OpenWorkbook sniffs the content and parses it with the matching reader.
// The upload layer already rejects exotic extensions; sniffing the bytes
// here means a mislabeled file still gets read correctly.
func OpenWorkbook(content []byte) (*Workbook, error) {
	switch {
	case len(content) >= 4 && bytes.Equal(content[:4], zipMagic):
		return openXLSX(content)
	case len(content) >= 4 && bytes.Equal(content[:4], oleMagic):
		return openXLS(content)
	case looksLikeCSV(content):
		return openCSV(content)
	}
	return nil, errUnsupportedFile
}

func openXLSX(content []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()
	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return wb, nil
}

func openXLS(content []byte) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("read xls: %w", err)
	}
	wb := &Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			var cells []string
			for c := 0; c <= row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: sheet.Name, Rows: rows})
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return wb, nil
}

func openCSV(content []byte) (*Workbook, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	// Brazilian exports delimit with ';' because ',' is the decimal mark.
	if line, _, _ := strings.Cut(string(content), "\n"); strings.Contains(line, ";") && !strings.Contains(line, ",") {
		r.Comma = ';'
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return &Workbook{Sheets: []Sheet{{Name: "Sheet1", Rows: rows}}}, nil
}

// looksLikeCSV accepts printable text with at least one delimiter in the
// first line.
func looksLikeCSV(content []byte) bool {
	if len(content) == 0 || !isMostlyText(content) {
		return false
	}
	line, _, _ := strings.Cut(string(content), "\n")
	return strings.ContainsAny(line, ",;")
}

func isMostlyText(content []byte) bool {
	n := len(content)
	if n > 512 {
		n = 512
	}
	for _, b := range content[:n] {
		if b == 0 {
			return false
		}
	}
	return true
}

// allEmptyRow returns true when every cell in the row is empty or whitespace.
func allEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
