// Package tabular reads uploaded CSV and Excel workbooks (OOXML and legacy BIFF) into header-keyed rows.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"registrationdesk/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser implements domain.TabularParser for .csv and Excel (.xlsx, .xlsm, .xls) files.
type Parser struct{}

// NewParser returns a tabular parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse picks the reader from the file extension. Only the first sheet of a workbook is read.
func (p *Parser) Parse(file domain.ImportFile) ([]domain.Row, error) {
	switch strings.ToLower(filepath.Ext(file.Name)) {
	case ".csv":
		return parseCSV(file.Data)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return parseWorkbook(file.Data)
	case ".xls":
		return parseLegacyWorkbook(file.Data)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Ext(file.Name))
	}
}

func parseCSV(data []byte) ([]domain.Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("�"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = trimHeader(header)

	rows := make([]domain.Row, 0)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, toRow(header, record))
	}
	return rows, nil
}

func parseWorkbook(data []byte) ([]domain.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []domain.Row{}, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return recordsToRows(records), nil
}

// parseLegacyWorkbook reads the first sheet of a BIFF (.xls) workbook.
func parseLegacyWorkbook(data []byte) (rows []domain.Row, err error) {
	// The BIFF reader panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("open legacy workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open legacy workbook: %w", err)
	}
	if wb == nil {
		return nil, errors.New("open legacy workbook: no workbook stream")
	}
	if wb.NumSheets() == 0 {
		return []domain.Row{}, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return []domain.Row{}, nil
	}
	return recordsToRows(legacyRecords(biffSheet{sheet})), nil
}

// legacySheet is the part of a BIFF worksheet the row walk needs.
type legacySheet interface {
	// MaxRow is the highest row index that may hold cells.
	MaxRow() int
	// Cells returns the row's cells from column 0, or nil when the row is absent.
	Cells(row int) []string
}

type biffSheet struct{ sheet *xls.WorkSheet }

func (b biffSheet) MaxRow() int { return int(b.sheet.MaxRow) }

func (b biffSheet) Cells(i int) []string {
	row := b.sheet.Row(i)
	if row == nil {
		return nil
	}
	cells := make([]string, row.LastCol())
	for c := row.FirstCol(); c < row.LastCol(); c++ {
		cells[c] = row.Col(c)
	}
	return cells
}

// legacyRecords lists every row up to MaxRow; absent rows become empty records.
func legacyRecords(sheet legacySheet) [][]string {
	records := make([][]string, 0, sheet.MaxRow()+1)
	for i := 0; i <= sheet.MaxRow(); i++ {
		records = append(records, sheet.Cells(i))
	}
	return records
}

// recordsToRows treats the first record as the header and drops blank records.
func recordsToRows(records [][]string) []domain.Row {
	if len(records) == 0 {
		return []domain.Row{}
	}
	header := trimHeader(records[0])
	rows := make([]domain.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, toRow(header, record))
	}
	return rows
}

func trimHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// toRow keys record by header. Cells beyond the header and unnamed columns are dropped.
func toRow(header, record []string) domain.Row {
	row := make(domain.Row, len(header))
	for i, h := range header {
		if h == "" || i >= len(record) {
			continue
		}
		row[h] = record[i]
	}
	return row
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
