package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names of the import format.
const (
	ColQuestionText  = "questionText"
	ColQuestionType  = "questionType"
	ColCorrectAnswer = "correctAnswer"
	ColPoints        = "points"
	ColOptionA       = "optionA"
	ColOptionB       = "optionB"
	ColOptionC       = "optionC"
	ColOptionD       = "optionD"
	ColOrder         = "order"
)

// RequiredColumns must all appear in the header row.
var RequiredColumns = []string{ColQuestionText, ColQuestionType, ColCorrectAnswer, ColPoints}

// TemplateColumns is the header written to templates.
var TemplateColumns = []string{
	ColQuestionText, ColQuestionType, ColCorrectAnswer, ColPoints,
	ColOptionA, ColOptionB, ColOptionC, ColOptionD,
}

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// HeaderError reports a required column missing from the header row.
type HeaderError struct {
	Column string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("required column missing: %s", e.Column)
}

const utf8BOM = "\ufeff"

// Parse reads rows from a CSV or XLSX file, chosen by the file extension.
func Parse(filename string, r io.Reader) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseCSV reads a comma separated file whose first record is the header.
// Quoted fields may contain commas, newlines and doubled quotes.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRecords(records)
}

// ParseXLSX reads the first worksheet of a workbook whose first row is the header.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &HeaderError{Column: ColQuestionText}
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) ([]Row, error) {
	records = dropBlank(records)
	if len(records) == 0 {
		return nil, &HeaderError{Column: RequiredColumns[0]}
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		header[strings.ToLower(name)] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := header[strings.ToLower(col)]; !ok {
			return nil, &HeaderError{Column: col}
		}
	}

	cell := func(rec []string, col string) string {
		i, ok := header[strings.ToLower(col)]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{
			QuestionText:  cell(rec, ColQuestionText),
			QuestionType:  cell(rec, ColQuestionType),
			CorrectAnswer: cell(rec, ColCorrectAnswer),
			Points:        FlexString(cell(rec, ColPoints)),
			OptionA:       cell(rec, ColOptionA),
			OptionB:       cell(rec, ColOptionB),
			OptionC:       cell(rec, ColOptionC),
			OptionD:       cell(rec, ColOptionD),
			Order:         FlexString(cell(rec, ColOrder)),
		})
	}
	return rows, nil
}

// dropBlank removes records whose cells are all empty.
func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		for _, c := range rec {
			if strings.TrimSpace(c) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
