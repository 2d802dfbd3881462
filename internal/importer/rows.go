// Package importer turns spreadsheet rows into validated questions and
// produces the blank import template.
package importer

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/istanbulinstitute/educrm-exam/internal/model"
)

// FlexString accepts a JSON string, number or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Row is one question as it appears in a spreadsheet or import payload.
type Row struct {
	QuestionText  string     `json:"questionText"`
	QuestionType  string     `json:"questionType"`
	CorrectAnswer string     `json:"correctAnswer"`
	Points        FlexString `json:"points"`
	OptionA       string     `json:"optionA"`
	OptionB       string     `json:"optionB"`
	OptionC       string     `json:"optionC"`
	OptionD       string     `json:"optionD"`
	Order         FlexString `json:"order,omitempty"`
}

// RowError is a rule violation on a numbered spreadsheet row. Row 1 is the
// header, so the first data row is row 2.
type RowError struct {
	Row int `json:"row"`
	Violation
}

// FirstDataRow is the spreadsheet row number of the first data row.
const FirstDataRow = 2

// Validate checks every row and returns either the questions ready to insert
// or the complete list of errors. Questions are only returned when no row
// has an error.
func Validate(rows []Row) ([]model.Question, []RowError) {
	var (
		questions = make([]model.Question, 0, len(rows))
		errs      []RowError
		seenOrder = make(map[int]int)
	)

	for i := range rows {
		rowNum := i + FirstDataRow
		q, vs := rows[i].question()

		if q.Order > 0 {
			if _, dup := seenOrder[q.Order]; dup {
				vs = append(vs, Violation{Field: "order", MessageID: MsgOrderDuplicate, Value: strconv.Itoa(q.Order)})
			}
			seenOrder[q.Order] = rowNum
		}

		for _, v := range vs {
			errs = append(errs, RowError{Row: rowNum, Violation: v})
		}
		if len(vs) == 0 {
			questions = append(questions, q)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return questions, nil
}

// question converts the row and applies the authoring rules.
func (r *Row) question() (model.Question, []Violation) {
	q := model.Question{
		QuestionText:  r.QuestionText,
		QuestionType:  model.QuestionType(r.QuestionType),
		CorrectAnswer: r.CorrectAnswer,
		Options: map[string]string{
			"A": r.OptionA,
			"B": r.OptionB,
			"C": r.OptionC,
			"D": r.OptionD,
		},
	}

	var pre []Violation
	// Points that fail to parse are reported by Check as non-positive.
	q.Points, _ = parsePositive(string(r.Points))
	if s := strings.TrimSpace(string(r.Order)); s != "" {
		if n, ok := parsePositive(s); ok {
			q.Order = n
		} else {
			pre = append(pre, Violation{Field: "order", MessageID: MsgOrderInvalid, Value: s})
		}
	}

	return q, append(Check(&q), pre...)
}

// parsePositive parses a positive integer, tolerating spreadsheet renderings
// such as "10.0".
func parsePositive(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	n := int(f)
	return n, n > 0
}
