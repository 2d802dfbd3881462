package importer

import (
	"slices"
	"strings"

	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Message IDs for question rule violations, resolved by the i18n catalogs.
const (
	MsgTextRequired     = "question.text_required"
	MsgTypeRequired     = "question.type_required"
	MsgTypeInvalid      = "question.type_invalid"
	MsgAnswerRequired   = "question.answer_required"
	MsgPointsInvalid    = "question.points_invalid"
	MsgOptionsRequired  = "question.options_required"
	MsgAnswerNotOption  = "question.answer_not_option"
	MsgTrueFalseInvalid = "question.true_false_invalid"
	MsgOrderInvalid     = "question.order_invalid"
	MsgOrderDuplicate   = "question.order_duplicate"
)

// Violation is one broken authoring rule.
type Violation struct {
	Field     string `json:"field"`
	MessageID string `json:"messageId"`
	Value     string `json:"value,omitempty"`
}

// Check validates an authored question and normalizes it in place: text and
// answer are trimmed, options are reduced to non-empty A-D labels (and dropped
// for other types), and true/false answers are mapped to their literals.
func Check(q *model.Question) []Violation {
	var vs []Violation

	q.QuestionText = strings.TrimSpace(q.QuestionText)
	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	q.QuestionType = model.QuestionType(strings.TrimSpace(string(q.QuestionType)))

	if q.QuestionText == "" {
		vs = append(vs, Violation{Field: "questionText", MessageID: MsgTextRequired})
	}
	switch {
	case q.QuestionType == "":
		vs = append(vs, Violation{Field: "questionType", MessageID: MsgTypeRequired})
	case !q.QuestionType.Valid():
		vs = append(vs, Violation{Field: "questionType", MessageID: MsgTypeInvalid, Value: string(q.QuestionType)})
	}
	if q.CorrectAnswer == "" {
		vs = append(vs, Violation{Field: "correctAnswer", MessageID: MsgAnswerRequired})
	}
	if q.Points <= 0 {
		vs = append(vs, Violation{Field: "points", MessageID: MsgPointsInvalid})
	}
	if q.Order < 0 {
		vs = append(vs, Violation{Field: "order", MessageID: MsgOrderInvalid})
	}

	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		q.Options = cleanOptions(q.Options)
		if q.Options["A"] == "" || q.Options["B"] == "" {
			vs = append(vs, Violation{Field: "options", MessageID: MsgOptionsRequired})
		} else if q.CorrectAnswer != "" {
			if _, ok := q.Options[q.CorrectAnswer]; !ok {
				vs = append(vs, Violation{Field: "correctAnswer", MessageID: MsgAnswerNotOption, Value: q.CorrectAnswer})
			}
		}
	case model.QuestionTypeTrueFalse:
		q.Options = nil
		if q.CorrectAnswer != "" {
			lit, ok := NormalizeTrueFalse(q.CorrectAnswer)
			if !ok {
				vs = append(vs, Violation{Field: "correctAnswer", MessageID: MsgTrueFalseInvalid, Value: q.CorrectAnswer})
			} else {
				q.CorrectAnswer = lit
			}
		}
	default:
		q.Options = nil
	}

	return vs
}

// NormalizeTrueFalse maps accepted spellings to the literal pair candidates
// choose from. Matching uses Turkish casing, so "YANLIŞ" is accepted.
func NormalizeTrueFalse(s string) (string, bool) {
	switch cases.Lower(language.Turkish).String(strings.TrimSpace(s)) {
	case "doğru", "true":
		return model.TrueLiteral, true
	case "yanlış", "false":
		return model.FalseLiteral, true
	}
	return "", false
}

func cleanOptions(in map[string]string) map[string]string {
	out := make(map[string]string, len(model.OptionLabels))
	for label, text := range in {
		label = strings.ToUpper(strings.TrimSpace(label))
		text = strings.TrimSpace(text)
		if text != "" && slices.Contains(model.OptionLabels, label) {
			out[label] = text
		}
	}
	return out
}
