package grading

import (
	"testing"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
)

func q(qt model.QuestionType, key string, points int) model.Question {
	return model.Question{ID: uuid.New(), QuestionType: qt, CorrectAnswer: key, Points: points}
}

func TestQuestionPolicy(t *testing.T) {
	tests := []struct {
		name     string
		question model.Question
		answer   string
		answered bool
		correct  bool
		earned   int
		review   bool
	}{
		{"mc exact", q(model.QuestionTypeMultipleChoice, "A", 10), "A", true, true, 10, false},
		{"mc case sensitive", q(model.QuestionTypeMultipleChoice, "A", 10), "a", true, false, 0, false},
		{"mc padded", q(model.QuestionTypeMultipleChoice, "A", 10), " A", true, false, 0, false},
		{"tf literal", q(model.QuestionTypeTrueFalse, model.FalseLiteral, 5), model.FalseLiteral, true, true, 5, false},
		{"tf other literal", q(model.QuestionTypeTrueFalse, model.FalseLiteral, 5), model.TrueLiteral, true, false, 0, false},
		{"tf english word", q(model.QuestionTypeTrueFalse, model.TrueLiteral, 5), "TRUE", true, false, 0, false},
		{"short trim fold", q(model.QuestionTypeShortAnswer, "Paris", 7), " paris ", true, true, 7, false},
		{"short key padded", q(model.QuestionTypeShortAnswer, " VAR ", 7), "var", true, true, 7, false},
		{"short wrong", q(model.QuestionTypeShortAnswer, "Paris", 7), "Lyon", true, false, 0, false},
		{"short empty vs empty key", q(model.QuestionTypeShortAnswer, "x", 7), "   ", true, false, 0, false},
		{"essay answered", q(model.QuestionTypeEssay, "rubric", 20), "rubric", true, false, 0, true},
		{"essay blank", q(model.QuestionTypeEssay, "rubric", 20), "  ", true, false, 0, false},
		{"unanswered mc", q(model.QuestionTypeMultipleChoice, "A", 10), "", false, false, 0, false},
		{"unanswered short with empty key", q(model.QuestionTypeShortAnswer, "", 10), "", false, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Question(&tt.question, tt.answer, tt.answered)
			if d.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", d.IsCorrect, tt.correct)
			}
			if d.EarnedPoints != tt.earned {
				t.Errorf("EarnedPoints = %d, want %d", d.EarnedPoints, tt.earned)
			}
			if d.MaxPoints != tt.question.Points {
				t.Errorf("MaxPoints = %d, want %d", d.MaxPoints, tt.question.Points)
			}
			if d.NeedsReview != tt.review {
				t.Errorf("NeedsReview = %v, want %v", d.NeedsReview, tt.review)
			}
			if d.CorrectAnswer != tt.question.CorrectAnswer {
				t.Errorf("CorrectAnswer not recorded")
			}
			if tt.answered {
				if d.StudentAnswer == nil || *d.StudentAnswer != tt.answer {
					t.Errorf("StudentAnswer = %v, want %q", d.StudentAnswer, tt.answer)
				}
			} else if d.StudentAnswer != nil {
				t.Errorf("StudentAnswer should be nil for unanswered question")
			}
		})
	}
}

func TestGradeTotalsAndOrder(t *testing.T) {
	questions := []model.Question{
		q(model.QuestionTypeMultipleChoice, "B", 10),
		q(model.QuestionTypeShortAnswer, "Paris", 15),
		q(model.QuestionTypeEssay, "-", 20),
		q(model.QuestionTypeTrueFalse, model.TrueLiteral, 5),
	}
	answers := map[string]string{
		questions[0].ID.String(): "B",
		questions[1].ID.String(): "PARIS",
		questions[2].ID.String(): "uzun cevap",
		uuid.NewString():         "stray answer",
	}

	out := Grade(questions, answers)

	if out.Score != 25 {
		t.Errorf("Score = %d, want 25", out.Score)
	}
	if out.MaxScore != 50 {
		t.Errorf("MaxScore = %d, want 50", out.MaxScore)
	}
	if len(out.Details) != len(questions) {
		t.Fatalf("got %d details, want %d", len(out.Details), len(questions))
	}
	for i, d := range out.Details {
		if d.QuestionID != questions[i].ID {
			t.Errorf("detail %d is for the wrong question", i)
		}
	}
	if out.Details[3].StudentAnswer != nil {
		t.Errorf("unanswered question should have nil answer")
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	questions := []model.Question{
		q(model.QuestionTypeMultipleChoice, "C", 10),
		q(model.QuestionTypeShortAnswer, "İstanbul", 10),
	}
	answers := map[string]string{
		questions[0].ID.String(): "C",
		questions[1].ID.String(): "istanbul",
	}

	first := Grade(questions, answers)
	for i := 0; i < 50; i++ {
		again := Grade(questions, answers)
		if again.Score != first.Score || again.Passed(10) != first.Passed(10) {
			t.Fatalf("run %d differs: %d vs %d", i, again.Score, first.Score)
		}
		for j := range again.Details {
			if again.Details[j].IsCorrect != first.Details[j].IsCorrect {
				t.Fatalf("run %d detail %d differs", i, j)
			}
		}
	}
}

func TestPassedBoundaryIsInclusive(t *testing.T) {
	tests := []struct {
		score, passing int
		want           bool
	}{
		{50, 50, true},
		{49, 50, false},
		{51, 50, true},
		{0, 0, true},
	}
	for _, tt := range tests {
		if got := (Outcome{Score: tt.score}).Passed(tt.passing); got != tt.want {
			t.Errorf("Passed(score=%d, passing=%d) = %v, want %v", tt.score, tt.passing, got, tt.want)
		}
	}
}

func TestGradeEmptyExam(t *testing.T) {
	out := Grade(nil, map[string]string{"x": "y"})
	if out.Score != 0 || out.MaxScore != 0 || len(out.Details) != 0 {
		t.Errorf("unexpected outcome for empty exam: %+v", out)
	}
}
