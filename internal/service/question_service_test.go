package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/importer"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/service/servicetest"
	"github.com/rs/zerolog"
)

func mcReq(answer string, points int) *model.CreateQuestionRequest {
	return &model.CreateQuestionRequest{
		QuestionText:  "Türkiye'nin başkenti neresidir?",
		QuestionType:  model.QuestionTypeMultipleChoice,
		Options:       map[string]string{"A": "Ankara", "B": "İstanbul"},
		CorrectAnswer: answer,
		Points:        points,
	}
}

func essayReq(points int) *model.CreateQuestionRequest {
	return &model.CreateQuestionRequest{
		QuestionText: "Açıklayınız.", QuestionType: model.QuestionTypeEssay, CorrectAnswer: "rubric", Points: points,
	}
}

func newQuestionFixture(t *testing.T) (*servicetest.DB, *servicetest.Cache, *QuestionService, *model.Exam) {
	t.Helper()
	db := servicetest.NewDB()
	c := servicetest.NewCache()
	courseID := db.AddCourse("Go 101")
	exam := db.AddExam(model.Exam{ExamCode: "QWE234", CourseID: courseID, Title: "t", Duration: 10, IsActive: true})
	return db, c, NewQuestionService(db.Questions(), db.Exams(), c, testLog), exam
}

func assertTotal(t *testing.T, db *servicetest.DB, examID uuid.UUID) {
	t.Helper()
	if got, want := db.Total(examID), db.SumPoints(examID); got != want {
		t.Fatalf("totalScore = %d, sum of points = %d", got, want)
	}
}

func TestQuestionLifecycleKeepsTotal(t *testing.T) {
	db, c, svc, exam := newQuestionFixture(t)
	ctx := context.Background()

	q1, err := svc.Add(ctx, exam.ID, mcReq("A", 10))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	q2, err := svc.Add(ctx, exam.ID, essayReq(20))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if q1.Order != 1 || q2.Order != 2 {
		t.Errorf("orders = %d, %d", q1.Order, q2.Order)
	}
	assertTotal(t, db, exam.ID)
	if db.Total(exam.ID) != 30 {
		t.Fatalf("total = %d, want 30", db.Total(exam.ID))
	}

	points := 5
	if _, err := svc.Update(ctx, q2.ID, &model.UpdateQuestionRequest{Points: &points}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertTotal(t, db, exam.ID)

	if err := svc.Delete(ctx, q1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertTotal(t, db, exam.ID)
	if db.Total(exam.ID) != 5 {
		t.Errorf("total = %d, want 5", db.Total(exam.ID))
	}

	n, err := svc.DeleteAll(ctx, exam.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteAll = %d, %v", n, err)
	}
	if db.Total(exam.ID) != 0 {
		t.Errorf("total = %d, want 0", db.Total(exam.ID))
	}
	if len(c.Invalidated()) != 5 {
		t.Errorf("cache invalidations = %d, want 5", len(c.Invalidated()))
	}
}

func TestLoweringTotalBelowPassingScoreWarns(t *testing.T) {
	db := servicetest.NewDB()
	courseID := db.AddCourse("Go 101")
	exam := db.AddExam(model.Exam{ExamCode: "PAS234", CourseID: courseID, Title: "t", Duration: 10, PassingScore: 25, IsActive: true})
	var logs bytes.Buffer
	svc := NewQuestionService(db.Questions(), db.Exams(), servicetest.NewCache(), zerolog.New(&logs))
	ctx := context.Background()

	q1, err := svc.Add(ctx, exam.ID, mcReq("A", 20))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(ctx, exam.ID, essayReq(10)); err != nil {
		t.Fatal(err)
	}

	points := 15
	if _, err := svc.Update(ctx, q1.ID, &model.UpdateQuestionRequest{Points: &points}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if strings.Contains(logs.String(), "Passing score exceeds exam total") {
		t.Fatalf("warned while total 25 still reaches passing 25:\n%s", logs.String())
	}

	steps := []struct {
		name string
		do   func() error
	}{
		{"delete", func() error { return svc.Delete(ctx, q1.ID) }},
		{"delete all", func() error { _, err := svc.DeleteAll(ctx, exam.ID); return err }},
	}
	for _, st := range steps {
		logs.Reset()
		if err := st.do(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if !strings.Contains(logs.String(), `"passing_score":25`) {
			t.Errorf("%s: no passing score warning, logs:\n%s", st.name, logs.String())
		}
	}
	if db.Total(exam.ID) != 0 {
		t.Errorf("total = %d, want 0", db.Total(exam.ID))
	}
}

func TestQuestionConcurrentMutations(t *testing.T) {
	db, _, svc, exam := newQuestionFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := range 20 {
		q, err := svc.Add(ctx, exam.ID, essayReq(i+1))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, q.ID)
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = svc.Delete(ctx, id)
				return
			}
			p := 3
			_, _ = svc.Update(ctx, id, &model.UpdateQuestionRequest{Points: &p})
		}()
	}
	wg.Wait()
	assertTotal(t, db, exam.ID)
	if db.Total(exam.ID) != 30 {
		t.Errorf("total = %d, want 30", db.Total(exam.ID))
	}
}

func TestAddQuestionRules(t *testing.T) {
	_, _, svc, exam := newQuestionFixture(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, exam.ID, mcReq("E", 10))
	var qe *QuestionValidationError
	if !errors.As(err, &qe) || qe.Violations[0].MessageID != importer.MsgAnswerNotOption {
		t.Fatalf("err = %v, want answer-not-option violation", err)
	}

	tf := &model.CreateQuestionRequest{QuestionText: "x", QuestionType: model.QuestionTypeTrueFalse, CorrectAnswer: "true", Points: 2}
	q, err := svc.Add(ctx, exam.ID, tf)
	if err != nil {
		t.Fatalf("Add tf: %v", err)
	}
	if q.CorrectAnswer != model.TrueLiteral {
		t.Errorf("CorrectAnswer = %q", q.CorrectAnswer)
	}

	order := q.Order
	dup := essayReq(1)
	dup.Order = &order
	if _, err := svc.Add(ctx, exam.ID, dup); !errors.Is(err, ErrDuplicateOrder) {
		t.Errorf("err = %v, want ErrDuplicateOrder", err)
	}
	if _, err := svc.Add(ctx, uuid.New(), essayReq(1)); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("err = %v, want ErrExamNotFound", err)
	}
	if _, err := svc.Get(ctx, uuid.New()); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestImportAtomic(t *testing.T) {
	db, _, svc, exam := newQuestionFixture(t)
	ctx := context.Background()
	if _, err := svc.Add(ctx, exam.ID, essayReq(7)); err != nil {
		t.Fatal(err)
	}

	rows := make([]importer.Row, 10)
	for i := range rows {
		rows[i] = importer.Row{
			QuestionText: fmt.Sprintf("Soru %d", i+1), QuestionType: "SHORT_ANSWER",
			CorrectAnswer: "cevap", Points: "5",
		}
	}
	rows[6].QuestionType = "BOGUS"

	_, err := svc.Import(ctx, exam.ID, rows)
	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want ImportError", err)
	}
	if ie.Rows[0].Row != 8 {
		t.Errorf("row = %d, want 8", ie.Rows[0].Row)
	}
	if db.Total(exam.ID) != 7 || db.SumPoints(exam.ID) != 7 {
		t.Errorf("import left side effects: total=%d", db.Total(exam.ID))
	}

	rows[6].QuestionType = "ESSAY"
	sum, err := svc.Import(ctx, exam.ID, rows)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sum.Count != 10 || sum.TotalPoints != 50 {
		t.Errorf("summary = %+v", sum)
	}
	assertTotal(t, db, exam.ID)

	qs, _ := svc.List(ctx, exam.ID)
	if qs[len(qs)-1].Order != 11 {
		t.Errorf("last order = %d, want 11", qs[len(qs)-1].Order)
	}
}

func TestImportEmptyAndConflicting(t *testing.T) {
	db, _, svc, exam := newQuestionFixture(t)
	ctx := context.Background()
	if _, err := svc.Import(ctx, exam.ID, nil); !errors.Is(err, ErrEmptyImport) {
		t.Errorf("err = %v, want ErrEmptyImport", err)
	}

	if _, err := svc.Add(ctx, exam.ID, essayReq(4)); err != nil {
		t.Fatal(err)
	}
	rows := []importer.Row{
		{QuestionText: "a", QuestionType: "ESSAY", CorrectAnswer: "x", Points: "3"},
		{QuestionText: "b", QuestionType: "ESSAY", CorrectAnswer: "x", Points: "3", Order: "1"},
	}
	if _, err := svc.Import(ctx, exam.ID, rows); !errors.Is(err, ErrDuplicateOrder) {
		t.Errorf("err = %v, want ErrDuplicateOrder", err)
	}
	assertTotal(t, db, exam.ID)
	if db.Total(exam.ID) != 4 {
		t.Errorf("total = %d, want 4", db.Total(exam.ID))
	}
}
