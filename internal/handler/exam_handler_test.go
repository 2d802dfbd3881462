package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
)

func TestCreateExam(t *testing.T) {
	f := newFixture(t, 0)

	w, env := f.do(t, http.MethodPost, "/api/v1/admin/exams", obj{
		"courseId":     f.courseID,
		"title":        "Ara Sınav",
		"duration":     45,
		"passingScore": 50,
		"totalScore":   100,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var data struct {
		Exam model.Exam `json:"exam"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Exam.ExamCode) != 6 {
		t.Errorf("examCode = %q, want 6 characters", data.Exam.ExamCode)
	}
	if data.Exam.TotalScore != 0 || !data.Exam.IsActive {
		t.Errorf("new exam = %+v, want total 0 and active", data.Exam)
	}
}

func TestCreateExamErrors(t *testing.T) {
	f := newFixture(t, 0)

	tests := []struct {
		name   string
		body   any
		status int
		code   response.ErrCode
		field  string
	}{
		{
			name:   "missing title",
			body:   obj{"courseId": f.courseID, "duration": 30},
			status: http.StatusBadRequest,
			code:   response.ErrValidation,
			field:  "title",
		},
		{
			name:   "malformed json",
			body:   `{"title":`,
			status: http.StatusBadRequest,
			code:   response.ErrValidation,
			field:  "detail",
		},
		{
			name:   "unknown course",
			body:   obj{"courseId": uuid.New(), "title": "x", "duration": 30},
			status: http.StatusBadRequest,
			code:   response.ErrInvalidCourse,
		},
		{
			name:   "passing above declared total",
			body:   obj{"courseId": f.courseID, "title": "x", "duration": 30, "totalScore": 50, "passingScore": 60},
			status: http.StatusBadRequest,
			code:   response.ErrPassingScore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := f.do(t, http.MethodPost, "/api/v1/admin/exams", tt.body)
			assertError(t, w, env, tt.status, tt.code)
			if tt.field != "" {
				if _, ok := env.Error.Fields[tt.field]; !ok {
					t.Errorf("fields = %v, want %q", env.Error.Fields, tt.field)
				}
			}
		})
	}
}

func TestGetExamIncludesAnswerKeys(t *testing.T) {
	f := newFixture(t, 0)
	exam, _ := f.seedExam(t, 10)

	w, env := f.do(t, http.MethodGet, "/api/v1/admin/exams/"+exam.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var data struct {
		Exam model.Exam `json:"exam"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Exam.Questions) != 2 || data.Exam.Questions[0].CorrectAnswer != "A" {
		t.Errorf("questions = %+v", data.Exam.Questions)
	}
	if data.Exam.TotalScore != 20 {
		t.Errorf("totalScore = %d, want 20", data.Exam.TotalScore)
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/admin/exams/not-a-uuid", nil)
	assertError(t, w, env, http.StatusBadRequest, response.ErrInvalidID)

	w, env = f.do(t, http.MethodGet, "/api/v1/admin/exams/"+uuid.NewString(), nil)
	assertError(t, w, env, http.StatusNotFound, response.ErrExamNotFound)
}

func TestListExams(t *testing.T) {
	f := newFixture(t, 0)
	for range 3 {
		f.seedExam(t, 0)
	}

	w, env := f.do(t, http.MethodGet, "/api/v1/admin/exams?per_page=2&courseId="+f.courseID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var data struct {
		Exams []model.Exam `json:"exams"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Exams) != 2 {
		t.Errorf("page size = %d, want 2", len(data.Exams))
	}
	if env.Pagination == nil || env.Pagination.TotalItems != 3 || env.Pagination.TotalPages != 2 {
		t.Errorf("pagination = %+v", env.Pagination)
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/admin/exams?courseId=bad", nil)
	assertError(t, w, env, http.StatusBadRequest, response.ErrInvalidID)
}

func TestUpdateExam(t *testing.T) {
	f := newFixture(t, 0)
	exam, _ := f.seedExam(t, 10)
	path := "/api/v1/admin/exams/" + exam.ID.String()

	w, env := f.do(t, http.MethodPut, path, obj{"passingScore": 25})
	assertError(t, w, env, http.StatusBadRequest, response.ErrPassingScore)

	w, env = f.do(t, http.MethodPut, path, obj{"title": "Final", "passingScore": 15})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		Exam model.Exam `json:"exam"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Exam.Title != "Final" || data.Exam.PassingScore != 15 || data.Exam.TotalScore != 20 {
		t.Errorf("updated exam = %+v", data.Exam)
	}
}

func TestDeleteAndRecalculateExam(t *testing.T) {
	f := newFixture(t, 0)
	exam, _ := f.seedExam(t, 0)
	f.db.UpdateExam(exam.ID, func(e *model.Exam) { e.TotalScore = 7 })

	w, env := f.do(t, http.MethodPost, "/api/v1/admin/exams/"+exam.ID.String()+"/recalculate-total", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var data struct {
		TotalScore int `json:"totalScore"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.TotalScore != 20 {
		t.Errorf("totalScore = %d, want 20", data.TotalScore)
	}

	w, _ = f.do(t, http.MethodDelete, "/api/v1/admin/exams/"+exam.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w, env = f.do(t, http.MethodDelete, "/api/v1/admin/exams/"+exam.ID.String(), nil)
	assertError(t, w, env, http.StatusNotFound, response.ErrExamNotFound)
}
