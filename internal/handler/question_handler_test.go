package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/importer"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/xuri/excelize/v2"
)

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAddQuestionRules(t *testing.T) {
	f := newFixture(t, 0)
	exam, _ := f.seedExam(t, 0)
	path := "/api/v1/admin/exams/" + exam.ID.String() + "/questions"

	tests := []struct {
		name   string
		body   obj
		status int
		code   response.ErrCode
		detail string
	}{
		{
			name:   "answer not an option",
			body:   obj{"questionText": "q", "questionType": "MULTIPLE_CHOICE", "options": obj{"A": "1", "B": "2"}, "correctAnswer": "C", "points": 5},
			status: http.StatusBadRequest,
			code:   response.ErrValidation,
			detail: "Doğru cevap mevcut şıklardan biri olmalıdır (C)",
		},
		{
			name:   "true false literal",
			body:   obj{"questionText": "q", "questionType": "TRUE_FALSE", "correctAnswer": "Evet", "points": 5},
			status: http.StatusBadRequest,
			code:   response.ErrValidation,
			detail: `Doğru/Yanlış soruları için cevap "Doğru" veya "Yanlış" olmalıdır`,
		},
		{
			name:   "unknown type",
			body:   obj{"questionText": "q", "questionType": "MATCHING", "correctAnswer": "x", "points": 5},
			status: http.StatusBadRequest,
			code:   response.ErrValidation,
		},
		{
			name:   "order taken",
			body:   obj{"questionText": "q", "questionType": "SHORT_ANSWER", "correctAnswer": "x", "points": 5, "order": 1},
			status: http.StatusConflict,
			code:   response.ErrDuplicateOrder,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := f.do(t, http.MethodPost, path, tt.body)
			assertError(t, w, env, tt.status, tt.code)
			if tt.detail != "" && (len(env.Error.Details) != 1 || env.Error.Details[0] != tt.detail) {
				t.Errorf("details = %q, want %q", env.Error.Details, tt.detail)
			}
		})
	}

	if got := f.db.Total(exam.ID); got != 20 {
		t.Errorf("total changed by rejected questions: %d", got)
	}
}

func TestQuestionLifecycle(t *testing.T) {
	f := newFixture(t, 0)
	exam, qs := f.seedExam(t, 0)
	qPath := "/api/v1/admin/questions/" + qs[0].ID.String()

	w, env := f.do(t, http.MethodPost, "/api/v1/admin/exams/"+exam.ID.String()+"/questions",
		obj{"questionText": "Essay", "questionType": "ESSAY", "correctAnswer": "-", "points": 15})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d: %s", w.Code, w.Body.String())
	}
	var added struct {
		Question model.Question `json:"question"`
	}
	if err := json.Unmarshal(env.Data, &added); err != nil {
		t.Fatal(err)
	}
	if added.Question.Order != 3 {
		t.Errorf("order = %d, want 3", added.Question.Order)
	}

	w, _ = f.do(t, http.MethodPut, qPath, obj{"points": 30})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	if got := f.db.Total(exam.ID); got != 55 {
		t.Errorf("total after update = %d, want 55", got)
	}

	w, _ = f.do(t, http.MethodDelete, qPath, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if got := f.db.Total(exam.ID); got != 25 {
		t.Errorf("total after delete = %d, want 25", got)
	}

	w, env = f.do(t, http.MethodGet, qPath, nil)
	assertError(t, w, env, http.StatusNotFound, response.ErrQuestionNotFound)

	w, _ = f.do(t, http.MethodDelete, "/api/v1/admin/exams/"+exam.ID.String()+"/questions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete all status = %d", w.Code)
	}
	if got := f.db.Total(exam.ID); got != 0 {
		t.Errorf("total after delete all = %d, want 0", got)
	}
}

func TestImportQuestionsJSON(t *testing.T) {
	f := newFixture(t, 0)
	exam, _ := f.seedExam(t, 0)
	path := "/api/v1/admin/exams/" + exam.ID.String() + "/questions/import"

	row := func(points any) obj {
		return obj{"questionText": "2+2?", "questionType": "SHORT_ANSWER", "correctAnswer": "4", "points": points}
	}

	w, env := f.do(t, http.MethodPost, path, obj{"questions": []obj{row(5), row("abc"), row(3)}})
	assertError(t, w, env, http.StatusBadRequest, response.ErrImportValidation)
	want := "Satır 3: Geçerli bir puan değeri gereklidir"
	if len(env.Error.Details) != 1 || env.Error.Details[0] != want {
		t.Errorf("details = %q, want [%q]", env.Error.Details, want)
	}
	if got := f.db.Total(exam.ID); got != 20 {
		t.Errorf("failed import changed total to %d", got)
	}

	w, env = f.do(t, http.MethodPost, path, obj{"questions": []obj{}})
	assertError(t, w, env, http.StatusBadRequest, response.ErrImportValidation)

	w, env = f.do(t, http.MethodPost, path, obj{"questions": []obj{row(5), row("7")}})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		Count       int    `json:"count"`
		TotalPoints int    `json:"totalPoints"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Count != 2 || data.TotalPoints != 12 || data.Message != "2 soru başarıyla içe aktarıldı" {
		t.Errorf("summary = %+v", data)
	}
	if got := f.db.Total(exam.ID); got != 32 {
		t.Errorf("total = %d, want 32", got)
	}
}

func TestImportQuestionsUpload(t *testing.T) {
	const csv = "questionText,questionType,correctAnswer,points,optionA,optionB\n" +
		"\"Başkent, Türkiye\",MULTIPLE_CHOICE,A,10,Ankara,İzmir\n" +
		"Go statik tiplidir,TRUE_FALSE,Doğru,5,,\n"

	tests := []struct {
		name     string
		filename string
		content  string
		limit    int64
		status   int
		code     response.ErrCode
	}{
		{"csv", "sorular.csv", csv, 1 << 20, http.StatusCreated, ""},
		{"missing column", "sorular.csv", "questionText,questionType\nq,ESSAY\n", 1 << 20, http.StatusBadRequest, response.ErrImportValidation},
		{"unsupported", "sorular.txt", csv, 1 << 20, http.StatusBadRequest, response.ErrUnsupportedFile},
		{"too large", "sorular.csv", csv, 64, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.limit)
			exam, _ := f.seedExam(t, 0)
			path := "/api/v1/admin/exams/" + exam.ID.String() + "/questions/import"

			w, env := f.serve(t, uploadRequest(t, path, tt.filename, tt.content))
			if tt.code == "" {
				if w.Code != tt.status {
					t.Fatalf("status = %d: %s", w.Code, w.Body.String())
				}
				if got := f.db.Total(exam.ID); got != 35 {
					t.Errorf("total = %d, want 35", got)
				}
				return
			}
			assertError(t, w, env, tt.status, tt.code)
		})
	}
}

func TestImportMissingFile(t *testing.T) {
	f := newFixture(t, 1<<20)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no file")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/exams/"+uuid.NewString()+"/questions/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env := f.serve(t, req)
	assertError(t, w, env, http.StatusBadRequest, response.ErrFileRequired)
}

func TestDownloadTemplate(t *testing.T) {
	f := newFixture(t, 0)
	base := "/api/v1/admin/exams/" + uuid.NewString() + "/questions/import/template"

	w, _ := f.do(t, http.MethodGet, base, nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("csv: status %d, type %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), importer.TemplateFilename+".csv") {
		t.Errorf("disposition = %q", w.Header().Get("Content-Disposition"))
	}
	rows, err := importer.ParseCSV(bytes.NewReader(w.Body.Bytes()))
	if err != nil || len(rows) == 0 {
		t.Errorf("template csv does not parse: %v", err)
	}

	w, _ = f.do(t, http.MethodGet, base+"?format=xlsx", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != mimeXLSX {
		t.Fatalf("xlsx: status %d, type %q", w.Code, w.Header().Get("Content-Type"))
	}
	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer book.Close()
	header, err := book.GetRows(book.GetSheetName(0))
	if err != nil || len(header) == 0 || header[0][0] != importer.ColQuestionText {
		t.Errorf("xlsx header = %v, %v", header, err)
	}

	w, env := f.do(t, http.MethodGet, base+"?format=pdf", nil)
	assertError(t, w, env, http.StatusBadRequest, response.ErrUnsupportedFile)
}
