package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type stubTranslator map[string]string

func (s stubTranslator) Translate(id string, _ map[string]any) (string, bool) {
	msg, ok := s[id]
	return msg, ok
}

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, tr Translator, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.Use(RequestIDMiddleware(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) {
		if tr != nil {
			c.Set(ContextKeyTranslator, tr)
		}
		h(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)

	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return w, body
}

func TestFailUsesTranslator(t *testing.T) {
	tr := stubTranslator{"ALREADY_SUBMITTED": "You have already completed this exam"}
	w, body := run(t, tr, func(c *gin.Context) {
		Fail(c, http.StatusConflict, ErrAlreadySubmitted)
	})

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d", w.Code)
	}
	if body.Error == nil || body.Error.Message != "You have already completed this exam" {
		t.Errorf("error = %+v", body.Error)
	}
	if body.Metadata.RequestID != "req-123" {
		t.Errorf("request id = %q", body.Metadata.RequestID)
	}
	if w.Header().Get("X-Request-ID") != "req-123" {
		t.Errorf("X-Request-ID header not echoed")
	}
}

func TestFailFallsBackToTurkish(t *testing.T) {
	_, body := run(t, stubTranslator{}, func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrPublicExamNotFound)
	})
	if body.Error.Message != "Sınav bulunamadı veya aktif değil" {
		t.Errorf("message = %q", body.Error.Message)
	}

	_, body = run(t, nil, func(c *gin.Context) {
		FailWithDetails(c, http.StatusBadRequest, ErrImportValidation, []string{"Satır 2: x"})
	})
	if body.Error.Code != ErrImportValidation || len(body.Error.Details) != 1 {
		t.Errorf("error = %+v", body.Error)
	}
}

func TestRequestLoggerInContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(zerolog.New(nil)))
	var got *zerolog.Logger
	r.GET("/", func(c *gin.Context) {
		got = zerolog.Ctx(c.Request.Context())
		Success(c, http.StatusOK, nil)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.GetLevel() == zerolog.Disabled {
		t.Error("request logger not attached to context")
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 21)
	if p.TotalPages != 3 || p.Page != 2 || p.TotalItems != 21 {
		t.Errorf("pagination = %+v", p)
	}
	if NewPagination(1, 0, 5).TotalPages != 0 {
		t.Error("zero per page should yield zero pages")
	}
}
