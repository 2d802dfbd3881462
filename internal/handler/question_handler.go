package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/istanbulinstitute/educrm-exam/internal/importer"
	"github.com/istanbulinstitute/educrm-exam/internal/middleware"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
	"github.com/istanbulinstitute/educrm-exam/internal/validator"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// QuestionHandler handles question management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
	maxImportBytes  int64
}

// NewQuestionHandler creates a new QuestionHandler. Uploads larger than
// maxImportBytes are rejected.
func NewQuestionHandler(questionService *service.QuestionService, maxImportBytes int64) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, maxImportBytes: maxImportBytes}
}

// ListQuestions godoc
// GET /api/v1/admin/exams/:id/questions
// Lists the questions of an exam in order.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	questions, err := h.questionService.List(c.Request.Context(), examID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// AddQuestion godoc
// POST /api/v1/admin/exams/:id/questions
// Adds a single question and bumps the exam total.
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Add(c.Request.Context(), examID, &req)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// DeleteAllQuestions godoc
// DELETE /api/v1/admin/exams/:id/questions
// Removes every question of an exam and resets its total to zero.
func (h *QuestionHandler) DeleteAllQuestions(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	n, err := h.questionService.DeleteAll(c.Request.Context(), examID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": n})
}

type importRequest struct {
	Questions []importer.Row `json:"questions" binding:"required"`
}

// ImportQuestions godoc
// POST /api/v1/admin/exams/:id/questions/import
// Bulk-inserts questions from a JSON body or an uploaded CSV/XLSX file.
// Nothing is written unless every row is valid.
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var rows []importer.Row
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		parsed, ok := h.readUpload(c)
		if !ok {
			return
		}
		rows = parsed
	} else {
		var req importRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		rows = req.Questions
	}

	summary, err := h.questionService.Import(c.Request.Context(), examID, rows)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"count":       summary.Count,
		"totalPoints": summary.TotalPoints,
		"message": middleware.GetLocalizer(c).Td("import.success", map[string]any{
			"Count": summary.Count,
		}),
	})
}

// readUpload parses the "file" form field. It writes the error response
// itself and reports false when the upload is unusable.
func (h *QuestionHandler) readUpload(c *gin.Context) ([]importer.Row, bool) {
	if h.maxImportBytes > 0 {
		if c.Request.ContentLength > h.maxImportBytes {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return nil, false
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImportBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return nil, false
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return nil, false
	}
	defer file.Close()

	rows, err := importer.Parse(header.Filename, file)
	if err != nil {
		respondError(c, err, response.ErrInvalidPayload)
		return nil, false
	}
	return rows, true
}

// DownloadTemplate godoc
// GET /api/v1/admin/exams/:id/questions/import/template
// Serves the import template as CSV, or XLSX with ?format=xlsx.
func (h *QuestionHandler) DownloadTemplate(c *gin.Context) {
	var (
		buf         bytes.Buffer
		err         error
		contentType string
		ext         string
	)

	switch strings.ToLower(c.DefaultQuery("format", "csv")) {
	case "xlsx":
		err = importer.WriteTemplateXLSX(&buf)
		contentType, ext = mimeXLSX, ".xlsx"
	case "csv":
		err = importer.WriteTemplateCSV(&buf)
		contentType, ext = mimeCSV, ".csv"
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+importer.TemplateFilename+ext+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:id
// Returns a single question with its answer key.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
// Edits a question; the exam total follows any change in points.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), questionID, &req)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
// Deletes a question and subtracts its points from the exam total.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), questionID); err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": questionID})
}
