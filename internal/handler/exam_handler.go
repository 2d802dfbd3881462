package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
	"github.com/istanbulinstitute/educrm-exam/internal/validator"
)

// ExamHandler handles exam management endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/admin/exams
// Lists exams newest first, filtered by ?search= and ?courseId=.
func (h *ExamHandler) ListExams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	filter := model.ExamFilter{
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	}
	if raw := c.Query("courseId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		filter.CourseID = &id
	}

	exams, pagination, err := h.examService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, pagination)
}

// CreateExam godoc
// POST /api/v1/admin/exams
// Creates an exam with a freshly allocated exam code.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// GetExam godoc
// GET /api/v1/admin/exams/:id
// Returns an exam with its ordered questions, answer keys included.
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// UpdateExam godoc
// PUT /api/v1/admin/exams/:id
// Updates exam metadata. Omitted fields are left unchanged.
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), examID, &req)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// DeleteExam godoc
// DELETE /api/v1/admin/exams/:id
// Deletes an exam together with its questions and results.
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), examID); err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": examID})
}

// RecalculateTotal godoc
// POST /api/v1/admin/exams/:id/recalculate-total
// Resets totalScore to the sum of question points.
func (h *ExamHandler) RecalculateTotal(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	total, err := h.examService.RecalculateTotal(c.Request.Context(), examID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"totalScore": total})
}
