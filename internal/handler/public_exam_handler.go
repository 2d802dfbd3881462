package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/istanbulinstitute/educrm-exam/internal/middleware"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
	"github.com/istanbulinstitute/educrm-exam/internal/validator"
)

// PublicExamHandler serves the unauthenticated candidate endpoints.
type PublicExamHandler struct {
	examService       *service.ExamService
	submissionService *service.SubmissionService
}

// NewPublicExamHandler creates a new PublicExamHandler.
func NewPublicExamHandler(examService *service.ExamService, submissionService *service.SubmissionService) *PublicExamHandler {
	return &PublicExamHandler{
		examService:       examService,
		submissionService: submissionService,
	}
}

// GetExamByCode godoc
// GET /api/v1/public/exams/:code
// Returns the candidate view of an active exam. With ?email= the candidate's
// registration, payment and previous attempts are checked first.
func (h *PublicExamHandler) GetExamByCode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		response.Fail(c, http.StatusNotFound, response.ErrPublicExamNotFound)
		return
	}

	exam, err := h.examService.GetPublicByCode(c.Request.Context(), code, c.Query("email"))
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, exam)
}

// SubmitExam godoc
// POST /api/v1/public/exams/submit
// Grades a candidate's answers once and stores the result.
func (h *PublicExamHandler) SubmitExam(c *gin.Context) {
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		code := response.ErrValidation
		for field := range fields {
			if strings.HasPrefix(field, "studentInfo") {
				code = response.ErrStudentInfoMissing
				break
			}
		}
		response.FailWithFields(c, http.StatusBadRequest, code, fields)
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, response.ErrSubmitFailed)
		return
	}

	msgID := "submission.failed"
	if result.IsPassed {
		msgID = "submission.passed"
	}
	result.Message = middleware.GetLocalizer(c).T(msgID)

	response.Success(c, http.StatusCreated, result)
}
