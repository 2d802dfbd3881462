package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
)

// ResultHandler serves stored exam results to administrators.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListExamResults godoc
// GET /api/v1/admin/exams/:id/results
// Lists results newest first with candidate details and aggregate stats.
func (h *ResultHandler) ListExamResults(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	results, err := h.resultService.ListByExam(c.Request.Context(), examID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, results)
}

// GetResult godoc
// GET /api/v1/admin/results/:id
// Returns one result with its per-question audit trail.
func (h *ResultHandler) GetResult(c *gin.Context) {
	resultID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.resultService.Get(c.Request.Context(), resultID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
