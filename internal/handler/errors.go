package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/importer"
	"github.com/istanbulinstitute/educrm-exam/internal/middleware"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
	"github.com/rs/zerolog"
)

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// errorTable maps service sentinels to the HTTP status and error code the
// clients expect. Order matters only for errors that wrap one another.
var errorTable = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrExamNotFound, http.StatusNotFound, response.ErrExamNotFound},
	{service.ErrPublicExamNotFound, http.StatusNotFound, response.ErrPublicExamNotFound},
	{service.ErrQuestionNotFound, http.StatusNotFound, response.ErrQuestionNotFound},
	{service.ErrResultNotFound, http.StatusNotFound, response.ErrResultNotFound},
	{service.ErrCourseNotFound, http.StatusBadRequest, response.ErrInvalidCourse},
	{service.ErrPassingScoreTooHigh, http.StatusBadRequest, response.ErrPassingScore},
	{service.ErrDuplicateOrder, http.StatusConflict, response.ErrDuplicateOrder},
	{service.ErrExamCodeExhausted, http.StatusServiceUnavailable, response.ErrExamCodeExhausted},
	{service.ErrInvalidSubmission, http.StatusBadRequest, response.ErrStudentInfoMissing},
	{service.ErrCandidateUnknown, http.StatusNotFound, response.ErrCandidateUnknown},
	{service.ErrNotRegistered, http.StatusForbidden, response.ErrNotRegistered},
	{service.ErrPaymentIncomplete, http.StatusForbidden, response.ErrPaymentIncomplete},
	{service.ErrAlreadySubmitted, http.StatusConflict, response.ErrAlreadySubmitted},
	{service.ErrExamTimeExpired, http.StatusForbidden, response.ErrExamTimeExpired},
	{service.ErrSystemOwnerMissing, http.StatusInternalServerError, response.ErrSystemOwnerMissing},
	{importer.ErrUnsupportedFormat, http.StatusBadRequest, response.ErrUnsupportedFile},
}

// respondError writes the envelope for err. Anything not in errorTable is
// logged and reported as fallback.
func respondError(c *gin.Context, err error, fallback response.ErrCode) {
	var (
		qerr *service.QuestionValidationError
		ierr *service.ImportError
		herr *importer.HeaderError
	)

	switch {
	case errors.As(err, &qerr):
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, violationMessages(c, qerr.Violations))
		return
	case errors.As(err, &ierr):
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrImportValidation, rowMessages(c, ierr.Rows))
		return
	case errors.As(err, &herr):
		msg := middleware.GetLocalizer(c).Td("import.missing_column", map[string]any{"Column": herr.Column})
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrImportValidation, []string{msg})
		return
	case errors.Is(err, service.ErrEmptyImport):
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrImportValidation,
			[]string{middleware.GetLocalizer(c).T("import.empty")})
		return
	}

	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}

	zerolog.Ctx(c.Request.Context()).Error().Err(err).
		Str("path", c.FullPath()).
		Msg("Request failed")
	response.Fail(c, http.StatusInternalServerError, fallback)
}

func violationMessages(c *gin.Context, vs []importer.Violation) []string {
	loc := middleware.GetLocalizer(c)
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, loc.Td(v.MessageID, map[string]any{"Value": v.Value}))
	}
	return out
}

func rowMessages(c *gin.Context, rows []importer.RowError) []string {
	loc := middleware.GetLocalizer(c)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		msg := loc.Td(r.MessageID, map[string]any{"Value": r.Value})
		out = append(out, loc.Td("import.row", map[string]any{"Row": r.Row, "Message": msg}))
	}
	return out
}

// paramID parses a UUID path parameter, answering INVALID_ID on failure.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
