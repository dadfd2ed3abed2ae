package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, err error) {
	status, body := mapError(err)
	c.AbortWithStatusJSON(status, body)
}

func mapError(err error) (int, ErrorBody) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return http.StatusBadRequest, ErrorBody{Error: "Validation failed", Code: "validation_error", Details: details}
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, ErrorBody{Error: "Validation failed", Code: "validation_error", Details: []FieldError{*fieldErr}}
	}

	var storeErr *domain.StoreError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: "Job ID not found.", Code: "not_found"}
	case errors.Is(err, errInvalidQuery):
		return http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: "invalid_input"}
	case errors.As(err, &storeErr):
		log.Error().Err(err).Str("op", storeErr.Op).Msg("job store failure")
		return http.StatusInternalServerError, ErrorBody{Error: "Job store unavailable.", Code: "store_failure"}
	default:
		log.Error().Err(err).Msg("unhandled error")
		return http.StatusInternalServerError, ErrorBody{Error: "An unexpected error occurred.", Code: "internal_error"}
	}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed on '" + fe.Tag() + "' validation"
	}
}
