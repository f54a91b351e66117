package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	obsmetrics "github.com/smallbiznis/rentaldocs/internal/observability/metrics"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"github.com/smallbiznis/rentaldocs/pkg/db"
	"github.com/smallbiznis/rentaldocs/pkg/db/pagination"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

const (
	messageRequired = "Champ obligatoire"
	messageInvalid  = "Valeur invalide"
	messageGite     = "Gîte introuvable"
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status == http.StatusNotFound && errors.Is(lastErr.Err, documentdomain.ErrNotFound) {
			if kind := documentdomain.Kind(c.GetString(contextKindKey)); kind.Valid() {
				payload.Message = kind.NotFoundMessage()
			}
		}
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "Requête invalide")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// bindError turns a gin binding failure into field-keyed errors.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &ValidationErrors{Errors: make([]ValidationError, 0, len(verrs))}
		for _, fe := range verrs {
			message := messageInvalid
			if fe.Tag() == "required" {
				message = messageRequired
			}
			out.Errors = append(out.Errors, ValidationError{
				Field:   fieldName(fe),
				Code:    fe.Tag(),
				Message: message,
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return newValidationError(typeErr.Field, "invalid_type", messageInvalid)
	}
	if errors.Is(err, io.EOF) {
		return newValidationError("request", "empty_body", "Requête vide")
	}
	return invalidRequestError()
}

// fieldName drops the struct prefix so nested errors read like "options.draps.nb_lits".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, validationPayload(vErr.Errors)
	}

	var docErr *documentdomain.ValidationError
	if errors.As(err, &docErr) {
		fields := make([]ValidationError, 0, len(docErr.Fields))
		for _, f := range docErr.Fields {
			fields = append(fields, ValidationError{Field: f.Field, Code: f.Code, Message: f.Message})
		}
		return http.StatusBadRequest, validationPayload(fields)
	}

	if errors.Is(err, documentdomain.ErrInvalidDateRange) {
		return http.StatusBadRequest, validationPayload([]ValidationError{{
			Field:   "date_fin",
			Code:    documentdomain.ErrInvalidDateRange.Error(),
			Message: documentdomain.DateRangeMessage,
		}})
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, validationPayload([]ValidationError{{
			Field:   validationErrorField(code),
			Code:    code,
			Message: messageInvalid,
		}})
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, gitedomain.ErrDuplicatePrefix):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "Ce préfixe de contrat est déjà utilisé.",
		}
	case errors.Is(err, gitedomain.ErrNotFound),
		errors.Is(err, documentdomain.ErrGiteNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: messageGite,
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, renderer.ErrRenderFailed):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "render_unavailable",
			Message: "Le moteur de rendu est indisponible, réessayez.",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func validationPayload(fields []ValidationError) errorPayload {
	return errorPayload{
		Type:    "validation_error",
		Message: "validation error",
		Errors:  fields,
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidPageToken):
		return true
	case isDocumentValidationError(err),
		isGiteValidationError(err):
		return true
	default:
		return false
	}
}

func isDocumentValidationError(err error) bool {
	switch {
	case errors.Is(err, documentdomain.ErrInvalidID),
		errors.Is(err, documentdomain.ErrInvalidKind),
		errors.Is(err, documentdomain.ErrInvalidGite),
		errors.Is(err, documentdomain.ErrInvalidDate),
		errors.Is(err, documentdomain.ErrInvalidPaymentStatus),
		errors.Is(err, documentdomain.ErrInvalidDepositStatus),
		errors.Is(err, documentdomain.ErrInvalidFilter):
		return true
	default:
		return false
	}
}

func isGiteValidationError(err error) bool {
	switch {
	case errors.Is(err, gitedomain.ErrInvalidID),
		errors.Is(err, gitedomain.ErrInvalidName),
		errors.Is(err, gitedomain.ErrInvalidPrefix),
		errors.Is(err, gitedomain.ErrInvalidAddress),
		errors.Is(err, gitedomain.ErrInvalidCapacity),
		errors.Is(err, gitedomain.ErrInvalidOwners),
		errors.Is(err, gitedomain.ErrInvalidBanking),
		errors.Is(err, gitedomain.ErrInvalidAmount),
		errors.Is(err, gitedomain.ErrInvalidDepositRate):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		db.IsNotFound(err):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	code := err.Error()
	// wrapped sentinels keep their own text at the end
	if idx := strings.LastIndex(code, ": "); idx >= 0 {
		code = code[idx+2:]
	}
	return code
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "invalid_gite":
		return "gite_id"
	case "invalid_payment_status":
		return "statut_paiement"
	case "invalid_deposit_status":
		return "statut_paiement_arrhes"
	case "invalid_page_token":
		return "page_token"
	}
	return strings.TrimPrefix(code, "invalid_")
}

// classifyErrorForLog feeds the request logger with the response type and a storage reason.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, obsmetrics.ClassifyError(err)
}
