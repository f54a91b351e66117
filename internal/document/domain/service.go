package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/rentaldocs/pkg/db/pagination"
)

type Service interface {
	PreviewHTML(ctx context.Context, kind Kind, payload Payload) (Preview, error)
	PreviewPDF(ctx context.Context, kind Kind, payload Payload) (Preview, error)
	Create(ctx context.Context, kind Kind, payload Payload) (Document, error)
	Update(ctx context.Context, kind Kind, id string, payload Payload) (Document, error)
	Get(ctx context.Context, kind Kind, id string) (Document, error)
	List(ctx context.Context, kind Kind, filter ListFilter) ([]Document, pagination.PageInfo, error)
	Delete(ctx context.Context, kind Kind, id string) error
	SetPaymentStatus(ctx context.Context, id, status string) (Document, error)
	SetDepositStatus(ctx context.Context, id, status string) (Document, error)
	Regenerate(ctx context.Context, kind Kind, id string) error
	Artifact(ctx context.Context, kind Kind, id string) (Artifact, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidKind          = errors.New("invalid_kind")
	ErrInvalidGite          = errors.New("invalid_gite")
	ErrGiteNotFound         = errors.New("gite_not_found")
	ErrNotFound             = errors.New("document_not_found")
	ErrInvalidDate          = errors.New("invalid_date")
	ErrInvalidDateRange     = errors.New("invalid_date_range")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrInvalidDepositStatus = errors.New("invalid_deposit_status")
	ErrInvalidFilter        = errors.New("invalid_filter")
	ErrValidation           = errors.New("validation_failed")
)

// DateRangeMessage is shown when the stay ends before it starts.
const DateRangeMessage = "La date de fin doit être postérieure à la date de début."

type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError collects every field rejected by a commit.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// Required records a missing field.
func (e *ValidationError) Required(field string) {
	e.add(field, "required", "Champ obligatoire")
}

// Invalid records a malformed field.
func (e *ValidationError) Invalid(field, code, message string) {
	e.add(field, code, message)
}

// Err returns nil when no field was rejected.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
