package handler

import (
	"fmt"
	"strings"

	"checkout/internal/checkout/models"
	dErrors "checkout/pkg/domain-errors"
)

const (
	maxEditsPerRequest = 32
	maxFieldValueLen   = 256
)

// FieldEditRequest is one field change on the wire, keyed by the dotted
// field name used in validation errors.
type FieldEditRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// EditFieldsRequest is the body of PATCH /checkout/sessions/{id}/fields.
type EditFieldsRequest struct {
	Edits []FieldEditRequest `json:"edits"`
}

// Normalize trims field names. Values are kept verbatim; formatting
// belongs to the edit reducer.
func (r *EditFieldsRequest) Normalize() {
	if r == nil {
		return
	}
	for i := range r.Edits {
		r.Edits[i].Field = strings.TrimSpace(r.Edits[i].Field)
	}
}

// Validate enforces size limits and field names.
func (r *EditFieldsRequest) Validate() error {
	if r == nil || len(r.Edits) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "edits must not be empty")
	}
	if len(r.Edits) > maxEditsPerRequest {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("too many edits (max %d)", maxEditsPerRequest))
	}
	for _, e := range r.Edits {
		if len(e.Value) > maxFieldValueLen {
			return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("value for %s is too long", e.Field))
		}
		if _, err := models.ParseFieldEdit(e.Field, e.Value); err != nil {
			return dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error())
		}
	}
	return nil
}

// ToEdits converts a validated request into typed edits.
func (r *EditFieldsRequest) ToEdits() ([]models.FieldEdit, error) {
	edits := make([]models.FieldEdit, 0, len(r.Edits))
	for _, e := range r.Edits {
		edit, err := models.ParseFieldEdit(e.Field, e.Value)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error())
		}
		edits = append(edits, edit)
	}
	return edits, nil
}
