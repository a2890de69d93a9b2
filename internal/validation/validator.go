// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package validation wraps go-playground/validator with a shared instance
// and messages suitable for API error bodies.
//
// Field names in errors are the JSON names ("price", "limit"), not the Go
// field names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/catalog/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

// RequestValidationError collects the failed rules of one struct.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the individual failures.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.errors))
	for i := range ve.errors {
		msgs[i] = ve.errors[i].Message
	}
	return strings.Join(msgs, "; ")
}

// ToAPIError converts the failures into an API error body.
func (ve *RequestValidationError) ToAPIError() models.APIError {
	apiErr := models.APIError{Code: models.ErrCodeValidation, Message: ve.Error()}
	switch len(ve.errors) {
	case 0:
	case 1:
		e := ve.errors[0]
		apiErr.Details = map[string]interface{}{"field": e.Field, "tag": e.Tag, "value": e.Value}
	default:
		fields := make([]map[string]interface{}, len(ve.errors))
		for i, e := range ve.errors {
			fields[i] = map[string]interface{}{"field": e.Field, "tag": e.Tag, "message": e.Message}
		}
		apiErr.Details = map[string]interface{}{"fields": fields}
	}
	return apiErr
}

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "query"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = validate.RegisterValidation("integer", isInteger)
	})
	return validate
}

// ValidateStruct returns nil or a *RequestValidationError.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestValidationError{errors: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{errors: out}
}

// ValidateItem checks a single catalog record.
func ValidateItem(item *models.Item) error {
	if verr := ValidateStruct(item); verr != nil {
		return fmt.Errorf("item %d: %w", item.ID, verr)
	}
	return nil
}

// ValidateItems checks every record and rejects duplicate ids.
func ValidateItems(items []models.Item) error {
	seen := make(map[int]struct{}, len(items))
	for i := range items {
		if err := ValidateItem(&items[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := seen[items[i].ID]; dup {
			return fmt.Errorf("record %d: duplicate id %d", i, items[i].ID)
		}
		seen[items[i].ID] = struct{}{}
	}
	return nil
}

var messageTemplates = map[string]string{
	"required": "%s is required",
	"integer":  "%s must be an integer",
}

var paramTemplates = map[string]string{
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"max":   "%s must be at most %s",
	"min":   "%s must be at least %s",
	"oneof": "%s must be one of: %s",
}

func translateError(fe validator.FieldError) string {
	if tmpl, ok := messageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	if tmpl, ok := paramTemplates[fe.Tag()]; ok {
		msg := fmt.Sprintf(tmpl, fe.Field(), fe.Param())
		if fe.Kind() == reflect.String && (fe.Tag() == "max" || fe.Tag() == "min") {
			msg += " characters"
		}
		return msg
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// isInteger accepts strings that parse as a base-10 int, sign included.
func isInteger(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	return err == nil
}
