// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

// Package validation checks map API request parameters with
// go-playground/validator v10.
//
// Problems name the parameter the client sent. The name comes from the
// `query` tag for query parameters or the `path` tag for chi URL parameters,
// falling back to the Go field name:
//
//	type DetailRequest struct {
//	    ID string `path:"id" validate:"entityid"`
//	}
//
//	if probs := validation.Check(&req); probs != nil {
//	    rw.ValidationError(probs.Message(), probs.Details())
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxEntityIDLength bounds site and person ids forwarded to the backend.
const MaxEntityIDLength = 64

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the vietmap rules registered.
// The instance caches struct metadata, so it is built once.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(paramName)

		// Registration only fails for an empty tag or a nil func.
		_ = validate.RegisterValidation("entityid", validateEntityID)
		_ = validate.RegisterValidation("notblank", validateNotBlank)
	})
	return validate
}

// Problem is one request parameter that broke a rule.
type Problem struct {
	Param   string // parameter name as sent by the client
	Rule    string // validator tag, e.g. "latitude"
	Arg     string // tag argument, e.g. "200" for max=200
	Value   any
	Message string
}

// Problems lists every parameter that failed. Check never returns an empty
// non-nil Problems.
type Problems []Problem

func (p Problems) Error() string {
	return p.Message()
}

// Message is the client-facing summary. A single problem is reported as is;
// several are prefixed with their parameter names.
func (p Problems) Message() string {
	switch len(p) {
	case 0:
		return "invalid request parameters"
	case 1:
		return p[0].Message
	}
	parts := make([]string, len(p))
	for i, prob := range p {
		parts[i] = prob.Param + ": " + prob.Message
	}
	return strings.Join(parts, "; ")
}

// Details is the structured payload of a VALIDATION_ERROR response.
func (p Problems) Details() map[string]any {
	if len(p) == 1 {
		return map[string]any{
			"field": p[0].Param,
			"tag":   p[0].Rule,
			"value": p[0].Value,
		}
	}
	fields := make([]map[string]any, len(p))
	for i, prob := range p {
		fields[i] = map[string]any{
			"field":   prob.Param,
			"tag":     prob.Rule,
			"message": prob.Message,
		}
	}
	return map[string]any{"fields": fields}
}

// Has reports whether param failed rule.
func (p Problems) Has(param, rule string) bool {
	for _, prob := range p {
		if prob.Param == param && prob.Rule == rule {
			return true
		}
	}
	return false
}

// Check validates a request struct and returns nil when it passes.
func Check(req any) Problems {
	err := Validator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Not a struct: a programming error, still reported as a 400.
		return Problems{{Param: "request", Rule: "invalid", Message: err.Error()}}
	}

	probs := make(Problems, len(fieldErrs))
	for i, fe := range fieldErrs {
		probs[i] = Problem{
			Param:   fe.Field(),
			Rule:    fe.Tag(),
			Arg:     fe.Param(),
			Value:   fe.Value(),
			Message: describe(fe),
		}
	}
	return probs
}

var ruleMessages = map[string]string{
	"required":  "%s is required",
	"notblank":  "%s must not be blank",
	"entityid":  "%s must be a non-blank identifier of at most 64 characters without slashes",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
}

var ruleMessagesWithArg = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func describe(fe validator.FieldError) string {
	name, rule, arg := fe.Field(), fe.Tag(), fe.Param()
	if tmpl, ok := ruleMessages[rule]; ok {
		return fmt.Sprintf(tmpl, name)
	}
	if tmpl, ok := ruleMessagesWithArg[rule]; ok {
		return fmt.Sprintf(tmpl, name, arg)
	}

	// min and max count runes on strings.
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch rule {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", name, arg, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", name, arg, unit)
	}
	return fmt.Sprintf("%s failed %s validation", name, rule)
}

// paramName reports a field by its query or path parameter name.
func paramName(field reflect.StructField) string {
	for _, key := range []string{"query", "path"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		if name == "-" {
			break
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// validateEntityID accepts backend entity ids. They are spliced into
// backend paths, so separators and query characters are refused.
func validateEntityID(fl validator.FieldLevel) bool {
	id := strings.TrimSpace(fl.Field().String())
	return id != "" && len(id) <= MaxEntityIDLength && !strings.ContainsAny(id, "/\\?#")
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
