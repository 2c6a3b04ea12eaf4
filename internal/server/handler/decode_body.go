package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DecodeBody decodes a single JSON object from the request body into T and
// validates its struct tags. Unknown fields and trailing data are rejected.
// Callers cap the body with http.MaxBytesReader; an oversize body is a 413.
func DecodeBody[T any](r *http.Request) (T, error) {
	var v T

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, decodeErr(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return v, ClientErr(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return v, ClientErr(http.StatusBadRequest, "body must contain a single json object")
	}

	if err := validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return v, validationErr(ve)
		}
		return v, ClientErr(http.StatusBadRequest, "invalid request body")
	}
	return v, nil
}

func decodeErr(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return ClientErr(http.StatusBadRequest, "body must not be empty")
	case errors.As(err, &tooLarge):
		return ClientErr(http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return ClientErr(http.StatusBadRequest, "body contains badly-formed json")
	case errors.As(err, &typeErr):
		return ClientErr(http.StatusBadRequest, fmt.Sprintf("%s has the wrong type", typeErr.Field))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return ClientErr(http.StatusBadRequest, fmt.Sprintf("unknown field %s", field))
	default:
		return ClientErr(http.StatusBadRequest, "invalid request body")
	}
}

func validationErr(ve validator.ValidationErrors) error {
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "base64":
			msgs = append(msgs, fmt.Sprintf("%s must be standard base64", field))
		case "startswith":
			msgs = append(msgs, fmt.Sprintf("%s must start with %q", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return ClientErr(http.StatusBadRequest, msgs...)
}
