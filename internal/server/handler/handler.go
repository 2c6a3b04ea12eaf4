package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Response is what every handler returns on success.
type Response struct {
	Status int
	Body   any
}

// Func is the handler signature every endpoint uses.
// Return (*Response, nil) on success or (nil, err) on failure.
type Func func(r *http.Request) (*Response, error)

// Handle adapts a Func into a standard http.HandlerFunc. Errors of type Error are
// written as given; any other error becomes a generic 500.
func Handle(fn Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := fn(r)
		if err != nil {
			var apiErr Error
			if !errors.As(err, &apiErr) {
				writeJSON(w, http.StatusInternalServerError, errorBody{Errors: []string{"internal error"}})
				return
			}
			if apiErr.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(apiErr.RetryAfter))
			}
			writeJSON(w, apiErr.Code, errorBody{Errors: apiErr.Messages})
			return
		}
		if resp.Body != nil {
			writeJSON(w, resp.Status, resp.Body)
		} else {
			w.WriteHeader(resp.Status)
		}
	}
}

// OK wraps body in a 200 response.
func OK(body any) *Response {
	return &Response{Status: http.StatusOK, Body: body}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
