package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/nbbs/internal/api"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/logger"
)

const internalErrorMessage = "Internal server error."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report query parameter names instead of struct field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("query"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func WriteJSON(w http.ResponseWriter, v any) {
	WriteJSONWithStatusCode(w, v, http.StatusOK)
}

func WriteJSONWithStatusCode(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// ErrorMessage returns the status code and the message a client may see.
// Errors without a user visible message are reported as a generic 500.
func ErrorMessage(err error) (int, string) {
	statusCode := internal_errors.StatusCode(err)

	var withCode *internal_errors.ErrorWithStatusCode
	if errors.As(err, &withCode) {
		return statusCode, withCode.Message
	}
	var e *internal_errors.Error
	if errors.As(err, &e) {
		return statusCode, e.Message
	}
	return http.StatusInternalServerError, internalErrorMessage
}

// WriteErrorAndStatusCode writes {"error": message} with the mapped status code.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	statusCode, message := ErrorMessage(err)
	if statusCode >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
	}
	WriteJSONWithStatusCode(w, api.ErrorResponse{Error: message}, statusCode)
}

// WriteErrorLegacy writes {"error": message} with status 200.
func WriteErrorLegacy(w http.ResponseWriter, err error) {
	statusCode, message := ErrorMessage(err)
	if statusCode >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
	}
	WriteJSONWithStatusCode(w, api.ErrorResponse{Error: message}, http.StatusOK)
}

// Validate checks a request DTO. A missing required parameter is reported as
// "Too few parameters.", a malformed one names the parameter.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return internal_errors.ErrParamMissing
		}
	}
	return internal_errors.Validation("Invalid parameter '%s'.", verrs[0].Field())
}

// GetIP returns the client host. With trustProxy the first X-Forwarded-For
// entry wins, then X-Real-IP; otherwise only the connection address is used.
func GetIP(r *http.Request, trustProxy bool) (string, error) {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
				return ip, nil
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
			return ip, nil
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", &internal_errors.ErrorWithStatusCode{Message: "No valid ip found.", StatusCode: http.StatusBadRequest}
	}
	return ip, nil
}
