// Package response writes the JSON envelopes shared by every HTTP handler.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	headerContentType   = "Content-Type"
	mimeApplicationJSON = "application/json"

	msgSomethingWrong = "something went wrong, please try again later"
)

// Envelope wraps successful payloads.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// CustomError carries the status code and the message safe to show a client.
// DevMessage and Location are only echoed outside production.
type CustomError struct {
	StatusCode    int         `json:"status_code"`
	Success       bool        `json:"success"`
	ClientMessage string      `json:"message"`
	Data          interface{} `json:"data,omitempty"`
	DevMessage    string      `json:"dev_message,omitempty"`
	Location      *Location   `json:"location,omitempty"`
}

type Location struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"function_name"`
}

func (e *CustomError) Error() string {
	if e.Location == nil {
		return e.DevMessage
	}
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, e.Location.File, e.Location.Line, e.Location.FunctionName)
}

// WrapWithError records the caller and appends err to the developer message.
func WrapWithError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Location:      location(2),
	}
}

// WithData attaches a payload to an error response, e.g. the question to ask again.
func (e *CustomError) WithData(data interface{}) *CustomError {
	e.Data = data
	return e
}

func location(skip int) *Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return &Location{File: "unknown", FunctionName: "unknown"}
	}
	return &Location{File: file, Line: line, FunctionName: runtime.FuncForPC(pc).Name()}
}

// Writer renders envelopes; production hides developer details.
type Writer struct {
	log        *zap.Logger
	production bool
}

func NewWriter(log *zap.Logger, production bool) *Writer {
	return &Writer{log: log, production: production}
}

func (rw *Writer) Success(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set(headerContentType, mimeApplicationJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(Envelope{Success: true, Message: message, Data: data}); err != nil {
		rw.log.Error("response encode failed", zap.Error(err))
	}
}

func (rw *Writer) Error(w http.ResponseWriter, err error) {
	out := CustomError{StatusCode: http.StatusInternalServerError, ClientMessage: msgSomethingWrong}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		out.StatusCode = customErr.StatusCode
		out.ClientMessage = customErr.ClientMessage
		out.Data = customErr.Data
		if !rw.production {
			out.DevMessage = customErr.DevMessage
			out.Location = customErr.Location
		}
		if customErr.StatusCode >= http.StatusInternalServerError {
			rw.log.Error(customErr.DevMessage, zap.Any("location", customErr.Location))
		} else {
			rw.log.Debug(customErr.DevMessage, zap.Int("status", customErr.StatusCode))
		}
	} else {
		rw.log.Error(err.Error())
	}

	w.Header().Set(headerContentType, mimeApplicationJSON)
	w.WriteHeader(out.StatusCode)
	if encErr := json.NewEncoder(w).Encode(out); encErr != nil {
		rw.log.Error("response encode failed", zap.Error(encErr))
	}
}

// FirstValidationError turns validator output into "field tag" text.
func FirstValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		if first.Param() != "" {
			return fmt.Sprintf("%s failed on %s=%s", first.Field(), first.Tag(), first.Param())
		}
		return fmt.Sprintf("%s failed on %s", first.Field(), first.Tag())
	}
	return "invalid request"
}
