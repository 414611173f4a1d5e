// Package api defines the uniform response envelope of the HTTP surface.
package api

import (
	"time"

	"github.com/google/uuid"
)

// CodeOK is the envelope success code.
const CodeOK = 0

// Response wraps every payload the server returns.
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"` // epoch millis
	TraceID   string `json:"traceId"`
}

// Success builds a success envelope around data.
func Success(data any) Response {
	return Response{
		Code:      CodeOK,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		TraceID:   uuid.NewString(),
	}
}

// Error builds an error envelope.
func Error(code int, message string) Response {
	return Response{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		TraceID:   uuid.NewString(),
	}
}
