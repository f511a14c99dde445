// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package httpwire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/ctxutil"
)

// # Response Building

// Response is one fully-formed JSON reply, ready to be rendered onto the wire.
//
// Handlers never touch the connection: they return a *Response and the server
// writes Render()'s bytes exactly once.
type Response struct {
	// StatusCode is the HTTP status code of the reply.
	StatusCode int
	// body is the encoded JSON payload.
	body []byte
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code,omitempty"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON builds a response with the given status code and payload.
//
// Encoding failures degrade to a 500 with a static body rather than a broken
// wire message — a handler must always produce exactly one valid response.
func JSON(statusCode int, payload any) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Response{
			StatusCode: http.StatusInternalServerError,
			body:       []byte(`{"error":"An unexpected error occurred","code":"INTERNAL_ERROR"}`),
		}
	}
	return &Response{StatusCode: statusCode, body: body}
}

// OK builds a 200 OK response with the given payload.
func OK(payload any) *Response {
	return JSON(http.StatusOK, payload)
}

// Created builds a 201 Created response with the given payload.
func Created(payload any) *Response {
	return JSON(http.StatusCreated, payload)
}

// Message builds a response whose payload is a single "message" field.
func Message(statusCode int, message string) *Response {
	return JSON(statusCode, map[string]string{constants.FieldMessage: message})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(ctx context.Context, err error) *Response {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client for security.
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
			slog.Any("cause", appError.Cause),
		)
	}

	return JSON(appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}

/*
Render serializes the response into one wire buffer.

Description: Emits an HTTP/1.1 status line, the fixed JSON/CORS headers, a
Content-Length matching the body, a blank line, and the body. The permissive
cross-origin header rides on every JSON response by contract.

Returns:
  - []byte: The complete response message
*/
func (r *Response) Render() []byte {
	reason := http.StatusText(r.StatusCode)
	head := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: application/json; charset=utf-8\r\nAccess-Control-Allow-Origin: *\r\nContent-Length: %d\r\n\r\n",
		r.StatusCode, reason, len(r.body),
	)

	buf := make([]byte, 0, len(head)+len(r.body))
	buf = append(buf, head...)
	buf = append(buf, r.body...)
	return buf
}

// Body exposes the encoded JSON payload (used by tests and logging).
func (r *Response) Body() []byte {
	return r.body
}
