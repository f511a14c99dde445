// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package httpwire_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/internal/httpwire"
	"github.com/taibuivan/biblio/internal/platform/apperr"
)

/*
TestResponse_Render verifies the wire framing: status line, fixed headers, a
correct Content-Length, and the body after one blank line.
*/
func TestResponse_Render(t *testing.T) {
	response := httpwire.OK(map[string]string{"status": "ok"})
	wire := string(response.Render())

	head, body, found := strings.Cut(wire, "\r\n\r\n")
	require.True(t, found, "head and body separated by a blank line")

	lines := strings.Split(head, "\r\n")
	assert.Equal(t, "HTTP/1.1 200 OK", lines[0])
	assert.Contains(t, lines, "Content-Type: application/json; charset=utf-8")
	assert.Contains(t, lines, "Access-Control-Allow-Origin: *")
	assert.Contains(t, lines, fmt.Sprintf("Content-Length: %d", len(body)))
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

/*
TestError_AppError verifies the error envelope for a typed application error.
*/
func TestError_AppError(t *testing.T) {
	response := httpwire.Error(context.Background(), apperr.NotFound("Book"))
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(response.Body(), &envelope))
	assert.Equal(t, "Book not found", envelope["error"])
	assert.Equal(t, "NOT_FOUND", envelope["code"])
}

/*
TestError_ValidationDetails verifies that field errors ride in the envelope.
*/
func TestError_ValidationDetails(t *testing.T) {
	err := apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   "email",
		Message: "Must be a valid email address",
	})

	response := httpwire.Error(context.Background(), err)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)

	var envelope struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(response.Body(), &envelope))
	require.Len(t, envelope.Details, 1)
	assert.Equal(t, "email", envelope.Details[0].Field)
}

/*
TestError_UnknownError verifies that arbitrary errors degrade to a generic 500
without leaking their message.
*/
func TestError_UnknownError(t *testing.T) {
	response := httpwire.Error(context.Background(), fmt.Errorf("pq: connection refused at 10.0.0.3"))
	assert.Equal(t, http.StatusInternalServerError, response.StatusCode)

	body := string(response.Body())
	assert.NotContains(t, body, "10.0.0.3", "internal details never reach the client")
	assert.Contains(t, body, "An unexpected error occurred")
}

/*
TestMessage verifies the single-field message payload.
*/
func TestMessage(t *testing.T) {
	response := httpwire.Message(http.StatusOK, "Logged out successfully")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, string(response.Body()))
}
