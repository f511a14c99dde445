// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package httpwire implements the wire protocol of the Biblio API: a hand-rolled,
HTTP/1.1-shaped request parser, a response builder, and a typed route table.

# Protocol Contract

The server reads each connection exactly once into a fixed buffer and trusts it
to contain the whole message: request line, headers, blank line, body. There is
no Content-Length validation, no keep-alive, no pipelining, and no streaming —
one request buffer in, one response buffer out.

Architecture:

  - Request: Parsed view over the raw buffer (method, path, headers, body).
  - Response: Immutable JSON payload rendered with status line and headers.
  - Router: Declarative table matching method + path with typed parameters.
*/
package httpwire

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedRequest is returned by [Parse] when the buffer does not contain
// a usable request line. The caller maps it to a 400 response.
var ErrMalformedRequest = errors.New("httpwire: malformed request")

// # Request Parsing

// Request is the parsed form of one raw request buffer.
type Request struct {
	// Method is the HTTP verb from the request line (e.g. "POST").
	Method string
	// Path is the request target verbatim, including any query string.
	Path string
	// Headers maps lowercased header names to their trimmed values.
	Headers map[string]string
	// Body is the remainder of the buffer after the first blank line, verbatim.
	Body []byte

	// ID is the trailing integer path segment, populated by the router for
	// ParamInt routes only.
	ID int64
	// Query is the decoded query parameter value, populated by the router for
	// ParamQuery routes only.
	Query string
}

/*
Parse turns one raw request buffer into a [Request].

Description: Splits the buffer at the first blank line; the request line is
whitespace-delimited (method and target required), header lines are split on
the first colon, and everything after the blank line is the body verbatim.

Parameters:
  - buf: []byte (The single read from the connection)

Returns:
  - *Request: Parsed request
  - error: ErrMalformedRequest for empty input or an unusable request line
*/
func Parse(buf []byte) (*Request, error) {
	raw := string(buf)

	// Split head (request line + headers) from the body at the first blank line.
	head := raw
	body := ""
	if at := strings.Index(raw, "\r\n\r\n"); at >= 0 {
		head = raw[:at]
		body = raw[at+4:]
	} else if at := strings.Index(raw, "\n\n"); at >= 0 {
		head = raw[:at]
		body = raw[at+2:]
	}

	lines := splitLines(head)
	if len(lines) == 0 {
		return nil, ErrMalformedRequest
	}

	// Request lines are whitespace-delimited: METHOD TARGET [VERSION].
	requestLine := strings.Fields(lines[0])
	if len(requestLine) < 2 {
		return nil, ErrMalformedRequest
	}

	request := &Request{
		Method:  requestLine[0],
		Path:    requestLine[1],
		Headers: make(map[string]string, len(lines)-1),
		Body:    []byte(body),
	}

	// Header lines up to the blank line; malformed lines are skipped rather
	// than rejected — the buffer is trusted input by contract.
	for _, line := range lines[1:] {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		request.Headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}

	return request, nil
}

// Header returns the value of the named header (case-insensitive), or "".
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

/*
BearerToken extracts the session token from the Authorization header.

Description: The header name is matched case-insensitively; an optional
"Bearer " prefix (any case) is stripped. A missing header yields an empty
token — absence of credentials is not a parse error.

Returns:
  - string: The opaque token, or "" when no Authorization header is present
*/
func (r *Request) BearerToken() string {
	value := strings.TrimSpace(r.Header("Authorization"))
	if value == "" {
		return ""
	}

	const bearerPrefix = "bearer "
	if len(value) >= len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(value[len(bearerPrefix):])
	}

	return value
}

// DecodeJSON unmarshals the request body into the target structure.
func (r *Request) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// splitLines splits on "\n" and trims a trailing "\r" from each line, so both
// CRLF and bare-LF framed requests parse identically.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
