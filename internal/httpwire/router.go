// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package httpwire

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/taibuivan/biblio/internal/platform/apperr"
)

// # Route Table

// HandlerFunc is the signature every route handler implements.
//
// Handlers receive the parsed request plus a context carrying the request id
// and logger, and must return exactly one response.
type HandlerFunc func(ctx context.Context, request *Request) *Response

// ParamKind declares how a route extracts its parameter, if any.
type ParamKind int

const (
	// ParamNone matches method + path exactly.
	ParamNone ParamKind = iota

	// ParamInt matches method + path prefix; the trailing segment must parse
	// as a positive integer identifier. A malformed segment resolves to
	// not-found — it is never silently mapped to a default id.
	ParamInt

	// ParamQuery matches method + exact path (before '?') and decodes a single
	// named query parameter.
	ParamQuery
)

// route is one entry of the dispatch table.
type route struct {
	method    string
	path      string // exact path, or the prefix for ParamInt routes
	kind      ParamKind
	queryName string
	handle    HandlerFunc
}

// Router matches a parsed request against its route table and invokes the
// single matching handler.
//
// # Matching Rules
//
// Routes are tried in registration order; the first method+path match wins and
// no fallback chain exists beyond the table. An unmatched request yields 404.
type Router struct {
	routes []route
}

// NewRouter creates an empty route table.
func NewRouter() *Router {
	return &Router{}
}

// Handle registers an exact-match route.
func (router *Router) Handle(method, path string, handler HandlerFunc) {
	router.routes = append(router.routes, route{
		method: method,
		path:   path,
		kind:   ParamNone,
		handle: handler,
	})
}

// HandleInt registers a prefix route whose trailing segment is an integer
// identifier (e.g. "/api/books/" matching "/api/books/42").
func (router *Router) HandleInt(method, prefix string, handler HandlerFunc) {
	router.routes = append(router.routes, route{
		method: method,
		path:   prefix,
		kind:   ParamInt,
		handle: handler,
	})
}

// HandleQuery registers an exact-path route with a single named query
// parameter (e.g. "/api/books/search" with parameter "q").
func (router *Router) HandleQuery(method, path, queryName string, handler HandlerFunc) {
	router.routes = append(router.routes, route{
		method:    method,
		path:      path,
		kind:      ParamQuery,
		queryName: queryName,
		handle:    handler,
	})
}

/*
Dispatch routes one parsed request to its handler and returns the response.

Description: Splits the target into path and query string, walks the table in
registration order, extracts the declared parameter kind, and invokes the
matched handler exactly once.

Parameters:
  - ctx: context.Context (request-scoped logger and correlation id)
  - request: *Request

Returns:
  - *Response: The handler's response, or a 404 when nothing matches or a
    typed parameter is invalid
*/
func (router *Router) Dispatch(ctx context.Context, request *Request) *Response {
	path, rawQuery, _ := strings.Cut(request.Path, "?")

	for _, candidate := range router.routes {
		if candidate.method != request.Method {
			continue
		}

		switch candidate.kind {
		case ParamNone:
			if path != candidate.path {
				continue
			}
			return candidate.handle(ctx, request)

		case ParamInt:
			if !strings.HasPrefix(path, candidate.path) {
				continue
			}
			segment := path[len(candidate.path):]
			id, err := strconv.ParseInt(segment, 10, 64)
			if err != nil || id <= 0 || strings.Contains(segment, "/") {
				// The prefix claimed this request; a malformed identifier is
				// a not-found, not a default id.
				return Error(ctx, apperr.NotFound("Resource"))
			}
			request.ID = id
			return candidate.handle(ctx, request)

		case ParamQuery:
			if path != candidate.path {
				continue
			}
			values, err := url.ParseQuery(rawQuery)
			if err != nil {
				return Error(ctx, apperr.BadRequest("Malformed query string"))
			}
			request.Query = values.Get(candidate.queryName)
			return candidate.handle(ctx, request)
		}
	}

	return Error(ctx, apperr.NotFound("Resource"))
}
