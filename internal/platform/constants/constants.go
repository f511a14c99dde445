// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire service.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Connection Timing: Read/Write deadlines for the TCP listener.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Lending Policy: Loan and session lifetimes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "biblio-api"
	AppVersion = "0.1.0-dev"
)

// # Connection Timing

const (
	// MaxRequestBytes is the size of the single read buffer per connection.
	// The whole request must fit; there is no streaming or chunked decoding.
	MaxRequestBytes = 8192

	// DefaultReadTimeout is the maximum duration for reading the request buffer.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration for writing the response.
	DefaultWriteTimeout = 10 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle,
	// including storage round trips.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight connections during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Lending Policy

const (
	// SessionTTL is the lifetime of a session token from creation.
	SessionTTL = 24 * time.Hour

	// LoanPeriod is the span between borrowing a book and its due date.
	LoanPeriod = 14 * 24 * time.Hour
)

// # JSON Field Identifiers

const (
	FieldError    = "error"
	FieldCode     = "code"
	FieldDetails  = "details"
	FieldMessage  = "message"
	FieldToken    = "token"
	FieldUser     = "user"
	FieldRecordID = "record_id"
	FieldStatus   = "status"
	FieldChecks   = "checks"
)
