// Copyright (c) 2026 Parcelia. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Session Lifecycle: ceilings for the probe/logout/event paths.
  - Rate Limiting: burst capacities and IP tracking TTLs.
  - Security: JWT issuer and cookie configuration.

Using this package ensures magic strings and magic numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "parcelia-backoffice"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Session Lifecycle

const (
	// SessionProbeTimeout is the hard ceiling on the initial session probe.
	// A probe that exceeds it is treated as a connection error, never as a
	// stuck "loading" state.
	SessionProbeTimeout = 10 * time.Second

	// LogoutTimeout is the ceiling on the sign-out network call. The in-flight
	// logout guard is forcibly cleared once it elapses so the operation can
	// never wedge permanently.
	LogoutTimeout = 3 * time.Second

	// SignInEventTimeout bounds profile resolution triggered by a pushed
	// SIGNED_IN event. On expiry the engine falls back to unauthenticated.
	SignInEventTimeout = 5 * time.Second

	// AuthEventDedupWindow is the interval inside which a repeated
	// (event type, identity) pair from the auth stream is discarded.
	AuthEventDedupWindow = 2 * time.Second

	// ProfileRetryAttempts bounds profile lookups right after sign-in, when
	// the directory row may lag behind the auth identity.
	ProfileRetryAttempts = 3

	// ProfileRetryBaseDelay is multiplied by the attempt number to produce
	// the incremental backoff between profile lookup attempts.
	ProfileRetryBaseDelay = 250 * time.Millisecond

	// HistorySettleDelay is how long the colis tracker waits before
	// re-fetching the audit trail after appending an entry, to absorb
	// read-after-write lag in the store.
	HistorySettleDelay = 400 * time.Millisecond

	// HistoryPageSize is the number of audit entries loaded into a detail view.
	HistoryPageSize = 20
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "parcelia.app"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"

	// RefreshTokenTTL is how long a refresh-token session stays valid.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// AccessTokenTTL is the lifetime of a signed JWT access token.
	AccessTokenTTL = 15 * time.Minute

	// SessionCleanupInterval is how often expired refresh-token sessions
	// are physically removed.
	SessionCleanupInterval = 1 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCore   = "core"
	SchemaUsers  = "users"
	SchemaSystem = "system"
)

// # Status Catalog Types

const (
	// StatusTypeColis selects the catalog entries applicable to parcels.
	StatusTypeColis = "colis"

	// StatusTypeBon selects the catalog entries applicable to distribution vouchers.
	StatusTypeBon = "bon"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixStatusCatalog = "catalog:statuses:"
	RedisChannelAuthEvents   = "auth:events"
)
