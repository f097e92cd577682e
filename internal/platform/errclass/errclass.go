// Copyright (c) 2026 Parcelia. All rights reserved.

/*
Package errclass classifies failures from the auth gateway and the profile
directory into a closed set of kinds.

The distinction that matters most to the dashboard is connectivity versus
credentials: a network outage must offer "retry", a rejected login must offer
"go to login", and the two are never conflated.

Architecture:

  - Kind: the closed enum the rest of the system depends on.
  - Classifier: a swappable adapter interface. The default implementation
    matches error text against known network-failure signatures; callers
    never see the matching, only the Kind.
*/
package errclass

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/parcelia/backoffice/internal/platform/apperr"
)

// Kind identifies the category of an authentication or profile failure.
type Kind int

const (
	// KindUnknown is returned for errors with no recognizable signature.
	KindUnknown Kind = iota

	// KindConnectivity covers network-level failures (unreachable host, DNS,
	// TLS, timeouts). Always routed to a retry-offering state.
	KindConnectivity

	// KindInvalidCredentials covers rejected email/password pairs.
	KindInvalidCredentials

	// KindUnconfirmedAccount covers accounts that exist but have not
	// completed verification.
	KindUnconfirmedAccount

	// KindRateLimited covers throttled login attempts.
	KindRateLimited

	// KindProfileNotFound covers a valid auth identity with no matching
	// directory record.
	KindProfileNotFound
)

// String returns a stable label for logging.
func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnconfirmedAccount:
		return "unconfirmed_account"
	case KindRateLimited:
		return "rate_limited"
	case KindProfileNotFound:
		return "profile_not_found"
	default:
		return "unknown"
	}
}

// IsConnectivity reports whether the kind represents a network-level outage
// rather than an authentication decision.
func (k Kind) IsConnectivity() bool { return k == KindConnectivity }

// IsAuthFailure reports whether the kind represents a definitive
// authentication or authorization rejection.
func (k Kind) IsAuthFailure() bool {
	switch k {
	case KindInvalidCredentials, KindUnconfirmedAccount, KindRateLimited, KindProfileNotFound:
		return true
	}
	return false
}

// Classifier turns an arbitrary error into a [Kind].
type Classifier interface {
	Classify(err error) Kind
}

// # Default Classifier

// networkSignatures are substrings observed in transport-level failures from
// the net, tls, and http packages. Matching on message text is deliberately
// confined to this adapter.
var networkSignatures = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"tls handshake",
	"broken pipe",
	"unexpected eof",
	"dial tcp",
}

// MessageClassifier is the default [Classifier]. It inspects typed errors
// first and falls back to message signatures.
type MessageClassifier struct{}

// Classify implements [Classifier].
func (MessageClassifier) Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	// ── 1. Typed checks ───────────────────────────────────────────────────

	// A hung call that hit its ceiling is a connectivity problem, not an
	// authentication decision.
	if errors.Is(err, context.DeadlineExceeded) {
		return KindConnectivity
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}

	if ae := apperr.As(err); ae != nil {
		switch ae.Code {
		case "UNAUTHORIZED":
			return KindInvalidCredentials
		case "NOT_FOUND":
			return KindProfileNotFound
		case "RATE_LIMITED":
			return KindRateLimited
		case "SERVICE_UNAVAILABLE":
			return KindConnectivity
		}
	}

	// ── 2. Message signatures ─────────────────────────────────────────────

	msg := strings.ToLower(err.Error())

	for _, signature := range networkSignatures {
		if strings.Contains(msg, signature) {
			return KindConnectivity
		}
	}

	switch {
	case strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid password"):
		return KindInvalidCredentials
	case strings.Contains(msg, "not confirmed"),
		strings.Contains(msg, "unconfirmed"):
		return KindUnconfirmedAccount
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"):
		return KindRateLimited
	case strings.Contains(msg, "not found"):
		return KindProfileNotFound
	}

	return KindUnknown
}

// defaultClassifier backs the package-level helper.
var defaultClassifier Classifier = MessageClassifier{}

// Classify applies the default classifier.
func Classify(err error) Kind {
	return defaultClassifier.Classify(err)
}

// Default returns the default classifier, for callers that want to hold a
// [Classifier] value they can later swap.
func Default() Classifier {
	return defaultClassifier
}
