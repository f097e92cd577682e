// Copyright (c) 2026 Parcelia. All rights reserved.

package authgw

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	requestutil "github.com/parcelia/backoffice/internal/platform/request"
)

// SSEStream bridges the [Broker] to an HTTP server-sent-events endpoint.
//
// Each auth event is written as one `data:` line holding the event JSON.
// The stream is scoped to the subscriber: only events for the bearer's own
// auth identity are relayed, so one operator's lifecycle never leaks into
// another operator's engine. Workstation agents consume this with
// [HTTPProvider].
type SSEStream struct {
	broker *Broker
	logger *slog.Logger
}

// NewSSEStream creates the SSE bridge over a broker.
func NewSSEStream(broker *Broker, logger *slog.Logger) *SSEStream {
	return &SSEStream{broker: broker, logger: logger}
}

// Stream serves one long-lived SSE connection until the client disconnects.
func (stream *SSEStream) Stream(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		http.Error(writer, "authentication required", http.StatusUnauthorized)
		return
	}

	flusher, ok := writer.(http.Flusher)
	if !ok {
		http.Error(writer, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The connection outlives the server's write deadline; clear it so
	// the stream is not severed mid-session.
	if err := http.NewResponseController(writer).SetWriteDeadline(time.Time{}); err != nil {
		stream.logger.Debug("sse_write_deadline_clear_failed", slog.Any("error", err))
	}

	writer.Header().Set("Content-Type", "text/event-stream")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)

	// An initial comment line commits the headers so clients know the
	// stream is live before the first event arrives.
	fmt.Fprint(writer, ": connected\n\n")
	flusher.Flush()

	ctx := request.Context()
	events := stream.broker.Subscribe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			// Another operator's lifecycle is not this subscriber's
			// business.
			if event.Identity.AuthID != claims.AuthID {
				continue
			}

			payload, err := json.Marshal(event)
			if err != nil {
				stream.logger.Warn("auth_event_encode_failed", slog.Any("error", err))
				continue
			}

			fmt.Fprintf(writer, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
