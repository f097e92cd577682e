// Copyright (c) 2026 Parcelia. All rights reserved.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutExcept(t *testing.T) {
	t.Parallel()

	var deadlineSet bool
	handler := TimeoutExcept(time.Minute, "/api/v1/auth/events")(
		http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, deadlineSet = request.Context().Deadline()
			writer.WriteHeader(http.StatusOK)
		}),
	)

	t.Run("regular requests carry the deadline", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/colis", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, deadlineSet)
	})

	t.Run("exempt paths stream without a deadline", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/auth/events", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.False(t, deadlineSet)
	})
}
