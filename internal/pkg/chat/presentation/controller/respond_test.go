package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{chat.ErrUnauthenticated, http.StatusUnauthorized},
		{chat.ErrConversationNotFound, http.StatusNotFound},
		{chat.ErrNotParticipant, http.StatusForbidden},
		{chat.ErrNotInContact, http.StatusForbidden},
		{chat.ErrEmptyMessage, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", chat.ErrNotParticipant), http.StatusForbidden},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
	require.Len(t, c.Errors, 1)
}

func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for raw, ok := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false} {
		t.Run(raw, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: raw}}

			_, got := pathID(c, "id")
			assert.Equal(t, ok, got)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws/chat/1", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	check := originChecker([]string{"https://app.example.com/", " http://localhost:3000 "})
	assert.True(t, check(req("")))
	assert.True(t, check(req("https://app.example.com")))
	assert.True(t, check(req("HTTPS://APP.EXAMPLE.COM")))
	assert.True(t, check(req("http://localhost:3000/")))
	assert.False(t, check(req("https://evil.example.com")))

	open := originChecker([]string{"*"})
	assert.True(t, open(req("https://evil.example.com")))
}
