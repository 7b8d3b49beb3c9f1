package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
	assert.Equal(t, slog.LevelInfo, getLogLevel("verbose"))
}

func TestLogStoreFailure_IncludesRawError(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.LogStoreFailure(context.Background(), "haldi", "access_denied", errors.New("apps script access denied"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"RSVP submission error"`)
	assert.Contains(t, out, `"event":"haldi"`)
	assert.Contains(t, out, "apps script access denied")
}

func TestWithRequestID(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug").WithRequestID("req-42")
	l.Info("hello")

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}
