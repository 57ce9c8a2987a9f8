package sl_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/planner/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "<nil>", attr.Value.String())
	})
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		env       string
		debug     bool
		jsonLines bool
	}{
		{env: "local", debug: true},
		{env: "dev", debug: true, jsonLines: true},
		{env: "prod", jsonLines: true},
		{env: "unknown", jsonLines: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			logger := sl.New(tt.env, &buf)

			assert.Equal(t, tt.debug, logger.Enabled(context.Background(), slog.LevelDebug))

			logger.Info("hello", slog.String("k", "v"))
			if tt.jsonLines {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "msg=hello")
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	var logger *slog.Logger
	assert.NotPanics(t, func() {
		logger = sl.Discard()
		logger.Error("ignored", sl.Err(errors.New("boom")))
	})
	assert.NotNil(t, logger)
}
