package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "errors.log")

	logger := NewLogger(tmpFile)

	logger.LogError("TestComponent", errors.New("test error"))

	data, err := os.ReadFile(tmpFile)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "TestComponent")
	assert.Contains(t, string(data), "test error")

	// Info messages only go to the structured logger
	logger.LogInfo("Test info message: %s", "hello")
	data, err = os.ReadFile(tmpFile)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "hello")
}

func TestLoggerWithoutFile(t *testing.T) {
	logger := NewLogger("")
	assert.NotPanics(t, func() {
		logger.LogError("TestComponent", errors.New("test error"))
	})
}
