package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose_Toggles(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug verbose", true, func() { Debug("读取 %s", "sslg") }, "[DEBUG] 读取 sslg\n"},
		{"debug quiet", false, func() { Debug("读取 %s", "sslg") }, ""},
		{"info verbose", true, func() { Info("%d chunks", 42) }, "[INFO] 42 chunks\n"},
		{"info quiet", false, func() { Info("%d chunks", 42) }, ""},
		{"warn quiet", false, func() { Warn("text not found") }, "[WARN] text not found\n"},
		{"section verbose", true, func() { Section("Index") }, "\n=== Index ===\n"},
		{"section quiet", false, func() { Section("Index") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)

			tt.log()

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestNamed_StructuredFields(t *testing.T) {
	buf := capture(t, true)

	Named("retriever").Info("query", zap.Int("candidates", 3))

	assert.Equal(t, "[INFO] retriever query {\"candidates\": 3}\n", buf.String())
}
