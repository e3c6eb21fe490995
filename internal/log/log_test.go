package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Debug("probe", "url", "https://rpc.example")
	l.Info("hello")
	assert.Empty(t, buf.String())

	l.Warn("slow endpoint", "ms", 900)
	assert.Contains(t, buf.String(), "slow endpoint")
	assert.Contains(t, buf.String(), "ms=900")
}

func TestNewVerboseEmitsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)
	l.Debug("probe", "url", "https://rpc.example")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "url=https://rpc.example")
}

func TestSetOutputRedirectsPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	Setup(true)
	SetOutput(&buf)
	t.Cleanup(func() { Setup(false) })

	With("form", "transfer").Debug("submitted")
	assert.Contains(t, buf.String(), "form=transfer")
	assert.Contains(t, buf.String(), "submitted")
}
