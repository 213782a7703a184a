package logging

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, LevelInfo, ParseLevel("chatty"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := captureLog(t)
	logger := For("Loader")

	logger.Debugf("hidden %d", 1)
	logger.Infof("loaded %d rows", 60)
	logger.Errorf("boom")
	assert.Equal(t, "[Loader] loaded 60 rows\n[Loader] ERROR boom\n", buf.String())

	buf.Reset()
	SetLevel(LevelDebug)
	logger.Debugf("cache hit")
	assert.Equal(t, "[Loader] DEBUG cache hit\n", buf.String())

	buf.Reset()
	SetLevel(LevelError)
	logger.Warnf("quiet")
	assert.Empty(t, buf.String())
}
