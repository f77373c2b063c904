package observability

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" Debug "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, parseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("chatty"))
}

func TestInitLogger(t *testing.T) {
	logger := InitLogger("test", "error")
	assert.Equal(t, zerolog.ErrorLevel, logger.GetLevel())
}
