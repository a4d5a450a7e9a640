package observability_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"github.com/eventrove/marketplace-backend/internal/infrastructure/observability"
)

func TestComponentLogger_ScopesField(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	logger := observability.ComponentLogger("result_cache")
	logger.Warn().Msg("cache write failed")

	out := buf.String()
	assert.Contains(t, out, `"component":"result_cache"`)
	assert.Contains(t, out, "cache write failed")
}

func TestInitLogger_LevelFromEnvironment(t *testing.T) {
	orig := log.Logger
	origLevel := zerolog.GlobalLevel()
	defer func() {
		log.Logger = orig
		zerolog.SetGlobalLevel(origLevel)
	}()

	t.Setenv("LOG_LEVEL", "warn")
	observability.InitLogger("marketplace-backend", "production")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	// Garbage falls back to the info default.
	t.Setenv("LOG_LEVEL", "loud")
	observability.InitLogger("marketplace-backend", "production")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
