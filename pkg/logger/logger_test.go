package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("desconocido"))
}

func TestNew_JSONConCampoApp(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", App: "almoxarifado-api", Out: &buf})

	l.Debug().Msg("no debe salir")
	l.Info().Str("code", "Prod001").Msg("producto creado")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev), "una sola línea JSON: el debug se filtra")
	assert.Equal(t, "almoxarifado-api", ev["app"])
	assert.Equal(t, "Prod001", ev["code"])
	assert.Equal(t, "producto creado", ev["message"])
}
