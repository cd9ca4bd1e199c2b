package postgres

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Cantidades y precios se guardan sin escala fija: lo que el motor calcula es lo que se relee.
func TestSchema_NumericSinEscala(t *testing.T) {
	assert.NotRegexp(t, regexp.MustCompile(`(?i)NUMERIC\s*\(`), schemaSQL)
	assert.Contains(t, schemaSQL, "quantity              NUMERIC NOT NULL CHECK (quantity > 0)")
	assert.Contains(t, schemaSQL, "total_value         NUMERIC NOT NULL")
}

func TestSchema_UnicidadDeNombrePorClave(t *testing.T) {
	assert.Contains(t, schemaSQL, "products_name_key_idx ON products (name_key)")
	assert.NotContains(t, schemaSQL, "lower(name)")
}
