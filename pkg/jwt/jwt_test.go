package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/almoxarifado-api/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "almox", pkgjwt.Identity{UserID: "u1", Name: "Maria", Role: "almoxarife"}, time.Minute)
	require.NoError(t, err)

	id, err := pkgjwt.Parse(secret, "almox", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "Maria", id.Operator())
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "almox", pkgjwt.Identity{UserID: "u1"}, time.Minute)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", "almox", tok)
	assert.Error(t, err, "firma incorrecta")

	_, err = pkgjwt.Parse(secret, "otro-emisor", tok)
	assert.Error(t, err, "emisor distinto")

	expired, err := pkgjwt.Generate(secret, "almox", pkgjwt.Identity{UserID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, "almox", expired)
	assert.Error(t, err, "token expirado")
}

func TestIdentity_OperatorSinNombre(t *testing.T) {
	assert.Equal(t, "u9", pkgjwt.Identity{UserID: "u9"}.Operator())
}
