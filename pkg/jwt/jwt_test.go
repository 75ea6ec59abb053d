package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/erp-inventario/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", pkgjwt.RoleBodeguero, "erp-test", 60)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, pkgjwt.RoleBodeguero, role)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", pkgjwt.RoleAdmin, "erp-test", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", pkgjwt.RoleAdmin, "erp-test", 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SinSecret(t *testing.T) {
	_, err := pkgjwt.Generate("", "user-1", pkgjwt.RoleAdmin, "erp-test", 60)
	assert.Error(t, err)
}
