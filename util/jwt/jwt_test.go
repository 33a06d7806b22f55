package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", 42, "ADMIN", 1)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := Parse(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"])
	require.Equal(t, "ADMIN", claims["role"])
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Issue("secret", 1, "USER", 1)
	require.NoError(t, err)

	_, err = Parse(tok, "other-secret")
	require.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse("not-a-token", "secret")
	require.Error(t, err)
}
