package cent

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cristalhq/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseToken(t *testing.T, secret, token string) *jwt.Token {
	t.Helper()
	verifier, err := jwt.NewVerifierHS(jwt.HS256, []byte(secret))
	require.NoError(t, err)
	parsed, err := jwt.Parse([]byte(token), verifier)
	require.NoError(t, err)
	assert.Equal(t, jwt.HS256, parsed.Header().Algorithm)
	return parsed
}

func verifyToken(t *testing.T, secret, token string) ConnectionClaims {
	t.Helper()
	var claims ConnectionClaims
	require.NoError(t, parseToken(t, secret, token).DecodeClaims(&claims))
	return claims
}

func TestGenerateConnectionToken(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	token, err := GenerateConnectionToken("secret", "42", exp, map[string]any{"name": "Alex"})
	require.NoError(t, err)

	claims := verifyToken(t, "secret", token)
	assert.Equal(t, "42", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 5*time.Second)
	assert.JSONEq(t, `{"name":"Alex"}`, string(claims.Info))
}

func TestGenerateConnectionTokenWithoutExpiration(t *testing.T) {
	token, err := GenerateConnectionToken("secret", "", time.Time{}, nil)
	require.NoError(t, err)

	parsed := parseToken(t, "secret", token)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(parsed.Claims(), &raw))
	assert.NotContains(t, raw, "exp")
	assert.NotContains(t, raw, "info")
	assert.Contains(t, raw, "iat")
}

func TestGenerateConnectionTokenRawInfo(t *testing.T) {
	token, err := GenerateConnectionToken("secret", "42", time.Time{}, json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(verifyToken(t, "secret", token).Info))
}

func TestGenerateSubscriptionToken(t *testing.T) {
	token, err := GenerateSubscriptionToken("secret", "42", "news", time.Now().Add(time.Minute), nil)
	require.NoError(t, err)

	var claims SubscriptionClaims
	require.NoError(t, parseToken(t, "secret", token).DecodeClaims(&claims))
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "news", claims.Channel)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestGenerateTokenWrongSecretFailsVerification(t *testing.T) {
	token, err := GenerateConnectionToken("secret", "42", time.Time{}, nil)
	require.NoError(t, err)

	verifier, err := jwt.NewVerifierHS(jwt.HS256, []byte("other"))
	require.NoError(t, err)
	_, err = jwt.Parse([]byte(token), verifier)
	assert.Error(t, err)
}

func TestGenerateTokenEmptySecret(t *testing.T) {
	_, err := GenerateConnectionToken("", "42", time.Time{}, nil)
	assert.ErrorIs(t, err, errEmptySecret)
	_, err = GenerateSubscriptionToken("", "42", "news", time.Time{}, nil)
	assert.ErrorIs(t, err, errEmptySecret)
}

func TestGenerateTokenBadInfo(t *testing.T) {
	_, err := GenerateConnectionToken("secret", "42", time.Time{}, make(chan int))
	assert.Error(t, err)
}
