package cent

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cristalhq/jwt/v5"
)

var errEmptySecret = errors.New("no HMAC secret key set")

// ConnectionClaims are claims of a connection token.
type ConnectionClaims struct {
	jwt.RegisteredClaims
	Info json.RawMessage `json:"info,omitempty"`
}

// SubscriptionClaims are claims of a channel subscription token.
type SubscriptionClaims struct {
	jwt.RegisteredClaims
	Channel string          `json:"channel"`
	Info    json.RawMessage `json:"info,omitempty"`
}

// GenerateConnectionToken returns HS256 JWT for user signed with secret.
// Zero exp produces token without expiration, nil info is omitted.
func GenerateConnectionToken(secret, user string, exp time.Time, info any) (string, error) {
	encodedInfo, err := encodeInfo(info)
	if err != nil {
		return "", err
	}
	return signClaims(secret, ConnectionClaims{
		RegisteredClaims: registeredClaims(user, exp),
		Info:             encodedInfo,
	})
}

// GenerateSubscriptionToken returns HS256 JWT allowing user to subscribe to
// channel.
func GenerateSubscriptionToken(secret, user, channel string, exp time.Time, info any) (string, error) {
	encodedInfo, err := encodeInfo(info)
	if err != nil {
		return "", err
	}
	return signClaims(secret, SubscriptionClaims{
		RegisteredClaims: registeredClaims(user, exp),
		Channel:          channel,
		Info:             encodedInfo,
	})
}

func registeredClaims(user string, exp time.Time) jwt.RegisteredClaims {
	claims := jwt.RegisteredClaims{
		Subject:  user,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	return claims
}

func encodeInfo(info any) (json.RawMessage, error) {
	switch v := info.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode info: %w", err)
	}
	return data, nil
}

func signClaims(secret string, claims any) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	signer, err := jwt.NewSignerHS(jwt.HS256, []byte(secret))
	if err != nil {
		return "", fmt.Errorf("error creating HMAC signer: %w", err)
	}
	token, err := jwt.NewBuilder(signer).Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}
