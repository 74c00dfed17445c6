package api_models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds JWT configuration
type Config struct {
	SecretKey           string
	AccessTokenDuration time.Duration
	Issuer              string
}

// AccessClaims is the payload of an access token
type AccessClaims struct {
	jwt.RegisteredClaims
	AccountID int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Name      string `json:"name"`
}
