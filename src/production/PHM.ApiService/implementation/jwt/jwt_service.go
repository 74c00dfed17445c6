package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
	api_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/api"
	auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"
)

// Service issues and validates access tokens
type Service struct {
	config api_models.Config
	now    func() time.Time
}

// NewService creates a new JWT service
func NewService(config api_models.Config) *Service {
	return &Service{
		config: config,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service reading time from now
func (s *Service) WithClock(now func() time.Time) *Service {
	return &Service{config: s.config, now: now}
}

// GenerateToken signs an access token for the account with the given role
func (s *Service) GenerateToken(account *auth_models.Account, role auth_models.Role) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenDuration)

	claims := api_models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
			ID:        uuid.New().String(),
		},
		AccountID: account.AgronomistID,
		Username:  account.Username,
		Role:      role.String(),
		Name:      account.FullName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken checks signature and expiry and returns the claims
func (s *Service) ValidateAccessToken(tokenString string) (*api_models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &api_models.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*api_models.AccessClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
