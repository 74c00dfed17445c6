package auth

import (
	"context"
	"errors"

	apierrors "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/apierrors"
	jwt "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/jwt"
	api_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/api"
	interfaces "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies credentials and issues tokens
type AuthService struct {
	accountRepo interfaces.AccountRepository
	jwtService  *jwt.Service
}

// NewAuthService creates a new auth service
func NewAuthService(accountRepo interfaces.AccountRepository, jwtService *jwt.Service) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		jwtService:  jwtService,
	}
}

// Login authenticates an account and returns a signed token with its identity
func (s *AuthService) Login(ctx context.Context, req api_models.LoginRequest) (*api_models.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apierrors.ErrCredentialsRequired
	}

	account, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apierrors.NewInternal(err)
	}
	if account == nil {
		return nil, apierrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apierrors.ErrInvalidCredentials
		}
		return nil, apierrors.NewInternal(err)
	}

	role := account.EffectiveRole()
	token, _, err := s.jwtService.GenerateToken(account, role)
	if err != nil {
		return nil, apierrors.NewInternal(err)
	}

	return &api_models.AuthResponse{
		Token: token,
		User: api_models.UserInfo{
			ID:             account.AgronomistID,
			Username:       account.Username,
			Role:           role.String(),
			Name:           account.FullName,
			Specialization: account.Specialization,
		},
	}, nil
}

// HashPassword hashes a password using bcrypt at the given cost
func HashPassword(password string, cost int) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}
