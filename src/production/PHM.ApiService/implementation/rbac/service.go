package rbac

import auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"

// Service answers role questions for the two account kinds
type Service struct {
	writers map[auth_models.Role]bool
}

// NewService creates a service where only agronomists may write
func NewService() *Service {
	return &Service{
		writers: map[auth_models.Role]bool{
			auth_models.RoleAgronomist: true,
		},
	}
}

// IsValidRole checks if a role is valid
func (s *Service) IsValidRole(role string) bool {
	return auth_models.Role(role).Valid()
}

// CanWrite reports whether the role may create or modify records
func (s *Service) CanWrite(role string) bool {
	return s.writers[auth_models.Role(role)]
}
