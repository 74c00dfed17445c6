package api_models

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserInfo is the identity returned alongside a token
type UserInfo struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
