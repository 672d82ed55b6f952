package auth

import "github.com/massiben/rh-backend/internal"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate checks required fields and returns a 400 AppError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" || d.Password == "" {
		return internal.ErrMissingCredentials
	}
	return nil
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return internal.ErrMissingRefreshToken
	}
	return nil
}
