package api_models

// SignupResponse echoes the newly created account without the password hash
type SignupResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenResponse is returned by the login endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// StatusResponse is the generic success envelope for write endpoints
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
