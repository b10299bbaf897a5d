package dto

// RegisterRequest is the JSON body for POST /api/register.
// Email format is deliberately not validated here.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=120"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the JSON body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned on successful login. ExpiresIn is seconds.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expiresIn"`
	User      AccountSummary `json:"user"`
}
