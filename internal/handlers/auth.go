package handlers

import (
	"errors"
	"net/http"

	"Warden/internal/auth"
	"Warden/internal/dto"
	"Warden/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles register and login.
type AuthHandler struct {
	accounts *service.AccountService
	tokens   *auth.TokenManager
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(accounts *service.AccountService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates an account. Does not log the new account in; call login afterwards.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Credentials"
// @Success      201   {object}  dto.AccountSummary
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.accounts.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password required; password must be at least 6 characters"})
			return
		}
		if errors.Is(err, service.ErrDuplicateAccount) {
			// One combined message: the response must not say which field conflicted.
			c.JSON(http.StatusBadRequest, gin.H{"error": "username or email already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, accountToSummary(a))
}

// Login godoc
// @Summary      Login with username and password
// @Description  Issues a bearer token valid for the configured TTL (24h by default).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Same body for unknown username and wrong password.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	token, err := h.tokens.Issue(a)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresIn: h.tokens.TTLSeconds(),
		User:      accountToSummary(a),
	})
}
