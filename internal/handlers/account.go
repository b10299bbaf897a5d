package handlers

import (
	"errors"
	"net/http"

	"Warden/internal/auth"
	dom "Warden/internal/domain"
	"Warden/internal/dto"
	"Warden/internal/service"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles the token-guarded account reads.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler returns a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Profile godoc
// @Summary      Current account profile
// @Description  Returns the account identified by the bearer token.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.AccountResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /profile [get]
func (h *AccountHandler) Profile(c *gin.Context) {
	claims := auth.ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}
	a, err := h.accounts.GetByID(c.Request.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Token is valid but the account is gone (deleted after issuance).
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, accountToResponse(a))
}

// List godoc
// @Summary      List accounts
// @Description  Returns every registered account, newest first.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ListAccountsResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /users [get]
func (h *AccountHandler) List(c *gin.Context) {
	list, err := h.accounts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list accounts"})
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Items: accountsToResponses(list)})
}

func accountToSummary(a dom.Account) dto.AccountSummary {
	return dto.AccountSummary{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
	}
}

func accountToResponse(a dom.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

func accountsToResponses(list []dom.Account) []dto.AccountResponse {
	out := make([]dto.AccountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, accountToResponse(a))
	}
	return out
}
