package handlers

import (
	"net/http"

	"github.com/challengelist/listd/internal/http/api/status"
	"github.com/challengelist/listd/internal/identity"
	"github.com/challengelist/listd/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AccountHandler serves the authenticated account's own resources.
type AccountHandler struct {
	db     *gorm.DB
	issuer *security.TokenIssuer
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(db *gorm.DB, issuer *security.TokenIssuer) *AccountHandler {
	return &AccountHandler{db: db, issuer: issuer}
}

// Me returns the authenticated account.
//
// GET /api/accounts/@me
func (h *AccountHandler) Me(c *gin.Context) {
	account := identity.FromContext(c)
	if account == nil {
		status.Error(c, http.StatusUnauthorized, status.Unauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": account.Display()})
}

// RotateAPIKey issues a fresh API token for the authenticated account.
//
// The new token replaces any previous one: the stored key is overwritten
// and the identity middleware only accepts an API token that matches it,
// so the old token stops authenticating even though its signature remains
// valid until expiry.
//
// POST /api/accounts/@me/key
func (h *AccountHandler) RotateAPIKey(c *gin.Context) {
	account := identity.FromContext(c)
	if account == nil {
		status.Error(c, http.StatusUnauthorized, status.Unauthorized)
		return
	}

	token, errIssue := h.issuer.Issue(account.Account.ID, account.Account.Username, security.TokenTypeAPI)
	if errIssue != nil {
		internalError(c, errIssue)
		return
	}

	errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&account.Account).
		Update("api_key", token).Error
	if errUpdate != nil {
		internalError(c, errUpdate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"key": token}})
}
