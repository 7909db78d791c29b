package identity

import (
	"strings"

	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BearerScheme is the Authorization scheme keyword for account tokens.
// The match is case-sensitive; any other scheme is treated as absent.
const BearerScheme = "Account"

// contextKey stores the authenticated account in the gin context.
const contextKey = "account"

// Middleware resolves the request's authenticated account.
//
// It never terminates the request: a missing header, foreign scheme,
// invalid token, or deleted account all leave the request anonymous for
// downstream handlers to enforce as they see fit. An API token must also
// match the account's stored key, so a rotated-away key stops
// authenticating before its signature expires.
func Middleware(db *gorm.DB, issuer *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !found || scheme != BearerScheme || token == "" {
			c.Next()
			return
		}

		claims, ok := issuer.Verify(token)
		if !ok {
			c.Next()
			return
		}

		// The token may reference an account deleted after issuance.
		var account models.Account
		errFind := db.WithContext(c.Request.Context()).
			Preload("Groups").
			Preload("Badges").
			Preload("Player").
			First(&account, claims.AccountID).Error
		if errFind != nil {
			c.Next()
			return
		}

		if claims.TokenType == security.TokenTypeAPI {
			if account.APIKey == nil || *account.APIKey != token {
				c.Next()
				return
			}
		}

		c.Set(contextKey, NewUserAccount(account))
		c.Next()
	}
}

// FromContext returns the authenticated account, or nil for anonymous
// requests.
func FromContext(c *gin.Context) *UserAccount {
	if value, ok := c.Get(contextKey); ok {
		if account, ok := value.(*UserAccount); ok {
			return account
		}
	}
	return nil
}
