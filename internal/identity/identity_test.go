package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/challengelist/listd/internal/config"
	"github.com/challengelist/listd/internal/db"
	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/permissions"
	"github.com/challengelist/listd/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserAccountHas(t *testing.T) {
	account := models.Account{
		Username: "mod",
		Groups: []models.Group{
			{Name: "List Mod", PermissionsGrant: uint64(permissions.ManageChallenges | permissions.ManageRecords)},
			{Name: "Probation", PermissionsRevoke: uint64(permissions.ManageRecords)},
		},
	}
	user := NewUserAccount(account)
	assert.True(t, user.Has(permissions.ManageChallenges))
	assert.False(t, user.Has(permissions.ManageRecords))
	assert.False(t, user.Has(permissions.Administrator))
}

func TestTopGroupPriority(t *testing.T) {
	user := NewUserAccount(models.Account{
		Groups: []models.Group{{Priority: 5}, {Priority: 50}, {Priority: 10}},
	})
	assert.Equal(t, 50, user.TopGroupPriority())
	assert.Equal(t, 0, NewUserAccount(models.Account{}).TopGroupPriority())
}

func TestDisplayOmitsSecrets(t *testing.T) {
	user := NewUserAccount(models.Account{
		Username:     "alice",
		PasswordHash: "$argon2id$...",
	})
	display := user.Display()
	assert.Equal(t, "alice", display["username"])
	assert.NotContains(t, display, "password_hash")
	assert.NotContains(t, display, "api_key")
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret"}
}

func newMiddlewareHarness(t *testing.T) (*gorm.DB, *security.TokenIssuer, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, errOpen := db.Open(":memory:")
	require.NoError(t, errOpen)
	require.NoError(t, db.Migrate(conn))

	issuer, errIssuer := security.NewTokenIssuer(testJWTConfig())
	require.NoError(t, errIssuer)

	router := gin.New()
	router.Use(Middleware(conn, issuer))
	router.GET("/whoami", func(c *gin.Context) {
		if account := FromContext(c); account != nil {
			c.JSON(http.StatusOK, gin.H{"username": account.Account.Username})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": nil})
	})
	return conn, issuer, router
}

func whoami(t *testing.T, router *gin.Engine, authorization string) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)
	return recorder.Body.String()
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	conn, issuer, router := newMiddlewareHarness(t)

	account := models.Account{Username: "alice", PasswordHash: "x"}
	require.NoError(t, conn.Create(&account).Error)

	token, errIssue := issuer.Issue(account.ID, account.Username, security.TokenTypeSession)
	require.NoError(t, errIssue)

	assert.Contains(t, whoami(t, router, BearerScheme+" "+token), "alice")
}

func TestMiddlewareDegradesToAnonymous(t *testing.T) {
	conn, issuer, router := newMiddlewareHarness(t)

	account := models.Account{Username: "bob", PasswordHash: "x"}
	require.NoError(t, conn.Create(&account).Error)
	token, errIssue := issuer.Issue(account.ID, account.Username, security.TokenTypeSession)
	require.NoError(t, errIssue)

	// No header.
	assert.Contains(t, whoami(t, router, ""), "null")
	// Foreign scheme is skipped, not rejected.
	assert.Contains(t, whoami(t, router, "Bearer "+token), "null")
	// Lowercase scheme keyword does not match.
	assert.Contains(t, whoami(t, router, "account "+token), "null")
	// Garbage token.
	assert.Contains(t, whoami(t, router, BearerScheme+" garbage"), "null")

	// Token for a since-deleted account degrades to anonymous.
	orphan, errIssue := issuer.Issue(9999, "ghost", security.TokenTypeSession)
	require.NoError(t, errIssue)
	assert.Contains(t, whoami(t, router, BearerScheme+" "+orphan), "null")
}

func TestMiddlewareMatchesStoredAPIKey(t *testing.T) {
	conn, issuer, router := newMiddlewareHarness(t)

	account := models.Account{Username: "carol", PasswordHash: "x"}
	require.NoError(t, conn.Create(&account).Error)

	token, errIssue := issuer.Issue(account.ID, account.Username, security.TokenTypeAPI)
	require.NoError(t, errIssue)

	// A well-signed API token is useless until it is the account's key.
	assert.Contains(t, whoami(t, router, BearerScheme+" "+token), "null")

	require.NoError(t, conn.Model(&account).Update("api_key", token).Error)
	assert.Contains(t, whoami(t, router, BearerScheme+" "+token), "carol")

	// Rotating the key revokes the old token.
	replacement, errReplace := issuer.Issue(account.ID, account.Username, security.TokenTypeAPI)
	require.NoError(t, errReplace)
	require.NoError(t, conn.Model(&account).Update("api_key", replacement).Error)
	assert.Contains(t, whoami(t, router, BearerScheme+" "+token), "null")
}
