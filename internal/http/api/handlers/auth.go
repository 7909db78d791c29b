package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/challengelist/listd/internal/http/api/status"
	"github.com/challengelist/listd/internal/identity"
	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/security"
	"github.com/challengelist/listd/internal/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves account registration and login.
type AuthHandler struct {
	db     *gorm.DB
	issuer *security.TokenIssuer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, issuer *security.TokenIssuer) *AuthHandler {
	return &AuthHandler{db: db, issuer: issuer}
}

var credentialSchema = validate.Schema{
	"username": {Kind: validate.String, Required: true},
	"password": {Kind: validate.String, Required: true},
}

// Register creates a new account.
//
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	if !checkSchema(c, body, credentialSchema) {
		return
	}

	username := strings.TrimSpace(body["username"].(string))
	password := body["password"].(string)
	if username == "" || password == "" {
		status.Error(c, http.StatusBadRequest, status.InvalidBody)
		return
	}

	var existing models.Account
	errFind := h.db.WithContext(c.Request.Context()).
		Where("username = ?", username).
		First(&existing).Error
	if errFind == nil {
		status.Error(c, http.StatusConflict, status.UsernameTaken)
		return
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		internalError(c, errFind)
		return
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		internalError(c, errHash)
		return
	}

	account := models.Account{Username: username, PasswordHash: hash}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&account).Error; errCreate != nil {
		internalError(c, errCreate)
		return
	}

	status.Respond(c, http.StatusCreated, status.AccountCreated, identity.NewUserAccount(account).Display())
}

// Login verifies credentials and issues a session token.
//
// Credentials arrive either as a Basic Authorization header or as a JSON
// body with username and password. The issued token is recorded as a
// session row with client metadata for audit.
//
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	username, password, ok := h.credentials(c)
	if !ok {
		return
	}

	var account models.Account
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Groups").
		Preload("Badges").
		Preload("Player").
		Where("username = ?", username).
		First(&account).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		status.Error(c, http.StatusUnauthorized, status.InvalidCredentials)
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}
	if !security.VerifyPassword(account.PasswordHash, password) {
		status.Error(c, http.StatusUnauthorized, status.InvalidCredentials)
		return
	}

	token, errIssue := h.issuer.Issue(account.ID, account.Username, security.TokenTypeSession)
	if errIssue != nil {
		internalError(c, errIssue)
		return
	}

	metadata, _ := json.Marshal(gin.H{
		"address":    c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	session := models.Session{
		AccountID:    account.ID,
		SessionToken: token,
		Metadata:     metadata,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&session).Error; errCreate != nil {
		internalError(c, errCreate)
		return
	}

	status.Respond(c, http.StatusOK, status.LoginSucceeded, gin.H{
		"account": identity.NewUserAccount(account).Display(),
		"token":   token,
	})
}

// credentials extracts the login credentials from the Basic header when one
// is present, falling back to the JSON body.
func (h *AuthHandler) credentials(c *gin.Context) (username, password string, ok bool) {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Basic ") {
		decoded, errDecode := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
		if errDecode != nil {
			status.Error(c, http.StatusBadRequest, status.InvalidBody)
			return "", "", false
		}
		username, password, found := strings.Cut(string(decoded), ":")
		if !found || username == "" {
			status.Error(c, http.StatusBadRequest, status.InvalidBody)
			return "", "", false
		}
		return username, password, true
	}

	body, bound := bindBody(c)
	if !bound {
		return "", "", false
	}
	if !checkSchema(c, body, credentialSchema) {
		return "", "", false
	}
	return strings.TrimSpace(body["username"].(string)), body["password"].(string), true
}
