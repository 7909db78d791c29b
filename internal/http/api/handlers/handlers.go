// Package handlers implements the API endpoint handlers.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/challengelist/listd/internal/http/api/status"
	"github.com/challengelist/listd/internal/identity"
	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/permissions"
	"github.com/challengelist/listd/internal/validate"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// bindBody decodes the JSON request body into a generic map so handlers can
// schema-check it field by field. A body that is not a JSON object gets a
// 400 and the second return is false.
func bindBody(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		status.Error(c, http.StatusBadRequest, status.InvalidBody)
		return nil, false
	}
	return body, true
}

// checkSchema validates the body against the schema, writing the matching
// catalog error on failure. Missing required fields report InvalidBody;
// present fields of the wrong type report InvalidBodyTypes.
func checkSchema(c *gin.Context, body map[string]any, schema validate.Schema) bool {
	violations := validate.Check(body, schema)
	if len(violations) == 0 {
		return true
	}
	code := status.InvalidBody
	for _, violation := range violations {
		if strings.Contains(violation.Message, "type") {
			code = status.InvalidBodyTypes
			break
		}
	}
	status.Error(c, http.StatusBadRequest, code)
	return false
}

// parseID reads a numeric path parameter, writing a 400 when it does not
// parse.
func parseID(c *gin.Context, param string) (uint64, bool) {
	id, errParse := strconv.ParseUint(c.Param(param), 10, 64)
	if errParse != nil {
		status.Error(c, http.StatusBadRequest, status.InvalidID)
		return 0, false
	}
	return id, true
}

// authorized returns the authenticated account when it holds every required
// capability. Anonymous requests get a 401, authenticated ones lacking a
// capability get a 403; both return nil.
func authorized(c *gin.Context, required permissions.Set) *identity.UserAccount {
	account := identity.FromContext(c)
	if account == nil {
		status.Error(c, http.StatusUnauthorized, status.Unauthorized)
		return nil
	}
	if !account.Has(required) {
		status.Error(c, http.StatusForbidden, status.MissingPermissions)
		return nil
	}
	return account
}

// internalError logs the failure and answers with the opaque 500 catalog
// entry.
func internalError(c *gin.Context, err error) {
	log.WithError(err).WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("request failed")
	status.Error(c, http.StatusInternalServerError, status.InternalError)
}

// getOrCreatePlayer finds a player by name, creating one when no player with
// that name exists yet. Names are matched after trimming.
func getOrCreatePlayer(tx *gorm.DB, name string) (models.Player, error) {
	player := models.Player{Name: strings.TrimSpace(name)}
	if player.Name == "" {
		return models.Player{}, fmt.Errorf("handlers: empty player name")
	}
	errFind := tx.Where("name = ?", player.Name).FirstOrCreate(&player).Error
	if errFind != nil {
		return models.Player{}, fmt.Errorf("handlers: get or create player %q: %w", player.Name, errFind)
	}
	return player, nil
}

// displayPlayer shapes a player for API responses.
func displayPlayer(player models.Player) gin.H {
	return gin.H{
		"id":   player.ID,
		"name": player.Name,
	}
}

// displayChallenge shapes a challenge for API responses. Associations must
// be preloaded by the caller; zero-valued ones render as empty.
func displayChallenge(challenge models.Challenge) gin.H {
	creators := make([]gin.H, 0, len(challenge.Creators))
	for _, creator := range challenge.Creators {
		creators = append(creators, displayPlayer(creator))
	}
	return gin.H{
		"id":         challenge.ID,
		"name":       challenge.Name,
		"position":   challenge.Position,
		"video":      challenge.Video,
		"fps":        challenge.FPS,
		"points":     challenge.Points,
		"verifier":   displayPlayer(challenge.Verifier),
		"publisher":  displayPlayer(challenge.Publisher),
		"creators":   creators,
		"created_at": challenge.CreatedAt,
		"updated_at": challenge.UpdatedAt,
	}
}

// displayRecord shapes a record for API responses. The submitter is only
// rendered when the caller may see submitter identities.
func displayRecord(record models.Record, includeSubmitter bool) gin.H {
	display := gin.H{
		"id":     record.ID,
		"status": record.Status,
		"type":   record.Type,
		"video":  record.Video,
		"player": displayPlayer(record.Player),
		"challenge": gin.H{
			"id":       record.Challenge.ID,
			"name":     record.Challenge.Name,
			"position": record.Challenge.Position,
		},
		"created_at": record.CreatedAt,
		"updated_at": record.UpdatedAt,
	}
	if includeSubmitter && record.Submitter != nil {
		display["submitter"] = gin.H{
			"id":       record.Submitter.ID,
			"username": record.Submitter.Username,
		}
	}
	return display
}
