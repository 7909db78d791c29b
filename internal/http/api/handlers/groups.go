package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/challengelist/listd/internal/http/api/status"
	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/permissions"
	"github.com/challengelist/listd/internal/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GroupHandler serves permission group administration.
type GroupHandler struct {
	db *gorm.DB
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{db: db}
}

// displayGroup shapes a group for API responses.
func displayGroup(group models.Group) gin.H {
	return gin.H{
		"id":                 group.ID,
		"name":               group.Name,
		"priority":           group.Priority,
		"permissions_grant":  group.PermissionsGrant,
		"permissions_revoke": group.PermissionsRevoke,
		"created_at":         group.CreatedAt,
		"updated_at":         group.UpdatedAt,
	}
}

// List returns every group ordered by descending priority.
//
// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	var groups []models.Group
	errFind := h.db.WithContext(c.Request.Context()).
		Order("priority DESC").
		Find(&groups).Error
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	display := make([]gin.H, 0, len(groups))
	for _, group := range groups {
		display = append(display, displayGroup(group))
	}
	c.JSON(http.StatusOK, gin.H{"data": display})
}

// Create adds a new group. Requires ManageGroups.
//
// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	if authorized(c, permissions.ManageGroups) == nil {
		return
	}

	body, ok := bindBody(c)
	if !ok {
		return
	}
	if !checkSchema(c, body, validate.Schema{
		"name":               {Kind: validate.String, Required: true},
		"priority":           {Kind: validate.Number},
		"permissions_grant":  {Kind: validate.Number},
		"permissions_revoke": {Kind: validate.Number},
	}) {
		return
	}

	group := models.Group{Name: strings.TrimSpace(body["name"].(string))}
	if group.Name == "" {
		status.Error(c, http.StatusBadRequest, status.InvalidBody)
		return
	}
	if priority, ok := body["priority"].(float64); ok {
		group.Priority = int(priority)
	}
	if grant, ok := body["permissions_grant"].(float64); ok {
		group.PermissionsGrant = uint64(grant)
	}
	if revoke, ok := body["permissions_revoke"].(float64); ok {
		group.PermissionsRevoke = uint64(revoke)
	}

	var existing models.Group
	errFind := h.db.WithContext(c.Request.Context()).
		Where("name = ?", group.Name).
		First(&existing).Error
	if errFind == nil {
		c.JSON(http.StatusConflict, gin.H{
			"code":    http.StatusConflict,
			"message": "A group with that name already exists.",
		})
		return
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		internalError(c, errFind)
		return
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&group).Error; errCreate != nil {
		internalError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": displayGroup(group)})
}

// Update patches a group's name, priority, or permission masks. Requires
// ManageGroups.
//
// PATCH /api/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	if authorized(c, permissions.ManageGroups) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	body, ok := bindBody(c)
	if !ok {
		return
	}
	if !checkSchema(c, body, validate.Schema{
		"name":               {Kind: validate.String},
		"priority":           {Kind: validate.Number},
		"permissions_grant":  {Kind: validate.Number},
		"permissions_revoke": {Kind: validate.Number},
	}) {
		return
	}

	var group models.Group
	errFind := h.db.WithContext(c.Request.Context()).First(&group, id).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    http.StatusNotFound,
			"message": "The requested group does not exist.",
		})
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	updates := map[string]any{}
	if name, ok := body["name"].(string); ok && strings.TrimSpace(name) != "" {
		updates["name"] = strings.TrimSpace(name)
	}
	if priority, ok := body["priority"].(float64); ok {
		updates["priority"] = int(priority)
	}
	if grant, ok := body["permissions_grant"].(float64); ok {
		updates["permissions_grant"] = uint64(grant)
	}
	if revoke, ok := body["permissions_revoke"].(float64); ok {
		updates["permissions_revoke"] = uint64(revoke)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "No changes were provided.",
		})
		return
	}

	errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&group).
		Updates(updates).Error
	if errUpdate != nil {
		internalError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": displayGroup(group)})
}
