package handlers

import (
	"net/http"
	"sort"

	"github.com/challengelist/listd/internal/identity"
	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/permissions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MetaHandler serves site metadata.
type MetaHandler struct {
	db *gorm.DB
}

// NewMetaHandler constructs a MetaHandler.
func NewMetaHandler(db *gorm.DB) *MetaHandler {
	return &MetaHandler{db: db}
}

// Staff returns the public staff roster.
//
// List staff are accounts that moderate records without holding the
// administrator bit; site staff are accounts that can ban. Both rosters are
// ordered by the seniority of the account's highest group.
//
// GET /api/meta/staff
func (h *MetaHandler) Staff(c *gin.Context) {
	var accounts []models.Account
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Groups").
		Preload("Badges").
		Preload("Player").
		Find(&accounts).Error
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	var listStaff, siteStaff []*identity.UserAccount
	for _, account := range accounts {
		user := identity.NewUserAccount(account)
		if user.Has(permissions.ManageRecords) && !user.Has(permissions.Administrator) {
			listStaff = append(listStaff, user)
		}
		if user.Has(permissions.BanAccounts) {
			siteStaff = append(siteStaff, user)
		}
	}

	bySeniority := func(staff []*identity.UserAccount) func(i, j int) bool {
		return func(i, j int) bool {
			return staff[i].TopGroupPriority() > staff[j].TopGroupPriority()
		}
	}
	sort.SliceStable(listStaff, bySeniority(listStaff))
	sort.SliceStable(siteStaff, bySeniority(siteStaff))

	display := func(staff []*identity.UserAccount) []map[string]any {
		out := make([]map[string]any, 0, len(staff))
		for _, user := range staff {
			out = append(out, user.Display())
		}
		return out
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"list": display(listStaff),
		"site": display(siteStaff),
	}})
}
