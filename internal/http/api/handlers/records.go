package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/challengelist/listd/internal/http/api/status"
	"github.com/challengelist/listd/internal/identity"
	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/pagination"
	"github.com/challengelist/listd/internal/permissions"
	"github.com/challengelist/listd/internal/validate"
	"github.com/challengelist/listd/internal/videolink"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecordHandler serves record browsing and submission.
type RecordHandler struct {
	db     *gorm.DB
	videos videolink.Checker
}

// NewRecordHandler constructs a RecordHandler.
func NewRecordHandler(db *gorm.DB, videos videolink.Checker) *RecordHandler {
	return &RecordHandler{db: db, videos: videos}
}

var (
	recordSortFields   = []string{"id", "created_at", "updated_at"}
	recordFilterFields = []string{"id", "status", "challenge", "player_id"}
)

// List returns a page of records.
//
// Anonymous callers and accounts without ManageRecords only see approved
// records; requesting any other status is rejected rather than silently
// narrowed. Submitter identities are rendered only for accounts holding
// ManageSubmitters.
//
// GET /api/records
func (h *RecordHandler) List(c *gin.Context) {
	page := pagination.FromContext(c)
	if page.Sort != "" && !fieldAllowed(recordSortFields, page.Sort) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid sort parameter.",
		})
		return
	}

	account := identity.FromContext(c)
	staff := account != nil && account.Has(permissions.ManageRecords)
	if !staff {
		if wanted, ok := page.Filters["status"]; ok && wanted != models.RecordStatusApproved {
			status.Error(c, http.StatusUnauthorized, status.Unauthorized)
			return
		}
	}

	where := pagination.BuildFilters(page.Filters, recordFilterFields, map[string]pagination.Coercer{
		"challenge": h.challengeCoercer(c),
	})
	if !staff {
		where["status"] = models.RecordStatusApproved
	}

	includeSubmitter := account != nil && account.Has(permissions.ManageSubmitters)

	query := h.db.WithContext(c.Request.Context()).
		Preload("Player").
		Preload("Challenge")
	if includeSubmitter {
		query = query.Preload("Submitter")
	}

	var records []models.Record
	errFind := query.
		Where(where).
		Order(page.OrderBy("id")).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&records).Error
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	before := 0
	if page.Before != nil {
		before = *page.Before
	}
	if links := pagination.Links("/api/records", page.Limit, page.Offset(), before, len(records)); links != "" {
		c.Header("Link", links)
	}

	display := make([]gin.H, 0, len(records))
	for _, record := range records {
		display = append(display, displayRecord(record, includeSubmitter))
	}
	c.JSON(http.StatusOK, gin.H{"data": display})
}

// Create submits a record for a challenge.
//
// Submissions default to SUBMITTED; only accounts with ManageRecords may
// set another status. The submitting account, when present, is stored as
// the record's submitter.
//
// POST /api/records
func (h *RecordHandler) Create(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	if !checkSchema(c, body, validate.Schema{
		"challenge": {Kind: validate.String, Required: true},
		"player":    {Kind: validate.String, Required: true},
		"video":     {Kind: validate.String, Required: true},
		"status":    {Kind: validate.String},
	}) {
		return
	}

	recordStatus := models.RecordStatusSubmitted
	if wanted, ok := body["status"].(string); ok && wanted != "" {
		if !models.ValidRecordStatus(wanted) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "Invalid record status.",
			})
			return
		}
		if wanted != models.RecordStatusSubmitted {
			if authorized(c, permissions.ManageRecords) == nil {
				return
			}
		}
		recordStatus = wanted
	}

	var challenge models.Challenge
	errFind := h.db.WithContext(c.Request.Context()).
		Where("name = ?", strings.TrimSpace(body["challenge"].(string))).
		First(&challenge).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusConflict, gin.H{
			"code":    http.StatusConflict,
			"message": "The referenced challenge does not exist.",
		})
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	video := strings.TrimSpace(body["video"].(string))
	if !h.videos.Acceptable(c.Request.Context(), video) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    http.StatusUnprocessableEntity,
			"message": "The provided video link is not acceptable.",
		})
		return
	}

	player, errPlayer := getOrCreatePlayer(h.db.WithContext(c.Request.Context()), body["player"].(string))
	if errPlayer != nil {
		internalError(c, errPlayer)
		return
	}

	record := models.Record{
		ChallengeID: challenge.ID,
		PlayerID:    player.ID,
		Status:      recordStatus,
		Type:        models.RecordTypeNormal,
		Video:       video,
	}
	if account := identity.FromContext(c); account != nil {
		submitterID := account.Account.ID
		record.SubmitterID = &submitterID
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&record).Error; errCreate != nil {
		internalError(c, errCreate)
		return
	}

	record.Challenge = challenge
	record.Player = player
	c.JSON(http.StatusCreated, gin.H{"data": displayRecord(record, false)})
}

// challengeCoercer resolves the challenge filter, which accepts either a
// numeric challenge ID or a challenge name. An unknown name yields an
// impossible predicate rather than an error so the page simply comes back
// empty.
func (h *RecordHandler) challengeCoercer(c *gin.Context) pagination.Coercer {
	return func(value string) (string, any) {
		if id, errParse := strconv.ParseUint(value, 10, 64); errParse == nil {
			return "challenge_id", id
		}
		var challenge models.Challenge
		errFind := h.db.WithContext(c.Request.Context()).
			Where("name = ?", strings.TrimSpace(value)).
			First(&challenge).Error
		if errFind != nil {
			return "challenge_id", 0
		}
		return "challenge_id", challenge.ID
	}
}
