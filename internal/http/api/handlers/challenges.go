package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/challengelist/listd/internal/db"
	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/pagination"
	"github.com/challengelist/listd/internal/permissions"
	"github.com/challengelist/listd/internal/positions"
	"github.com/challengelist/listd/internal/validate"
	"github.com/challengelist/listd/internal/videolink"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChallengeHandler serves the ordered challenge list.
type ChallengeHandler struct {
	db            *gorm.DB
	engine        *positions.Engine
	videos        videolink.Checker
	maxChallenges int
}

// NewChallengeHandler constructs a ChallengeHandler. maxChallenges is the
// cutoff between the main list and the legacy list.
func NewChallengeHandler(db *gorm.DB, engine *positions.Engine, videos videolink.Checker, maxChallenges int) *ChallengeHandler {
	return &ChallengeHandler{
		db:            db,
		engine:        engine,
		videos:        videos,
		maxChallenges: maxChallenges,
	}
}

// Query surface accepted by List.
var (
	challengeSortFields   = []string{"id", "name", "position", "created_at", "updated_at"}
	challengeFilterFields = []string{"id", "name", "position", "video"}
)

// List returns a page of challenges.
//
// GET /api/challenges
func (h *ChallengeHandler) List(c *gin.Context) {
	page := pagination.FromContext(c)
	if page.Sort != "" && !fieldAllowed(challengeSortFields, page.Sort) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid sort parameter.",
		})
		return
	}

	where := pagination.BuildFilters(page.Filters, challengeFilterFields, nil)

	query := h.db.WithContext(c.Request.Context()).
		Preload("Verifier").
		Preload("Publisher").
		Preload("Creators")

	// The name filter matches substrings without case, honoring the
	// active dialect.
	if name, ok := where["name"]; ok {
		delete(where, "name")
		pattern := db.NormalizeLikePattern(h.db, fmt.Sprintf("%%%v%%", name))
		query = query.Where(db.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}

	var challenges []models.Challenge
	errFind := query.
		Where(where).
		Order(page.OrderBy("id")).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&challenges).Error
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	before := 0
	if page.Before != nil {
		before = *page.Before
	}
	if links := pagination.Links("/api/challenges", page.Limit, page.Offset(), before, len(challenges)); links != "" {
		c.Header("Link", links)
	}

	display := make([]gin.H, 0, len(challenges))
	for _, challenge := range challenges {
		display = append(display, displayChallenge(challenge))
	}
	c.JSON(http.StatusOK, gin.H{"data": display})
}

// MainList returns the list in rank order, split into the main list and the
// legacy list at the configured cutoff.
//
// GET /api/challenges/list?type=main|legacy
func (h *ChallengeHandler) MainList(c *gin.Context) {
	listType := c.DefaultQuery("type", "main")
	if listType != "main" && listType != "legacy" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid list type.",
		})
		return
	}

	query := h.db.WithContext(c.Request.Context()).
		Preload("Verifier").
		Preload("Publisher").
		Preload("Creators").
		Order("position ASC")
	if listType == "main" {
		query = query.Where("position <= ?", h.maxChallenges)
	} else {
		query = query.Where("position > ?", h.maxChallenges)
	}

	var challenges []models.Challenge
	if errFind := query.Find(&challenges).Error; errFind != nil {
		internalError(c, errFind)
		return
	}

	display := make([]gin.H, 0, len(challenges))
	for _, challenge := range challenges {
		display = append(display, displayChallenge(challenge))
	}
	c.JSON(http.StatusOK, gin.H{"data": display})
}

// Get returns a single challenge with its approved records.
//
// GET /api/challenges/:id
func (h *ChallengeHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var challenge models.Challenge
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Verifier").
		Preload("Publisher").
		Preload("Creators").
		Preload("Records", "status = ?", models.RecordStatusApproved).
		Preload("Records.Player").
		First(&challenge, id).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		challengeNotFound(c)
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	display := displayChallenge(challenge)
	records := make([]gin.H, 0, len(challenge.Records))
	for _, record := range challenge.Records {
		record.Challenge = challenge
		records = append(records, displayRecord(record, false))
	}
	display["records"] = records
	c.JSON(http.StatusOK, gin.H{"data": display})
}

// Create inserts a new challenge at the requested position and records the
// verifier's completion as an approved verification record. Requires
// ManageChallenges.
//
// POST /api/challenges
func (h *ChallengeHandler) Create(c *gin.Context) {
	if authorized(c, permissions.ManageChallenges) == nil {
		return
	}

	body, ok := bindBody(c)
	if !ok {
		return
	}
	if !checkSchema(c, body, validate.Schema{
		"name":      {Kind: validate.String, Required: true},
		"position":  {Kind: validate.Number, Required: true},
		"video":     {Kind: validate.String, Required: true},
		"verifier":  {Kind: validate.String, Required: true},
		"publisher": {Kind: validate.String, Required: true},
		"creators":  {Kind: validate.StringSlice, Required: true},
		"fps":       {Kind: validate.String},
		"points":    {Kind: validate.Number},
	}) {
		return
	}

	video := strings.TrimSpace(body["video"].(string))
	if !h.videos.Acceptable(c.Request.Context(), video) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "The provided video link is not acceptable.",
		})
		return
	}

	verifier, errVerifier := getOrCreatePlayer(h.db.WithContext(c.Request.Context()), body["verifier"].(string))
	if errVerifier != nil {
		internalError(c, errVerifier)
		return
	}
	publisher, errPublisher := getOrCreatePlayer(h.db.WithContext(c.Request.Context()), body["publisher"].(string))
	if errPublisher != nil {
		internalError(c, errPublisher)
		return
	}
	creators, errCreators := h.resolveCreators(c, validate.Strings(body["creators"]))
	if errCreators != nil {
		internalError(c, errCreators)
		return
	}

	challenge := models.Challenge{
		Name:        strings.TrimSpace(body["name"].(string)),
		Video:       video,
		VerifierID:  verifier.ID,
		PublisherID: publisher.ID,
		Creators:    creators,
	}
	challenge.FPS = "Any"
	if fps, ok := body["fps"].(string); ok && strings.TrimSpace(fps) != "" {
		challenge.FPS = strings.TrimSpace(fps)
	}
	if points, ok := body["points"].(float64); ok {
		challenge.Points = int(points)
	}

	errInsert := h.engine.Insert(c.Request.Context(), &challenge, int(body["position"].(float64)))
	var rangeErr *positions.RangeError
	if errors.As(errInsert, &rangeErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": rangeErr.Error(),
		})
		return
	}
	if errInsert != nil {
		internalError(c, errInsert)
		return
	}

	verification := models.Record{
		ChallengeID: challenge.ID,
		PlayerID:    verifier.ID,
		Status:      models.RecordStatusApproved,
		Type:        models.RecordTypeVerification,
		Video:       video,
	}
	if errRecord := h.db.WithContext(c.Request.Context()).Create(&verification).Error; errRecord != nil {
		internalError(c, errRecord)
		return
	}

	created, errReload := h.reload(c, challenge.ID)
	if errReload != nil {
		internalError(c, errReload)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": displayChallenge(created)})
}

// Update patches a challenge and reports which fields changed. Requires
// ManageChallenges.
//
// A position change goes through the positions engine so the list stays
// contiguous. A verifier change must carry a video and repairs the
// challenge's verification record to point at the new verifier.
//
// PATCH /api/challenges/:id
func (h *ChallengeHandler) Update(c *gin.Context) {
	if authorized(c, permissions.ManageChallenges) == nil {
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
		"name":      {Kind: validate.String},
		"position":  {Kind: validate.Number},
		"video":     {Kind: validate.String},
		"verifier":  {Kind: validate.String},
		"publisher": {Kind: validate.String},
		"creators":  {Kind: validate.StringSlice},
		"fps":       {Kind: validate.String},
		"points":    {Kind: validate.Number},
	}) {
		return
	}

	var challenge models.Challenge
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Verifier").
		Preload("Publisher").
		Preload("Creators").
		First(&challenge, id).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		challengeNotFound(c)
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	var changes []gin.H
	change := func(field string, from, to any) {
		changes = append(changes, gin.H{"field": field, "from": from, "to": to})
	}

	video, videoGiven := body["video"].(string)
	video = strings.TrimSpace(video)
	if videoGiven && !h.videos.Acceptable(c.Request.Context(), video) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "The provided video link is not acceptable.",
		})
		return
	}

	// The verifier change is validated before any mutation so a rejected
	// request leaves the challenge untouched.
	verifierName, verifierGiven := body["verifier"].(string)
	verifierName = strings.TrimSpace(verifierName)
	changeVerifier := verifierGiven && verifierName != challenge.Verifier.Name
	if changeVerifier && !videoGiven {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    http.StatusUnprocessableEntity,
			"message": "A video is required when changing the verifier.",
		})
		return
	}

	if position, ok := body["position"].(float64); ok && int(position) != challenge.Position {
		errMove := h.engine.Reposition(c.Request.Context(), challenge.ID, int(position))
		var rangeErr *positions.RangeError
		if errors.As(errMove, &rangeErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": rangeErr.Error(),
			})
			return
		}
		if errMove != nil {
			internalError(c, errMove)
			return
		}
		change("position", challenge.Position, int(position))
	}

	updates := map[string]any{}
	if name, ok := body["name"].(string); ok {
		name = strings.TrimSpace(name)
		if name != "" && name != challenge.Name {
			change("name", challenge.Name, name)
			updates["name"] = name
		}
	}
	if videoGiven && video != challenge.Video {
		change("video", challenge.Video, video)
		updates["video"] = video
	}
	if fps, ok := body["fps"].(string); ok {
		fps = strings.TrimSpace(fps)
		if fps != challenge.FPS {
			change("fps", challenge.FPS, fps)
			updates["fps"] = fps
		}
	}
	if points, ok := body["points"].(float64); ok && int(points) != challenge.Points {
		change("points", challenge.Points, int(points))
		updates["points"] = int(points)
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if changeVerifier {
			verifier, errVerifier := getOrCreatePlayer(tx, verifierName)
			if errVerifier != nil {
				return errVerifier
			}
			change("verifier", challenge.Verifier.Name, verifier.Name)
			updates["verifier_id"] = verifier.ID
			updates["video"] = video

			// The verification record must follow the verifier.
			errRepair := tx.Model(&models.Record{}).
				Where("challenge_id = ? AND type = ?", challenge.ID, models.RecordTypeVerification).
				Updates(map[string]any{"player_id": verifier.ID, "video": video}).Error
			if errRepair != nil {
				return fmt.Errorf("handlers: repair verification record: %w", errRepair)
			}
		}

		if publisherName, ok := body["publisher"].(string); ok {
			publisherName = strings.TrimSpace(publisherName)
			if publisherName != "" && publisherName != challenge.Publisher.Name {
				publisher, errPublisher := getOrCreatePlayer(tx, publisherName)
				if errPublisher != nil {
					return errPublisher
				}
				change("publisher", challenge.Publisher.Name, publisher.Name)
				updates["publisher_id"] = publisher.ID
			}
		}

		if names := validate.Strings(body["creators"]); body["creators"] != nil {
			creators := make([]models.Player, 0, len(names))
			for _, name := range names {
				creator, errCreator := getOrCreatePlayer(tx, name)
				if errCreator != nil {
					return errCreator
				}
				creators = append(creators, creator)
			}
			errReplace := tx.Model(&challenge).Association("Creators").Replace(creators)
			if errReplace != nil {
				return fmt.Errorf("handlers: replace creators: %w", errReplace)
			}
			change("creators", len(challenge.Creators), len(creators))
		}

		if len(updates) == 0 {
			return nil
		}
		if errUpdate := tx.Model(&models.Challenge{}).Where("id = ?", challenge.ID).Updates(updates).Error; errUpdate != nil {
			return fmt.Errorf("handlers: update challenge: %w", errUpdate)
		}
		return nil
	})
	if errTx != nil {
		internalError(c, errTx)
		return
	}

	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "No changes were provided.",
		})
		return
	}

	updated, errReload := h.reload(c, challenge.ID)
	if errReload != nil {
		internalError(c, errReload)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    displayChallenge(updated),
		"changes": changes,
	})
}

// Delete removes a challenge, its records, and its position, closing the
// gap in the list. Requires DeleteChallenges.
//
// DELETE /api/challenges/:id
func (h *ChallengeHandler) Delete(c *gin.Context) {
	if authorized(c, permissions.DeleteChallenges) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deleted, errLoad := h.reload(c, id)
	if errors.Is(errLoad, gorm.ErrRecordNotFound) {
		challengeNotFound(c)
		return
	}
	if errLoad != nil {
		internalError(c, errLoad)
		return
	}

	if errRemove := h.engine.Remove(c.Request.Context(), id); errRemove != nil {
		if errors.Is(errRemove, gorm.ErrRecordNotFound) {
			challengeNotFound(c)
			return
		}
		internalError(c, errRemove)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": displayChallenge(deleted)})
}

// Creators lists a challenge's creators.
//
// GET /api/challenges/:id/creators
func (h *ChallengeHandler) Creators(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var challenge models.Challenge
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Creators").
		First(&challenge, id).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		challengeNotFound(c)
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	creators := make([]gin.H, 0, len(challenge.Creators))
	for _, creator := range challenge.Creators {
		creators = append(creators, displayPlayer(creator))
	}
	c.JSON(http.StatusOK, gin.H{"data": creators})
}

// AddCreator adds one creator by name. Requires ManageChallenges.
//
// POST /api/challenges/:id/creators
func (h *ChallengeHandler) AddCreator(c *gin.Context) {
	if authorized(c, permissions.ManageChallenges) == nil {
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
		"name": {Kind: validate.String, Required: true},
	}) {
		return
	}

	var challenge models.Challenge
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Creators").
		First(&challenge, id).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		challengeNotFound(c)
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	creator, errCreator := getOrCreatePlayer(h.db.WithContext(c.Request.Context()), body["name"].(string))
	if errCreator != nil {
		internalError(c, errCreator)
		return
	}
	for _, existing := range challenge.Creators {
		if existing.ID == creator.ID {
			c.JSON(http.StatusConflict, gin.H{
				"code":    http.StatusConflict,
				"message": "That player is already a creator of this challenge.",
			})
			return
		}
	}

	errAppend := h.db.WithContext(c.Request.Context()).
		Model(&challenge).
		Association("Creators").
		Append(&creator)
	if errAppend != nil {
		internalError(c, errAppend)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": displayPlayer(creator)})
}

// ReplaceCreators replaces the full creator list. Requires
// ManageChallenges.
//
// PATCH /api/challenges/:id/creators
func (h *ChallengeHandler) ReplaceCreators(c *gin.Context) {
	if authorized(c, permissions.ManageChallenges) == nil {
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
		"names": {Kind: validate.StringSlice, Required: true},
	}) {
		return
	}

	var challenge models.Challenge
	errFind := h.db.WithContext(c.Request.Context()).First(&challenge, id).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		challengeNotFound(c)
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	creators, errCreators := h.resolveCreators(c, validate.Strings(body["names"]))
	if errCreators != nil {
		internalError(c, errCreators)
		return
	}
	errReplace := h.db.WithContext(c.Request.Context()).
		Model(&challenge).
		Association("Creators").
		Replace(creators)
	if errReplace != nil {
		internalError(c, errReplace)
		return
	}

	display := make([]gin.H, 0, len(creators))
	for _, creator := range creators {
		display = append(display, displayPlayer(creator))
	}
	c.JSON(http.StatusOK, gin.H{"data": display})
}

// RemoveCreator removes one creator from a challenge. Requires
// ManageChallenges.
//
// DELETE /api/challenges/:id/creators/:playerId
func (h *ChallengeHandler) RemoveCreator(c *gin.Context) {
	if authorized(c, permissions.ManageChallenges) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	playerID, ok := parseID(c, "playerId")
	if !ok {
		return
	}

	var challenge models.Challenge
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Creators").
		First(&challenge, id).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		challengeNotFound(c)
		return
	}
	if errFind != nil {
		internalError(c, errFind)
		return
	}

	for _, creator := range challenge.Creators {
		if creator.ID != playerID {
			continue
		}
		errDelete := h.db.WithContext(c.Request.Context()).
			Model(&challenge).
			Association("Creators").
			Delete(&models.Player{ID: playerID})
		if errDelete != nil {
			internalError(c, errDelete)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": displayPlayer(creator)})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{
		"code":    http.StatusNotFound,
		"message": "That player is not a creator of this challenge.",
	})
}

// resolveCreators maps creator names to players, creating missing ones.
func (h *ChallengeHandler) resolveCreators(c *gin.Context, names []string) ([]models.Player, error) {
	creators := make([]models.Player, 0, len(names))
	for _, name := range names {
		creator, errCreator := getOrCreatePlayer(h.db.WithContext(c.Request.Context()), name)
		if errCreator != nil {
			return nil, errCreator
		}
		creators = append(creators, creator)
	}
	return creators, nil
}

// reload fetches a challenge with the associations responses render.
func (h *ChallengeHandler) reload(c *gin.Context, id uint64) (models.Challenge, error) {
	var challenge models.Challenge
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Verifier").
		Preload("Publisher").
		Preload("Creators").
		First(&challenge, id).Error
	return challenge, errFind
}

func challengeNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"code":    http.StatusNotFound,
		"message": "The requested challenge does not exist.",
	})
}

func fieldAllowed(allowed []string, field string) bool {
	for _, item := range allowed {
		if item == field {
			return true
		}
	}
	return false
}
