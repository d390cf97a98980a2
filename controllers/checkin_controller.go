package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifecheck/lifecheck/middleware"
	"github.com/lifecheck/lifecheck/models"
	"github.com/lifecheck/lifecheck/services"
	"github.com/lifecheck/lifecheck/utils"
)

const adminRole = "ADMIN"

// CheckInController handles daily check-in endpoints. All routes in this
// controller sit behind RequireAuth.
type CheckInController struct {
	engine *services.CheckInEngine

	// cacheTTL <= 0 disables the redis read-through cache, which keeps
	// handler tests hermetic.
	cacheTTL time.Duration
}

// NewCheckInController creates a controller around the engine.
func NewCheckInController(engine *services.CheckInEngine, cacheTTL time.Duration) *CheckInController {
	return &CheckInController{engine: engine, cacheTTL: cacheTTL}
}

// Create records today's check-in for the caller.
func (c *CheckInController) Create(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
		return
	}

	type request struct {
		Note     string `json:"note"`
		Location string `json:"location"`
		Status   string `json:"status"`
	}
	var req request
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
			return
		}
	}
	if !validStatus(req.Status) {
		utils.Error(ctx, http.StatusBadRequest, 40011, "status must be NORMAL, LATE or EARLY")
		return
	}

	result, err := c.engine.CheckIn(ctx.Request.Context(), principal.UserID, services.CheckInInput{
		Note:     utils.Sanitize(req.Note),
		Location: utils.Sanitize(req.Location),
		Status:   req.Status,
	})
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	c.invalidateListCache(principal.UserID)
	utils.Sugar.Infow("check-in recorded",
		"user_id", principal.UserID,
		"day", result.Record.CheckinDay,
		"streak_days", result.StreakDays,
	)
	utils.Created(ctx, gin.H{
		"checkin":     result.Record,
		"streak_days": result.StreakDays,
	})
}

// Today reports whether the caller already checked in today.
func (c *CheckInController) Today(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
		return
	}

	checkedIn, err := c.engine.HasCheckedInToday(ctx.Request.Context(), principal.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"checked_in": checkedIn})
}

// My lists the caller's check-ins, newest first, behind a short redis cache.
func (c *CheckInController) My(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
		return
	}

	cacheKey := listCacheKey(principal.UserID)
	if c.cacheTTL > 0 {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	recs, err := c.engine.UserCheckIns(ctx.Request.Context(), principal.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	if recs == nil {
		recs = []models.CheckIn{}
	}

	if c.cacheTTL > 0 {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: recs}, c.cacheTTL)
	}
	utils.Success(ctx, recs)
}

// Get returns one record; only the owner or an admin may read it.
func (c *CheckInController) Get(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		return
	}

	rec, err := c.engine.CheckInByID(ctx.Request.Context(), id)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	if rec.UserID != principal.UserID && !principal.HasRole(adminRole) {
		// do not reveal existence of other users' records
		respondDomainError(ctx, services.ErrCheckInNotFound)
		return
	}
	utils.Success(ctx, rec)
}

// Delete removes one of the caller's records.
func (c *CheckInController) Delete(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := c.engine.DeleteCheckIn(ctx.Request.Context(), principal.UserID, id); err != nil {
		respondDomainError(ctx, err)
		return
	}

	c.invalidateListCache(principal.UserID)
	ctx.Status(http.StatusNoContent)
}

func (c *CheckInController) invalidateListCache(userID uint) {
	if c.cacheTTL > 0 {
		utils.InvalidateByPrefix(listCacheKey(userID))
	}
}

func listCacheKey(userID uint) string {
	return fmt.Sprintf("cache:checkins:my:%d", userID)
}

func validStatus(s string) bool {
	switch s {
	case "", models.CheckInStatusNormal, models.CheckInStatusLate, models.CheckInStatusEarly:
		return true
	default:
		return false
	}
}

func parseID(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid check-in id")
		return 0, false
	}
	return uint(id), true
}
