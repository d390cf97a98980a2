package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lifecheck/lifecheck/services"
	"github.com/lifecheck/lifecheck/utils"
)

// respondDomainError is the single place domain failures are translated to
// HTTP. The services themselves never encode HTTP semantics.
func respondDomainError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
	case errors.Is(err, services.ErrCheckInNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, "check-in not found")
	case errors.Is(err, services.ErrUsernameTaken):
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
	case errors.Is(err, services.ErrEmailTaken):
		utils.Error(ctx, http.StatusConflict, 40902, "email already exists")
	case errors.Is(err, services.ErrDuplicateCheckIn):
		utils.Error(ctx, http.StatusBadRequest, 40030, "already checked in today")
	default:
		utils.Sugar.Errorw("unexpected error", "err", err, "path", ctx.Request.URL.Path)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}
