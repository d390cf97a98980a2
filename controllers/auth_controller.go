package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lifecheck/lifecheck/middleware"
	"github.com/lifecheck/lifecheck/models"
	"github.com/lifecheck/lifecheck/services"
	"github.com/lifecheck/lifecheck/utils"
)

// AuthController handles registration, login and the current-user endpoint.
type AuthController struct {
	users     services.UserStore
	directory *services.UserDirectory
	tokens    *utils.TokenService
}

// NewAuthController creates an AuthController.
func NewAuthController(users services.UserStore, directory *services.UserDirectory, tokens *utils.TokenService) *AuthController {
	return &AuthController{users: users, directory: directory, tokens: tokens}
}

// Register handles local account registration with bcrypt hashing.
// Validation happens here, before any persistence call.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must not be empty")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		utils.Error(ctx, http.StatusBadRequest, 40003, "a valid email is required")
		return
	}
	if len(req.Password) < 6 {
		utils.Error(ctx, http.StatusBadRequest, 40004, "password must be at least 6 characters")
		return
	}

	// Friendly pre-checks; the unique indexes remain the enforcement point
	// and Create translates their violations to the same conflicts.
	if _, err := a.users.FindByUsername(ctx.Request.Context(), req.Username); err == nil {
		respondDomainError(ctx, services.ErrUsernameTaken)
		return
	}
	if _, err := a.users.FindByEmail(ctx.Request.Context(), req.Email); err == nil {
		respondDomainError(ctx, services.ErrEmailTaken)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        models.DefaultRole,
	}
	if err := a.users.Create(ctx.Request.Context(), &user); err != nil {
		respondDomainError(ctx, err)
		return
	}

	utils.Sugar.Infow("user registered", "username", user.Username, "user_id", user.ID)
	utils.Created(ctx, gin.H{"id": user.ID, "username": user.Username})
}

// Login verifies credentials through the directory and issues a token.
// Unknown username and wrong password are indistinguishable to the caller.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	principal, err := a.directory.ResolvePrincipal(ctx.Request.Context(), req.Username)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	if !utils.CheckPassword(principal.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := a.tokens.Issue(principal.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": token})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
		return
	}

	user, err := a.users.FindByID(ctx.Request.Context(), principal.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"roles":           principal.Roles,
		"streak_days":     user.StreakDays,
		"last_checkin_at": user.LastCheckInAt,
		"created_at":      user.CreatedAt,
	})
}
