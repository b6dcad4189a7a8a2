package api

import (
	"log/slog"
	"net/http"

	"budget/apperror"
	"budget/config"
	"budget/logger"
	"budget/middleware"
	"budget/models"
	"budget/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const msgBadCredentials = "invalid username or password"

// AuthHandler serves /auth.
type AuthHandler struct {
	auth       *middleware.Authenticator
	users      *repository.UserRepository
	categories *repository.CategoryRepository
	logger     *slog.Logger
}

func NewAuthHandler(deps Deps) *AuthHandler {
	return &AuthHandler{
		auth:       deps.Auth,
		users:      repository.NewUserRepository(deps.DB),
		categories: repository.NewCategoryRepository(deps.DB),
		logger:     deps.getLogger(),
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"ana"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"password123"`
	Email    string `json:"email" binding:"omitempty,email" example:"ana@example.com"`
}

// LoginRequest accepts a username or an e-mail address in Username.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"ana"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required" example:"password123"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72" example:"newpassword123"`
}

// Register creates an account with the default categories
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, h.logger, err, "failed to hash password")
		return
	}

	user := models.User{Username: req.Username, Password: string(hashed), Email: req.Email}
	ctx := c.Request.Context()
	if err := h.users.Create(ctx, &user); err != nil {
		RespondError(c, h.logger, err, "failed to create user")
		return
	}

	if err := h.categories.SeedDefaults(ctx, user.ID); err != nil {
		h.logger.WarnContext(ctx, "default categories not created", logger.FieldUserID, user.ID, logger.FieldError, err)
	}

	c.JSON(http.StatusCreated, user)
}

// Login issues a session token
// @Summary Login
// @Description Returns a JWT and also sets it as the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	user, err := h.users.FindByLogin(c.Request.Context(), req.Username)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			Unauthorized(c, msgBadCredentials)
			return
		}
		RespondError(c, h.logger, err, "failed to look up user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, msgBadCredentials)
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		RespondError(c, h.logger, err, "failed to issue token")
		return
	}

	h.setSessionCookie(c, token, int(h.auth.TTL().Seconds()))
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: *user})
}

// Logout clears the session cookie
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	OK(c)
}

// Profile returns the current user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		RespondError(c, h.logger, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the current user's password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.Get(ctx, middleware.GetCurrentUserID(c))
	if err != nil {
		RespondError(c, h.logger, err, "failed to load user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		Unauthorized(c, "current password is wrong")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, h.logger, err, "failed to hash password")
		return
	}
	if err := h.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		RespondError(c, h.logger, err, "failed to update password")
		return
	}
	OK(c)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	secure, sameSite := getCookieOptions()
	c.SetSameSite(sameSite)
	c.SetCookie(h.auth.CookieName(), value, maxAge, "/", "", secure, true)
}

// getCookieOptions marks cookies Secure in release mode. SameSite=Lax keeps
// cross-site POSTs from carrying the session.
func getCookieOptions() (secure bool, sameSite http.SameSite) {
	if cfg := config.GlobalConfig; cfg != nil && cfg.Server.Mode == "release" {
		secure = true
	}
	return secure, http.SameSiteLaxMode
}
