package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecircle-server/internal/middleware"
	"carecircle-server/internal/models"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct{ *Env }

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(env *Env) *AuthHandler {
	return &AuthHandler{Env: env}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=caregiver patient"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	role := models.RoleCaregiver
	if req.Role != "" {
		role = models.Role(req.Role)
	}
	user := models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  role,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}

	if err := h.Store.Users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			utils.BadRequest(c, "User with this email already exists")
			return
		}
		h.storeError(c, err, "User")
		return
	}

	h.Logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Store.Users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !user.CheckPassword(req.Password)) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if err != nil {
		h.storeError(c, err, "User")
		return
	}

	refresh, access, ok := h.issue(c, user)
	if !ok {
		return
	}

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Sanitize(),
	})
}

// issue signs a token pair, stores the refresh token and sets its cookie.
func (h *AuthHandler) issue(c *gin.Context, user *models.User) (refresh, access string, ok bool) {
	pair, err := utils.GenerateTokens(user, h.Cfg, h.Now())
	if err != nil {
		h.Logger.Error("token signing failed", zap.Error(err))
		utils.InternalServerError(c, "Failed to generate tokens")
		return "", "", false
	}

	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     pair.RefreshToken,
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := h.Store.Tokens.Create(c.Request.Context(), &stored); err != nil {
		h.storeError(c, err, "Refresh token")
		return "", "", false
	}

	c.SetCookie(refreshCookie, pair.RefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60,
		"/", "", !h.Cfg.IsDevelopment(), true)
	return pair.RefreshToken, pair.AccessToken, true
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken exchanges a refresh token for a new pair and revokes the old one.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	claims, err := utils.ValidateToken(token, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	ctx := c.Request.Context()
	now := h.Now()
	if _, err := h.Store.Tokens.FindUsable(ctx, token, claims.UserID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
			return
		}
		h.storeError(c, err, "Refresh token")
		return
	}

	user, err := h.Store.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		h.storeError(c, err, "User")
		return
	}

	if err := h.Store.Tokens.Revoke(ctx, token, now); err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.storeError(c, err, "Refresh token")
		return
	}

	refresh, access, ok := h.issue(c, user)
	if !ok {
		return
	}
	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the refresh token from the body or cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(refreshCookie)
	}
	if req.RefreshToken == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	err := h.Store.Tokens.Revoke(c.Request.Context(), req.RefreshToken, h.Now())
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.storeError(c, err, "Refresh token")
		return
	}

	c.SetCookie(refreshCookie, "", -1, "/", "", !h.Cfg.IsDevelopment(), true)
	if err != nil {
		utils.Success(c, "Logout successful (token not found or already invalid).", nil)
		return
	}
	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating user profile.
type UpdateProfileRequest struct {
	Name           string `json:"name" binding:"omitempty,max=150"`
	Age            *int   `json:"age" binding:"omitempty,min=0,max=120"`
	Gender         string `json:"gender" binding:"omitempty,oneof=male female other"`
	Condition      string `json:"condition" binding:"max=255"`
	CaregiverPhone string `json:"caregiverPhone" binding:"max=32"`
}

// UpdateProfile handles updating the currently authenticated user's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Gender != "" {
		user.Gender = models.Gender(req.Gender)
	}
	if req.Condition != "" {
		user.Condition = req.Condition
	}
	if req.CaregiverPhone != "" {
		user.CaregiverPhone = req.CaregiverPhone
	}
	user.ProfileComplete = user.Age != nil && user.Gender != "" && user.Condition != ""

	if err := h.Store.Users.Update(c.Request.Context(), user); err != nil {
		h.storeError(c, err, "User")
		return
	}
	utils.Success(c, "Profile updated successfully", user.Sanitize())
}

func (h *AuthHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	user, err := h.Store.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "User profile")
		return nil, false
	}
	return user, true
}
