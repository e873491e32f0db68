package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhive/auth-service/internal/auth"
	"github.com/taskhive/auth-service/internal/log"
	"github.com/taskhive/auth-service/internal/oauth"
	"github.com/taskhive/auth-service/internal/queue"
	"github.com/taskhive/auth-service/internal/repo"
	"github.com/taskhive/auth-service/internal/security"
)

// TokenStore is the slice of the mongo store the handlers need for refresh
// token persistence.
type TokenStore interface {
	SaveRefresh(ctx context.Context, accountID primitive.ObjectID, plain string, ttl time.Duration) error
	FindValidRefresh(ctx context.Context, plain string) (*repo.RefreshToken, error)
	RevokeRefresh(ctx context.Context, plain string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Auth            *auth.Service
	Tokens          TokenStore
	Health          []Pinger
	OAuth           *oauth.Registry
	Events          queue.Publisher
	Limiter         Limiter
	JWTSecret       string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	RateLimitPerMin int
}

func NewHandler(svc *auth.Service, tokens TokenStore, health []Pinger, reg *oauth.Registry,
	events queue.Publisher, limiter Limiter, jwtSecret string, accessTTL time.Duration,
	refreshDays, rlPerMin int) *Handler {
	return &Handler{
		Auth:            svc,
		Tokens:          tokens,
		Health:          health,
		OAuth:           reg,
		Events:          events,
		Limiter:         limiter,
		JWTSecret:       jwtSecret,
		AccessTTL:       accessTTL,
		RefreshTTL:      time.Duration(refreshDays) * 24 * time.Hour,
		RateLimitPerMin: rlPerMin,
	}
}

// writeError maps the auth error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrVerificationFailed),
		errors.Is(err, auth.ErrCredentialMismatch),
		errors.Is(err, auth.ErrUnsupportedProvider):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrLoginIDTaken), errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type sendCodeReq struct {
	Email string `json:"email" binding:"required"`
}

// SendVerificationCode godoc
// @Summary Issue an email verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body sendCodeReq true "email"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/verification-code [post]
func (h *Handler) SendVerificationCode(c *gin.Context) {
	var in sendCodeReq
	if err := c.ShouldBindJSON(&in); err != nil || !strings.Contains(in.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	if err := h.Auth.SendVerificationCode(c.Request.Context(), in.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

type signupReq struct {
	DisplayName string `json:"display_name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	LoginID     string `json:"login_id" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// Signup godoc
// @Summary Register a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signupReq true "signup"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var in signupReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !strings.Contains(in.Email, "@") || len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or weak password"})
		return
	}
	account, err := h.Auth.Register(c.Request.Context(),
		strings.TrimSpace(in.DisplayName), in.Email, in.LoginID, in.Password, in.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	go h.Events.Publish(c.Request.Context(), queue.Exchange, queue.KeyRegistered,
		queue.AccountRegistered{
			AccountID:   account.ID,
			DisplayName: account.DisplayName,
			ShortCode:   account.ShortCode,
			Email:       account.Email,
			Origin:      "local",
		}, requestID(c))

	c.JSON(http.StatusCreated, gin.H{
		"id":           account.ID,
		"display_name": account.DisplayName,
		"short_code":   account.ShortCode,
		"tag":          account.Tag(),
	})
}

type loginReq struct {
	LoginID  string `json:"login_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}
type tokenResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login godoc
// @Summary Local login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} tokenResp
// @Failure 401 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	account, err := h.Auth.Login(c.Request.Context(), in.LoginID, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	tokens, err := h.issueTokens(c, account.ID.Hex(), account.Tag(), account.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	go h.Events.Publish(c.Request.Context(), queue.Exchange, queue.KeyLoggedIn,
		queue.AccountLoggedIn{AccountID: account.ID, LoginID: in.LoginID}, requestID(c))

	c.JSON(http.StatusOK, tokens)
}

type refreshReq struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *Handler) Refresh(c *gin.Context) {
	var in refreshReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rt, err := h.Tokens.FindValidRefresh(c.Request.Context(), in.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh"})
		return
	}
	account, err := h.Auth.AccountByID(c.Request.Context(), rt.AccountID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	access, err := security.MakeAccess(h.JWTSecret, account.ID.Hex(), account.Tag(), h.AccessTTL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *Handler) Logout(c *gin.Context) {
	var in refreshReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if rt, err := h.Tokens.FindValidRefresh(c.Request.Context(), in.Refresh); err == nil {
		_ = h.Auth.MarkOffline(c.Request.Context(), rt.AccountID)
	}
	if err := h.Tokens.RevokeRefresh(c.Request.Context(), in.Refresh); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type findLoginIDReq struct {
	Email string `json:"email" binding:"required"`
}

// FindLoginID always answers the same way so the response shape cannot be
// used to probe which emails have accounts.
func (h *Handler) FindLoginID(c *gin.Context) {
	var in findLoginIDReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.Auth.FindLoginID(c.Request.Context(), in.Email)
	c.JSON(http.StatusOK, gin.H{"message": "if the email is registered, the login id has been sent"})
}

type resetPasswordReq struct {
	LoginID string `json:"login_id" binding:"required"`
	Email   string `json:"email" binding:"required"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var in resetPasswordReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), in.LoginID, in.Email); err != nil {
		writeError(c, err)
		return
	}
	go h.Events.Publish(c.Request.Context(), queue.Exchange, queue.KeyPasswordReset,
		gin.H{"login_id": in.LoginID}, requestID(c))
	c.JSON(http.StatusOK, gin.H{"message": "temporary password sent"})
}

// OAuthLogin redirects the browser to the provider's consent page.
func (h *Handler) OAuthLogin(c *gin.Context) {
	p, ok := h.OAuth.Get(c.Param("provider"))
	if !ok {
		writeError(c, auth.ErrUnsupportedProvider)
		return
	}
	state := h.OAuth.State().Sign(uuid.NewString())
	c.Redirect(http.StatusFound, p.AuthURL(state))
}

// OAuthCallback finishes the provider handshake and resolves the external
// identity onto a local account.
func (h *Handler) OAuthCallback(c *gin.Context) {
	p, ok := h.OAuth.Get(c.Param("provider"))
	if !ok {
		writeError(c, auth.ErrUnsupportedProvider)
		return
	}
	if !h.OAuth.State().Verify(c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	info, err := p.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		log.L().Warn("oauth exchange failed", zap.String("provider", p.Name()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider exchange failed"})
		return
	}

	account, isNew, err := h.Auth.Resolve(c.Request.Context(), auth.Identity{
		Provider:   info.Provider,
		ExternalID: info.ExternalID,
		Email:      info.Email,
		Name:       info.Name,
		Picture:    info.Picture,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	tokens, err := h.issueTokens(c, account.ID.Hex(), account.Tag(), account.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if isNew {
		go h.Events.Publish(c.Request.Context(), queue.Exchange, queue.KeyRegistered,
			queue.AccountRegistered{
				AccountID:   account.ID,
				DisplayName: account.DisplayName,
				ShortCode:   account.ShortCode,
				Email:       account.Email,
				Origin:      info.Provider,
			}, requestID(c))
	}
	c.JSON(http.StatusOK, gin.H{
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
		"is_new":  isNew,
		"tag":     account.Tag(),
	})
}

func (h *Handler) Healthz(c *gin.Context) {
	for _, p := range h.Health {
		if p == nil {
			continue
		}
		if err := p.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) issueTokens(c *gin.Context, uid, tag string, accountID primitive.ObjectID) (*tokenResp, error) {
	access, err := security.MakeAccess(h.JWTSecret, uid, tag, h.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := security.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := h.Tokens.SaveRefresh(c.Request.Context(), accountID, refresh, h.RefreshTTL); err != nil {
		return nil, err
	}
	return &tokenResp{Access: access, Refresh: refresh}, nil
}
