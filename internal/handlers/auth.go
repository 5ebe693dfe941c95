package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkoleva/modelhub-api/internal/config"
	"github.com/dkoleva/modelhub-api/internal/middleware"
	"github.com/dkoleva/modelhub-api/internal/oauth"
	"github.com/dkoleva/modelhub-api/internal/services"
	"github.com/dkoleva/modelhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	cfg          *config.Config
	providers    map[string]oauth.Provider
	userService  UserServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
	states       sync.Map
}

type stateData struct {
	expiresAt time.Time
}

func NewAuthHandler(
	cfg *config.Config,
	userService UserServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
) *AuthHandler {
	h := &AuthHandler{
		cfg:          cfg,
		providers:    make(map[string]oauth.Provider),
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
	}

	if cfg.GitHub.ClientID != "" {
		h.providers["github"] = oauth.NewGitHubProvider(cfg.GitHub)
	}
	if cfg.Google.ClientID != "" {
		h.providers["google"] = oauth.NewGoogleProvider(cfg.Google)
	}

	go h.cleanupStates()

	return h
}

func (h *AuthHandler) cleanupStates() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		now := time.Now()
		h.states.Range(func(key, value interface{}) bool {
			if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
				h.states.Delete(key)
			}
			return true
		})
	}
}

func (h *AuthHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	user, err := h.userService.Register(ctx, services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			_ = c.JSON(400, dto.ValidationErrorResponse{Error: "validation failed", Fields: ve.Fields})
		case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrPhoneTaken):
			_ = c.JSON(409, map[string]string{"error": err.Error()})
		default:
			c.InternalServerError("failed to register")
		}
		return
	}

	token, err := h.issueTokens(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		c.InternalServerError("failed to issue tokens")
		return
	}

	_ = c.JSON(201, dto.AuthResponse{User: dto.NewUserResponse(user), Token: *token})
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	ctx := context.Background()

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		c.Unauthorized("invalid email or password")
		return
	}

	token, err := h.issueTokens(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		c.InternalServerError("failed to issue tokens")
		return
	}

	_ = c.JSON(200, dto.AuthResponse{User: dto.NewUserResponse(user), Token: *token})
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	h.states.Store(state, stateData{expiresAt: time.Now().Add(10 * time.Minute)})

	_ = c.JSON(200, dto.ConsentURLResponse{URL: p.GetConsentURL(state)})
}

func (h *AuthHandler) Callback(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		c.BadRequest("missing state parameter")
		return
	}

	sd, ok := h.states.LoadAndDelete(state)
	if !ok {
		c.BadRequest("invalid or expired state")
		return
	}
	if sdTyped, ok := sd.(stateData); !ok || time.Now().After(sdTyped.expiresAt) {
		c.BadRequest("state expired")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		c.BadRequest("missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		c.BadRequest("failed to exchange code")
		return
	}

	user, err := h.userService.FindOrCreateFromOAuth(ctx, userInfo)
	if err != nil {
		c.InternalServerError("failed to create user")
		return
	}

	token, err := h.issueTokens(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		c.InternalServerError("failed to issue tokens")
		return
	}

	_ = c.JSON(200, dto.AuthResponse{User: dto.NewUserResponse(user), Token: *token})
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil || req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	ctx := context.Background()

	hash := services.HashToken(req.RefreshToken)
	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, hash)
	if err != nil || storedUserID != userID {
		c.Unauthorized("refresh token revoked or expired")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user no longer exists")
		return
	}

	// rotate: the presented token is burned before the new pair is issued
	if err := h.tokenService.RevokeRefreshToken(ctx, hash); err != nil {
		c.InternalServerError("failed to rotate token")
		return
	}

	token, err := h.issueTokens(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		c.InternalServerError("failed to issue tokens")
		return
	}

	_ = c.JSON(200, token)
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil || req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	_ = h.tokenService.RevokeRefreshToken(context.Background(), services.HashToken(req.RefreshToken))
	_ = c.JSON(200, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(context.Background(), userID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}
	_ = c.JSON(200, map[string]string{"status": "logged out everywhere"})
}

func (h *AuthHandler) issueTokens(ctx context.Context, userID uuid.UUID, email, role string) (*dto.TokenResponse, error) {
	pair, err := h.jwtService.GenerateTokenPair(userID, email, role)
	if err != nil {
		return nil, err
	}

	expiry := time.Now().Add(h.cfg.JWTRefreshExpiry)
	if err := h.tokenService.StoreRefreshToken(ctx, userID, services.HashToken(pair.RefreshToken), expiry); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
