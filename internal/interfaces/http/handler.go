package http

import (
	"errors"
	"net/http"
	"notdienst_bot/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

// BotIdentity exposes the username the bot runs under
type BotIdentity interface {
	Username() string
}

// LimiterStats reports the state of a rate limiter
type LimiterStats interface {
	GetStats() map[string]interface{}
}

type Handler struct {
	bot     BotIdentity
	auth    *usecases.AuthUsecase
	stats   *usecases.StatsUsecase
	inbound LimiterStats
	logger  zerolog.Logger
}

// NewHandler builds the ops API handlers. auth and inbound may be nil.
func NewHandler(bot BotIdentity, auth *usecases.AuthUsecase, stats *usecases.StatsUsecase, inbound LimiterStats, logger zerolog.Logger) *Handler {
	return &Handler{
		bot:     bot,
		auth:    auth,
		stats:   stats,
		inbound: inbound,
		logger:  logger.With().Str("component", "http").Logger(),
	}
}

// SetupRoutes registers the ops API. Login and stats are only mounted when
// auth is configured.
func SetupRoutes(r *gin.Engine, h *Handler, middleware *Middleware) {
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20))
	r.Use(middleware.CORSMiddleware())

	r.GET("/healthz", h.Health)
	r.GET("/api/bot/qr", h.BotQRCode)

	if h.auth == nil {
		return
	}

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", h.Login)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerClient())
	{
		api.GET("/stats", h.GetStats)
	}
}

func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok", "bot": h.bot.Username()}
	if h.inbound != nil {
		resp["inbound_limiter"] = h.inbound.GetStats()
	}
	c.JSON(http.StatusOK, resp)
}

// BotQRCode returns a PNG QR code that opens a chat with the bot
func (h *Handler) BotQRCode(c *gin.Context) {
	size, ok := ParseQRSize(c.Query("size"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
		return
	}

	png, err := qrcode.Encode(BotLink(h.bot.Username()), qrcode.Medium, size)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate QR code")
		c.String(http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) Login(c *gin.Context) {
	var loginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !ValidUsername(loginReq.Username) || !ValidPassword(loginReq.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.auth.Login(loginReq.Username, loginReq.Password)
	if errors.Is(err, usecases.ErrInvalidCredentials) {
		h.logger.Warn().Str("username", loginReq.Username).Str("client_ip", c.ClientIP()).Msg("failed admin login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetStats returns daily search outcomes for the last ?days=N days
func (h *Handler) GetStats(c *gin.Context) {
	days, ok := ParseDays(c.Query("days"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	report, err := h.stats.Report(c.Request.Context(), days)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load usage stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, report)
}
