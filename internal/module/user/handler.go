package user

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digiworldadda/server/internal/shared/response"
)

const contextUserIDKey = "user_id"

// Handler handles HTTP requests for user accounts.
type Handler struct {
	service *Service
	jwt     *JWTManager
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service *Service, jwt *JWTManager, logger *zap.Logger) *Handler {
	return &Handler{service: service, jwt: jwt, logger: logger}
}

// RegisterRoutes registers the user routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.GET("/me", h.RequireAuth(), h.Me)
	}
}

// Register creates a new customer account.
//
//	@Summary		Register
//	@Description	Create a customer account and issue an access token
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	response.Envelope{data=AuthResponse}
//	@Failure		409		{object}	response.Envelope
//	@Router			/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	auth, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			// 409 tells checkout clients to retry as a login.
			response.Conflict(c, "Email already exists")
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		response.InternalError(c, "Failed to register")
		return
	}

	response.Created(c, auth)
}

// Login authenticates a customer account.
//
//	@Summary		Login
//	@Description	Authenticate with email and password
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	response.Envelope{data=AuthResponse}
//	@Failure		401		{object}	response.Envelope
//	@Router			/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	auth, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, ErrUserInactive):
			response.Unauthorized(c, "Account is inactive")
		default:
			h.logger.Error("login failed", zap.Error(err))
			response.InternalError(c, "Failed to login")
		}
		return
	}

	response.OK(c, auth)
}

// Me returns the authenticated user's profile.
//
//	@Summary		Current user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Profile}
//	@Router			/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	id, ok := UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		response.InternalError(c, "Failed to load profile")
		return
	}

	response.OK(c, profile)
}

// RequireAuth validates the bearer token and stores the user id in the
// request context.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := h.jwt.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserIDFromContext extracts the authenticated user id set by RequireAuth.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
