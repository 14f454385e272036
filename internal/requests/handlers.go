package requests

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for payment requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new requests handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up the public request/claim routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/request", h.CreateRequest)
	r.POST("/pay", h.PayRequest)
	r.GET("/requests", h.ListRequests)
	r.GET("/requests/:token", h.GetRequest)
}

// CreateRequest handles POST /request
func (h *Handler) CreateRequest(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Could not read request body",
		})
		return
	}

	_, link, err := h.service.CreateRequest(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"link": link})
}

// PayRequest handles POST /pay
func (h *Handler) PayRequest(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Could not read request body",
		})
		return
	}

	txHash, err := h.service.ClaimRequest(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"txHash": txHash})
}

// GetRequest handles GET /requests/:token
func (h *Handler) GetRequest(c *gin.Context) {
	request, err := h.service.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}

// ListRequests handles GET /requests
func (h *Handler) ListRequests(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	result, next, err := h.service.ListRecent(c.Request.Context(), limit, c.Query("cursor"))
	if err != nil {
		respondError(c, err)
		return
	}

	if result == nil {
		result = []*Request{}
	}

	resp := gin.H{
		"requests": result,
		"count":    len(result),
	}
	if next != "" {
		resp["next_cursor"] = next
	}
	c.JSON(http.StatusOK, resp)
}

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var ve *ValidationError
	var me *MatchError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": ve.Error(),
		})
	case errors.As(err, &me):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "link_mismatch",
			"message":  me.Error(),
			"field":    me.Field,
			"expected": me.Expected,
			"actual":   me.Actual,
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Request not found",
		})
	case errors.Is(err, ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "already_claimed",
			"message": "Request has already been claimed",
		})
	case errors.Is(err, ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream_error",
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Something went wrong",
		})
	}
}
