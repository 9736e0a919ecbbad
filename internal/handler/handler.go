package handler

import (
	"net/http"
	"time"

	"session-service/internal/logger"
	"session-service/internal/metrics"
	"session-service/internal/session"

	"github.com/gin-gonic/gin"
)

// Handler exposes the session store over HTTP. It is the host-side consumer
// of the store contract: it mints keys, picks TTLs and maps absence to 404.
type Handler struct {
	store      session.Store
	backend    string
	defaultTTL time.Duration
}

func NewHandler(store session.Store, backend string, defaultTTL time.Duration) *Handler {
	return &Handler{
		store:      store,
		backend:    backend,
		defaultTTL: defaultTTL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/sessions", h.create)
	r.PUT("/sessions/:key", h.set)
	r.GET("/sessions/:key", h.get)
	r.DELETE("/sessions/:key", h.remove)
}

// maxTTLSeconds caps client-supplied TTLs; larger values would overflow
// time.Duration.
const maxTTLSeconds = 10 * 365 * 24 * 60 * 60 // 10 years

type setRequest struct {
	Data map[string]any `json:"data"`

	// TTLSeconds distinguishes "absent" (use the server default) from an
	// explicit 0 (expired on arrival).
	TTLSeconds *int64 `json:"ttl_seconds"`
}

func (h *Handler) ttl(req setRequest) (time.Duration, bool) {
	if req.TTLSeconds == nil {
		return h.defaultTTL, true
	}
	if *req.TTLSeconds < 0 || *req.TTLSeconds > maxTTLSeconds {
		return 0, false
	}
	return time.Duration(*req.TTLSeconds) * time.Second, true
}

func (h *Handler) create(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "request body must contain a data object",
		})
		return
	}

	ttl, ok := h.ttl(req)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ttl_seconds out of range",
		})
		return
	}

	key, err := session.GenerateKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to generate session key",
		})
		return
	}

	now := time.Now()
	if err := h.store.Set(c.Request.Context(), key, req.Data, ttl); err != nil {
		metrics.StoreErrors.WithLabelValues(h.backend, "set").Inc()
		logger.Error("session create failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to store session",
		})
		return
	}

	metrics.SessionWrites.WithLabelValues(h.backend).Inc()
	// expires_at is advisory: the store reads its own clock, so the stored
	// expiration may differ from this value by up to a second.
	c.JSON(http.StatusCreated, gin.H{
		"key":        key,
		"expires_at": now.Add(ttl).Unix(),
	})
}

func (h *Handler) set(c *gin.Context) {
	key := c.Param("key")

	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "request body must contain a data object",
		})
		return
	}

	ttl, ok := h.ttl(req)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ttl_seconds out of range",
		})
		return
	}

	now := time.Now()
	if err := h.store.Set(c.Request.Context(), key, req.Data, ttl); err != nil {
		metrics.StoreErrors.WithLabelValues(h.backend, "set").Inc()
		logger.Error("session set failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to store session",
		})
		return
	}

	metrics.SessionWrites.WithLabelValues(h.backend).Inc()
	// expires_at is advisory: the store reads its own clock, so the stored
	// expiration may differ from this value by up to a second.
	c.JSON(http.StatusOK, gin.H{
		"key":        key,
		"expires_at": now.Add(ttl).Unix(),
	})
}

func (h *Handler) get(c *gin.Context) {
	key := c.Param("key")

	value, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(h.backend, "get").Inc()
		logger.Error("session get failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to load session",
		})
		return
	}
	if value == nil {
		metrics.SessionMisses.WithLabelValues(h.backend).Inc()
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found",
		})
		return
	}

	metrics.SessionReads.WithLabelValues(h.backend).Inc()
	c.JSON(http.StatusOK, gin.H{
		"data": value,
	})
}

func (h *Handler) remove(c *gin.Context) {
	key := c.Param("key")

	if err := h.store.Delete(c.Request.Context(), key); err != nil {
		metrics.StoreErrors.WithLabelValues(h.backend, "delete").Inc()
		logger.Error("session remove failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to remove session",
		})
		return
	}

	metrics.SessionDeletes.WithLabelValues(h.backend).Inc()
	c.Status(http.StatusNoContent)
}
