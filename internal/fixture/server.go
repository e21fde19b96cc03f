// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fixture

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/internal/query"
	"github.com/pdiddy/estate-search/pkg/types"
)

const maxLimit = 100

// Handler serves the listing REST contract from a Store.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewRouter returns a gin engine with the fixture routes under /api.
func NewRouter(store *Store, cfg types.FixtureConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{store: store, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.health)

	api := router.Group("/api")
	{
		api.GET("/properties", h.listProperties)
		api.GET("/properties/search", h.search)
		api.GET("/properties/location/:location", h.listProperties)
		api.GET("/properties/id/:id", h.getProperty)
	}
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func (h *Handler) health(c *gin.Context) {
	n, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "listings": n})
}

func (h *Handler) listProperties(c *gin.Context) {
	intent := query.ParseRoute(c.Param("location"), c.Request.URL.Query())
	limit := h.limit(c)

	items, total, err := h.store.List(c.Request.Context(), intent, limit)
	if err != nil {
		h.logger.Error("listing properties", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch properties"})
		return
	}

	totalPages := types.PageCount(total, limit)
	if totalPages == 0 {
		totalPages = 1
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"properties":  items,
			"total":       total,
			"totalPages":  totalPages,
			"currentPage": intent.Page,
		},
	})
}

func (h *Handler) search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing search term"})
		return
	}
	items, err := h.store.Search(c.Request.Context(), term, 10)
	if err != nil {
		h.logger.Error("searching properties", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "properties": items})
}

func (h *Handler) getProperty(c *gin.Context) {
	p, ok, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("loading property", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load property"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "property not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

func (h *Handler) limit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return types.DefaultPageSize
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fixture backend listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("fixture backend shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
