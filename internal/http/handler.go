package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vehicle-decoder/internal/config"
	"vehicle-decoder/internal/http/middleware"
	"vehicle-decoder/internal/provider"
	"vehicle-decoder/internal/report"
	"vehicle-decoder/internal/service"
	"vehicle-decoder/internal/storage"
)

type Handler struct {
	decodeService *service.DecodeService
	config        *config.Config
	log           zerolog.Logger
	hub           *Hub
	reports       *storage.R2Client
}

func NewHandler(
	decodeService *service.DecodeService,
	cfg *config.Config,
	log zerolog.Logger,
	hub *Hub,
	reports *storage.R2Client,
) *Handler {
	return &Handler{
		decodeService: decodeService,
		config:        cfg,
		log:           log,
		hub:           hub,
		reports:       reports,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/", h.index)
	r.GET("/ws", h.lookupFeed)

	// Public endpoints
	public := r.Group("/api/v1")
	{
		public.POST("/decode", h.decodeVIN)
		public.POST("/decode/plate", h.decodePlate)
	}

	// Protected endpoints
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/lookups", h.listLookups)
		protected.GET("/lookups/export", middleware.RequireAdmin(), h.exportLookups)
	}
}

// index serves the lookup form.
func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"PlateEnabled": h.config.PlateEnabled(),
	})
}

func (h *Handler) decodeVIN(c *gin.Context) {
	vin := c.PostForm("vin")
	year := c.PostForm("year")

	car, err := h.decodeService.DecodeVIN(c.Request.Context(), vin, year)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, errorResponse("Please provide a VIN."))
			return
		}
		h.log.Error().
			Err(err).
			Str("vin", vin).
			Msg("VIN decode request failed")
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"car": car})
}

func (h *Handler) decodePlate(c *gin.Context) {
	plate := c.PostForm("plate")
	state := c.PostForm("state")

	outcome, err := h.decodeService.DecodePlate(c.Request.Context(), plate, state)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, errorResponse("Please provide a plate and state."))
		case provider.NotConfigured(err):
			c.JSON(http.StatusServiceUnavailable, errorResponse("plate decoding is not configured"))
		default:
			h.log.Error().
				Err(err).
				Str("plate", plate).
				Str("state", state).
				Msg("plate decode request failed")
			c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		}
		return
	}

	if outcome.Succeeded() {
		c.JSON(http.StatusOK, gin.H{"car": outcome.Vehicle})
		return
	}

	// The provider reported its own failure; its body goes back as is.
	c.JSON(http.StatusOK, outcome.Raw)
}

func (h *Handler) listLookups(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	kind := strings.TrimSpace(c.Query("kind"))

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := parseInt(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := parseInt(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	lookups, err := h.decodeService.Lookups(c.Request.Context(), query, kind, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(lookups))
}

func (h *Handler) exportLookups(c *gin.Context) {
	lookups, err := h.decodeService.ExportLookups(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	book, err := report.BuildLookupWorkbook(lookups)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build lookup workbook")
		c.JSON(http.StatusInternalServerError, errorResponse("failed to build report"))
		return
	}

	key := fmt.Sprintf("reports/lookups-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	url, err := h.reports.UploadReport(c.Request.Context(), key, book)
	if err == nil {
		h.log.Info().Str("key", key).Int("rows", len(lookups)).Msg("lookup report uploaded")
		c.JSON(http.StatusOK, gin.H{"url": url, "rows": len(lookups)})
		return
	}
	if !errors.Is(err, storage.ErrNotConfigured) {
		h.log.Error().Err(err).Msg("report upload failed, serving inline")
	}

	c.Header("Content-Disposition", `attachment; filename="lookups.xlsx"`)
	c.Data(http.StatusOK, storage.ReportContentType, book)
}

// lookupFeed upgrades the connection and attaches it to the hub.
func (h *Handler) lookupFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.Add(conn)
	go h.hub.readPump(conn)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
