package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/pipeline"
	"plate-stabilizer/internal/service"
)

// FrameIngester accepts detector output for the frame worker.
type FrameIngester interface {
	Offer(plate.Frame) bool
}

// PipelineTuner exposes the worker's runtime settings.
type PipelineTuner interface {
	Settings() pipeline.Settings
	ApplySettings(pipeline.Settings) error
}

type Handler struct {
	plateService *service.PlateService
	frames       FrameIngester
	tuner        PipelineTuner
	log          zerolog.Logger
}

func NewHandler(
	plateService *service.PlateService,
	frames FrameIngester,
	tuner PipelineTuner,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		plateService: plateService,
		frames:       frames,
		tuner:        tuner,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc, hub *Hub) {
	public := r.Group("/api/v1")
	{
		public.POST("/frames", h.ingestFrame)
		public.GET("/plates", h.listPlates)
		public.GET("/export", h.export)
		public.GET("/settings/filter", h.getFilter)
		public.GET("/settings/pipeline", h.getPipeline)
		public.POST("/filter/check", h.checkFilter)
		public.GET("/history", h.listHistory)
		if hub != nil {
			public.GET("/events", hub.ServeWS)
		}
	}

	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.PUT("/settings/filter", h.applyFilter)
		protected.PUT("/settings/pipeline", h.applyPipeline)
		protected.DELETE("/plates/:index", h.deletePlate)
		protected.DELETE("/plates", h.clearPlates)
	}
}

func (h *Handler) ingestFrame(c *gin.Context) {
	var frame plate.Frame
	if err := c.ShouldBindJSON(&frame); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if frame.CapturedAt.IsZero() {
		frame.CapturedAt = time.Now()
	}

	if !h.frames.Offer(frame) {
		h.log.Debug().Int64("frame", frame.Index).Msg("frame dropped, worker busy")
		c.JSON(http.StatusTooManyRequests, errorResponse("frame dropped, worker busy"))
		return
	}
	c.JSON(http.StatusAccepted, successResponse(gin.H{"status": "accepted"}))
}

func (h *Handler) listPlates(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.plateService.Saved()))
}

func (h *Handler) export(c *gin.Context) {
	payload := h.plateService.Export()
	if c.Query("download") != "" {
		c.Header("Content-Disposition", `attachment; filename="plates.json"`)
	}
	c.IndentedJSON(http.StatusOK, payload)
}

func (h *Handler) deletePlate(c *gin.Context) {
	index, err := parseInt(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("index must be an integer"))
		return
	}
	deleted := h.plateService.Delete(index)
	c.JSON(http.StatusOK, successResponse(gin.H{"deleted": deleted}))
}

func (h *Handler) clearPlates(c *gin.Context) {
	h.plateService.Clear()
	c.Status(http.StatusNoContent)
}

func (h *Handler) getFilter(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.plateService.Filter()))
}

func (h *Handler) applyFilter(c *gin.Context) {
	var cfg plate.FilterConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if err := h.plateService.ApplyFilter(cfg); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(h.plateService.Filter()))
}

func (h *Handler) getPipeline(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.tuner.Settings()))
}

func (h *Handler) applyPipeline(c *gin.Context) {
	settings := h.tuner.Settings()
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if err := h.tuner.ApplySettings(settings); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse(h.tuner.Settings()))
}

type checkRequest struct {
	Text   string              `json:"text"`
	Filter *plate.FilterConfig `json:"filter,omitempty"`
}

func (h *Handler) checkFilter(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	report, err := h.plateService.Check(req.Text, req.Filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) listHistory(c *gin.Context) {
	var plateQuery *string
	if p := strings.TrimSpace(c.Query("plate")); p != "" {
		plateQuery = &p
	}

	var from, to *string
	if f := strings.TrimSpace(c.Query("from")); f != "" {
		from = &f
	}
	if t := strings.TrimSpace(c.Query("to")); t != "" {
		to = &t
	}

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

	detections, err := h.plateService.History(c.Request.Context(), plateQuery, from, to, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(detections))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
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
