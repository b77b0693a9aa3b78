package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoizi89/advanced-switches/internal/engine"
	"github.com/hoizi89/advanced-switches/internal/models"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"
	statusRejected = "rejected"
	statusReset    = "reset"

	errIngestReading = "failed to ingest reading"
	errRequestOn     = "failed to request turn on"
	errRequestOff    = "failed to request turn off"
	errResetStats    = "failed to reset statistics"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for a telemetry sample.
type readingRequest struct {
	Timestamp time.Time `json:"timestamp" binding:"required"`
	PowerW    float64   `json:"power_w"`
	EnergyKWh float64   `json:"energy_kwh"`
	SwitchOn  bool      `json:"switch_on"`
}

// ReadingRequest is an exported model for Swagger docs of the reading payload.
type ReadingRequest struct {
	// Sample timestamp, RFC3339
	Timestamp time.Time `json:"timestamp" example:"2026-08-23T10:15:00Z"`
	// Instantaneous power draw in watts
	PowerW float64 `json:"power_w" example:"120.5"`
	// Cumulative energy meter reading in kWh
	EnergyKWh float64 `json:"energy_kwh" example:"42.103"`
	// Relay/switch position as reported by the device
	SwitchOn bool `json:"switch_on" example:"true"`
}

// Request DTO for a statistics reset.
type resetRequest struct {
	Scope string `json:"scope" binding:"required"` // all | today
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Ingest a telemetry reading
// @Description  Advances the state machine with one power/energy/switch sample and returns the resulting snapshot.
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        body  body   ReadingRequest  true  "Telemetry sample"
// @Success      200   {object}  models.DeviceState
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/tracker/reading [post]
// @Security     BearerAuth
func (h *Handler) postReading(c *gin.Context) {
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	st, err := h.services.Tracker.Ingest(ctx, models.Reading{
		Timestamp: req.Timestamp,
		PowerW:    req.PowerW,
		EnergyKWh: req.EnergyKWh,
		SwitchOn:  req.SwitchOn,
	})
	if err != nil {
		if errors.Is(err, engine.ErrInvalidReading) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errIngestReading, "tracker_ingest_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Request turn on
// @Description  Rejected with status "rejected" while the schedule window is closed.
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/tracker/on [post]
// @Security     BearerAuth
func (h *Handler) requestOn(c *gin.Context) {
	ctx := c.Request.Context()
	st, accepted, err := h.services.Tracker.RequestOn(ctx, time.Now().UTC())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRequestOn, "tracker_request_on_failed", err)
		return
	}
	status := statusAccepted
	if !accepted {
		status = statusRejected
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "state": st})
}

// @Summary      Request turn off
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/tracker/off [post]
// @Security     BearerAuth
func (h *Handler) requestOff(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Tracker.RequestOff(ctx, time.Now().UTC())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRequestOff, "tracker_request_off_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusAccepted, "state": st})
}

// @Summary      Reset statistics
// @Description  Scope "all" clears every counter; "today" clears only today's totals.
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        body  body   object{scope=string}  true  "Reset scope: all | today"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/tracker/reset [post]
// @Security     BearerAuth
func (h *Handler) resetStats(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.services.Tracker.Reset(ctx, req.Scope); err != nil {
		if errors.Is(err, engine.ErrInvalidResetScope) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errResetStats, "tracker_reset_failed", err, "scope", req.Scope)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusReset, "scope": req.Scope})
}

// @Summary      Get device state
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  models.DeviceState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/tracker/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st := h.services.Monitoring.State(time.Now().UTC())
	c.JSON(http.StatusOK, st)
}

// @Summary      Get aggregate statistics
// @Tags         tracker
// @Produce      json
// @Success      200  {object}  models.StatsSnapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/tracker/stats [get]
// @Security     BearerAuth
func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Statistics())
}
