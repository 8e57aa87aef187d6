package handlers

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"proofpass-backend/core"
	"proofpass-backend/models"
	"proofpass-backend/store"
)

type EventHandler struct {
	state   *core.State
	journal *store.Journal
	log     *zap.Logger
}

func NewEventHandler(state *core.State, journal *store.Journal, log *zap.Logger) *EventHandler {
	return &EventHandler{state: state, journal: journal, log: log}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	organizer, ok := parseAddress(c, req.OrganizerAddress)
	if !ok {
		return
	}

	id, err := h.state.CreateEvent(core.EventParams{
		Organizer:         organizer,
		Capacity:          req.Capacity,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		MinAttendees:      req.MinAttendees,
		MinCompletionRate: req.MinCompletionRate,
		MinAvgRating:      req.MinAvgRating,
	})
	if err != nil {
		abortJSON(c, err)
		return
	}

	h.log.Info("event created",
		zap.Uint64("event_id", id),
		zap.String("organizer", organizer.Hex()),
	)
	h.journal.Record(c, id, organizer.Hex(), "event_created", req)

	ev, err := h.state.GetEvent(id)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, eventResponse(ev))
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	ev, err := h.state.GetEvent(id)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, eventResponse(ev))
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	events := h.state.ListEvents()
	out := make([]models.EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventResponse(ev))
	}
	c.JSON(http.StatusOK, gin.H{
		"events": out,
		"total":  len(out),
	})
}

func (h *EventHandler) ActivateEvent(c *gin.Context) {
	h.transition(c, "event_activated", h.state.ActivateEvent)
}

func (h *EventHandler) CompleteEvent(c *gin.Context) {
	h.transition(c, "event_completed", h.state.CompleteEvent)
}

func (h *EventHandler) transition(c *gin.Context, op string, fn func(uint64, common.Address) error) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.EventTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	organizer, ok := parseAddress(c, req.OrganizerAddress)
	if !ok {
		return
	}

	if err := fn(id, organizer); err != nil {
		abortJSON(c, err)
		return
	}

	h.log.Info(op, zap.Uint64("event_id", id))
	h.journal.Record(c, id, organizer.Hex(), op, nil)

	ev, err := h.state.GetEvent(id)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, eventResponse(ev))
}

func (h *EventHandler) GetStats(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	stats, err := h.state.EventStats(id)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *EventHandler) GetHistory(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	records, err := h.journal.History(c, id, limit)
	if err != nil {
		h.log.Error("history query failed", zap.Uint64("event_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"history": records,
		"count":   len(records),
	})
}

func eventIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return 0, false
	}
	return id, true
}

func eventResponse(ev core.Event) models.EventResponse {
	return models.EventResponse{
		EventID:           ev.ID,
		OrganizerAddress:  ev.Organizer.Hex(),
		Capacity:          ev.Capacity,
		StartTime:         ev.StartTime,
		EndTime:           ev.EndTime,
		MinAttendees:      ev.MinAttendees,
		MinCompletionRate: ev.MinCompletionRate,
		MinAvgRating:      ev.MinAvgRating,
		Status:            ev.Status,
	}
}
