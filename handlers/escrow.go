package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"proofpass-backend/core"
	"proofpass-backend/models"
	"proofpass-backend/store"
)

type EscrowHandler struct {
	state   *core.State
	journal *store.Journal
	log     *zap.Logger
}

func NewEscrowHandler(state *core.State, journal *store.Journal, log *zap.Logger) *EscrowHandler {
	return &EscrowHandler{state: state, journal: journal, log: log}
}

// Fund deposits sponsor funds against an event, creating the escrow on the
// first call.
func (h *EscrowHandler) Fund(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.FundEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sponsor, ok := parseAddress(c, req.SponsorAddress)
	if !ok {
		return
	}

	view, err := h.state.FundEscrow(eventID, sponsor, req.Amount)
	if err != nil {
		abortJSON(c, err)
		return
	}

	h.log.Info("escrow funded",
		zap.Uint64("event_id", eventID),
		zap.String("sponsor", sponsor.Hex()),
		zap.Uint64("amount", req.Amount),
		zap.Uint64("balance", view.Balance),
	)
	h.journal.Record(c, eventID, sponsor.Hex(), "escrow_funded", gin.H{"amount": req.Amount})

	c.JSON(http.StatusOK, view)
}

// Settle measures the event against its KPIs and moves the full balance one
// way or the other.
func (h *EscrowHandler) Settle(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	organizer, ok := parseAddress(c, req.OrganizerAddress)
	if !ok {
		return
	}

	result, err := h.state.Settle(eventID, organizer)
	if err != nil {
		abortJSON(c, err)
		return
	}

	h.log.Info("escrow settled",
		zap.Uint64("event_id", eventID),
		zap.Bool("conditions_met", result.ConditionsMet),
		zap.Uint64("released", result.AmountReleased),
		zap.Uint64("refunded", result.AmountRefunded),
	)
	h.journal.Record(c, eventID, organizer.Hex(), "escrow_settled", result)

	c.JSON(http.StatusOK, result)
}

// EmergencyWithdraw refunds an unsettled escrow to the sponsor after the
// grace period.
func (h *EscrowHandler) EmergencyWithdraw(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.EmergencyWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sponsor, ok := parseAddress(c, req.SponsorAddress)
	if !ok {
		return
	}

	refunded, err := h.state.EmergencyWithdraw(eventID, sponsor)
	if err != nil {
		abortJSON(c, err)
		return
	}

	h.log.Warn("escrow emergency withdraw",
		zap.Uint64("event_id", eventID),
		zap.String("sponsor", sponsor.Hex()),
		zap.Uint64("refunded", refunded),
	)
	h.journal.Record(c, eventID, sponsor.Hex(), "escrow_emergency_withdraw", gin.H{"refunded": refunded})

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"refunded": refunded,
	})
}

// GetEscrow returns the escrow record for an event.
func (h *EscrowHandler) GetEscrow(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	view, err := h.state.EscrowInfo(eventID)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
