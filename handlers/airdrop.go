package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"proofpass-backend/core"
	"proofpass-backend/models"
	"proofpass-backend/store"
)

type AirdropHandler struct {
	state   *core.State
	journal *store.Journal
	log     *zap.Logger
}

func NewAirdropHandler(state *core.State, journal *store.Journal, log *zap.Logger) *AirdropHandler {
	return &AirdropHandler{state: state, journal: journal, log: log}
}

// Create funds a reward pool for an event.
func (h *AirdropHandler) Create(c *gin.Context) {
	var req models.CreateAirdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	organizer, ok := parseAddress(c, req.OrganizerAddress)
	if !ok {
		return
	}

	view, err := h.state.CreateAirdrop(core.AirdropParams{
		EventID:      req.EventID,
		Caller:       organizer,
		Name:         req.Name,
		Pool:         req.Pool,
		Distribution: core.DistributionType(req.DistributionType),
		Criteria: core.EligibilityCriteria{
			RequireAttendance: req.RequireAttendance,
			RequireCompletion: req.RequireCompletion,
			MinDuration:       req.MinDuration,
			RequireRating:     req.RequireRating,
		},
		ValidDays: req.ValidDays,
	})
	if err != nil {
		abortJSON(c, err)
		return
	}

	h.log.Info("airdrop created",
		zap.String("airdrop_id", view.ID.String()),
		zap.Uint64("event_id", req.EventID),
		zap.Uint64("pool", req.Pool),
		zap.Uint64("per_user", view.PerUserAmount),
	)
	h.journal.Record(c, req.EventID, organizer.Hex(), "airdrop_created", view)

	c.JSON(http.StatusCreated, view)
}

// Get returns the airdrop read model.
func (h *AirdropHandler) Get(c *gin.Context) {
	id, ok := airdropIDParam(c)
	if !ok {
		return
	}
	view, err := h.state.AirdropInfo(id)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Claim pays one eligible wallet from the pool.
func (h *AirdropHandler) Claim(c *gin.Context) {
	id, ok := airdropIDParam(c)
	if !ok {
		return
	}

	var req models.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wallet, ok := parseAddress(c, req.WalletAddress)
	if !ok {
		return
	}

	info, err := h.state.Claim(id, wallet)
	if err != nil {
		abortJSON(c, err)
		return
	}

	view, viewErr := h.state.AirdropInfo(id)
	if viewErr == nil {
		h.journal.Record(c, view.EventID, wallet.Hex(), "airdrop_claimed", info)
	}

	h.log.Info("airdrop claimed",
		zap.String("airdrop_id", id.String()),
		zap.String("wallet", wallet.Hex()),
		zap.Uint64("amount", info.Amount),
	)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"claim":   info,
	})
}

// Distribute pays a recipient list in order, organizer only.
func (h *AirdropHandler) Distribute(c *gin.Context) {
	id, ok := airdropIDParam(c)
	if !ok {
		return
	}

	var req models.BatchDistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	organizer, ok := parseAddress(c, req.OrganizerAddress)
	if !ok {
		return
	}

	recipients := make([]common.Address, 0, len(req.Recipients))
	for _, raw := range req.Recipients {
		addr, ok := parseAddress(c, raw)
		if !ok {
			return
		}
		recipients = append(recipients, addr)
	}

	result, err := h.state.BatchDistribute(id, organizer, recipients)
	if err != nil {
		abortJSON(c, err)
		return
	}

	view, viewErr := h.state.AirdropInfo(id)
	if viewErr == nil {
		h.journal.Record(c, view.EventID, organizer.Hex(), "airdrop_distributed", result)
	}

	h.log.Info("airdrop batch distributed",
		zap.String("airdrop_id", id.String()),
		zap.Uint64("paid", result.Paid),
		zap.Uint64("skipped", result.Skipped),
		zap.Bool("exhausted", result.Exhausted),
	)
	c.JSON(http.StatusOK, result)
}

// Withdraw sweeps an expired pool back to the organizer.
func (h *AirdropHandler) Withdraw(c *gin.Context) {
	id, ok := airdropIDParam(c)
	if !ok {
		return
	}

	var req models.WithdrawUnclaimedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	organizer, ok := parseAddress(c, req.OrganizerAddress)
	if !ok {
		return
	}

	swept, err := h.state.WithdrawUnclaimed(id, organizer)
	if err != nil {
		abortJSON(c, err)
		return
	}

	view, viewErr := h.state.AirdropInfo(id)
	if viewErr == nil {
		h.journal.Record(c, view.EventID, organizer.Hex(), "airdrop_withdrawn", gin.H{"swept": swept})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"swept":   swept,
	})
}

// ClaimStatus reports whether a wallet claimed from the airdrop.
func (h *AirdropHandler) ClaimStatus(c *gin.Context) {
	id, ok := airdropIDParam(c)
	if !ok {
		return
	}
	wallet, ok := parseAddress(c, c.Param("wallet"))
	if !ok {
		return
	}

	claimed, amount, err := h.state.ClaimStatus(id, wallet)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ClaimStatusResponse{Claimed: claimed, Amount: amount})
}

// Eligibility previews whether a wallet could claim, without side effects.
func (h *AirdropHandler) Eligibility(c *gin.Context) {
	id, ok := airdropIDParam(c)
	if !ok {
		return
	}
	wallet, ok := parseAddress(c, c.Param("wallet"))
	if !ok {
		return
	}

	if err := h.state.CheckEligibility(id, wallet); err != nil {
		if code, isAbort := core.CodeOf(err); isAbort && code == core.CodeNotEligible {
			c.JSON(http.StatusOK, gin.H{"eligible": false, "reason": err.Error()})
			return
		}
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligible": true})
}

func airdropIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid airdrop ID"})
		return uuid.UUID{}, false
	}
	return id, true
}
