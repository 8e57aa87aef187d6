package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"proofpass-backend/core"
	"proofpass-backend/models"
	"proofpass-backend/store"
)

// ChainOracle is the on-chain credential lookup used by the NFT sync path.
// Implemented by contracts.PoAContract; nil when no RPC is configured.
type ChainOracle interface {
	HasToken(ctx context.Context, owner common.Address) (bool, error)
}

type AttendanceHandler struct {
	state   *core.State
	journal *store.Journal
	chain   ChainOracle
	log     *zap.Logger
}

func NewAttendanceHandler(state *core.State, journal *store.Journal, chain ChainOracle, log *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{state: state, journal: journal, chain: chain, log: log}
}

// Register creates the attendance record and returns the issued pass
// encoded as compact QR data.
func (h *AttendanceHandler) Register(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wallet, ok := parseAddress(c, req.WalletAddress)
	if !ok {
		return
	}

	pass, err := h.state.Register(eventID, wallet)
	if err != nil {
		abortJSON(c, err)
		return
	}

	ref := uuid.New().String()[:8]
	qrData, err := json.Marshal(pass.CompactPayload(ref))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode pass payload"})
		return
	}

	h.log.Info("wallet registered",
		zap.Uint64("event_id", eventID),
		zap.String("wallet", wallet.Hex()),
		zap.Uint64("pass_id", pass.PassID),
	)
	h.journal.Record(c, eventID, wallet.Hex(), "registered", gin.H{"pass_id": pass.PassID})

	c.JSON(http.StatusCreated, models.RegisterResponse{
		EventID:    eventID,
		PassID:     pass.PassID,
		Commitment: pass.CommitmentHex(),
		QRData:     qrData,
	})
}

// CheckIn verifies a scanned pass payload, transitions the record and mints
// the PoA credential by consuming the one-shot capability check-in emits.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := core.DecodePassPayload(req.Payload)
	if err != nil {
		abortJSON(c, err)
		return
	}

	mintCap, err := h.state.CheckIn(req.EventID, claim)
	if err != nil {
		abortJSON(c, err)
		return
	}

	if err := h.state.MintPoA(mintCap); err != nil {
		// Check-in already applied; a failed mint is loud but not fatal.
		h.log.Error("PoA mint failed after check-in",
			zap.Uint64("event_id", req.EventID),
			zap.String("wallet", claim.Wallet.Hex()),
			zap.Error(err),
		)
	}

	h.log.Info("wallet checked in",
		zap.Uint64("event_id", req.EventID),
		zap.String("wallet", claim.Wallet.Hex()),
	)
	h.journal.Record(c, req.EventID, claim.Wallet.Hex(), "checked_in", nil)

	rec, err := h.state.Attendance(req.EventID, claim.Wallet)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"attendance": attendanceResponse(rec),
	})
}

// CheckOut closes an attendance record.
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req models.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wallet, ok := parseAddress(c, req.WalletAddress)
	if !ok {
		return
	}

	if err := h.state.CheckOut(req.EventID, wallet); err != nil {
		abortJSON(c, err)
		return
	}

	h.journal.Record(c, req.EventID, wallet.Hex(), "checked_out", nil)

	rec, err := h.state.Attendance(req.EventID, wallet)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"attendance": attendanceResponse(rec),
	})
}

// GetAttendance returns one wallet's record for an event.
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	wallet, ok := parseAddress(c, c.Param("wallet"))
	if !ok {
		return
	}

	rec, err := h.state.Attendance(eventID, wallet)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, attendanceResponse(rec))
}

// SubmitRating records a fixed-point rating for an event.
func (h *AttendanceHandler) SubmitRating(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wallet, ok := parseAddress(c, req.WalletAddress)
	if !ok {
		return
	}

	if err := h.state.SubmitRating(eventID, wallet, req.Rating); err != nil {
		abortJSON(c, err)
		return
	}

	h.journal.Record(c, eventID, wallet.Hex(), "rating_submitted", gin.H{"rating": req.Rating})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SyncNFT mirrors an on-chain PoA mint into the local registry. Requires a
// configured chain oracle; the indexer-style backfill keeps external reads
// out of the atomic core operations.
func (h *AttendanceHandler) SyncNFT(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.SyncNFTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wallet, ok := parseAddress(c, req.WalletAddress)
	if !ok {
		return
	}

	if h.chain == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No PoA contract configured"})
		return
	}

	held, err := h.chain.HasToken(c, wallet)
	if err != nil {
		h.log.Error("chain credential lookup failed", zap.String("wallet", wallet.Hex()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Chain lookup failed"})
		return
	}
	if !held {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wallet holds no credential on chain"})
		return
	}

	if err := h.state.RecordChainMint(eventID, wallet); err != nil {
		abortJSON(c, err)
		return
	}

	h.journal.Record(c, eventID, wallet.Hex(), "nft_synced", nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func attendanceResponse(rec core.AttendanceRecord) models.AttendanceResponse {
	return models.AttendanceResponse{
		EventID:       rec.EventID,
		WalletAddress: rec.Wallet.Hex(),
		State:         rec.State,
		RegisteredAt:  rec.RegisteredAt,
		CheckInTime:   rec.CheckInTime,
		CheckOutTime:  rec.CheckOutTime,
		Duration:      rec.Duration(),
	}
}
