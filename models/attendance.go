package models

import "encoding/json"

// Attendance state codes, as exposed on the wire.
const (
	AttendanceStateRegistered uint8 = 0
	AttendanceStateCheckedIn  uint8 = 1
	AttendanceStateCheckedOut uint8 = 2
)

// RegisterRequest registers a wallet for an event.
type RegisterRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// RegisterResponse returns the issued pass in the compact scannable schema
// plus the commitment the registry will verify against.
type RegisterResponse struct {
	EventID    uint64          `json:"event_id"`
	PassID     uint64          `json:"pass_id"`
	Commitment string          `json:"commitment"`
	QRData     json.RawMessage `json:"qr_data"`
}

// CheckInRequest presents a scanned pass payload for verification. The
// payload is one of the two accepted schemas, passed through verbatim.
type CheckInRequest struct {
	EventID uint64          `json:"event_id" binding:"required"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// CheckOutRequest closes out an attendance record.
type CheckOutRequest struct {
	EventID       uint64 `json:"event_id" binding:"required"`
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// AttendanceResponse is the wire shape of one attendance record.
type AttendanceResponse struct {
	EventID       uint64 `json:"event_id"`
	WalletAddress string `json:"wallet_address"`
	State         uint8  `json:"state"`
	RegisteredAt  int64  `json:"registered_at"`
	CheckInTime   int64  `json:"check_in_time,omitempty"`
	CheckOutTime  int64  `json:"check_out_time,omitempty"`
	Duration      int64  `json:"duration"`
}

// SubmitRatingRequest records a fixed-point rating (stars x100, 100-500).
type SubmitRatingRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Rating        uint64 `json:"rating" binding:"required"`
}

// SyncNFTRequest mirrors an on-chain PoA mint into the registry.
type SyncNFTRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}
