package models

// CreateAirdropRequest funds a reward pool for an event.
// distribution_type: 0 equal split, 1 weighted by attendance duration,
// 2 equal with completion bonus. min_duration is seconds.
type CreateAirdropRequest struct {
	EventID           uint64 `json:"event_id" binding:"required"`
	OrganizerAddress  string `json:"organizer_address" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Pool              uint64 `json:"pool" binding:"required"`
	DistributionType  uint8  `json:"distribution_type"`
	RequireAttendance bool   `json:"require_attendance"`
	RequireCompletion bool   `json:"require_completion"`
	MinDuration       int64  `json:"min_duration"`
	RequireRating     bool   `json:"require_rating_submitted"`
	ValidDays         uint64 `json:"valid_days" binding:"required"`
}

// ClaimRequest claims a payout from an airdrop pool.
type ClaimRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// BatchDistributeRequest pays a recipient list in order. Organizer only.
type BatchDistributeRequest struct {
	OrganizerAddress string   `json:"organizer_address" binding:"required"`
	Recipients       []string `json:"recipients" binding:"required"`
}

// WithdrawUnclaimedRequest sweeps an expired pool back to the organizer.
type WithdrawUnclaimedRequest struct {
	OrganizerAddress string `json:"organizer_address" binding:"required"`
}

// ClaimStatusResponse reports one wallet's claim against one airdrop.
type ClaimStatusResponse struct {
	Claimed bool   `json:"claimed"`
	Amount  uint64 `json:"amount"`
}
