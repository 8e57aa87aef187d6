package models

// FundEscrowRequest deposits sponsor funds against an event.
type FundEscrowRequest struct {
	SponsorAddress string `json:"sponsor_address" binding:"required"`
	Amount         uint64 `json:"amount" binding:"required"`
}

// SettleRequest triggers KPI settlement. Organizer only.
type SettleRequest struct {
	OrganizerAddress string `json:"organizer_address" binding:"required"`
}

// EmergencyWithdrawRequest reclaims an unsettled escrow after the grace
// period. Sponsor only.
type EmergencyWithdrawRequest struct {
	SponsorAddress string `json:"sponsor_address" binding:"required"`
}
