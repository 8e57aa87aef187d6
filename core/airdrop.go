package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// DistributionType selects the payout strategy for an airdrop pool.
type DistributionType uint8

const (
	DistEqual              DistributionType = 0
	DistWeightedByDuration DistributionType = 1
	DistCompletionBonus    DistributionType = 2
)

// EligibilityCriteria gates who may claim from a pool. Criteria compose by
// AND; any unmet criterion makes a wallet ineligible, no partial credit.
type EligibilityCriteria struct {
	RequireAttendance bool  `json:"require_attendance"`
	RequireCompletion bool  `json:"require_completion"`
	MinDuration       int64 `json:"min_duration"`
	RequireRating     bool  `json:"require_rating_submitted"`
}

// ClaimInfo records one wallet's payout. Presence in the claims map is the
// sole source of truth for "already claimed".
type ClaimInfo struct {
	Amount    uint64 `json:"amount"`
	ClaimedAt int64  `json:"claimed_at"`
}

// Airdrop is one reward pool for one event.
type Airdrop struct {
	ID              uuid.UUID
	EventID         uint64
	Name            string
	Organizer       common.Address
	Pool            uint64
	InitialPool     uint64
	Distribution    DistributionType
	Criteria        EligibilityCriteria
	PerUserAmount   uint64
	TotalRecipients uint64
	ClaimedCount    uint64
	Claims          map[common.Address]*ClaimInfo
	ExpiresAt       int64
	Active          bool
}

// AirdropParams carries everything CreateAirdrop needs.
type AirdropParams struct {
	EventID      uint64
	Caller       common.Address
	Name         string
	Pool         uint64
	Distribution DistributionType
	Criteria     EligibilityCriteria
	ValidDays    uint64
}

// AirdropView is the airdrop read model.
type AirdropView struct {
	ID              uuid.UUID        `json:"id"`
	EventID         uint64           `json:"event_id"`
	Name            string           `json:"name"`
	PoolBalance     uint64           `json:"pool_balance"`
	PerUserAmount   uint64           `json:"per_user_amount"`
	TotalRecipients uint64           `json:"total_recipients"`
	ClaimedCount    uint64           `json:"claimed_count"`
	Distribution    DistributionType `json:"distribution_type"`
	ExpiresAt       int64            `json:"expires_at"`
	Active          bool             `json:"active"`
}

// BatchResult summarizes one batch distribution pass.
type BatchResult struct {
	Paid        uint64 `json:"paid"`
	Skipped     uint64 `json:"skipped"`
	TotalAmount uint64 `json:"total_amount"`
	Exhausted   bool   `json:"pool_exhausted"`
}

const secondsPerDay = 86400

// CreateAirdrop deposits a reward pool for an event. The per-user amount is
// sized from attendance counts at creation time; actual claimants may
// differ and the pool running out before every eligible wallet claims is
// first-come-first-served, not an error.
func (s *State) CreateAirdrop(p AirdropParams) (*AirdropView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(p.EventID)
	if err != nil {
		return nil, err
	}
	if p.Caller != ev.Organizer {
		return nil, abortf(CodeNotOrganizer, "caller %s is not the organizer of event %d", p.Caller.Hex(), p.EventID)
	}
	if p.Pool == 0 {
		return nil, abortf(CodeInvalidAmount, "airdrop pool must be positive")
	}
	if p.ValidDays == 0 {
		return nil, abortf(CodeInvalidTimestamp, "airdrop validity window must be positive")
	}

	st := s.statsLocked(p.EventID)
	estimated := st.CheckedIn + st.CheckedOut
	if p.Criteria.RequireCompletion {
		estimated = st.CheckedOut
	}
	if estimated == 0 {
		return nil, abortf(CodeInvalidDistribution, "no eligible recipients for event %d at creation time", p.EventID)
	}

	ad := &Airdrop{
		ID:              uuid.New(),
		EventID:         p.EventID,
		Name:            p.Name,
		Organizer:       ev.Organizer,
		Pool:            p.Pool,
		InitialPool:     p.Pool,
		Distribution:    p.Distribution,
		Criteria:        p.Criteria,
		PerUserAmount:   p.Pool / estimated,
		TotalRecipients: estimated,
		Claims:          make(map[common.Address]*ClaimInfo),
		ExpiresAt:       s.now() + int64(p.ValidDays)*secondsPerDay,
		Active:          true,
	}
	if ad.PerUserAmount == 0 {
		return nil, abortf(CodeInvalidDistribution, "pool %d too small for %d recipients", p.Pool, estimated)
	}
	s.airdrops[ad.ID] = ad
	return airdropView(ad), nil
}

// CheckEligibility applies the pool's criteria to a wallet without side
// effects. A nil return means eligible; otherwise the abort explains the
// first unmet criterion.
func (s *State) CheckEligibility(id uuid.UUID, wallet common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.airdrops[id]
	if !ok {
		return abortf(CodeAirdropNotFound, "airdrop %s not found", id)
	}
	return s.eligibleLocked(ad, wallet)
}

func (s *State) eligibleLocked(ad *Airdrop, wallet common.Address) error {
	key := attKey{Event: ad.EventID, Wallet: wallet}
	rec, ok := s.attendance[key]
	if !ok {
		return abortf(CodeNotEligible, "wallet %s has no attendance record for event %d", wallet.Hex(), ad.EventID)
	}
	if ad.Criteria.RequireAttendance && rec.State == AttendanceRegistered {
		return abortf(CodeNotEligible, "wallet %s never checked in", wallet.Hex())
	}
	if ad.Criteria.RequireCompletion {
		if rec.State != AttendanceCheckedOut {
			return abortf(CodeNotEligible, "wallet %s did not complete the event", wallet.Hex())
		}
		if !s.nfts[key] {
			return abortf(CodeNotEligible, "wallet %s holds no completion credential", wallet.Hex())
		}
	}
	if ad.Criteria.MinDuration > 0 && rec.Duration() < ad.Criteria.MinDuration {
		return abortf(CodeNotEligible, "wallet %s attended %ds, need %ds", wallet.Hex(), rec.Duration(), ad.Criteria.MinDuration)
	}
	if ad.Criteria.RequireRating {
		if _, rated := s.ratings[key]; !rated {
			return abortf(CodeNotEligible, "wallet %s submitted no rating", wallet.Hex())
		}
	}
	return nil
}

// payoutLocked computes the claim amount for one wallet per the pool's
// strategy. WeightedByDuration keeps the documented per-claimant formula
// base * (hours + 1); it does not re-normalize across all claimants, so
// widely varying durations can over- or under-allocate against the nominal
// pool. That behavior is the contract.
func (s *State) payoutLocked(ad *Airdrop, wallet common.Address) uint64 {
	rec := s.attendance[attKey{Event: ad.EventID, Wallet: wallet}]
	switch ad.Distribution {
	case DistWeightedByDuration:
		hours := uint64(rec.Duration() / 3600)
		return ad.PerUserAmount * (hours + 1)
	case DistCompletionBonus:
		if rec.State == AttendanceCheckedOut {
			return ad.PerUserAmount * 2
		}
		return ad.PerUserAmount
	default:
		return ad.PerUserAmount
	}
}

// Claim pays one eligible wallet from the pool. Aborts rather than paying
// partially when the pool cannot cover the computed amount.
func (s *State) Claim(id uuid.UUID, caller common.Address) (*ClaimInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.airdrops[id]
	if !ok {
		return nil, abortf(CodeAirdropNotFound, "airdrop %s not found", id)
	}
	if s.now() >= ad.ExpiresAt {
		return nil, abortf(CodeAirdropExpired, "airdrop %s expired", id)
	}
	if _, claimed := ad.Claims[caller]; claimed {
		return nil, abortf(CodeAlreadyClaimed, "wallet %s already claimed from airdrop %s", caller.Hex(), id)
	}
	if err := s.eligibleLocked(ad, caller); err != nil {
		return nil, err
	}

	// Exhaustion surfaces as InsufficientFunds even after the pool flipped
	// inactive: a late eligible claimant hitting an empty pool is
	// first-come-first-served, not a liveness question.
	amount := s.payoutLocked(ad, caller)
	if ad.Pool < amount {
		return nil, abortf(CodeInsufficientFunds, "pool %d cannot cover claim %d", ad.Pool, amount)
	}
	if !ad.Active {
		return nil, abortf(CodeAirdropNotActive, "airdrop %s is no longer active", id)
	}

	info := &ClaimInfo{Amount: amount, ClaimedAt: s.now()}
	ad.Claims[caller] = info
	ad.Pool -= amount
	ad.ClaimedCount++
	s.maybeDeactivateLocked(ad)
	return info, nil
}

// BatchDistribute pays a recipient list with the exact guards Claim uses,
// skipping ineligible or already-claimed wallets instead of failing, and
// stopping once the pool cannot cover the next payout. List order decides
// who gets paid when funds run short.
func (s *State) BatchDistribute(id uuid.UUID, caller common.Address, recipients []common.Address) (*BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.airdrops[id]
	if !ok {
		return nil, abortf(CodeAirdropNotFound, "airdrop %s not found", id)
	}
	if caller != ad.Organizer {
		return nil, abortf(CodeNotOrganizer, "caller %s is not the airdrop organizer", caller.Hex())
	}
	if !ad.Active {
		return nil, abortf(CodeAirdropNotActive, "airdrop %s is no longer active", id)
	}
	if s.now() >= ad.ExpiresAt {
		return nil, abortf(CodeAirdropExpired, "airdrop %s expired", id)
	}

	res := &BatchResult{}
	now := s.now()
	for _, wallet := range recipients {
		if _, claimed := ad.Claims[wallet]; claimed {
			res.Skipped++
			continue
		}
		if s.eligibleLocked(ad, wallet) != nil {
			res.Skipped++
			continue
		}
		amount := s.payoutLocked(ad, wallet)
		if ad.Pool < amount {
			res.Exhausted = true
			break
		}
		ad.Claims[wallet] = &ClaimInfo{Amount: amount, ClaimedAt: now}
		ad.Pool -= amount
		ad.ClaimedCount++
		res.Paid++
		res.TotalAmount += amount
	}
	s.maybeDeactivateLocked(ad)
	return res, nil
}

// WithdrawUnclaimed sweeps the remaining pool back to the organizer after
// expiry and deactivates the airdrop.
func (s *State) WithdrawUnclaimed(id uuid.UUID, caller common.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.airdrops[id]
	if !ok {
		return 0, abortf(CodeAirdropNotFound, "airdrop %s not found", id)
	}
	if caller != ad.Organizer {
		return 0, abortf(CodeNotOrganizer, "caller %s is not the airdrop organizer", caller.Hex())
	}
	if s.now() < ad.ExpiresAt {
		return 0, abortf(CodeAirdropNotExpired, "airdrop %s has not expired yet", id)
	}

	swept := ad.Pool
	ad.Pool = 0
	ad.Active = false
	return swept, nil
}

// AirdropInfo returns the airdrop read model.
func (s *State) AirdropInfo(id uuid.UUID) (*AirdropView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.airdrops[id]
	if !ok {
		return nil, abortf(CodeAirdropNotFound, "airdrop %s not found", id)
	}
	return airdropView(ad), nil
}

// ClaimStatus reports whether wallet claimed from the airdrop and how much.
func (s *State) ClaimStatus(id uuid.UUID, wallet common.Address) (bool, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.airdrops[id]
	if !ok {
		return false, 0, abortf(CodeAirdropNotFound, "airdrop %s not found", id)
	}
	info, claimed := ad.Claims[wallet]
	if !claimed {
		return false, 0, nil
	}
	return true, info.Amount, nil
}

func (s *State) maybeDeactivateLocked(ad *Airdrop) {
	if ad.ClaimedCount >= ad.TotalRecipients || ad.Pool < ad.PerUserAmount {
		ad.Active = false
	}
}

func airdropView(ad *Airdrop) *AirdropView {
	return &AirdropView{
		ID:              ad.ID,
		EventID:         ad.EventID,
		Name:            ad.Name,
		PoolBalance:     ad.Pool,
		PerUserAmount:   ad.PerUserAmount,
		TotalRecipients: ad.TotalRecipients,
		ClaimedCount:    ad.ClaimedCount,
		Distribution:    ad.Distribution,
		ExpiresAt:       ad.ExpiresAt,
		Active:          ad.Active,
	}
}
