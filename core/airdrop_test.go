package core

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAirdrop(t *testing.T, s *State, eventID uint64, pool uint64, dist DistributionType, crit EligibilityCriteria) uuid.UUID {
	t.Helper()
	view, err := s.CreateAirdrop(AirdropParams{
		EventID:      eventID,
		Caller:       organizer,
		Name:         "attendance rewards",
		Pool:         pool,
		Distribution: dist,
		Criteria:     crit,
		ValidDays:    30,
	})
	require.NoError(t, err)
	return view.ID
}

func TestEqualDistributionPoolExhaustion(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)

	// 10 checked in at creation time -> per_user = 1000/10 = 100.
	for i := 0; i < 10; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
	}
	id := createAirdrop(t, s, eventID, 1000, DistEqual, EligibilityCriteria{RequireAttendance: true})

	view, err := s.AirdropInfo(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), view.PerUserAmount)

	// An 11th wallet checks in after creation; estimates do not bind claims.
	registerAndCheckIn(t, s, eventID, wallet(10))

	for i := 0; i < 10; i++ {
		info, err := s.Claim(id, wallet(i))
		require.NoError(t, err)
		assert.Equal(t, uint64(100), info.Amount)
	}

	_, err = s.Claim(id, wallet(10))
	assert.True(t, IsCode(err, CodeInsufficientFunds), "exhausted pool is first-come-first-served, got %v", err)

	view, err = s.AirdropInfo(id)
	require.NoError(t, err)
	assert.Zero(t, view.PoolBalance)
	assert.False(t, view.Active)
}

func TestClaimTotalNeverExceedsPool(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)
	for i := 0; i < 3; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
		require.NoError(t, s.CheckOut(eventID, wallet(i)))
	}
	id := createAirdrop(t, s, eventID, 1000, DistEqual, EligibilityCriteria{})

	var total uint64
	for i := 0; i < 3; i++ {
		info, err := s.Claim(id, wallet(i))
		require.NoError(t, err)
		total += info.Amount
	}
	view, err := s.AirdropInfo(id)
	require.NoError(t, err)
	assert.LessOrEqual(t, total, uint64(1000))
	assert.Equal(t, uint64(1000)-total, view.PoolBalance)
}

func TestDuplicateClaimRejected(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)
	for i := 0; i < 2; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
	}
	id := createAirdrop(t, s, eventID, 1000, DistEqual, EligibilityCriteria{})

	_, err := s.Claim(id, wallet(0))
	require.NoError(t, err)
	_, err = s.Claim(id, wallet(0))
	assert.True(t, IsCode(err, CodeAlreadyClaimed))
}

func TestWeightedByDurationPayout(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)

	// wallet 0 stays 2.5h; wallets 1-3 never check out.
	for i := 0; i < 4; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
	}
	tc.Advance(2*time.Hour + 30*time.Minute)
	require.NoError(t, s.CheckOut(eventID, wallet(0)))

	// base = 1000 / 4 attendees = 250.
	id := createAirdrop(t, s, eventID, 1000, DistWeightedByDuration, EligibilityCriteria{})

	info, err := s.Claim(id, wallet(0))
	require.NoError(t, err)
	// base * (hours + 1), hours truncated: 250 * (2 + 1).
	assert.Equal(t, uint64(750), info.Amount)

	// Zero duration pays the base amount, never errors.
	info, err = s.Claim(id, wallet(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(250), info.Amount)

	// The per-claimant formula does not re-normalize, so the pool can run
	// dry before every attendee claims.
	_, err = s.Claim(id, wallet(2))
	assert.True(t, IsCode(err, CodeInsufficientFunds))
}

func TestCompletionBonusPayout(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)

	registerAndCheckIn(t, s, eventID, wallet(0))
	require.NoError(t, s.CheckOut(eventID, wallet(0)))
	for i := 1; i < 4; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
	}

	// base = 4000 / 4 = 1000.
	id := createAirdrop(t, s, eventID, 4000, DistCompletionBonus, EligibilityCriteria{})

	base, err := s.Claim(id, wallet(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), base.Amount, "checked-in only: base amount")

	bonus, err := s.Claim(id, wallet(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), bonus.Amount, "checked-out: doubled")
}

func TestEligibilityCriteria(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)

	// wallet 0: full chain with NFT, rating, 3h duration.
	mintCap := registerAndCheckIn(t, s, eventID, wallet(0))
	require.NoError(t, s.MintPoA(mintCap))
	// wallet 1: checked in only.
	registerAndCheckIn(t, s, eventID, wallet(1))
	// wallet 2: registered only.
	_, err := s.Register(eventID, wallet(2))
	require.NoError(t, err)

	tc.Advance(3 * time.Hour)
	require.NoError(t, s.CheckOut(eventID, wallet(0)))
	require.NoError(t, s.SubmitRating(eventID, wallet(0), 500))

	id := createAirdrop(t, s, eventID, 1000, DistEqual, EligibilityCriteria{
		RequireAttendance: true,
		RequireCompletion: true,
		MinDuration:       2 * 3600,
		RequireRating:     true,
	})

	assert.NoError(t, s.CheckEligibility(id, wallet(0)))
	assert.True(t, IsCode(s.CheckEligibility(id, wallet(1)), CodeNotEligible))
	assert.True(t, IsCode(s.CheckEligibility(id, wallet(2)), CodeNotEligible))
	assert.True(t, IsCode(s.CheckEligibility(id, wallet(9)), CodeNotEligible), "no attendance record at all")
}

// Relaxing any criterion never turns an eligible wallet ineligible.
func TestEligibilityMonotonic(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)

	mintCap := registerAndCheckIn(t, s, eventID, wallet(0))
	require.NoError(t, s.MintPoA(mintCap))
	tc.Advance(4 * time.Hour)
	require.NoError(t, s.CheckOut(eventID, wallet(0)))
	require.NoError(t, s.SubmitRating(eventID, wallet(0), 400))

	strict := EligibilityCriteria{
		RequireAttendance: true,
		RequireCompletion: true,
		MinDuration:       3600,
		RequireRating:     true,
	}
	relaxations := []EligibilityCriteria{
		{RequireCompletion: true, MinDuration: 3600, RequireRating: true},
		{RequireAttendance: true, MinDuration: 3600, RequireRating: true},
		{RequireAttendance: true, RequireCompletion: true, RequireRating: true},
		{RequireAttendance: true, RequireCompletion: true, MinDuration: 3600},
		{},
	}

	strictID := createAirdrop(t, s, eventID, 1000, DistEqual, strict)
	require.NoError(t, s.CheckEligibility(strictID, wallet(0)))

	for _, crit := range relaxations {
		id := createAirdrop(t, s, eventID, 1000, DistEqual, crit)
		assert.NoError(t, s.CheckEligibility(id, wallet(0)))
	}
}

func TestBatchDistribute(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)

	for i := 0; i < 4; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
	}
	_, err := s.Register(eventID, wallet(4)) // never checks in
	require.NoError(t, err)

	id := createAirdrop(t, s, eventID, 400, DistEqual, EligibilityCriteria{RequireAttendance: true})

	// wallet 1 claims individually first; the batch must skip it.
	_, err = s.Claim(id, wallet(1))
	require.NoError(t, err)

	recipients := []common.Address{wallet(0), wallet(1), wallet(4), wallet(2), wallet(3)}
	res, err := s.BatchDistribute(id, organizer, recipients)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), res.Paid)
	assert.Equal(t, uint64(2), res.Skipped, "already-claimed and never-checked-in are skipped, not fatal")
	assert.Equal(t, uint64(300), res.TotalAmount)

	view, err := s.AirdropInfo(id)
	require.NoError(t, err)
	assert.Zero(t, view.PoolBalance)
	assert.Equal(t, uint64(4), view.ClaimedCount)
}

func TestBatchDistributeStopsWhenExhausted(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)

	for i := 0; i < 4; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
	}
	id := createAirdrop(t, s, eventID, 400, DistEqual, EligibilityCriteria{})

	// Drain most of the pool so the batch can pay at most one recipient.
	_, err := s.Claim(id, wallet(0))
	require.NoError(t, err)
	_, err = s.Claim(id, wallet(1))
	require.NoError(t, err)
	_, err = s.Claim(id, wallet(2))
	require.NoError(t, err)

	res, err := s.BatchDistribute(id, organizer, []common.Address{wallet(3), wallet(0)})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Paid)
	assert.False(t, res.Exhausted)

	// Nothing left: the next batch stops before paying anyone.
	for i := 0; i < 4; i++ {
		registerAndCheckIn(t, s, eventID, wallet(10+i))
	}
	res, err = s.BatchDistribute(id, organizer, []common.Address{wallet(10)})
	assert.True(t, IsCode(err, CodeAirdropNotActive))
	assert.Nil(t, res)
}

func TestBatchDistributeOrganizerOnly(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)
	registerAndCheckIn(t, s, eventID, wallet(0))
	id := createAirdrop(t, s, eventID, 100, DistEqual, EligibilityCriteria{})

	_, err := s.BatchDistribute(id, wallet(0), []common.Address{wallet(0)})
	assert.True(t, IsCode(err, CodeNotOrganizer))
}

func TestAirdropExpiry(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)
	for i := 0; i < 2; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
	}
	id := createAirdrop(t, s, eventID, 1000, DistEqual, EligibilityCriteria{})

	_, err := s.WithdrawUnclaimed(id, organizer)
	assert.True(t, IsCode(err, CodeAirdropNotExpired))

	_, err = s.Claim(id, wallet(0))
	require.NoError(t, err)

	tc.Advance(31 * 24 * time.Hour)

	_, err = s.Claim(id, wallet(1))
	assert.True(t, IsCode(err, CodeAirdropExpired))

	swept, err := s.WithdrawUnclaimed(id, organizer)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), swept)

	view, err := s.AirdropInfo(id)
	require.NoError(t, err)
	assert.False(t, view.Active)
	assert.Zero(t, view.PoolBalance)
}

func TestCreateAirdropGuards(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)

	// Nobody checked in yet: zero estimated recipients.
	_, err := s.CreateAirdrop(AirdropParams{
		EventID:      eventID,
		Caller:       organizer,
		Name:         "premature",
		Pool:         1000,
		Distribution: DistEqual,
		ValidDays:    7,
	})
	assert.True(t, IsCode(err, CodeInvalidDistribution))

	registerAndCheckIn(t, s, eventID, wallet(0))

	_, err = s.CreateAirdrop(AirdropParams{
		EventID:      eventID,
		Caller:       wallet(0),
		Name:         "not mine",
		Pool:         1000,
		Distribution: DistEqual,
		ValidDays:    7,
	})
	assert.True(t, IsCode(err, CodeNotOrganizer))

	_, err = s.CreateAirdrop(AirdropParams{
		EventID:      eventID,
		Caller:       organizer,
		Name:         "empty",
		Pool:         0,
		Distribution: DistEqual,
		ValidDays:    7,
	})
	assert.True(t, IsCode(err, CodeInvalidAmount))
}

func TestClaimStatus(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 20, 0, 0, 0)
	for i := 0; i < 2; i++ {
		registerAndCheckIn(t, s, eventID, wallet(i))
	}
	id := createAirdrop(t, s, eventID, 1000, DistEqual, EligibilityCriteria{})

	claimed, amount, err := s.ClaimStatus(id, wallet(0))
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Zero(t, amount)

	_, err = s.Claim(id, wallet(0))
	require.NoError(t, err)

	claimed, amount, err = s.ClaimStatus(id, wallet(0))
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, uint64(500), amount)
}
