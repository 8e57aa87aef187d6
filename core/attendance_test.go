package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesRecord(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	pass, err := s.Register(eventID, wallet(0))
	require.NoError(t, err)
	assert.Equal(t, eventID, pass.EventID)
	assert.NotZero(t, pass.PassID)
	assert.Len(t, pass.Commitment, CommitmentSize)

	rec, err := s.Attendance(eventID, wallet(0))
	require.NoError(t, err)
	assert.Equal(t, AttendanceRegistered, rec.State)
	assert.Equal(t, pass.PassID, rec.PassID)
}

func TestRegisterTwiceRejected(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	_, err := s.Register(eventID, wallet(0))
	require.NoError(t, err)
	_, err = s.Register(eventID, wallet(0))
	assert.True(t, IsCode(err, CodeAlreadyRegistered))
}

func TestRegisterRequiresActiveEvent(t *testing.T) {
	s, tc := newTestState()
	id, err := s.CreateEvent(EventParams{
		Organizer: organizer,
		Capacity:  10,
		StartTime: tc.now,
		EndTime:   tc.now + 3600,
	})
	require.NoError(t, err)

	_, err = s.Register(id, wallet(0))
	assert.True(t, IsCode(err, CodeEventNotActive))

	require.NoError(t, s.ActivateEvent(id, organizer))
	require.NoError(t, s.CompleteEvent(id, organizer))
	_, err = s.Register(id, wallet(1))
	assert.True(t, IsCode(err, CodeEventNotActive))
}

func TestRegisterCapacityEnforced(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 2, 0, 0, 0)

	_, err := s.Register(eventID, wallet(0))
	require.NoError(t, err)
	_, err = s.Register(eventID, wallet(1))
	require.NoError(t, err)

	_, err = s.Register(eventID, wallet(2))
	assert.True(t, IsCode(err, CodeCapacityReached))
}

func TestPassIDsAreMonotonic(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	var last uint64
	for i := 0; i < 5; i++ {
		pass, err := s.Register(eventID, wallet(i))
		require.NoError(t, err)
		assert.Greater(t, pass.PassID, last)
		last = pass.PassID
	}
}

func TestAttendanceStateChain(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	registerAndCheckIn(t, s, eventID, wallet(0))
	rec, err := s.Attendance(eventID, wallet(0))
	require.NoError(t, err)
	assert.Equal(t, AttendanceCheckedIn, rec.State)
	assert.Equal(t, tc.now, rec.CheckInTime)

	tc.Advance(2 * time.Hour)
	require.NoError(t, s.CheckOut(eventID, wallet(0)))

	rec, err = s.Attendance(eventID, wallet(0))
	require.NoError(t, err)
	assert.Equal(t, AttendanceCheckedOut, rec.State)
	assert.Equal(t, int64(2*3600), rec.Duration())
}

func TestDoubleCheckInRejectedUnchanged(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	pass, err := s.Register(eventID, wallet(0))
	require.NoError(t, err)
	claim := PassClaim{EventID: eventID, PassID: pass.PassID, Wallet: pass.Wallet}

	_, err = s.CheckIn(eventID, claim)
	require.NoError(t, err)
	before, err := s.Attendance(eventID, wallet(0))
	require.NoError(t, err)

	tc.Advance(time.Hour)
	_, err = s.CheckIn(eventID, claim)
	assert.True(t, IsCode(err, CodeInvalidState))

	after, err := s.Attendance(eventID, wallet(0))
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejected check-in must leave the record unchanged")
}

func TestCheckOutWithoutCheckInRejected(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	_, err := s.Register(eventID, wallet(0))
	require.NoError(t, err)

	err = s.CheckOut(eventID, wallet(0))
	assert.True(t, IsCode(err, CodeInvalidState))

	err = s.CheckOut(eventID, wallet(5))
	assert.True(t, IsCode(err, CodeNotRegistered))
}

func TestCheckInAfterCheckOutRejected(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	pass, err := s.Register(eventID, wallet(0))
	require.NoError(t, err)
	claim := PassClaim{EventID: eventID, PassID: pass.PassID, Wallet: pass.Wallet}
	_, err = s.CheckIn(eventID, claim)
	require.NoError(t, err)
	require.NoError(t, s.CheckOut(eventID, wallet(0)))

	_, err = s.CheckIn(eventID, claim)
	assert.True(t, IsCode(err, CodeInvalidState))
}

func TestMissingCheckoutHasZeroDuration(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	registerAndCheckIn(t, s, eventID, wallet(0))
	tc.Advance(5 * time.Hour)

	rec, err := s.Attendance(eventID, wallet(0))
	require.NoError(t, err)
	assert.Zero(t, rec.Duration())
}

func TestMintCapabilitySingleUse(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	mintCap := registerAndCheckIn(t, s, eventID, wallet(0))

	require.NoError(t, s.MintPoA(mintCap))
	assert.True(t, s.HasCompletionNFT(eventID, wallet(0)))

	err := s.MintPoA(mintCap)
	assert.True(t, IsCode(err, CodeInvalidCapability), "capability must be consumable exactly once")
}

func TestEventStats(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	// 4 registered: 1 stays registered, 1 checks in, 2 check out.
	_, err := s.Register(eventID, wallet(0))
	require.NoError(t, err)
	registerAndCheckIn(t, s, eventID, wallet(1))
	registerAndCheckIn(t, s, eventID, wallet(2))
	registerAndCheckIn(t, s, eventID, wallet(3))
	require.NoError(t, s.CheckOut(eventID, wallet(2)))
	require.NoError(t, s.CheckOut(eventID, wallet(3)))

	require.NoError(t, s.SubmitRating(eventID, wallet(2), 400))
	require.NoError(t, s.SubmitRating(eventID, wallet(3), 500))

	stats, err := s.EventStats(eventID)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Registered:     4,
		CheckedIn:      1,
		CheckedOut:     2,
		CompletionRate: 50,
		AverageRating:  450,
	}, stats)
}

func TestSubmitRatingGuards(t *testing.T) {
	s, tc := newTestState()
	eventID := activeEvent(t, s, tc, 10, 0, 0, 0)

	_, err := s.Register(eventID, wallet(0))
	require.NoError(t, err)
	err = s.SubmitRating(eventID, wallet(0), 300)
	assert.True(t, IsCode(err, CodeInvalidState), "rating requires check-in")

	registerAndCheckIn(t, s, eventID, wallet(1))
	assert.True(t, IsCode(s.SubmitRating(eventID, wallet(1), 99), CodeInvalidRating))
	assert.True(t, IsCode(s.SubmitRating(eventID, wallet(1), 501), CodeInvalidRating))

	require.NoError(t, s.SubmitRating(eventID, wallet(1), 350))
	err = s.SubmitRating(eventID, wallet(1), 400)
	assert.True(t, IsCode(err, CodeAlreadyRated))
}
