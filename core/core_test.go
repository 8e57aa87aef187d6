package core

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// testClock is a controllable clock for driving expiry and grace-period
// comparisons.
type testClock struct {
	now int64
}

func (tc *testClock) Now() int64              { return tc.now }
func (tc *testClock) Advance(d time.Duration) { tc.now += int64(d / time.Second) }

func newTestState() (*State, *testClock) {
	tc := &testClock{now: 1_700_000_000}
	s := NewState(Config{Clock: tc.Now, GracePeriod: 48 * time.Hour})
	return s, tc
}

func wallet(i int) common.Address {
	return common.BigToAddress(big.NewInt(int64(i + 1)))
}

var organizer = common.HexToAddress("0x00000000000000000000000000000000000000AA")
var sponsor = common.HexToAddress("0x00000000000000000000000000000000000000BB")

// activeEvent creates and activates an event with the given capacity and
// KPI thresholds.
func activeEvent(t *testing.T, s *State, tc *testClock, capacity, minAttendees, minCompletion, minRating uint64) uint64 {
	t.Helper()
	id, err := s.CreateEvent(EventParams{
		Organizer:         organizer,
		Capacity:          capacity,
		StartTime:         tc.now,
		EndTime:           tc.now + 8*3600,
		MinAttendees:      minAttendees,
		MinCompletionRate: minCompletion,
		MinAvgRating:      minRating,
	})
	require.NoError(t, err)
	require.NoError(t, s.ActivateEvent(id, organizer))
	return id
}

// registerAndCheckIn walks a wallet through registration and a verified
// check-in, returning the mint capability.
func registerAndCheckIn(t *testing.T, s *State, eventID uint64, w common.Address) *MintCapability {
	t.Helper()
	pass, err := s.Register(eventID, w)
	require.NoError(t, err)
	cap, err := s.CheckIn(eventID, PassClaim{
		EventID: pass.EventID,
		PassID:  pass.PassID,
		Wallet:  pass.Wallet,
	})
	require.NoError(t, err)
	return cap
}
