package core

import "github.com/ethereum/go-ethereum/common"

// Attendance states. The only legal chain is
// Registered -> CheckedIn -> CheckedOut; skips and repeats abort.
const (
	AttendanceRegistered uint8 = 0
	AttendanceCheckedIn  uint8 = 1
	AttendanceCheckedOut uint8 = 2
)

// AttendanceRecord tracks one wallet's progress through one event. Records
// are created at registration and never deleted.
type AttendanceRecord struct {
	EventID      uint64
	Wallet       common.Address
	PassID       uint64
	State        uint8
	RegisteredAt int64
	CheckInTime  int64
	CheckOutTime int64
}

// Duration returns seconds between check-in and check-out, or zero when the
// wallet never checked out. Weighted reward math treats a missing checkout
// as zero duration, never as an error.
func (r *AttendanceRecord) Duration() int64 {
	if r.State != AttendanceCheckedOut || r.CheckOutTime <= r.CheckInTime {
		return 0
	}
	return r.CheckOutTime - r.CheckInTime
}

// MintCapability is the one-shot token check-in emits. It authorizes exactly
// one PoA mint for its (event, wallet) pair; consumption is tracked in the
// state, so holding the value after use grants nothing.
type MintCapability struct {
	EventID  uint64
	Wallet   common.Address
	IssuedAt int64
}

// Stats aggregates one event's attendance and ratings for settlement and
// airdrop sizing.
type Stats struct {
	Registered     uint64 `json:"registered"`
	CheckedIn      uint64 `json:"checked_in"`
	CheckedOut     uint64 `json:"checked_out"`
	CompletionRate uint64 `json:"completion_rate"`
	AverageRating  uint64 `json:"average_rating"`
}

// Register creates an attendance record for wallet and issues its pass.
// The pass id comes from the state's monotonic counter, never from the
// client, so commitments cannot be forged by guessing.
func (s *State) Register(eventID uint64, wallet common.Address) (*IssuedPass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status != EventActive {
		return nil, abortf(CodeEventNotActive, "event %d is not open for registration", eventID)
	}

	key := attKey{Event: eventID, Wallet: wallet}
	if _, exists := s.attendance[key]; exists {
		return nil, abortf(CodeAlreadyRegistered, "wallet %s already registered for event %d", wallet.Hex(), eventID)
	}
	if s.registeredCountLocked(eventID) >= ev.Capacity {
		return nil, abortf(CodeCapacityReached, "event %d is at capacity %d", eventID, ev.Capacity)
	}

	s.passSeq++
	now := s.now()
	rec := &AttendanceRecord{
		EventID:      eventID,
		Wallet:       wallet,
		PassID:       s.passSeq,
		State:        AttendanceRegistered,
		RegisteredAt: now,
	}
	s.attendance[key] = rec

	return &IssuedPass{
		PassID:     rec.PassID,
		EventID:    eventID,
		Wallet:     wallet,
		Commitment: PassCommitment(rec.PassID, eventID, wallet),
		IssuedAt:   now,
	}, nil
}

// CheckIn verifies a presented pass claim and moves the record from
// Registered to CheckedIn. On success it returns the one-shot mint
// capability for the PoA credential.
func (s *State) CheckIn(eventID uint64, claim PassClaim) (*MintCapability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status != EventActive {
		return nil, abortf(CodeEventNotActive, "event %d is not active", eventID)
	}
	if claim.EventID != eventID {
		return nil, abortf(CodeInvalidCapability, "pass was issued for event %d, not %d", claim.EventID, eventID)
	}

	key := attKey{Event: eventID, Wallet: claim.Wallet}
	rec, ok := s.attendance[key]
	if !ok {
		return nil, abortf(CodeNotRegistered, "wallet %s never registered for event %d", claim.Wallet.Hex(), eventID)
	}
	if rec.State != AttendanceRegistered {
		return nil, abortf(CodeInvalidState, "wallet %s is in state %d, expected Registered", claim.Wallet.Hex(), rec.State)
	}
	if err := verifyClaimLocked(rec, claim); err != nil {
		return nil, err
	}

	now := s.now()
	rec.State = AttendanceCheckedIn
	rec.CheckInTime = now
	return &MintCapability{EventID: eventID, Wallet: claim.Wallet, IssuedAt: now}, nil
}

// CheckOut moves a CheckedIn record to CheckedOut and fixes the duration
// used by weighted rewards.
func (s *State) CheckOut(eventID uint64, wallet common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.eventLocked(eventID); err != nil {
		return err
	}
	rec, ok := s.attendance[attKey{Event: eventID, Wallet: wallet}]
	if !ok {
		return abortf(CodeNotRegistered, "wallet %s never registered for event %d", wallet.Hex(), eventID)
	}
	if rec.State != AttendanceCheckedIn {
		return abortf(CodeInvalidState, "wallet %s is in state %d, expected CheckedIn", wallet.Hex(), rec.State)
	}
	rec.State = AttendanceCheckedOut
	rec.CheckOutTime = s.now()
	return nil
}

// Attendance returns a copy of the record for (event, wallet).
func (s *State) Attendance(eventID uint64, wallet common.Address) (AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.attendance[attKey{Event: eventID, Wallet: wallet}]
	if !ok {
		return AttendanceRecord{}, abortf(CodeNotRegistered, "wallet %s never registered for event %d", wallet.Hex(), eventID)
	}
	return *rec, nil
}

// EventStats aggregates attendance counts, completion rate and the rating
// average for one event.
func (s *State) EventStats(eventID uint64) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.eventLocked(eventID); err != nil {
		return Stats{}, err
	}
	return s.statsLocked(eventID), nil
}

func (s *State) statsLocked(eventID uint64) Stats {
	var st Stats
	for key, rec := range s.attendance {
		if key.Event != eventID {
			continue
		}
		st.Registered++
		switch rec.State {
		case AttendanceCheckedIn:
			st.CheckedIn++
		case AttendanceCheckedOut:
			st.CheckedOut++
		}
	}
	if st.Registered > 0 {
		st.CompletionRate = st.CheckedOut * 100 / st.Registered
	}
	st.AverageRating = s.averageRatingLocked(eventID)
	return st
}

func (s *State) registeredCountLocked(eventID uint64) uint64 {
	var n uint64
	for key := range s.attendance {
		if key.Event == eventID {
			n++
		}
	}
	return n
}
