package core

import "github.com/ethereum/go-ethereum/common"

// Ratings are stars x100 fixed point (1.0-5.0 stars -> 100-500) and stay
// integer end to end so threshold comparisons are exact.

const (
	MinRating uint64 = 100
	MaxRating uint64 = 500
)

// SubmitRating records one rating per wallet per event. Only wallets that
// checked in may rate.
func (s *State) SubmitRating(eventID uint64, wallet common.Address, rating uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.eventLocked(eventID); err != nil {
		return err
	}
	if rating < MinRating || rating > MaxRating {
		return abortf(CodeInvalidRating, "rating %d outside [%d, %d]", rating, MinRating, MaxRating)
	}

	key := attKey{Event: eventID, Wallet: wallet}
	rec, ok := s.attendance[key]
	if !ok {
		return abortf(CodeNotRegistered, "wallet %s never registered for event %d", wallet.Hex(), eventID)
	}
	if rec.State == AttendanceRegistered {
		return abortf(CodeInvalidState, "wallet %s must check in before rating", wallet.Hex())
	}
	if _, rated := s.ratings[key]; rated {
		return abortf(CodeAlreadyRated, "wallet %s already rated event %d", wallet.Hex(), eventID)
	}
	s.ratings[key] = rating
	return nil
}

// HasRating reports whether wallet submitted a rating for the event.
func (s *State) HasRating(eventID uint64, wallet common.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ratings[attKey{Event: eventID, Wallet: wallet}]
	return ok
}

// AverageRating returns the fixed-point mean rating, zero when nobody rated.
func (s *State) AverageRating(eventID uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.averageRatingLocked(eventID)
}

func (s *State) averageRatingLocked(eventID uint64) uint64 {
	var sum, n uint64
	for key, r := range s.ratings {
		if key.Event == eventID {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
