package core

import "github.com/ethereum/go-ethereum/common"

// Escrow holds sponsor funds against one event's outcome. Created on first
// funding call, top-ups allowed while unsettled, immutable once settled.
type Escrow struct {
	EventID        uint64
	Organizer      common.Address
	Sponsor        common.Address
	Balance        uint64
	Settled        bool
	SettlementTime int64
}

// EscrowView is the copy handed to callers.
type EscrowView struct {
	EventID        uint64         `json:"event_id"`
	Organizer      common.Address `json:"organizer"`
	Sponsor        common.Address `json:"sponsor"`
	Balance        uint64         `json:"balance"`
	Settled        bool           `json:"settled"`
	SettlementTime int64          `json:"settlement_time,omitempty"`
}

// SettlementResult is the settlement read model: every measured value, the
// threshold it was held against, and where the money went. The invariant
// AmountReleased + AmountRefunded == balance at settlement time always
// holds.
type SettlementResult struct {
	ConditionsMet          bool   `json:"conditions_met"`
	AttendeesActual        uint64 `json:"attendees_actual"`
	AttendeesRequired      uint64 `json:"attendees_required"`
	CompletionRateActual   uint64 `json:"completion_rate_actual"`
	CompletionRateRequired uint64 `json:"completion_rate_required"`
	AvgRatingActual        uint64 `json:"avg_rating_actual"`
	AvgRatingRequired      uint64 `json:"avg_rating_required"`
	AmountReleased         uint64 `json:"amount_released"`
	AmountRefunded         uint64 `json:"amount_refunded"`
}

// FundEscrow deposits sponsor funds against an event. The first call
// creates the escrow and records the sponsor; later calls must come from
// the same sponsor and top up an unsettled balance.
func (s *State) FundEscrow(eventID uint64, sponsor common.Address, amount uint64) (*EscrowView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(eventID)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, abortf(CodeInvalidAmount, "escrow deposit must be positive")
	}

	esc, ok := s.escrows[eventID]
	if !ok {
		esc = &Escrow{
			EventID:   eventID,
			Organizer: ev.Organizer,
			Sponsor:   sponsor,
			Balance:   amount,
		}
		s.escrows[eventID] = esc
		return escrowView(esc), nil
	}
	if esc.Settled {
		return nil, abortf(CodeAlreadySettled, "escrow for event %d is already settled", eventID)
	}
	if esc.Sponsor != sponsor {
		return nil, abortf(CodeNotSponsor, "caller %s is not the escrow sponsor", sponsor.Hex())
	}
	esc.Balance += amount
	return escrowView(esc), nil
}

// Settle measures the event against its sponsor KPIs and either releases
// the full balance to the organizer or refunds it all to the sponsor.
// Organizer only, event must be Completed, and settlement happens once.
// Attendees count anyone who checked in, whether or not they checked out;
// completion is measured separately by the completion-rate KPI.
func (s *State) Settle(eventID uint64, caller common.Address) (*SettlementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(eventID)
	if err != nil {
		return nil, err
	}
	esc, ok := s.escrows[eventID]
	if !ok {
		return nil, abortf(CodeEscrowNotFound, "event %d has no escrow", eventID)
	}
	if caller != ev.Organizer {
		return nil, abortf(CodeNotOrganizer, "caller %s is not the organizer of event %d", caller.Hex(), eventID)
	}
	if esc.Settled {
		return nil, abortf(CodeAlreadySettled, "escrow for event %d is already settled", eventID)
	}
	if ev.Status != EventCompleted {
		return nil, abortf(CodeEventNotActive, "event %d must be completed before settlement", eventID)
	}

	st := s.statsLocked(eventID)
	res := &SettlementResult{
		AttendeesActual:        st.CheckedIn + st.CheckedOut,
		AttendeesRequired:      ev.MinAttendees,
		CompletionRateActual:   st.CompletionRate,
		CompletionRateRequired: ev.MinCompletionRate,
		AvgRatingActual:        st.AverageRating,
		AvgRatingRequired:      ev.MinAvgRating,
	}
	res.ConditionsMet = res.AttendeesActual >= res.AttendeesRequired &&
		res.CompletionRateActual >= res.CompletionRateRequired &&
		res.AvgRatingActual >= res.AvgRatingRequired

	// All-or-nothing split. Partial release is an extension point, not a
	// silent behavior.
	if res.ConditionsMet {
		res.AmountReleased = esc.Balance
	} else {
		res.AmountRefunded = esc.Balance
	}

	esc.Balance = 0
	esc.Settled = true
	esc.SettlementTime = s.now()
	ev.Status = EventSettled
	return res, nil
}

// EmergencyWithdraw refunds the remaining balance to the sponsor when the
// organizer never settled. Opens only after the grace period past event
// end, sponsor only, and marks the escrow settled so no other fund
// movement remains possible.
func (s *State) EmergencyWithdraw(eventID uint64, caller common.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(eventID)
	if err != nil {
		return 0, err
	}
	esc, ok := s.escrows[eventID]
	if !ok {
		return 0, abortf(CodeEscrowNotFound, "event %d has no escrow", eventID)
	}
	if caller != esc.Sponsor {
		return 0, abortf(CodeNotSponsor, "caller %s is not the escrow sponsor", caller.Hex())
	}
	if esc.Settled {
		return 0, abortf(CodeAlreadySettled, "escrow for event %d is already settled", eventID)
	}
	if s.now() < ev.EndTime+s.grace {
		return 0, abortf(CodeGracePeriodActive, "grace period for event %d has not elapsed", eventID)
	}

	refunded := esc.Balance
	esc.Balance = 0
	esc.Settled = true
	esc.SettlementTime = s.now()
	return refunded, nil
}

// EscrowInfo returns a copy of the escrow record.
func (s *State) EscrowInfo(eventID uint64) (*EscrowView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	esc, ok := s.escrows[eventID]
	if !ok {
		return nil, abortf(CodeEscrowNotFound, "event %d has no escrow", eventID)
	}
	return escrowView(esc), nil
}

func escrowView(esc *Escrow) *EscrowView {
	return &EscrowView{
		EventID:        esc.EventID,
		Organizer:      esc.Organizer,
		Sponsor:        esc.Sponsor,
		Balance:        esc.Balance,
		Settled:        esc.Settled,
		SettlementTime: esc.SettlementTime,
	}
}
