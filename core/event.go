package core

import "github.com/ethereum/go-ethereum/common"

// Event lifecycle states.
const (
	EventCreated   uint8 = 0
	EventActive    uint8 = 1
	EventCompleted uint8 = 2
	EventSettled   uint8 = 3
)

// Event is the protocol's view of one event: identity, organizer capability
// holder, capacity, schedule and the sponsor KPI thresholds settlement
// compares against. Thresholds use integer arithmetic throughout:
// completion rate is a percentage, average rating is stars x100 (1.0-5.0
// stars -> 100-500).
type Event struct {
	ID                uint64
	Organizer         common.Address
	Capacity          uint64
	StartTime         int64
	EndTime           int64
	MinAttendees      uint64
	MinCompletionRate uint64
	MinAvgRating      uint64
	Status            uint8
}

// EventParams carries everything CreateEvent needs.
type EventParams struct {
	Organizer         common.Address
	Capacity          uint64
	StartTime         int64
	EndTime           int64
	MinAttendees      uint64
	MinCompletionRate uint64
	MinAvgRating      uint64
}

// CreateEvent registers a new event in Created state and returns its id.
func (s *State) CreateEvent(p EventParams) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Capacity == 0 {
		return 0, abortf(CodeInvalidCapacity, "event capacity must be positive")
	}
	if p.EndTime <= p.StartTime {
		return 0, abortf(CodeInvalidTimestamp, "event end %d not after start %d", p.EndTime, p.StartTime)
	}

	s.eventSeq++
	id := s.eventSeq
	s.events[id] = &Event{
		ID:                id,
		Organizer:         p.Organizer,
		Capacity:          p.Capacity,
		StartTime:         p.StartTime,
		EndTime:           p.EndTime,
		MinAttendees:      p.MinAttendees,
		MinCompletionRate: p.MinCompletionRate,
		MinAvgRating:      p.MinAvgRating,
		Status:            EventCreated,
	}
	return id, nil
}

// ActivateEvent opens an event for registration and check-in. Organizer only.
func (s *State) ActivateEvent(id uint64, caller common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(id)
	if err != nil {
		return err
	}
	if ev.Organizer != caller {
		return abortf(CodeNotOrganizer, "caller %s is not the organizer of event %d", caller.Hex(), id)
	}
	if ev.Status != EventCreated {
		return abortf(CodeInvalidState, "event %d is not in Created state", id)
	}
	ev.Status = EventActive
	return nil
}

// CompleteEvent closes an event. Settlement becomes possible once the
// event is Completed. Organizer only.
func (s *State) CompleteEvent(id uint64, caller common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(id)
	if err != nil {
		return err
	}
	if ev.Organizer != caller {
		return abortf(CodeNotOrganizer, "caller %s is not the organizer of event %d", caller.Hex(), id)
	}
	if ev.Status == EventCompleted || ev.Status == EventSettled {
		return abortf(CodeEventCompleted, "event %d already completed", id)
	}
	if ev.Status != EventActive {
		return abortf(CodeEventNotActive, "event %d was never activated", id)
	}
	ev.Status = EventCompleted
	return nil
}

// GetEvent returns a copy of the event record.
func (s *State) GetEvent(id uint64) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.eventLocked(id)
	if err != nil {
		return Event{}, err
	}
	return *ev, nil
}

// ListEvents returns copies of every event, ordered by id.
func (s *State) ListEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0, len(s.events))
	for id := uint64(1); id <= s.eventSeq; id++ {
		if ev, ok := s.events[id]; ok {
			out = append(out, *ev)
		}
	}
	return out
}

func (s *State) eventLocked(id uint64) (*Event, error) {
	ev, ok := s.events[id]
	if !ok {
		return nil, abortf(CodeEventNotFound, "event %d not found", id)
	}
	return ev, nil
}
