package models

// Event lifecycle state codes, as exposed on the wire.
const (
	EventStateCreated   uint8 = 0
	EventStateActive    uint8 = 1
	EventStateCompleted uint8 = 2
	EventStateSettled   uint8 = 3
)

// CreateEventRequest creates an event with its sponsor KPI thresholds.
// Times are unix seconds; min_avg_rating is stars x100 (100-500).
type CreateEventRequest struct {
	OrganizerAddress  string `json:"organizer_address" binding:"required"`
	Capacity          uint64 `json:"capacity" binding:"required"`
	StartTime         int64  `json:"start_time" binding:"required"`
	EndTime           int64  `json:"end_time" binding:"required"`
	MinAttendees      uint64 `json:"min_attendees"`
	MinCompletionRate uint64 `json:"min_completion_rate"`
	MinAvgRating      uint64 `json:"min_avg_rating"`
}

// EventTransitionRequest authorizes an organizer lifecycle transition.
type EventTransitionRequest struct {
	OrganizerAddress string `json:"organizer_address" binding:"required"`
}

// EventResponse is the wire shape of one event.
type EventResponse struct {
	EventID           uint64 `json:"event_id"`
	OrganizerAddress  string `json:"organizer_address"`
	Capacity          uint64 `json:"capacity"`
	StartTime         int64  `json:"start_time"`
	EndTime           int64  `json:"end_time"`
	MinAttendees      uint64 `json:"min_attendees"`
	MinCompletionRate uint64 `json:"min_completion_rate"`
	MinAvgRating      uint64 `json:"min_avg_rating"`
	Status            uint8  `json:"status"`
}
