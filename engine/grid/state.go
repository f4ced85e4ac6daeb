package grid

import "github.com/municrud/municrud/engine/staff"

// Phase is the controller's activity state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseMutating
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "fetching"
	case PhaseMutating:
		return "mutating"
	default:
		return "idle"
	}
}

// Snapshot is a consistent copy of the grid state
type Snapshot struct {
	Rows         []staff.Row `json:"rows"`
	PristineRows []staff.Row `json:"-"`
	Editing      EditSet     `json:"-"`
	Pagination   Pagination  `json:"pagination"`
	Sort         Sort        `json:"sort"`
	Search       Search      `json:"search"`
	Phase        Phase       `json:"-"`
	Viewer       staff.Role  `json:"viewer"`
	// Loaded is false until the first fetch succeeds.
	Loaded bool `json:"-"`
}

// Empty reports the "no records" display state
func (s Snapshot) Empty() bool {
	return s.Loaded && len(s.Rows) == 0
}

// EventKind classifies controller notifications
type EventKind int

const (
	EventFetched EventKind = iota
	EventFailed
	EventNotice
	EventStaleDropped
)

func (k EventKind) String() string {
	switch k {
	case EventFetched:
		return "fetched"
	case EventFailed:
		return "failed"
	case EventNotice:
		return "notice"
	case EventStaleDropped:
		return "stale-dropped"
	default:
		return "unknown"
	}
}

// Event is published on the controller's channel after state changes
type Event struct {
	Kind     EventKind
	Seq      uint64
	Snapshot Snapshot
	Message  string
	Err      error
}
