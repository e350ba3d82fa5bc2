package transfer

import "time"

// Request names a single-document copy or move.
type Request struct {
	Source      string
	Destination string
	// IDField, when set, receives the destination document id in the written data.
	IDField string
}

type Outcome struct {
	Source      string
	Destination string
	WriteTime   time.Time
	// Transactional is false when a move ran through the compensating path.
	Transactional bool
}
