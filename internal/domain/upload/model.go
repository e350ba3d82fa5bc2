package upload

import "time"

type Options struct {
	Merge bool
	// IDField names the payload field holding each document's id. Empty means
	// generated ids for arrays and an error for a single document uploaded to
	// a collection.
	IDField string
}

type Status string

const (
	StatusWritten Status = "written"
	StatusAdded   Status = "added"
	StatusFailed  Status = "failed"
)

// ItemOutcome is the record of one attempted write.
type ItemOutcome struct {
	Index     int
	ID        string
	Path      string
	WriteTime time.Time
	Status    Status
	Err       error
}

type Result struct {
	Target string
	// Multi is true when the payload was an array.
	Multi bool
	Items []ItemOutcome
}

func (r *Result) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

func (r *Result) Failed() int {
	return len(r.Items) - r.Succeeded()
}
