package catalog

import "time"

// CollectorReport summarizes one collector invocation.
type CollectorReport struct {
	Name      string        `json:"name"`
	Source    Source        `json:"source"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Pages     int           `json:"pages"`
	Duration  time.Duration `json:"duration"`
	Err       string        `json:"error,omitempty"`
}

// Aborted reports whether the collector stopped before exhausting its input.
func (r *CollectorReport) Aborted() bool { return r.Err != "" }

// PublishReport records the outcome of one mirror upload.
type PublishReport struct {
	Target string `json:"target"`
	Err    string `json:"error,omitempty"`
}

// RunReport is the user-visible summary of a pipeline run.
type RunReport struct {
	RunID            string            `json:"runId"`
	StartedAt        time.Time         `json:"startedAt"`
	Duration         time.Duration     `json:"duration"`
	Collectors       []CollectorReport `json:"collectors"`
	Candidates       int               `json:"candidates"`
	Entries          int               `json:"entries"`
	DetailsAttempted int               `json:"detailsAttempted"`
	DetailsWritten   int               `json:"detailsWritten"`
	DetailsPruned    int               `json:"detailsPruned"`
	Published        []PublishReport   `json:"published,omitempty"`
}

// Attempted returns the number of items all collectors looked at.
func (r *RunReport) Attempted() int {
	n := 0
	for _, c := range r.Collectors {
		n += c.Attempted
	}
	return n
}

// Succeeded returns the number of candidates all collectors produced.
func (r *RunReport) Succeeded() int {
	n := 0
	for _, c := range r.Collectors {
		n += c.Succeeded
	}
	return n
}

// Partial reports whether any collector or mirror failed during the run.
func (r *RunReport) Partial() bool {
	for _, c := range r.Collectors {
		if c.Aborted() {
			return true
		}
	}
	for _, p := range r.Published {
		if p.Err != "" {
			return true
		}
	}
	return false
}
