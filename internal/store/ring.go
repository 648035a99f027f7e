package store

import (
	"encoding/json"

	"github.com/botfactory/botfactory/engine/pkg/models"
)

// maxTracesPerBot caps the decision trace log per bot. Oldest entries are
// evicted first.
const maxTracesPerBot = 200

// traceRing is a fixed-capacity push-back / evict-front buffer of decision
// traces. Capacity is fixed at maxTracesPerBot.
type traceRing struct {
	buf   [maxTracesPerBot]models.DecisionTrace
	start int
	count int
}

// Push appends a trace, evicting the oldest entry when full.
func (r *traceRing) Push(t models.DecisionTrace) {
	if r.count < maxTracesPerBot {
		r.buf[(r.start+r.count)%maxTracesPerBot] = t
		r.count++
		return
	}
	r.buf[r.start] = t
	r.start = (r.start + 1) % maxTracesPerBot
}

// Len returns the number of stored traces.
func (r *traceRing) Len() int { return r.count }

// Items returns the traces oldest-first as a fresh slice.
func (r *traceRing) Items() []models.DecisionTrace {
	out := make([]models.DecisionTrace, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%maxTracesPerBot]
	}
	return out
}

// MarshalJSON encodes the ring as a plain oldest-first array so snapshots
// stay readable.
func (r *traceRing) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Items())
}

// UnmarshalJSON restores the ring from an array, keeping only the most
// recent entries when the snapshot exceeds capacity.
func (r *traceRing) UnmarshalJSON(data []byte) error {
	var items []models.DecisionTrace
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*r = traceRing{}
	for _, t := range items {
		r.Push(t)
	}
	return nil
}
