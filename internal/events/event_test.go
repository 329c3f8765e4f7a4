package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingEmitter struct {
	events []Event
}

func (r *recordingEmitter) Emit(ctx context.Context, e Event) {
	r.events = append(r.events, e)
}

func TestMultiEmitter_FansOutToEverySink(t *testing.T) {
	a := &recordingEmitter{}
	b := &recordingEmitter{}
	m := NewMultiEmitter(a, b, NewLogxEmitter())

	e := Event{
		Timestamp:     time.Now(),
		ClientID:      "acme",
		EventType:     TypeAuthFailure,
		Outcome:       OutcomeFailure,
		SourceAddr:    "10.0.0.1",
		CorrelationID: "corr-1",
		Degraded:      true,
	}
	m.Emit(context.Background(), e)

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Equal(t, "acme", a.events[0].ClientID)
	assert.True(t, a.events[0].Degraded)
}
