package events

import "context"

// Emitter publishes authentication events. Emission must never block or
// fail the request path (spec §4.5/§4.6 treat event emission as
// best-effort); implementations log and swallow their own errors.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// MultiEmitter fans an event out to every configured Emitter, used to
// wire both the logx sink (always on) and the Postgres sink (optional,
// spec §9 supplemented feature) without callers needing to know how
// many sinks are configured.
type MultiEmitter struct {
	emitters []Emitter
}

func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

func (m *MultiEmitter) Emit(ctx context.Context, e Event) {
	for _, em := range m.emitters {
		em.Emit(ctx, e)
	}
}
