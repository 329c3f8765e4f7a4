package events

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// LogxEmitter writes every event as a structured logx line, grounded on
// the teacher's pervasive logx.WithContext(ctx).Infof/Errorf usage
// across its logic layer. Always wired in, independent of whether a
// durable sink is also configured.
type LogxEmitter struct{}

func NewLogxEmitter() *LogxEmitter {
	return &LogxEmitter{}
}

func (l *LogxEmitter) Emit(ctx context.Context, e Event) {
	logger := logx.WithContext(ctx)
	fields := []logx.LogField{
		logx.Field("client_id", e.ClientID),
		logx.Field("event_type", string(e.EventType)),
		logx.Field("outcome", string(e.Outcome)),
		logx.Field("source_addr", e.SourceAddr),
		logx.Field("correlation_id", e.CorrelationID),
		logx.Field("degraded", e.Degraded),
	}
	if e.Outcome == OutcomeFailure {
		logger.Errorw("authentication event", fields...)
		return
	}
	logger.Infow("authentication event", fields...)
}
