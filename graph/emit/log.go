package emit

import "go.uber.org/zap"

// LogEmitter writes events to a zap logger, one entry per event. Error
// events (run_error, node_error) log at warn so they surface under the
// usual production log level; everything else logs at debug to keep
// per-turn noise out of info logs.
type LogEmitter struct {
	log *zap.Logger
}

// NewLogEmitter wraps log in an emitter. A nil logger discards events.
func NewLogEmitter(log *zap.Logger) *LogEmitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogEmitter{log: log}
}

// Emit implements Emitter.
func (l *LogEmitter) Emit(event Event) {
	fields := make([]zap.Field, 0, 3+len(event.Meta))
	fields = append(fields, zap.String("run_id", event.RunID), zap.Int("step", event.Step))
	if event.NodeID != "" {
		fields = append(fields, zap.String("node", event.NodeID))
	}
	for key, value := range event.Meta {
		fields = append(fields, zap.Any(key, value))
	}

	switch event.Msg {
	case MsgRunError, MsgNodeError:
		l.log.Warn(event.Msg, fields...)
	default:
		l.log.Debug(event.Msg, fields...)
	}
}
