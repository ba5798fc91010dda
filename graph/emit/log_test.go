package emit

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogEmitter_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	emitter := NewLogEmitter(zap.New(core))

	emitter.Emit(Event{RunID: "run-001", Step: 1, NodeID: "router", Msg: MsgNodeStart})
	emitter.Emit(Event{RunID: "run-001", Step: 1, NodeID: "router", Msg: MsgNodeError, Meta: map[string]interface{}{
		"error": "model unavailable",
	}})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}

	if entries[0].Level != zapcore.DebugLevel {
		t.Errorf("expected node_start at debug, got %v", entries[0].Level)
	}
	if entries[0].Message != MsgNodeStart {
		t.Errorf("expected message %q, got %q", MsgNodeStart, entries[0].Message)
	}

	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("expected node_error at warn, got %v", entries[1].Level)
	}
	fields := entries[1].ContextMap()
	if fields["run_id"] != "run-001" {
		t.Errorf("expected run_id field, got %v", fields)
	}
	if fields["node"] != "router" {
		t.Errorf("expected node field, got %v", fields)
	}
	if fields["error"] != "model unavailable" {
		t.Errorf("expected error field from meta, got %v", fields)
	}
}

func TestLogEmitter_NilLogger(t *testing.T) {
	emitter := NewLogEmitter(nil)
	// Must not panic.
	emitter.Emit(Event{RunID: "run-001", Msg: MsgRunStart})
}
