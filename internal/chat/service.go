package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/graph"
	"github.com/zelalem61/personal-chat-bot/graph/emit"
	"github.com/zelalem61/personal-chat-bot/graph/store"
	"github.com/zelalem61/personal-chat-bot/internal/llm"
)

// DefaultThreadID names the conversation used when a request leaves the
// thread unspecified.
const DefaultThreadID = "default"

// MaxMessageLen bounds user messages, counted in characters.
const MaxMessageLen = 4000

// Reply is the outcome of one completed chat turn.
type Reply struct {
	Response string
	ThreadID string
}

// ValidationError reports a rejected user message. Handlers treat it as a
// client error rather than a server failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ValidateMessage checks a user message against the service's input rules.
// HTTP handlers call it up front so a bad request is rejected before any
// response bytes are committed.
func ValidateMessage(message string) error {
	if message == "" {
		return &ValidationError{Reason: "Message cannot be empty"}
	}
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return &ValidationError{Reason: fmt.Sprintf("Message too long (max %d characters)", MaxMessageLen)}
	}
	return nil
}

// Service runs chat turns: it loads the thread's checkpoint, executes the
// compiled graph with the new user message appended, and persists the
// grown conversation. Turns on the same thread are serialized; different
// threads run concurrently.
type Service struct {
	graph   *graph.Compiled[State]
	store   store.Store[State]
	emitter emit.Emitter
	metrics *graph.Metrics
	locks   *threadLocks
	logger  *zap.Logger
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithEmitter attaches an emitter that observes every run's events in
// addition to any per-request stream sink. A nil emitter is ignored.
func WithEmitter(e emit.Emitter) ServiceOption {
	return func(s *Service) {
		if e != nil {
			s.emitter = e
		}
	}
}

// WithMetrics attaches engine metrics shared across runs.
func WithMetrics(m *graph.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the chat service over a compiled graph and a
// checkpoint store.
func NewService(g *graph.Compiled[State], st store.Store[State], logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		graph:   g,
		store:   st,
		emitter: emit.NullEmitter{},
		locks:   newThreadLocks(),
		logger:  logger.With(zap.String("component", "chat")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send runs one chat turn and returns the assistant's reply.
func (s *Service) Send(ctx context.Context, threadID, message string) (*Reply, error) {
	return s.run(ctx, threadID, message, nil)
}

// Stream runs one chat turn, forwarding every engine event to sink as the
// run progresses. sink is called from a single goroutine; Stream returns
// only after the last event has been delivered.
func (s *Service) Stream(ctx context.Context, threadID, message string, sink func(emit.Event)) (*Reply, error) {
	return s.run(ctx, threadID, message, sink)
}

func (s *Service) run(ctx context.Context, threadID, message string, sink func(emit.Event)) (*Reply, error) {
	if err := ValidateMessage(message); err != nil {
		return nil, err
	}
	if threadID == "" {
		threadID = DefaultThreadID
	}

	release := s.locks.acquire(threadID)
	defer release()

	prior, err := s.store.Load(ctx, threadID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	seed := Reduce(State{Messages: prior.Messages}, State{
		Messages: []Message{{Role: llm.RoleUser, Content: message}},
	})

	runID := uuid.NewString()
	s.logger.Debug("starting turn",
		zap.String("thread_id", threadID),
		zap.String("run_id", runID))

	emitter := s.emitter
	var (
		channel *emit.ChannelEmitter
		wg      sync.WaitGroup
	)
	if sink != nil {
		channel = emit.NewChannelEmitter(64)
		emitter = emit.Multi(s.emitter, channel)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range channel.Events() {
				sink(ev)
			}
		}()
	}

	engine := graph.NewEngine(s.graph,
		graph.WithEmitter(emitter),
		graph.WithMetrics(s.metrics))

	final, runErr := engine.Run(ctx, runID, seed)

	if channel != nil {
		channel.Close()
		wg.Wait()
	}
	if runErr != nil {
		return nil, fmt.Errorf("run %s: %w", runID, runErr)
	}

	// Node-level failures are absorbed inside the graph, but guard the
	// contract here too: a turn never ends without user-visible text.
	if strings.TrimSpace(final.FinalResponse) == "" {
		final = Reduce(final, State{
			Messages:      []Message{{Role: llm.RoleAssistant, Content: fallbackResponse}},
			FinalResponse: fallbackResponse,
		})
	}

	if err := s.store.Save(ctx, threadID, State{Messages: final.Messages}); err != nil {
		// The reply is already generated; a lost checkpoint costs history,
		// not this turn.
		s.logger.Error("checkpoint save failed",
			zap.String("thread_id", threadID),
			zap.Error(err))
	}

	return &Reply{Response: final.FinalResponse, ThreadID: threadID}, nil
}

// History returns the persisted conversation for a thread, oldest first. A
// thread with no checkpoint yields an empty history.
func (s *Service) History(ctx context.Context, threadID string) ([]Message, error) {
	if threadID == "" {
		threadID = DefaultThreadID
	}
	state, err := s.store.Load(ctx, threadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}
	return state.Messages, nil
}

// Reset deletes a thread's checkpoint so the next turn starts fresh.
// Resetting an unknown thread is a no-op.
func (s *Service) Reset(ctx context.Context, threadID string) error {
	if threadID == "" {
		threadID = DefaultThreadID
	}
	if err := s.store.Delete(ctx, threadID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete thread %s: %w", threadID, err)
	}
	return nil
}

// Ping reports whether the checkpoint store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
