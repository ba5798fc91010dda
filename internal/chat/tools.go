package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/graph/tool"
)

// ToolExecutor runs the tool the router selected and records its output.
//
// Tool problems never fail a turn. An unknown tool name and a tool that
// errors both become descriptive result text for the responder to relay.
type ToolExecutor struct {
	registry *tool.Registry
	logger   *zap.Logger
}

// NewToolExecutor builds the tool node over a registry.
func NewToolExecutor(registry *tool.Registry, logger *zap.Logger) *ToolExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolExecutor{
		registry: registry,
		logger:   logger.With(zap.String("component", "tools")),
	}
}

// Run executes state.ToolName with state.ToolArgs.
func (t *ToolExecutor) Run(ctx context.Context, state State) (State, error) {
	result, err := t.registry.Call(ctx, state.ToolName, state.ToolArgs)
	if err != nil {
		var unknown *tool.UnknownToolError
		if errors.As(err, &unknown) {
			result = fmt.Sprintf("Unknown tool: %s. Available tools: %s",
				unknown.Name, strings.Join(t.registry.Names(), ", "))
		} else {
			result = fmt.Sprintf("The %s tool failed: %v", state.ToolName, err)
		}
		t.logger.Warn("tool call failed",
			zap.String("tool", state.ToolName),
			zap.Error(err))
	} else {
		t.logger.Debug("tool call succeeded", zap.String("tool", state.ToolName))
	}

	return State{ToolResult: result}, nil
}

// EmailTool tells visitors how to contact the portfolio owner by email.
type EmailTool struct {
	ownerName string
	email     string
}

// NewEmailTool builds the email tool. An empty address is allowed; the tool
// then reports that email contact is not set up.
func NewEmailTool(ownerName, email string) *EmailTool {
	return &EmailTool{ownerName: displayOwner(ownerName), email: email}
}

func (t *EmailTool) Name() string { return "email" }

func (t *EmailTool) Description() string { return "For sending messages or contact requests" }

func (t *EmailTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	if strings.TrimSpace(t.email) == "" {
		return fmt.Sprintf("Email contact is not set up yet. Please check back later for ways to reach %s.", t.ownerName), nil
	}
	return fmt.Sprintf("To get in touch with %s, send your message to %s. You can expect a reply within a few days.", t.ownerName, t.email), nil
}

// CalendarTool tells visitors how to book a meeting with the owner.
type CalendarTool struct {
	ownerName   string
	bookingLink string
}

// NewCalendarTool builds the calendar tool. An empty booking link is
// allowed; the tool then reports that scheduling is not set up.
func NewCalendarTool(ownerName, bookingLink string) *CalendarTool {
	return &CalendarTool{ownerName: displayOwner(ownerName), bookingLink: bookingLink}
}

func (t *CalendarTool) Name() string { return "calendar" }

func (t *CalendarTool) Description() string { return "For scheduling or booking meetings" }

func (t *CalendarTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	if strings.TrimSpace(t.bookingLink) == "" {
		return fmt.Sprintf("Meeting scheduling is not set up yet. Please reach out to %s by email instead.", t.ownerName), nil
	}
	return fmt.Sprintf("You can book a meeting with %s here: %s. Pick any open slot that works for you.", t.ownerName, t.bookingLink), nil
}
