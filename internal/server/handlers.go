package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/graph/emit"
	"github.com/zelalem61/personal-chat-bot/internal/chat"
)

// ChatRequest is the body of POST /api/chat and /api/chat/stream.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

// ChatResponse is the body of a successful POST /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
	ThreadID string `json:"thread_id"`
}

// streamFrame is one SSE data payload. Type is "node" while the workflow
// runs, then "response" with the final text, or "error" when the run fails
// after the stream has started.
type streamFrame struct {
	Type     string `json:"type"`
	Node     string `json:"node,omitempty"`
	Step     int    `json:"step,omitempty"`
	Response string `json:"response,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Portfolio Bot API",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "portfolio-bot",
	})
}

func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":          "unhealthy",
			"bot_initialized": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"bot_initialized": true,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply, err := s.svc.Send(r.Context(), req.ThreadID, req.Message)
	if err != nil {
		var verr *chat.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		s.logger.Error("chat turn failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response: reply.Response,
		ThreadID: reply.ThreadID,
	})
}

// handleChatStream runs a turn while streaming progress as SSE frames: one
// "node" frame per completed workflow node, a "response" frame with the
// final text, then the literal "[DONE]" sentinel.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Reject bad input while a plain 400 is still possible.
	if err := chat.ValidateMessage(req.Message); err != nil {
		var verr *chat.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	reply, err := s.svc.Stream(r.Context(), req.ThreadID, req.Message, func(ev emit.Event) {
		if ev.Msg != emit.MsgNodeEnd {
			return
		}
		writeSSE(w, streamFrame{Type: "node", Node: ev.NodeID, Step: ev.Step})
		flusher.Flush()
	})
	if err != nil {
		// The stream is already open, so the failure travels in-band.
		s.logger.Error("chat stream failed", zap.Error(err))
		writeSSE(w, streamFrame{Type: "error", Error: "internal server error"})
	} else {
		writeSSE(w, streamFrame{Type: "response", Response: reply.Response, ThreadID: reply.ThreadID})
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}

func writeSSE(w http.ResponseWriter, frame streamFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
