// Package httpapi exposes the retrieval pipeline over HTTP: POST /ask
// (buffered), POST /ask/stream (SSE), POST /feedback, and GET /healthz.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/pipeline"
	"cloudfuze.com/retriever/internal/retriever/registry"
)

// askRequest is the POST body for /ask and /ask/stream.
type askRequest struct {
	Question  string `json:"question"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	TraceID   string            `json:"trace_id"`
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
	Refused   bool              `json:"refused"`
}

type feedbackRequest struct {
	TraceID string `json:"trace_id"`
	UserID  string `json:"user_id"`
	Rating  string `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// NewMux builds the routing table. The /ask, /ask/stream and /feedback
// handlers enforce that the authenticated user (from the Authorization
// header, validated upstream by middleware not in this module's scope)
// matches the request body's user_id, returning 401 when the header is
// missing and 403 on mismatch (spec §6.1). /healthz is not authenticated.
func NewMux(reg *registry.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthzHandler(reg))
	mux.HandleFunc("POST /ask", askHandler(reg))
	mux.HandleFunc("POST /ask/stream", askStreamHandler(reg))
	mux.HandleFunc("POST /feedback", feedbackHandler(reg))
	return mux
}

func healthzHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func decodeAskRequest(w http.ResponseWriter, r *http.Request) (askRequest, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return askRequest{}, false
	}
	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return askRequest{}, false
	}
	if writeAuthError(w, checkAuth(r, req.UserID)) {
		return askRequest{}, false
	}
	return req, true
}

// authResult distinguishes a missing Authorization header (401) from a
// present one whose subject disagrees with the requested user_id (403).
type authResult int

const (
	authOK authResult = iota
	authMissing
	authMismatch
)

// checkAuth enforces that the bearer token's subject matches the requested
// user_id. The token itself is opaque here — validating its signature is an
// upstream auth-gateway concern outside the retriever's scope.
func checkAuth(r *http.Request, userID string) authResult {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return authMissing
	}
	subject := strings.TrimPrefix(auth, "Bearer ")
	if subject != userID && userID != "" {
		return authMismatch
	}
	return authOK
}

// writeAuthError writes the appropriate 401/403 response for a non-OK
// authResult and reports whether it did so.
func writeAuthError(w http.ResponseWriter, result authResult) bool {
	switch result {
	case authMissing:
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return true
	case authMismatch:
		http.Error(w, "forbidden", http.StatusForbidden)
		return true
	default:
		return false
	}
}

func askHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeAskRequest(w, r)
		if !ok {
			return
		}

		traceID := uuid.NewString()
		var answer strings.Builder
		var citations []domain.Citation
		var refused bool

		tr := pipeline.Ask(r.Context(), reg, pipeline.Request{
			TraceID: traceID, UserID: req.UserID, SessionID: req.SessionID, Question: req.Question,
		}, func(e domain.StreamEvent) {
			switch e.Kind {
			case domain.EventToken:
				answer.WriteString(e.Token)
			case domain.EventDone:
				citations = e.Citations
				refused = e.Refused
			}
		})

		status := http.StatusOK
		if tr.Status == domain.StatusErrored {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(askResponse{
			TraceID: traceID, Answer: answer.String(), Citations: citations, Refused: refused,
		})
	}
}

func askStreamHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeAskRequest(w, r)
		if !ok {
			return
		}

		fl, canFlush := w.(http.Flusher)
		if !canFlush {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		var mu sync.Mutex
		writeSSE := func(event string, payload any) {
			b, err := json.Marshal(payload)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			w.Write([]byte("event: " + event + "\ndata: " + string(b) + "\n\n"))
			fl.Flush()
		}

		traceID := uuid.NewString()
		ctx := r.Context()
		pipeline.Ask(ctx, reg, pipeline.Request{
			TraceID: traceID, UserID: req.UserID, SessionID: req.SessionID, Question: req.Question,
		}, func(e domain.StreamEvent) {
			switch e.Kind {
			case domain.EventStatus:
				writeSSE("status", map[string]string{"tag": string(e.Tag), "message": e.Message})
			case domain.EventToken:
				writeSSE("token", map[string]string{"token": e.Token})
			case domain.EventDone:
				writeSSE("done", map[string]any{"trace_id": e.TraceID, "citations": e.Citations, "refused": e.Refused})
			case domain.EventError:
				writeSSE("error", map[string]string{"message": e.Message})
			}
		})
	}
}

func feedbackHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.TraceID == "" || req.UserID == "" {
			http.Error(w, "trace_id and user_id are required", http.StatusBadRequest)
			return
		}
		if writeAuthError(w, checkAuth(r, req.UserID)) {
			return
		}
		if reg.Feedback == nil {
			http.Error(w, "feedback store unavailable", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		err := reg.Feedback.Store.Upsert(ctx, domain.Feedback{
			TraceID: req.TraceID, UserID: req.UserID, Rating: domain.Rating(req.Rating), Comment: req.Comment,
		})
		if err != nil {
			log.Error().Err(err).Str("trace_id", req.TraceID).Msg("feedback_upsert_error")
			http.Error(w, "failed to record feedback", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}
}
