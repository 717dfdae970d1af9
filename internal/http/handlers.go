package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jvossman/gloat/internal/challenge"
	"github.com/jvossman/gloat/internal/duel"
	"github.com/jvossman/gloat/internal/identity"
	"github.com/jvossman/gloat/internal/invite"
	"github.com/jvossman/gloat/internal/leaderboard"
	"github.com/jvossman/gloat/internal/pubsub"
	"github.com/jvossman/gloat/internal/ranking"
)

const (
	challengeCacheKey = "challenges:active"
	challengeCacheTTL = 5 * time.Minute
	duelListLimit     = 50
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain sentinel errors onto the HTTP status taxonomy and
// writes the structured error payload.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, leaderboard.ErrForbidden), errors.Is(err, duel.ErrWrongActor):
		status = http.StatusForbidden
	case errors.Is(err, challenge.ErrNotFound), errors.Is(err, duel.ErrNotFound), errors.Is(err, invite.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, duel.ErrWrongState), errors.Is(err, duel.ErrInvalidInput), errors.Is(err, invite.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, invite.ErrExpired), errors.Is(err, invite.ErrUsed):
		status = http.StatusGone
	}

	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: malformed JSON body", duel.ErrInvalidInput)
	}
	return nil
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// ListChallengesHandler serves the active challenge list, cached briefly
// since it changes rarely.
func (s *Server) ListChallengesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cached []challenge.Challenge
		hit, err := s.KV.GetJSON(challengeCacheKey, &cached)
		if err != nil {
			log.Warn("Challenge cache read failed", "error", err)
		}
		if hit {
			writeJSON(w, http.StatusOK, cached)
			return
		}

		challenges, err := s.Challenges.ListActive()
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.KV.SetJSON(challengeCacheKey, challenges, challengeCacheTTL); err != nil {
			log.Warn("Challenge cache write failed", "error", err)
		}
		writeJSON(w, http.StatusOK, challenges)
	}
}

func (s *Server) JoinChallengeHandler() http.HandlerFunc {
	type request struct {
		ChallengeSlug string `json:"challenge_slug"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		ch, err := s.Challenges.GetBySlug(req.ChallengeSlug)
		if err != nil {
			writeError(w, err)
			return
		}

		userID := userIDFromContext(r)
		created, err := s.Challenges.Join(ch.ID, userID)
		if err != nil {
			writeError(w, err)
			return
		}

		if created {
			// A new participant changes the board. Duplicate joins change
			// nothing, so they skip the invalidation and the event.
			s.Leaderboard.Invalidate(ch.Slug)
			s.publish(pubsub.EventChallengeJoined, pubsub.ChallengeEvent{
				ChallengeID:   ch.ID,
				ChallengeSlug: ch.Slug,
				UserID:        userID,
			})
		}

		log.Info("User joined challenge", "user", userID, "challenge", ch.Slug, "created", created)
		writeJSON(w, http.StatusOK, map[string]any{"joined": true, "created": created})
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.URL.Query().Get("challenge")
		if slug == "" {
			slug = challenge.AllSlug
		}

		resp, err := s.Leaderboard.Leaderboard(slug, userIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) CreateEntryHandler() http.HandlerFunc {
	type request struct {
		ChallengeSlug string     `json:"challenge_slug"`
		IsWin         bool       `json:"is_win"`
		Percentile    *int       `json:"percentile"`
		OccurredAt    *time.Time `json:"occurred_at"`
		ProofPath     string     `json:"proof_path"`
		Notes         string     `json:"notes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.ChallengeSlug == "" {
			writeError(w, fmt.Errorf("%w: challenge_slug is required", duel.ErrInvalidInput))
			return
		}
		if req.Percentile == nil {
			writeError(w, fmt.Errorf("%w: percentile is required", duel.ErrInvalidInput))
			return
		}
		if *req.Percentile < 0 || *req.Percentile > 100 {
			writeError(w, fmt.Errorf("%w: percentile must be between 0 and 100", duel.ErrInvalidInput))
			return
		}

		ch, err := s.Challenges.GetBySlug(req.ChallengeSlug)
		if err != nil {
			writeError(w, err)
			return
		}

		occurredAt := time.Now()
		if req.OccurredAt != nil {
			occurredAt = *req.OccurredAt
		}

		userID := userIDFromContext(r)
		entry := &ranking.Entry{
			ChallengeID: ch.ID,
			UserID:      userID,
			OccurredAt:  occurredAt,
			IsWin:       req.IsWin,
			Percentile:  *req.Percentile,
			ProofPath:   req.ProofPath,
			Notes:       req.Notes,
		}
		if err := s.Challenges.InsertEntry(entry); err != nil {
			writeError(w, err)
			return
		}

		s.Metrics.IncEntriesLogged()
		s.Leaderboard.Invalidate(ch.Slug)
		s.publish(pubsub.EventEntryLogged, pubsub.ChallengeEvent{
			ChallengeID:   ch.ID,
			ChallengeSlug: ch.Slug,
			UserID:        userID,
		})

		log.Info("Entry logged", "user", userID, "challenge", ch.Slug, "win", req.IsWin)
		writeJSON(w, http.StatusOK, entry)
	}
}

func (s *Server) ListDuelsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		duels, err := s.Duels.ListForUser(userIDFromContext(r), duelListLimit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, duels)
	}
}

func (s *Server) CreateDuelHandler() http.HandlerFunc {
	type request struct {
		ChallengeID  string `json:"challenge_id"`
		ChallengedID string `json:"challenged_id"`
		ScoringType  string `json:"scoring_type"`
		Notes        string `json:"notes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		d, err := s.Duels.Create(req.ChallengeID, userIDFromContext(r), req.ChallengedID, duel.ScoringType(req.ScoringType), req.Notes)
		if err != nil {
			writeError(w, err)
			return
		}

		log.Info("Duel created", "duel", d.ID, "challenger", d.ChallengerID, "challenged", d.ChallengedID)
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) GetDuelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := s.Duels.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if !d.Participant(userIDFromContext(r)) {
			writeError(w, fmt.Errorf("%w: only duel participants can view it", duel.ErrWrongActor))
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) DuelActionHandler() http.HandlerFunc {
	type request struct {
		Action          string `json:"action"`
		WinnerID        string `json:"winner_id"`
		ChallengerScore *int   `json:"challenger_score"`
		ChallengedScore *int   `json:"challenged_score"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		d, err := s.Duels.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}

		prev := d.Status
		input := duel.CompleteInput{
			WinnerID:        req.WinnerID,
			ChallengerScore: req.ChallengerScore,
			ChallengedScore: req.ChallengedScore,
		}
		if err := duel.Apply(d, duel.Action(req.Action), userIDFromContext(r), input, time.Now()); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Duels.Transition(d, prev); err != nil {
			writeError(w, err)
			return
		}

		s.Metrics.IncDuelTransitions(req.Action)
		if d.Status == duel.StatusCompleted {
			s.publish(pubsub.EventDuelCompleted, pubsub.DuelCompleted{DuelID: d.ID})
		}

		log.Info("Duel transitioned", "duel", d.ID, "action", req.Action, "status", d.Status)
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) ParticipantDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.URL.Query().Get("challenge")
		if slug == "" {
			slug = challenge.AllSlug
		}

		detail, err := s.Leaderboard.ParticipantDetail(slug, r.PathValue("userId"), userIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) GetInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := s.Invites.Get(r.PathValue("token"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := inv.Usable(time.Now()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func (s *Server) ClaimInviteHandler() http.HandlerFunc {
	type request struct {
		Email string `json:"email"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		inv, err := s.Invites.Claim(r.PathValue("token"), req.Email, time.Now())
		if err != nil {
			writeError(w, err)
			return
		}

		log.Info("Invite claimed", "invite", inv.ID, "name", inv.DisplayName)
		writeJSON(w, http.StatusOK, inv)
	}
}

// PubSubEventsHandler receives Pub/Sub push deliveries for all event topics.
// The subscription name carries the event type.
func (s *Server) PubSubEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received pubsub push", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		switch eventFromSubscription(pubsubMsg.Subscription) {
		case pubsub.EventDuelCompleted:
			var payload pubsub.DuelCompleted
			if err := s.pubsub.ProcessMessage(rawData, &payload); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
			d, err := s.Duels.Get(payload.DuelID)
			if err != nil {
				log.Error("Failed to load completed duel", "duel", payload.DuelID, "error", err)
				http.Error(w, "Unknown duel", http.StatusBadRequest)
				return
			}
			if err := s.Notifier.SendDuelResult(d, isDryRun); err != nil {
				log.Error("Failed to notify duel result", "duel", d.ID, "error", err)
			}
		case pubsub.EventEntryLogged, pubsub.EventChallengeJoined:
			var payload pubsub.ChallengeEvent
			if err := s.pubsub.ProcessMessage(rawData, &payload); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
			// Other instances of the service share cache state through this
			// invalidation.
			s.Leaderboard.Invalidate(payload.ChallengeSlug)
		default:
			log.Warn("Push from unknown subscription", "subscription", pubsubMsg.Subscription)
		}

		w.Write([]byte("OK"))
	}
}

func eventFromSubscription(subscription string) pubsub.EventType {
	for _, event := range []pubsub.EventType{pubsub.EventDuelCompleted, pubsub.EventEntryLogged, pubsub.EventChallengeJoined} {
		if strings.Contains(subscription, string(event)) {
			return event
		}
	}
	return ""
}

// publish sends an event after the authoritative write. Publish failures are
// logged and swallowed; events are best-effort.
func (s *Server) publish(topic pubsub.EventType, data any) {
	if err := s.pubsub.SendMessage(topic, data); err != nil {
		log.Error("Failed to publish event", "topic", topic, "error", err)
	}
}
