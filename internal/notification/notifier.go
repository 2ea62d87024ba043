package notification

import (
	"encoding/json"
	"time"

	"neuromatch/internal/domain/match"
	"neuromatch/internal/ws"

	"go.uber.org/zap"
)

// Event types pushed over the websocket stream. match_proposed goes to the
// candidate when a match materializes; new_candidate_match goes to the
// company once the candidate accepts.
const (
	EventMatchProposed     = "match_proposed"
	EventNewCandidateMatch = "new_candidate_match"
	EventCandidateWithdrew = "candidate_withdrew"
	EventMatchExpired      = "match_expired"
)

// Notifier delivers best-effort user notifications. Failures never affect
// the operation that triggered them.
type Notifier interface {
	NewMatch(candidateID string, m match.Match)
	MatchAccepted(companyID string, m match.Match)
	CandidateWithdrew(companyID, connectionID string)
	MatchExpired(candidateID, matchID string)
}

type newMatchEvent struct {
	Type      string  `json:"type"`
	MatchID   string  `json:"matchId"`
	JobID     string  `json:"jobId"`
	Score     float64 `json:"score"`
	ExpiresAt string  `json:"expiresAt"`
	Timestamp string  `json:"timestamp"`
}

type acceptedEvent struct {
	Type      string  `json:"type"`
	MatchID   string  `json:"matchId"`
	JobID     string  `json:"jobId"`
	Score     float64 `json:"score"`
	Timestamp string  `json:"timestamp"`
}

type withdrawalEvent struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId"`
	Timestamp    string `json:"timestamp"`
}

type expiredEvent struct {
	Type      string `json:"type"`
	MatchID   string `json:"matchId"`
	Timestamp string `json:"timestamp"`
}

// HubNotifier pushes events through the websocket hub. Offline users simply
// miss the push; the underlying state is always queryable over HTTP.
type HubNotifier struct {
	hub    *ws.Hub
	logger *zap.Logger
	now    func() time.Time
}

func NewHubNotifier(hub *ws.Hub, logger *zap.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, logger: logger, now: time.Now}
}

func (n *HubNotifier) NewMatch(candidateID string, m match.Match) {
	n.send(candidateID, newMatchEvent{
		Type:      EventMatchProposed,
		MatchID:   m.ID,
		JobID:     m.JobID,
		Score:     m.Score,
		ExpiresAt: m.ExpiresAt.UTC().Format(time.RFC3339),
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
}

func (n *HubNotifier) MatchAccepted(companyID string, m match.Match) {
	n.send(companyID, acceptedEvent{
		Type:      EventNewCandidateMatch,
		MatchID:   m.ID,
		JobID:     m.JobID,
		Score:     m.Score,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
}

func (n *HubNotifier) CandidateWithdrew(companyID, connectionID string) {
	n.send(companyID, withdrawalEvent{
		Type:         EventCandidateWithdrew,
		ConnectionID: connectionID,
		Timestamp:    n.now().UTC().Format(time.RFC3339),
	})
}

func (n *HubNotifier) MatchExpired(candidateID, matchID string) {
	n.send(candidateID, expiredEvent{
		Type:      EventMatchExpired,
		MatchID:   matchID,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
}

func (n *HubNotifier) send(userID string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("notification encode failed", zap.Error(err))
		return
	}
	n.hub.SendToUser(userID, payload)
}

// NopNotifier is used when the websocket hub is disabled.
type NopNotifier struct{}

func (NopNotifier) NewMatch(string, match.Match)      {}
func (NopNotifier) MatchAccepted(string, match.Match) {}
func (NopNotifier) CandidateWithdrew(string, string)  {}
func (NopNotifier) MatchExpired(string, string)       {}
