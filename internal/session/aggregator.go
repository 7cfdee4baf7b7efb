package session

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"podium/internal/models"
	"podium/internal/rating"
)

const (
	// Weighting of modality averages in the combined score
	SpeechWeight = 0.7
	VisualWeight = 0.3
)

// Aggregator owns session lifecycle, score combination and rating commits.
// One session may be active per user at a time; speech and visual producers
// may append feedback concurrently.
type Aggregator struct {
	mu      sync.Mutex
	ratings *rating.Store

	// Par opponent rating the combined score is measured against
	opponentRating int

	active       map[string]*models.SessionRecord
	history      map[string][]*models.SessionRecord
	latestSpeech map[string]*models.SpeechFeedback
	latestVisual map[string]*models.VisualFeedback
}

// NewAggregator creates an aggregator backed by the given rating store.
func NewAggregator(ratings *rating.Store) *Aggregator {
	return &Aggregator{
		ratings:        ratings,
		opponentRating: rating.ParRating,
		active:         make(map[string]*models.SessionRecord),
		history:        make(map[string][]*models.SessionRecord),
		latestSpeech:   make(map[string]*models.SpeechFeedback),
		latestVisual:   make(map[string]*models.VisualFeedback),
	}
}

// StartSession begins a new session for the user. A second start while one is
// active is rejected rather than silently superseding the in-progress record.
func (a *Aggregator) StartSession(userID, sessionID string) (*models.SessionRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, inProgress := a.active[userID]; inProgress {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, userID)
	}

	rec := &models.SessionRecord{
		SessionID:      sessionID,
		UserID:         userID,
		StartTime:      time.Now().UnixMilli(),
		SpeechFeedback: []models.SpeechFeedback{},
		VisualFeedback: []models.VisualFeedback{},
	}

	a.active[userID] = rec
	// Most-recent-first; the in-progress head is the only mutable entry.
	a.history[userID] = append([]*models.SessionRecord{rec}, a.history[userID]...)

	log.Printf("[Session] Started session %s for user %s", sessionID, userID)
	return rec, nil
}

// RecordSpeechFeedback appends a speech critique to the active session.
// No-op when the user has no active session.
func (a *Aggregator) RecordSpeechFeedback(userID string, fb models.SpeechFeedback) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, inProgress := a.active[userID]
	if !inProgress {
		return
	}

	fb.OverallScore = models.ClampScore(fb.OverallScore)
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now()
	}

	rec.SpeechFeedback = append(rec.SpeechFeedback, fb)
	a.latestSpeech[userID] = &fb
}

// RecordVisualFeedback appends a gesture-analysis result to the active
// session. No-op when the user has no active session.
func (a *Aggregator) RecordVisualFeedback(userID string, fb models.VisualFeedback) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, inProgress := a.active[userID]
	if !inProgress {
		return
	}

	fb.OverallScore = models.ClampScore(fb.OverallScore)
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now()
	}

	rec.VisualFeedback = append(rec.VisualFeedback, fb)
	a.latestVisual[userID] = &fb
}

// EndSession finalizes the active session: combines accumulated feedback into
// a single 0-100 score, commits the rating update, and leaves the finalized
// record in history. A repeat call returns ErrNoActiveSession and never
// applies the rating update twice.
func (a *Aggregator) EndSession(userID string) (*models.SessionSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, inProgress := a.active[userID]
	if !inProgress {
		return nil, fmt.Errorf("%w: %s", ErrNoActiveSession, userID)
	}

	endTime := time.Now().UnixMilli()
	duration := float64(endTime-rec.StartTime) / 1000.0

	avgSpeech := averageSpeechScore(rec.SpeechFeedback)
	avgVisual := averageVisualScore(rec.VisualFeedback)
	combined := CombineScores(avgSpeech, avgVisual)

	info, err := a.ratings.GetUserRating(userID)
	if err != nil {
		// Session stays active; the caller may retry EndSession.
		return nil, fmt.Errorf("failed to get rating for %s: %w", userID, err)
	}

	k := rating.KFactor(info.SessionsCompleted)
	newRating := rating.UpdateRating(info.Rating, combined, a.opponentRating, k)
	delta := newRating - info.Rating

	if err := a.ratings.SetUserRating(userID, newRating, info.SessionsCompleted+1); err != nil {
		return nil, fmt.Errorf("failed to commit rating for %s: %w", userID, err)
	}

	rec.EndTime = endTime
	rec.Duration = duration
	rec.CombinedScore = combined
	delete(a.active, userID)

	update := &models.RatingUpdate{
		UserID:        userID,
		SessionID:     rec.SessionID,
		OldRating:     info.Rating,
		NewRating:     newRating,
		Change:        delta,
		CombinedScore: combined,
		Timestamp:     time.Now(),
	}
	a.ratings.PublishUpdate(update)

	log.Printf("[Session] Ended session %s for user %s: score=%d rating %d -> %d (Δ%d)",
		rec.SessionID, userID, combined, info.Rating, newRating, delta)

	return &models.SessionSummary{
		SessionID:      rec.SessionID,
		CombinedScore:  combined,
		AvgSpeechScore: avgSpeech,
		AvgVisualScore: avgVisual,
		Duration:       duration,
		OldRating:      info.Rating,
		NewRating:      newRating,
		RatingDelta:    delta,
		Category:       rating.RatingCategory(newRating),
	}, nil
}

// SessionHistory returns a copied view of the user's sessions,
// most-recent-first. The head entry may still be in progress (EndTime 0).
func (a *Aggregator) SessionHistory(userID string) []models.SessionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := a.history[userID]
	out := make([]models.SessionRecord, 0, len(records))
	for _, rec := range records {
		cp := *rec
		cp.SpeechFeedback = append([]models.SpeechFeedback{}, rec.SpeechFeedback...)
		cp.VisualFeedback = append([]models.VisualFeedback{}, rec.VisualFeedback...)
		out = append(out, cp)
	}
	return out
}

// CurrentRating returns the user's persisted rating info.
func (a *Aggregator) CurrentRating(userID string) (*rating.UserRatingInfo, error) {
	return a.ratings.GetUserRating(userID)
}

// LatestFeedback returns the most recent feedback per modality, for live
// display. Either result may be nil.
func (a *Aggregator) LatestFeedback(userID string) (*models.SpeechFeedback, *models.VisualFeedback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latestSpeech[userID], a.latestVisual[userID]
}

// Active reports whether the user has a session in progress.
func (a *Aggregator) Active(userID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, inProgress := a.active[userID]
	return inProgress
}

// CombineScores merges per-modality averages into one 0-100 score. Speech
// dominates at 70/30 when both modalities reported; a zero average means "no
// data" for that modality, so the other one carries the score alone.
func CombineScores(avgSpeech, avgVisual float64) int {
	switch {
	case avgSpeech > 0 && avgVisual > 0:
		return int(math.Round(avgSpeech*SpeechWeight + avgVisual*VisualWeight))
	case avgVisual > 0:
		return int(math.Round(avgVisual))
	default:
		return int(math.Round(avgSpeech))
	}
}

func averageSpeechScore(feedback []models.SpeechFeedback) float64 {
	if len(feedback) == 0 {
		return 0
	}
	sum := 0
	for _, fb := range feedback {
		sum += fb.OverallScore
	}
	return float64(sum) / float64(len(feedback))
}

func averageVisualScore(feedback []models.VisualFeedback) float64 {
	if len(feedback) == 0 {
		return 0
	}
	sum := 0
	for _, fb := range feedback {
		sum += fb.OverallScore
	}
	return float64(sum) / float64(len(feedback))
}
