package models

import (
	"time"
)

// SpeechFeedback is one critique result pushed by the speech collaborator,
// typically once per transcribed utterance or chunk. The rating core only
// consumes OverallScore; the sub-scores are carried for display.
type SpeechFeedback struct {
	OverallScore int       `json:"overallScore"`
	Tone         int       `json:"tone"`
	Pace         int       `json:"pace"`
	FillerWords  int       `json:"fillerWords"`
	Clarity      int       `json:"clarity"`
	Summary      string    `json:"summary,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// VisualFeedback is one gesture-analysis result pushed by the visual
// collaborator, typically once per analyzed frame batch. Same opacity rule
// as SpeechFeedback: only OverallScore feeds the rating math.
type VisualFeedback struct {
	OverallScore     int       `json:"overallScore"`
	EyeContact       int       `json:"eyeContact"`
	FacialExpression int       `json:"facialExpression"`
	Posture          int       `json:"posture"`
	Gestures         int       `json:"gestures"`
	BodyLanguage     int       `json:"bodyLanguage"`
	Timestamp        time.Time `json:"timestamp"`
}

// SessionRecord is one bounded recording interval. EndTime stays 0 while the
// session is active; CombinedScore is set exactly once at finalization and is
// immutable afterwards.
type SessionRecord struct {
	SessionID      string           `json:"sessionId"`
	UserID         string           `json:"userId"`
	StartTime      int64            `json:"startTime"` // ms since epoch
	EndTime        int64            `json:"endTime"`   // 0 while active
	Duration       float64          `json:"duration"`  // seconds, set at finalization
	SpeechFeedback []SpeechFeedback `json:"speechFeedback"`
	VisualFeedback []VisualFeedback `json:"visualFeedback"`
	CombinedScore  int              `json:"combinedScore"`
}

// SessionSummary is the result of ending a session.
type SessionSummary struct {
	SessionID      string  `json:"sessionId"`
	CombinedScore  int     `json:"combinedScore"`
	AvgSpeechScore float64 `json:"avgSpeechScore"`
	AvgVisualScore float64 `json:"avgVisualScore"`
	Duration       float64 `json:"duration"`
	OldRating      int     `json:"oldRating"`
	NewRating      int     `json:"newRating"`
	RatingDelta    int     `json:"ratingDelta"`
	Category       string  `json:"category"`
}

// RatingUpdate is published on the rating_updates channel after each
// finalized session.
type RatingUpdate struct {
	UserID        string    `json:"userId"`
	SessionID     string    `json:"sessionId"`
	OldRating     int       `json:"oldRating"`
	NewRating     int       `json:"newRating"`
	Change        int       `json:"change"`
	CombinedScore int       `json:"combinedScore"`
	Timestamp     time.Time `json:"timestamp"`
}

type StartSessionReq struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId,omitempty"`
}

type EndSessionReq struct {
	UserID string `json:"userId"`
}

type SpeechFeedbackReq struct {
	UserID   string         `json:"userId"`
	Feedback SpeechFeedback `json:"feedback"`
}

type VisualFeedbackReq struct {
	UserID   string         `json:"userId"`
	Feedback VisualFeedback `json:"feedback"`
}

type TranscriptReq struct {
	UserID     string `json:"userId"`
	Transcript string `json:"transcript"`
}

type Resp struct {
	OK   bool        `json:"ok"`
	Info interface{} `json:"info"`
}

type StartSessionResp struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	Rating    int    `json:"rating"`
	Category  string `json:"category"`
}

type RatingResp struct {
	UserID            string `json:"userId"`
	Rating            int    `json:"rating"`
	Category          string `json:"category"`
	SessionsCompleted int    `json:"sessionsCompleted"`
}

// FeedbackFrame is one message pushed over the live WebSocket by a producer.
type FeedbackFrame struct {
	Type   string         `json:"type"` // speech_feedback | visual_feedback
	Speech SpeechFeedback `json:"speech,omitempty"`
	Visual VisualFeedback `json:"visual,omitempty"`
}

// ClampScore bounds a 0-100 signal coming from upstream AI output. The core
// always produces a score rather than rejecting bad collaborator data.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
