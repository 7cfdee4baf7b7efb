package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"podium/internal/models"
)

// CritiqueClient talks to the external LLM critique service that turns a
// transcript into speech feedback.
type CritiqueClient struct {
	baseURL string
	c       *http.Client
}

// NewCritiqueClient returns nil when no service URL is configured, so callers
// can treat the speech collaborator as absent.
func NewCritiqueClient(baseURL string) *CritiqueClient {
	if baseURL == "" {
		return nil
	}
	return &CritiqueClient{
		baseURL: baseURL,
		c:       &http.Client{Timeout: 30 * time.Second},
	}
}

type critiqueReq struct {
	Transcript string `json:"transcript"`
}

// Critique scores a transcript via the critique service. Scores in the
// response are clamped to 0-100 before they reach the rating core.
func (cc *CritiqueClient) Critique(ctx context.Context, transcript string) (*models.SpeechFeedback, error) {
	body, err := json.Marshal(critiqueReq{Transcript: transcript})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cc.baseURL+"/critique", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cc.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("critique %s: %s", resp.Status, string(msg))
	}

	var out models.SpeechFeedback
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("critique decode: %w", err)
	}

	out.OverallScore = models.ClampScore(out.OverallScore)
	out.Tone = models.ClampScore(out.Tone)
	out.Pace = models.ClampScore(out.Pace)
	out.FillerWords = models.ClampScore(out.FillerWords)
	out.Clarity = models.ClampScore(out.Clarity)
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}

	return &out, nil
}
