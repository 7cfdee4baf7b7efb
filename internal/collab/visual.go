package collab

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"podium/internal/models"
)

// VisualGenerator is the synthetic gesture-analysis feed. There is no real
// computer vision behind it: sub-scores drift around a per-run baseline, the
// way the demo fakes CV output. Seedable for deterministic tests.
type VisualGenerator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	base float64
}

// NewVisualGenerator creates a generator with the given seed.
func NewVisualGenerator(seed int64) *VisualGenerator {
	rng := rand.New(rand.NewSource(seed))
	return &VisualGenerator{
		rng: rng,
		// Baseline presence somewhere between "nervous" and "confident"
		base: 55 + rng.Float64()*25,
	}
}

// Frame produces one synthetic VisualFeedback reading.
func (g *VisualGenerator) Frame() models.VisualFeedback {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Baseline wanders a little between frames
	g.base += g.rng.Float64()*6 - 3
	if g.base < 30 {
		g.base = 30
	}
	if g.base > 95 {
		g.base = 95
	}

	eyeContact := g.subScore()
	facial := g.subScore()
	posture := g.subScore()
	gestures := g.subScore()
	bodyLanguage := g.subScore()

	overall := int(math.Round(float64(eyeContact+facial+posture+gestures+bodyLanguage) / 5.0))

	return models.VisualFeedback{
		OverallScore:     models.ClampScore(overall),
		EyeContact:       eyeContact,
		FacialExpression: facial,
		Posture:          posture,
		Gestures:         gestures,
		BodyLanguage:     bodyLanguage,
		Timestamp:        time.Now(),
	}
}

func (g *VisualGenerator) subScore() int {
	return models.ClampScore(int(math.Round(g.base + g.rng.Float64()*20 - 10)))
}
