package collab

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisualGenerator_ScoresInRange(t *testing.T) {
	g := NewVisualGenerator(1)

	for i := 0; i < 200; i++ {
		fb := g.Frame()

		for name, score := range map[string]int{
			"overall":      fb.OverallScore,
			"eyeContact":   fb.EyeContact,
			"facial":       fb.FacialExpression,
			"posture":      fb.Posture,
			"gestures":     fb.Gestures,
			"bodyLanguage": fb.BodyLanguage,
		} {
			assert.GreaterOrEqual(t, score, 0, name)
			assert.LessOrEqual(t, score, 100, name)
		}
	}
}

func TestVisualGenerator_OverallIsMeanOfSubScores(t *testing.T) {
	g := NewVisualGenerator(7)

	for i := 0; i < 20; i++ {
		fb := g.Frame()
		mean := float64(fb.EyeContact+fb.FacialExpression+fb.Posture+fb.Gestures+fb.BodyLanguage) / 5.0
		assert.Equal(t, int(math.Round(mean)), fb.OverallScore)
	}
}

func TestVisualGenerator_DeterministicForSeed(t *testing.T) {
	g1 := NewVisualGenerator(42)
	g2 := NewVisualGenerator(42)

	for i := 0; i < 50; i++ {
		a := g1.Frame()
		b := g2.Frame()

		assert.Equal(t, a.OverallScore, b.OverallScore)
		assert.Equal(t, a.EyeContact, b.EyeContact)
		assert.Equal(t, a.FacialExpression, b.FacialExpression)
		assert.Equal(t, a.Posture, b.Posture)
		assert.Equal(t, a.Gestures, b.Gestures)
		assert.Equal(t, a.BodyLanguage, b.BodyLanguage)
	}
}
