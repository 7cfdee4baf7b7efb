package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCritiqueClient_EmptyURLIsNil(t *testing.T) {
	assert.Nil(t, NewCritiqueClient(""))
	assert.NotNil(t, NewCritiqueClient("http://localhost:9000"))
}

func TestCritique_DecodesFeedback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/critique", r.URL.Path)

		var req struct {
			Transcript string `json:"transcript"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello everyone", req.Transcript)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"overallScore":82,"tone":85,"pace":78,"fillerWords":90,"clarity":75,"summary":"confident opener"}`))
	}))
	t.Cleanup(srv.Close)

	cc := NewCritiqueClient(srv.URL)
	fb, err := cc.Critique(context.Background(), "hello everyone")
	assert.NoError(t, err)
	assert.Equal(t, 82, fb.OverallScore)
	assert.Equal(t, 85, fb.Tone)
	assert.Equal(t, "confident opener", fb.Summary)
	assert.False(t, fb.Timestamp.IsZero())
}

func TestCritique_ClampsOutOfRangeScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"overallScore":140,"tone":-5,"pace":50,"fillerWords":101,"clarity":100}`))
	}))
	t.Cleanup(srv.Close)

	cc := NewCritiqueClient(srv.URL)
	fb, err := cc.Critique(context.Background(), "x")
	assert.NoError(t, err)
	assert.Equal(t, 100, fb.OverallScore)
	assert.Equal(t, 0, fb.Tone)
	assert.Equal(t, 50, fb.Pace)
	assert.Equal(t, 100, fb.FillerWords)
}

func TestCritique_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cc := NewCritiqueClient(srv.URL)
	_, err := cc.Critique(context.Background(), "x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "critique")
}

func TestCritique_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	t.Cleanup(srv.Close)

	cc := NewCritiqueClient(srv.URL)
	_, err := cc.Critique(context.Background(), "x")
	assert.Error(t, err)
}
