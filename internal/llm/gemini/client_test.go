package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
	"github.com/joseph-ayodele/nutrition-extractor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFallback struct {
	got string
}

func (s *stubFallback) Extract(text string) (entity.AllergenRecord, entity.NutrientRecord) {
	s.got = text
	var a entity.AllergenRecord
	a.Set("gluten", true)
	n := entity.NewNutrientRecord()
	n.Set("energy", "250 kcal")
	return a, n
}

func replyWith(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, fb *stubFallback) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	var tf llm.TextFallback
	if fb != nil {
		tf = fb
	}
	c := NewClient(Config{BaseURL: srv.URL, Model: "test-model", Temperature: 0.1}, tf, nil)
	return c, srv
}

func TestExtractSendsContract(t *testing.T) {
	var body map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "k-123", r.URL.Query().Get("key"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = io.WriteString(w, replyWith("```json\n{\"allergens\":{\"milk\":true},\"nutrients\":{\"fat\":\"5 g\"}}\n```"))
	}, nil)

	out, err := c.Extract(context.Background(), "Tej, Zsír 5 g", "k-123")
	require.NoError(t, err)
	assert.Equal(t, true, out.Allergens["milk"])
	assert.Equal(t, "5 g", out.Nutrients["fat"])

	gen := body["generationConfig"].(map[string]any)
	assert.InDelta(t, 0.1, gen["temperature"], 1e-6)
	assert.EqualValues(t, 1000, gen["maxOutputTokens"])
	parts := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	assert.Contains(t, parts[0].(map[string]any)["text"], "Tej, Zsír 5 g")
}

func TestExtractMissingCredentialMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, nil)

	out, err := c.Extract(context.Background(), "text", "  ")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrLLMTransport)
	assert.Empty(t, out.Allergens)
	assert.Empty(t, out.Nutrients)
	assert.Zero(t, calls.Load())
}

func TestExtractNon200IsTransportError(t *testing.T) {
	for _, code := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusInternalServerError} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = io.WriteString(w, replyWith(`{"allergens":{},"nutrients":{}}`))
		}, nil)

		out, err := c.Extract(context.Background(), "text", "key")
		assert.ErrorIs(t, err, common.ErrLLMTransport, "status %d", code)
		assert.Empty(t, out.Nutrients)
	}
}

func TestExtractTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, nil)

	start := time.Now()
	out, err := c.Extract(context.Background(), "text", "key")
	assert.ErrorIs(t, err, common.ErrLLMTransport)
	assert.Empty(t, out.Allergens)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExtractNoCandidates(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}, nil)

	_, err := c.Extract(context.Background(), "text", "key")
	assert.ErrorIs(t, err, common.ErrLLMTransport)
}

func TestExtractNonJSONReplyUsesFallback(t *testing.T) {
	fb := &stubFallback{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, replyWith("Energy: 250 kcal, contains gluten"))
	}, fb)

	out, err := c.Extract(context.Background(), "text", "key")
	require.NoError(t, err)
	assert.Equal(t, "Energy: 250 kcal, contains gluten", fb.got)
	assert.Equal(t, true, out.Allergens["gluten"])
	assert.Equal(t, "250 kcal", out.Nutrients["energy"])
	assert.Equal(t, "N/A", out.Nutrients["fat"])
}

func TestExtractListSectionsBecomeEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, replyWith(`{"allergens":[],"nutrients":{"protein":"3 g"}}`))
	}, nil)

	out, err := c.Extract(context.Background(), "text", "key")
	require.NoError(t, err)
	assert.Empty(t, out.Allergens)
	assert.Equal(t, "3 g", out.Nutrients["protein"])
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{}, nil, nil)
	assert.Equal(t, defaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, defaultModel, c.cfg.Model)
	assert.Equal(t, defaultMaxTokens, c.cfg.MaxOutputTokens)
	assert.Contains(t, c.endpoint("a b"), "key=a+b")
}
