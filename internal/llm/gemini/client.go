package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"github.com/joseph-ayodele/nutrition-extractor/internal/llm"
)

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Extract implements llm.Gateway with a single generateContent call. It never
// retries. Transport problems return an empty envelope plus an LLMTransport
// error; a reply that is not JSON is handed to the text fallback instead.
func (c *Client) Extract(ctx context.Context, text, credential string) (llm.RawOutput, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	if strings.TrimSpace(credential) == "" {
		c.logger.Warn("llm.extract.no_credential", "req_id", rid)
		return llm.EmptyOutput(), common.LLMTransport("missing API credential", nil)
	}

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: llm.BuildPrompt(text)}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	}

	raw, status, err := llm.SendJSON(ctx, c.http, c.endpoint(credential), body, nil, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.EmptyOutput(), common.LLMTransport(fmt.Sprintf("gemini request failed (status %d)", status), err)
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.EmptyOutput(), common.LLMTransport("decode gemini response", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		c.logger.Error("llm.extract.no_candidates",
			"req_id", rid, "elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.EmptyOutput(), common.LLMTransport("no candidates in gemini response", nil)
	}

	reply := llm.StripCodeFence(resp.Candidates[0].Content.Parts[0].Text)
	out, err := c.parseReply(rid, reply)
	if err != nil {
		return out, err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"allergens", len(out.Allergens),
		"nutrients", len(out.Nutrients),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (c *Client) parseReply(rid, reply string) (llm.RawOutput, error) {
	// Schema mismatches are informational; field validation happens downstream.
	if err := llm.ValidateEnvelope([]byte(reply)); err != nil {
		c.logger.Warn("llm.extract.schema_mismatch", "req_id", rid, "error", err)
	}

	out, warnings, err := llm.DecodeEnvelope(reply)
	if err == nil {
		for _, w := range warnings {
			c.logger.Warn("llm.extract.lenient_section", "req_id", rid, "detail", w)
		}
		return out, nil
	}

	if c.fallback == nil {
		c.logger.Error("llm.extract.unparseable", "req_id", rid, "error", err)
		return llm.EmptyOutput(), common.LLMTransport("unparseable gemini reply", err)
	}
	c.logger.Warn("llm.extract.text_fallback_applied", "req_id", rid, "error", err, "reply_len", len(reply))
	allergens, nutrients := c.fallback.Extract(reply)
	return llm.FromRecords(allergens, nutrients), nil
}

func (c *Client) endpoint(credential string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.Model),
		url.QueryEscape(credential),
	)
}
