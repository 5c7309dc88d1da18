package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
)

// Backend endpoints for the three analysis calls.
const (
	endpointSummarize = "/summarize"
	endpointSentiment = "/analyze-sentiment"
	endpointCoaching  = "/coach-feedback"
)

// transcriptRequest is the shared request body for the analysis endpoints.
type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

// summarizeResponse carries the /summarize payload field. The field is kept
// as raw JSON because the backend may return a pre-parsed object or a
// serialized string; the normalizer resolves that exactly once.
type summarizeResponse struct {
	Summary json.RawMessage `json:"summary"`
}

type sentimentResponse struct {
	SentimentAnalysis json.RawMessage `json:"sentiment_analysis"`
}

type coachingResponse struct {
	CoachingFeedback json.RawMessage `json:"coaching_feedback"`
}

// Summarize calls POST /summarize and returns the resolved payload field.
func (c *APIClient) Summarize(ctx context.Context, transcript string) (analysis.Raw, error) {
	if strings.TrimSpace(transcript) == "" {
		return analysis.Raw{}, fmt.Errorf("transcript is empty: %w", rerrors.ErrValidation)
	}

	var resp summarizeResponse
	if err := c.postJSON(ctx, endpointSummarize, transcriptRequest{Transcript: transcript}, &resp); err != nil {
		return analysis.Raw{}, err
	}
	return analysis.ResolveRaw(resp.Summary), nil
}

// AnalyzeSentiment calls POST /analyze-sentiment and returns the resolved
// payload field.
func (c *APIClient) AnalyzeSentiment(ctx context.Context, transcript string) (analysis.Raw, error) {
	if strings.TrimSpace(transcript) == "" {
		return analysis.Raw{}, fmt.Errorf("transcript is empty: %w", rerrors.ErrValidation)
	}

	var resp sentimentResponse
	if err := c.postJSON(ctx, endpointSentiment, transcriptRequest{Transcript: transcript}, &resp); err != nil {
		return analysis.Raw{}, err
	}
	return analysis.ResolveRaw(resp.SentimentAnalysis), nil
}

// CoachFeedback calls POST /coach-feedback and returns the resolved payload
// field.
func (c *APIClient) CoachFeedback(ctx context.Context, transcript string) (analysis.Raw, error) {
	if strings.TrimSpace(transcript) == "" {
		return analysis.Raw{}, fmt.Errorf("transcript is empty: %w", rerrors.ErrValidation)
	}

	var resp coachingResponse
	if err := c.postJSON(ctx, endpointCoaching, transcriptRequest{Transcript: transcript}, &resp); err != nil {
		return analysis.Raw{}, err
	}
	return analysis.ResolveRaw(resp.CoachingFeedback), nil
}
