package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
)

const endpointChat = "/chat"

// chatRequest is the POST /chat body. History carries prior turns in wire
// order: strictly alternating roles beginning with "user".
type chatRequest struct {
	Transcript  string              `json:"transcript"`
	Question    string              `json:"question"`
	ChatHistory []analysis.ChatTurn `json:"chat_history"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Chat calls POST /chat with the question and prior history and returns the
// assistant's answer. The caller decides how to degrade on transport errors;
// this method reports them faithfully.
func (c *APIClient) Chat(ctx context.Context, transcript, question string, history []analysis.ChatTurn) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("transcript is empty: %w", rerrors.ErrValidation)
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question is empty: %w", rerrors.ErrValidation)
	}

	if history == nil {
		history = []analysis.ChatTurn{}
	}

	var resp chatResponse
	req := chatRequest{Transcript: transcript, Question: question, ChatHistory: history}
	if err := c.postJSON(ctx, endpointChat, req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}
