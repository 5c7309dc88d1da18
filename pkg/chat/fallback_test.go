package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestResponder_RuleOrder verifies first-match-wins routing over the fixed
// rule list.
func TestResponder_RuleOrder(t *testing.T) {
	r := NewResponder()

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"david concern", "What concerns did David raise?", answerConcern},
		{"david concern case-insensitive", "DAVID had a CONCERN?", answerConcern},
		{"action items", "List the action items", answerActions},
		{"tasks", "Who got which task?", answerActions},
		{"decisions", "What decisions were made?", answerDecisions},
		{"no match", "How long was the meeting?", answerDefault},
		{"empty question", "", answerDefault},
		// david+concern outranks the action rule even when both match.
		{"overlapping rules", "Did David's concern become an action item?", answerConcern},
		// "david" alone without "concern" falls through.
		{"david without concern", "What did David say about tasks?", answerActions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Answer(tt.question))
		})
	}
}

// TestResponder_Deterministic verifies repeated calls return identical text.
func TestResponder_Deterministic(t *testing.T) {
	r := NewResponder()
	assert.Equal(t, r.Answer("what happened?"), r.Answer("what happened?"))
}
