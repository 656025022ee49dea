// Package responder maps user input to canned replies using an ordered,
// first-match-wins rule table.
package responder

import (
	"slices"
	"strings"
)

// Rule names reported by Match.
const (
	RuleGreeting     = "greeting"
	RulePrograms     = "programs"
	RuleRequirements = "requirements"
	RuleRegistration = "registration"
	RuleFallback     = "fallback"
)

// Rule pairs a matcher with the reply it produces.
type Rule struct {
	Name  string
	Match func(input string) bool
	Reply string
}

// Responder evaluates a fixed rule table. It holds no mutable state and is
// safe for concurrent use.
type Responder struct {
	rules    []Rule
	fallback string
}

var greetings = []string{"hi", "hello", "hey", "start"}

// New builds the rule table from the reply catalogue. Empty catalogue entries
// fall back to DefaultReplies.
func New(replies Replies) *Responder {
	replies = replies.WithDefaults(DefaultReplies)

	// Order matters: a message containing both "Requirements" and "Register"
	// must resolve to the requirements reply.
	rules := []Rule{
		{
			Name: RuleGreeting,
			Match: func(s string) bool {
				return slices.Contains(greetings, s)
			},
			Reply: replies.Greeting.String(),
		},
		{
			Name: RulePrograms,
			Match: func(s string) bool {
				return strings.Contains(s, "Available CBT Programs") || s == "available cbt programs"
			},
			Reply: replies.Programs.String(),
		},
		{
			Name: RuleRequirements,
			Match: func(s string) bool {
				return strings.Contains(s, "Requirements") || s == "Requirements"
			},
			Reply: replies.Requirements.String(),
		},
		{
			Name: RuleRegistration,
			Match: func(s string) bool {
				return strings.Contains(s, "talk to agent") || s == "Register"
			},
			Reply: replies.Registration.String(),
		},
	}

	return &Responder{
		rules:    rules,
		fallback: replies.NotUnderstood.String(),
	}
}

// Respond returns the reply for input. It never fails.
func (r *Responder) Respond(input string) string {
	if rule, ok := r.match(input); ok {
		return rule.Reply
	}
	return r.fallback
}

// Reply adapts Respond to the (reply, error) form sessions expect. The
// error is always nil.
func (r *Responder) Reply(input string) (string, error) {
	return r.Respond(input), nil
}

// Match reports the name of the rule that answers input, or RuleFallback.
func (r *Responder) Match(input string) string {
	if rule, ok := r.match(input); ok {
		return rule.Name
	}
	return RuleFallback
}

// Rules returns a copy of the rule table in evaluation order.
func (r *Responder) Rules() []Rule {
	return slices.Clone(r.rules)
}

func (r *Responder) match(input string) (Rule, bool) {
	input = strings.TrimSpace(input)
	for _, rule := range r.rules {
		if rule.Match(input) {
			return rule, true
		}
	}
	return Rule{}, false
}
