package responder_test

import (
	"strings"
	"testing"

	"github.com/j0lvera/cbtbot/internal/responder"
)

func TestRespond_Greetings(t *testing.T) {
	t.Parallel()
	r := responder.New(responder.DefaultReplies)
	want := responder.DefaultReplies.Greeting.String()

	for _, in := range []string{"hi", "hello", "hey", "start", "  hi  ", "\thello\n"} {
		if got := r.Respond(in); got != want {
			t.Errorf("Respond(%q) = %q, want greeting %q", in, got, want)
		}
	}
}

func TestRespond_GreetingIsCaseSensitive(t *testing.T) {
	t.Parallel()
	r := responder.New(responder.DefaultReplies)
	fallback := responder.DefaultReplies.NotUnderstood.String()

	for _, in := range []string{"Hi", "HELLO", "Hey", "Start", "hi there"} {
		if got := r.Respond(in); got != fallback {
			t.Errorf("Respond(%q) = %q, want fallback", in, got)
		}
	}
}

func TestRespond_Rules(t *testing.T) {
	t.Parallel()
	r := responder.New(responder.DefaultReplies)

	tests := []struct {
		name  string
		input string
		rule  string
	}{
		{"programs token", "Available CBT Programs", responder.RulePrograms},
		{"programs substring", "show me Available CBT Programs please", responder.RulePrograms},
		{"programs lowercase exact", "available cbt programs", responder.RulePrograms},
		{"programs lowercase substring", "list available cbt programs", responder.RuleFallback},
		{"requirements token", "Requirements", responder.RuleRequirements},
		{"requirements substring", "what are the Requirements?", responder.RuleRequirements},
		{"requirements lowercase", "requirements", responder.RuleFallback},
		{"register token", "Register", responder.RuleRegistration},
		{"register substring", "I want to Register now", responder.RuleFallback},
		{"talk to agent", "can I talk to agent", responder.RuleRegistration},
		{"talk to agent wrong case", "Talk To Agent", responder.RuleFallback},
		{"requirements before register", "Requirements and Register", responder.RuleRequirements},
		{"programs before requirements", "Available CBT Programs Requirements", responder.RulePrograms},
		{"empty", "", responder.RuleFallback},
		{"whitespace", "   ", responder.RuleFallback},
		{"gibberish", "xyz", responder.RuleFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Match(tt.input); got != tt.rule {
				t.Errorf("Match(%q) = %q, want %q", tt.input, got, tt.rule)
			}
		})
	}
}

func TestRespond_RequirementsWinsOverRegister(t *testing.T) {
	t.Parallel()
	r := responder.New(responder.DefaultReplies)

	got := r.Respond("Requirements and Register")
	if got != responder.DefaultReplies.Requirements.String() {
		t.Errorf("got %q, want requirements reply", got)
	}
}

func TestRespond_LinksRendered(t *testing.T) {
	t.Parallel()
	r := responder.New(responder.DefaultReplies)

	programs := r.Respond("Available CBT Programs")
	if !strings.Contains(programs, `">Available CBT Programs</a>`) {
		t.Errorf("programs reply missing link label: %q", programs)
	}
	if !strings.HasPrefix(programs, "📦 You can See available Community Based-Trainings here: <a href=\"https://docs.google.com/") {
		t.Errorf("programs reply has unexpected prefix: %q", programs)
	}

	register := r.Respond("Register")
	if !strings.Contains(register, `">CBT Registration Form</a>`) {
		t.Errorf("registration reply missing link label: %q", register)
	}
}

func TestReply_NeverErrors(t *testing.T) {
	t.Parallel()
	r := responder.New(responder.DefaultReplies)

	for _, in := range []string{"", "hi", "Register", "anything"} {
		reply, err := r.Reply(in)
		if err != nil {
			t.Errorf("Reply(%q) returned error: %v", in, err)
		}
		if reply != r.Respond(in) {
			t.Errorf("Reply(%q) = %q, Respond = %q", in, reply, r.Respond(in))
		}
	}
}

func TestNew_CustomRepliesKeepRuleOrder(t *testing.T) {
	t.Parallel()
	r := responder.New(responder.Replies{
		Greeting: responder.Reply{Text: "yo"},
	})

	if got := r.Respond("hey"); got != "yo" {
		t.Errorf("custom greeting: got %q, want %q", got, "yo")
	}
	if got := r.Respond("Requirements"); got != responder.DefaultReplies.Requirements.String() {
		t.Errorf("missing entries should fall back to defaults, got %q", got)
	}

	rules := r.Rules()
	want := []string{
		responder.RuleGreeting,
		responder.RulePrograms,
		responder.RuleRequirements,
		responder.RuleRegistration,
	}
	if len(rules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(rules), len(want))
	}
	for i, name := range want {
		if rules[i].Name != name {
			t.Errorf("rule %d = %q, want %q", i, rules[i].Name, name)
		}
	}
}

func TestReply_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply responder.Reply
		want  string
	}{
		{"text only", responder.Reply{Text: "plain"}, "plain"},
		{
			"with link",
			responder.Reply{Text: "see ", Link: &responder.Link{Label: "here", URL: "https://example.com"}},
			`see <a href="https://example.com">here</a>`,
		},
		{
			"escapes link parts",
			responder.Reply{Link: &responder.Link{Label: "<b>", URL: `https://x.test/?a=1&b="2"`}},
			`<a href="https://x.test/?a=1&amp;b=&#34;2&#34;">&lt;b&gt;</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reply.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsQuickAction(t *testing.T) {
	t.Parallel()

	for _, a := range responder.QuickActions {
		if !responder.IsQuickAction(a.Token) {
			t.Errorf("IsQuickAction(%q) = false, want true", a.Token)
		}
	}
	for _, tok := range []string{"", "register", "Help", "Available CBT Programs "} {
		if responder.IsQuickAction(tok) {
			t.Errorf("IsQuickAction(%q) = true, want false", tok)
		}
	}
}

func TestQuickActions_ReachTheirRules(t *testing.T) {
	t.Parallel()
	r := responder.New(responder.DefaultReplies)

	want := map[string]string{
		"Available CBT Programs": responder.RulePrograms,
		"Requirements":           responder.RuleRequirements,
		"Register":               responder.RuleRegistration,
	}
	for _, a := range responder.QuickActions {
		if got := r.Match(a.Token); got != want[a.Token] {
			t.Errorf("quick action %q matched %q, want %q", a.Token, got, want[a.Token])
		}
	}
}
