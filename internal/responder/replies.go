package responder

import (
	"html"
	"strings"
)

// Link is a hyperlink embedded at the end of a reply.
type Link struct {
	Label string `toml:"label" yaml:"label"`
	URL   string `toml:"url" yaml:"url"`
}

// Reply is a catalogue entry: plain text with an optional trailing link.
type Reply struct {
	Text string `toml:"text" yaml:"text"`
	Link *Link  `toml:"link" yaml:"link"`
}

// String renders the reply. The link becomes an <a> element with its label
// and URL escaped; the text itself is emitted as is.
func (r Reply) String() string {
	if r.Link == nil {
		return r.Text
	}

	var b strings.Builder
	b.WriteString(r.Text)
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(r.Link.URL))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(r.Link.Label))
	b.WriteString(`</a>`)
	return b.String()
}

// IsZero reports whether the entry carries no text and no link.
func (r Reply) IsZero() bool {
	return r.Text == "" && r.Link == nil
}

// Replies holds every literal the bot can say.
type Replies struct {
	// Welcome seeds a fresh transcript.
	Welcome       Reply `toml:"welcome" yaml:"welcome"`
	Greeting      Reply `toml:"greeting" yaml:"greeting"`
	Programs      Reply `toml:"programs" yaml:"programs"`
	Requirements  Reply `toml:"requirements" yaml:"requirements"`
	Registration  Reply `toml:"registration" yaml:"registration"`
	NotUnderstood Reply `toml:"not_understood" yaml:"not_understood"`
}

// DefaultReplies is the built-in catalogue used when no config file overrides it.
var DefaultReplies = Replies{
	Welcome: Reply{
		Text: "👋 Hi! Welcome to TESDA Chatbot. Type 'help' to see options.",
	},
	Greeting: Reply{
		Text: "👋 Hello! How can I help you today?",
	},
	Programs: Reply{
		Text: "📦 You can See available Community Based-Trainings here: ",
		Link: &Link{
			Label: "Available CBT Programs",
			URL:   "https://docs.google.com/spreadsheets/d/e/2PACX-1vSFbhD901AR_TCRJ__OcfOBR-I6hBphNo4ai1Djy_e9VPeAYMBba-E8TnPLE91jNeyeewG-VrPdAfns/pubhtml",
		},
	},
	Requirements: Reply{
		Text: "📝 Here are the requirements for the application for Community Based Training.",
	},
	Registration: Reply{
		Text: "📝 To Register Kindly click this link:",
		Link: &Link{
			Label: "CBT Registration Form",
			URL:   "https://docs.google.com/forms/d/e/1FAIpQLSfMMWs-PyeHqGMyQBp9DvhqCZBZyEkPjKsbUrSk6sut_4OPRw/viewform?usp=dialog",
		},
	},
	NotUnderstood: Reply{
		Text: "❓ Sorry, I didn’t understand that. Please choose an option below or type 'help'.",
	},
}

// WithDefaults returns r with every empty entry taken from d.
func (r Replies) WithDefaults(d Replies) Replies {
	fill := func(dst *Reply, src Reply) {
		if dst.IsZero() {
			*dst = src
		}
	}

	fill(&r.Welcome, d.Welcome)
	fill(&r.Greeting, d.Greeting)
	fill(&r.Programs, d.Programs)
	fill(&r.Requirements, d.Requirements)
	fill(&r.Registration, d.Registration)
	fill(&r.NotUnderstood, d.NotUnderstood)
	return r
}

// Entries lists the catalogue by config key, in declaration order.
func (r Replies) Entries() []NamedReply {
	return []NamedReply{
		{Name: "welcome", Reply: r.Welcome},
		{Name: "greeting", Reply: r.Greeting},
		{Name: "programs", Reply: r.Programs},
		{Name: "requirements", Reply: r.Requirements},
		{Name: "registration", Reply: r.Registration},
		{Name: "not_understood", Reply: r.NotUnderstood},
	}
}

// NamedReply pairs a catalogue entry with its config key.
type NamedReply struct {
	Name  string
	Reply Reply
}
