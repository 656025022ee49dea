package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j0lvera/cbtbot/internal/config"
	"github.com/j0lvera/cbtbot/internal/responder"
)

func TestDecode_TOML(t *testing.T) {
	t.Parallel()
	src := `
[replies.greeting]
text = "Hey there!"

[replies.registration]
text = "Sign up: "
link = { label = "Form", url = "https://example.com/form" }
`
	fc, err := config.Decode(strings.NewReader(src), ".toml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if fc.Replies.Greeting.Text != "Hey there!" {
		t.Errorf("greeting = %q", fc.Replies.Greeting.Text)
	}
	link := fc.Replies.Registration.Link
	if link == nil || link.Label != "Form" || link.URL != "https://example.com/form" {
		t.Errorf("registration link = %+v", link)
	}
	if !fc.Replies.Programs.IsZero() {
		t.Errorf("programs should be empty, got %+v", fc.Replies.Programs)
	}
}

func TestDecode_YAML(t *testing.T) {
	t.Parallel()
	src := `
replies:
  welcome:
    text: "Welcome!"
  programs:
    text: "Programs: "
    link:
      label: "List"
      url: "https://example.com/list"
`
	fc, err := config.Decode(strings.NewReader(src), ".yaml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if fc.Replies.Welcome.Text != "Welcome!" {
		t.Errorf("welcome = %q", fc.Replies.Welcome.Text)
	}
	if got := fc.Replies.Programs.String(); got != `Programs: <a href="https://example.com/list">List</a>` {
		t.Errorf("programs = %q", got)
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ext  string
		src  string
	}{
		{"toml", ".toml", "[replies.farewell]\ntext = \"bye\"\n"},
		{"yaml", ".yml", "replies:\n  farewell:\n    text: bye\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.Decode(strings.NewReader(tt.src), tt.ext); err == nil {
				t.Fatal("expected error for unknown key, got nil")
			}
		})
	}
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	t.Parallel()
	_, err := config.Decode(strings.NewReader("{}"), ".json")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Config{ConfigFile: filepath.Join(t.TempDir(), "absent.toml")}

	if err := cfg.LoadFile(); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Replies != responder.DefaultReplies {
		t.Errorf("expected default replies, got %+v", cfg.Replies)
	}
}

func TestLoadFile_MergesOverDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[replies.requirements]\ntext = \"Bring an ID.\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{ConfigFile: path}
	if err := cfg.LoadFile(); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Replies.Requirements.Text != "Bring an ID." {
		t.Errorf("requirements = %q", cfg.Replies.Requirements.Text)
	}
	if cfg.Replies.Greeting != responder.DefaultReplies.Greeting {
		t.Errorf("greeting should fall back to default, got %+v", cfg.Replies.Greeting)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("TYPING_DELAY", "0s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := config.Config{}.LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.TypingDelay != 0 {
		t.Errorf("TypingDelay = %s, want 0", cfg.TypingDelay)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.SessionIdleTTL != time.Hour {
		t.Errorf("SessionIdleTTL = %s, want default 1h", cfg.SessionIdleTTL)
	}
	if cfg.ConfigFile != "config.toml" {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

func TestLoadEnv_NoOriginsByDefault(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := config.Config{}.LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want none", cfg.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() config.Config {
		return config.Config{
			HTTPAddr:               ":8080",
			SessionIdleTTL:         time.Hour,
			SessionCleanupInterval: time.Minute,
			Replies:                responder.DefaultReplies,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"telegram only", func(c *config.Config) { c.HTTPAddr = ""; c.TelegramToken = "t" }, ""},
		{"no host", func(c *config.Config) { c.HTTPAddr = "" }, "no host enabled"},
		{"zero ttl", func(c *config.Config) { c.SessionIdleTTL = 0 }, "SESSION_IDLE_TTL"},
		{"explicit origins", func(c *config.Config) { c.AllowedOrigins = []string{"https://chat.example.org"} }, ""},
		{"wildcard origin", func(c *config.Config) { c.AllowedOrigins = []string{"https://a.test", "*"} }, "ALLOWED_ORIGINS"},
		{"negative delay", func(c *config.Config) { c.TypingDelay = -time.Second }, "TYPING_DELAY"},
		{
			"empty link url",
			func(c *config.Config) { c.Replies.Programs.Link = &responder.Link{Label: "x"} },
			"replies.programs.link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	t.Parallel()
	f, err := os.Open(filepath.Join("..", "..", "config.example.toml"))
	if err != nil {
		t.Fatalf("open example: %v", err)
	}
	defer f.Close()

	fc, err := config.Decode(f, ".toml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got := fc.Replies.WithDefaults(responder.DefaultReplies)
	for i, e := range got.Entries() {
		want := responder.DefaultReplies.Entries()[i]
		if e.Reply.String() != want.Reply.String() {
			t.Errorf("%s = %q, want %q", e.Name, e.Reply.String(), want.Reply.String())
		}
	}
}
