package session

import "testing"

func TestSnapshot_SkipsMalformedEntries(t *testing.T) {
	e := New(ReplierFunc(func(s string) (string, error) { return s, nil }))

	e.transcript = append(e.transcript,
		Entry{Speaker: "", Text: "no speaker"},
		Entry{Speaker: SpeakerUser, Text: "ok"},
		Entry{Speaker: "system", Text: "unknown speaker"},
		Entry{Speaker: SpeakerBot, Text: "ok"},
	)

	got := e.Snapshot()
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(got), got)
	}
	for _, entry := range got {
		if entry.Speaker != SpeakerUser && entry.Speaker != SpeakerBot {
			t.Errorf("malformed entry leaked: %+v", entry)
		}
	}
}
