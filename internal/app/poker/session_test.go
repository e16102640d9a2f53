package poker

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

// Test sessions are driven without a WebSocket connection: admit, handleFrame
// and retire never touch the conn, and frames are read straight from the
// session's outbox.

var testVoteOptions = []float64{0, 1, 2, 3, 5, 8}

func connect(t *testing.T, reg *Registry, room, user string) *Session {
	t.Helper()
	s := NewSession(reg, nil, RoomToken(room), UserToken(user), testVoteOptions)
	s.admit()
	return s
}

func readFrame(t *testing.T, s *Session) (string, []byte) {
	t.Helper()
	select {
	case frame, ok := <-s.outbox.Deliveries():
		if !ok {
			t.Fatal("outbox closed while a frame was expected")
		}
		parts := bytes.SplitN(frame, []byte(" "), 2)
		if len(parts) != 2 {
			t.Fatalf("malformed outbound frame: %q", frame)
		}
		return string(parts[0]), parts[1]
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound frame")
	}
	return "", nil
}

func expectFrame(t *testing.T, s *Session, word string) []byte {
	t.Helper()
	got, body := readFrame(t, s)
	if got != word {
		t.Fatalf("frame word = %q, want %q (body %s)", got, word, body)
	}
	return body
}

func expectNoFrame(t *testing.T, s *Session) {
	t.Helper()
	select {
	case frame, ok := <-s.outbox.Deliveries():
		if ok {
			t.Fatalf("unexpected outbound frame: %q", frame)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func decodeConfig(t *testing.T, body []byte) configView {
	t.Helper()
	var v configView
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("invalid config payload %s: %v", body, err)
	}
	return v
}

func decodeRoster(t *testing.T, body []byte) rosterView {
	t.Helper()
	var v rosterView
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("invalid users payload %s: %v", body, err)
	}
	return v
}

func decodeStories(t *testing.T, body []byte) storiesView {
	t.Helper()
	var v storiesView
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("invalid stories payload %s: %v", body, err)
	}
	return v
}

// drainAdmission consumes the initial sync of a fresh connection and
// returns its config view.
func drainAdmission(t *testing.T, s *Session) configView {
	t.Helper()
	cfg := decodeConfig(t, expectFrame(t, s, frameConfig))
	expectFrame(t, s, frameUsers)
	expectFrame(t, s, frameStories)
	return cfg
}

func TestFirstUserBecomesOwner(t *testing.T) {
	reg := NewRegistry()
	a := connect(t, reg, "room", "tok-a")

	cfg := decodeConfig(t, expectFrame(t, a, frameConfig))
	if cfg.Me == "" {
		t.Fatal("config view carries no public id")
	}
	if cfg.Owner != cfg.Me {
		t.Errorf("owner = %q, want the first admitted user %q", cfg.Owner, cfg.Me)
	}
	if len(cfg.VoteOptions) != len(testVoteOptions) {
		t.Errorf("vote options = %v, want %v", cfg.VoteOptions, testVoteOptions)
	}
	if cfg.RoomCreationTime == "" {
		t.Error("config view carries no room creation time")
	}

	roster := decodeRoster(t, expectFrame(t, a, frameUsers))
	if len(roster.Users) != 1 {
		t.Fatalf("roster has %d entries, want 1", len(roster.Users))
	}
	entry := roster.Users[0]
	if !entry.IsThis || !entry.IsActive {
		t.Errorf("roster entry = %+v, want is_this and is_active true", entry)
	}
	if entry.PublicID != cfg.Me {
		t.Errorf("roster public id %q does not match config me %q", entry.PublicID, cfg.Me)
	}

	stories := decodeStories(t, expectFrame(t, a, frameStories))
	if len(stories.Stories) != 0 {
		t.Errorf("fresh room has %d stories, want 0", len(stories.Stories))
	}
	if stories.ActiveStory != nil {
		t.Errorf("fresh room has active story %q, want none", *stories.ActiveStory)
	}
}

func TestRosterIsObserverRelative(t *testing.T) {
	reg := NewRegistry()
	a := connect(t, reg, "room", "tok-a")
	drainAdmission(t, a)

	b := connect(t, reg, "room", "tok-b")
	bCfg := drainAdmission(t, b)

	// a was already connected, so it receives the updated roster too.
	roster := decodeRoster(t, expectFrame(t, a, frameUsers))
	expectFrame(t, a, frameStories)

	if len(roster.Users) != 2 {
		t.Fatalf("roster has %d entries, want 2", len(roster.Users))
	}
	for _, entry := range roster.Users {
		wantThis := entry.PublicID != bCfg.Me
		if entry.IsThis != wantThis {
			t.Errorf("entry %q is_this = %v from a's viewpoint, want %v", entry.PublicID, entry.IsThis, wantThis)
		}
	}
}

func TestIdentityStableAcrossReconnects(t *testing.T) {
	reg := NewRegistry()

	first := connect(t, reg, "room", "tok-a")
	firstCfg := drainAdmission(t, first)
	first.retire()

	second := connect(t, reg, "room", "tok-a")
	secondCfg := drainAdmission(t, second)
	if secondCfg.Me != firstCfg.Me {
		t.Errorf("reconnect with same token got public id %q, want %q", secondCfg.Me, firstCfg.Me)
	}

	third := connect(t, reg, "room", "tok-b")
	thirdCfg := drainAdmission(t, third)
	expectFrame(t, second, frameUsers) // roster update caused by the third admission
	if thirdCfg.Me == firstCfg.Me {
		t.Error("different token must get a different public id")
	}
}

func TestRetirementKeepsUserRecord(t *testing.T) {
	reg := NewRegistry()
	a := connect(t, reg, "room", "tok-a")
	drainAdmission(t, a)

	b := connect(t, reg, "room", "tok-b")
	bCfg := drainAdmission(t, b)
	expectFrame(t, a, frameUsers)
	expectFrame(t, a, frameStories)

	b.retire()

	roster := decodeRoster(t, expectFrame(t, a, frameUsers))
	if len(roster.Users) != 2 {
		t.Fatalf("roster after retirement has %d entries, want 2 (record kept)", len(roster.Users))
	}
	for _, entry := range roster.Users {
		if entry.PublicID == bCfg.Me && entry.IsActive {
			t.Error("retired user still marked active")
		}
	}
	expectNoFrame(t, b)
}

func TestReconnectResumesVotes(t *testing.T) {
	reg := NewRegistry()
	a := connect(t, reg, "room", "tok-a")
	drainAdmission(t, a)

	a.handleFrame([]byte(`stories {"stories":[{"story_url":"u1","story_description":"d1"}]}`))
	stories := decodeStories(t, expectFrame(t, a, frameStories))
	storyID := stories.Stories[0].ID

	a.handleFrame([]byte(`vote {"story_uuid":"` + string(storyID) + `","vote":{"Value":5}}`))
	expectFrame(t, a, frameStories)

	a.retire()

	again := connect(t, reg, "room", "tok-a")
	cfg := decodeConfig(t, expectFrame(t, again, frameConfig))
	expectFrame(t, again, frameUsers)
	stories = decodeStories(t, expectFrame(t, again, frameStories))

	got, ok := stories.Stories[0].Votes[cfg.Me]
	if !ok {
		t.Fatal("vote lost across reconnect")
	}
	if got != NumericVote(5) {
		t.Errorf("resumed vote = %+v, want Value 5", got)
	}
}

func TestStaleRetirementDoesNotDeactivateReconnectedUser(t *testing.T) {
	reg := NewRegistry()
	old := connect(t, reg, "room", "tok-a")
	drainAdmission(t, old)

	// Same token reconnects before the old connection is torn down. The
	// admission replaces the user's outbox, so the old connection's
	// retirement must treat itself as stale.
	fresh := connect(t, reg, "room", "tok-a")
	drainAdmission(t, fresh)

	old.retire()

	reg.View("room", func(r *Room) {
		u := r.Users["tok-a"]
		if u == nil {
			t.Fatal("user record missing")
		}
		if !u.Active {
			t.Error("stale retirement must not deactivate the reconnected user")
		}
		if u.sender != fresh.outbox {
			t.Error("stale retirement must not detach the fresh outbox")
		}
	})
}
