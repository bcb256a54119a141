package state

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/livekit/protocol/livekit"
)

func TestNew_initialValues(t *testing.T) {
	s := New()
	defer s.Close()

	c := s.Connection.Get()
	if c.LiveKit != StatusDisconnected || c.WebSocket != StatusDisconnected || c.ErrorMessage != "" {
		t.Errorf("initial connection state = %+v", c)
	}
	if got := s.Scores.Get(); got.Phase != PhaseSemi {
		t.Errorf("initial phase = %q, want semi", got.Phase)
	}
	if s.Mode.Get() != PhaseSemi || s.Page.Get() != PageHome {
		t.Errorf("initial mode/page = %q/%q", s.Mode.Get(), s.Page.Get())
	}
	if g := s.Game1.Get(); g == nil || len(g) != 0 {
		t.Errorf("initial game1 view = %v, want empty non-nil map", g)
	}
}

func TestScores_finalRoundTrip(t *testing.T) {
	s := New()
	defer s.Close()

	data := ScoreData{Phase: PhaseFinal, Scores: Games{Final: GameScore{"ClassA": "10-8"}}}
	s.Scores.Set(data)

	got := s.Scores.Get()
	if got.Phase != PhaseFinal || got.Scores.Final["ClassA"] != "10-8" || len(got.Scores.Final) != 1 {
		t.Errorf("Scores.Get = %+v", got)
	}
	if f := s.Final.Get(); len(f) != 1 || f["ClassA"] != "10-8" {
		t.Errorf("final view = %v", f)
	}
	for name, view := range map[string]GameScore{"game1": s.Game1.Get(), "game2": s.Game2.Get()} {
		if view == nil || len(view) != 0 {
			t.Errorf("%s view = %v, want empty map", name, view)
		}
	}
}

func TestConnectionState_channelsIndependent(t *testing.T) {
	s := New()
	defer s.Close()

	s.Connection.Update(func(c ConnectionState) ConnectionState { return c.WithWebSocket(StatusConnected) })
	s.Connection.Update(func(c ConnectionState) ConnectionState { return c.WithLiveKit(StatusConnecting) })

	c := s.Connection.Get()
	if c.WebSocket != StatusConnected || c.LiveKit != StatusConnecting {
		t.Errorf("connection state = %+v", c)
	}

	c = c.WithError("boom")
	if c.WebSocket != StatusError || c.ErrorMessage != "boom" || c.LiveKit != StatusConnecting {
		t.Errorf("WithError = %+v", c)
	}
}

func TestGameScore_UnmarshalJSON_numbers(t *testing.T) {
	var d ScoreData
	in := `{"phase":"semi","scores":{"game1":{"Class101":"12","Class102":9}}}`
	if err := json.Unmarshal([]byte(in), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if d.Scores.Game1["Class101"] != "12" || d.Scores.Game1["Class102"] != "9" {
		t.Errorf("game1 = %v", d.Scores.Game1)
	}
	if d.Scores.Game2 != nil {
		t.Errorf("absent game2 should stay nil, got %v", d.Scores.Game2)
	}
}

func TestGameScore_UnmarshalJSON_rejectsObjects(t *testing.T) {
	var g GameScore
	if err := json.Unmarshal([]byte(`{"ClassA":{"nested":true}}`), &g); err == nil {
		t.Error("expected error for nested object score")
	}
}

func TestPhase_Games(t *testing.T) {
	if g := PhaseSemi.Games(); len(g) != 2 || g[0] != Game1 || g[1] != Game2 {
		t.Errorf("semi games = %v", g)
	}
	if g := PhaseFinal.Games(); len(g) != 1 || g[0] != GameFinal {
		t.Errorf("final games = %v", g)
	}
	if Phase("quarter").Valid() {
		t.Error("quarter should not be valid")
	}
}

func cam(identity, sid string, game Game, angle Angle) StreamInfo {
	return StreamInfo{
		Identity: livekit.ParticipantIdentity(identity),
		SID:      livekit.ParticipantID(sid),
		Phase:    PhaseFinal,
		Game:     game,
		Angle:    angle,
	}
}

func TestRegistry_UpsertReplacesByIdentity(t *testing.T) {
	r := NewRegistry()
	r.Upsert(cam("cam-a", "PA_1", GameFinal, AngleFirst))
	r.Upsert(cam("cam-b", "PA_2", GameFinal, AngleMain))
	r.Upsert(cam("cam-a", "PA_1", GameFinal, AngleSecond))

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Identity != "cam-a" || list[0].Angle != AngleSecond {
		t.Errorf("cam-a not replaced in place: %+v", list[0])
	}
}

func TestRegistry_RemoveClearsSelection(t *testing.T) {
	r := NewRegistry()
	r.Upsert(cam("cam-a", "PA_1", GameFinal, AngleMain))
	r.Upsert(cam("cam-b", "PA_2", GameFinal, AngleFirst))
	if err := r.Select("PA_2"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	if !r.Remove("cam-b") {
		t.Fatal("Remove returned false")
	}
	if sel := r.Selected.Get(); sel != "" {
		t.Errorf("selection = %q, want cleared", sel)
	}
	if r.Remove("cam-b") {
		t.Error("second Remove should report false")
	}
}

func TestRegistry_SelectUnknown(t *testing.T) {
	r := NewRegistry()
	if err := r.Select("PA_404"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Select unknown: got %v, want ErrUnknownSource", err)
	}
	if err := r.Select(""); err != nil {
		t.Errorf("clearing selection: %v", err)
	}
}

func TestRegistry_CurrentDefaultsToMainAngle(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Current(); ok {
		t.Error("empty registry should have no current source")
	}

	r.Upsert(cam("cam-a", "PA_1", GameFinal, AngleFirst))
	r.Upsert(cam("cam-b", "PA_2", GameFinal, AngleMain))

	cur, ok := r.Current()
	if !ok || cur.Identity != "cam-b" {
		t.Errorf("default current = %+v, want cam-b", cur)
	}

	_ = r.Select("PA_1")
	cur, _ = r.Current()
	if cur.Identity != "cam-a" {
		t.Errorf("selected current = %+v, want cam-a", cur)
	}
}

func TestRegistry_ForGameOrdersAngles(t *testing.T) {
	r := NewRegistry()
	r.Upsert(cam("a2", "P3", GameFinal, AngleSecond))
	r.Upsert(cam("x", "P9", Game1, AngleMain))
	r.Upsert(cam("main", "P1", GameFinal, AngleMain))
	r.Upsert(cam("a1", "P2", GameFinal, AngleFirst))

	got := r.ForGame(PhaseFinal, GameFinal)
	want := []string{"main", "a1", "a2"}
	if len(got) != len(want) {
		t.Fatalf("ForGame len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if string(got[i].Identity) != id {
			t.Errorf("ForGame[%d] = %s, want %s", i, got[i].Identity, id)
		}
	}
}

func TestStores_SnapshotJSON(t *testing.T) {
	s := New()
	defer s.Close()

	b, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := out["streams"].([]any); !ok {
		t.Errorf("streams should encode as an array, got %v", out["streams"])
	}
}
