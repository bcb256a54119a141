package scores

import (
	"errors"
	"testing"

	"hoops-broadcast/internal/state"
)

func TestDecode_final(t *testing.T) {
	d, err := Decode([]byte(`{"phase":"final","scores":{"final":{"ClassA":"10-8"}}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Phase != state.PhaseFinal || d.Scores.Final["ClassA"] != "10-8" {
		t.Errorf("decoded = %+v", d)
	}
}

func TestDecode_emptyScoresObject(t *testing.T) {
	d, err := Decode([]byte(`{"phase":"semi","scores":{}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Scores.Game1 != nil || d.Scores.Game2 != nil || d.Scores.Final != nil {
		t.Errorf("expected no games, got %+v", d.Scores)
	}
}

func TestDecode_malformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `{{{`,
		"null":           `null`,
		"array":          `[1,2]`,
		"missing scores": `{"phase":"semi"}`,
		"missing phase":  `{"scores":{}}`,
		"bad phase":      `{"phase":"quarter","scores":{}}`,
		"scores string":  `{"phase":"semi","scores":"x"}`,
		"nested score":   `{"phase":"semi","scores":{"game1":{"A":{"x":1}}}}`,
		"game not map":   `{"phase":"final","scores":{"final":[1]}}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := Decode([]byte(in))
			if !errors.Is(err, ErrMalformedMessage) {
				t.Fatalf("want ErrMalformedMessage, got %v", err)
			}
			if d.Phase != "" || d.Scores.Game1 != nil || d.Scores.Final != nil {
				t.Errorf("partial value returned: %+v", d)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	cases := []struct {
		name      string
		data      state.ScoreData
		wantErr   bool
		wantIssue int
	}{
		{
			name:      "semi with both games",
			data:      state.ScoreData{Phase: state.PhaseSemi, Scores: state.Games{Game1: state.GameScore{"A": "1"}, Game2: state.GameScore{"B": "2"}}},
			wantIssue: 0,
		},
		{
			name:      "semi without games",
			data:      state.ScoreData{Phase: state.PhaseSemi},
			wantErr:   true,
			wantIssue: 1,
		},
		{
			name:      "semi with empty game1",
			data:      state.ScoreData{Phase: state.PhaseSemi, Scores: state.Games{Game1: state.GameScore{}}},
			wantIssue: 1,
		},
		{
			name:      "final without final",
			data:      state.ScoreData{Phase: state.PhaseFinal, Scores: state.Games{Game1: state.GameScore{"A": "1"}}},
			wantErr:   true,
			wantIssue: 1,
		},
		{
			name:      "final with empty final",
			data:      state.ScoreData{Phase: state.PhaseFinal, Scores: state.Games{Final: state.GameScore{}}},
			wantIssue: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues := Check(tc.data)
			if len(issues) != tc.wantIssue {
				t.Fatalf("issues = %v, want %d", issues, tc.wantIssue)
			}
			if HasErrors(issues) != tc.wantErr {
				t.Errorf("HasErrors = %v, want %v", HasErrors(issues), tc.wantErr)
			}
		})
	}
}
