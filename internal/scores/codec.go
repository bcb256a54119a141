// Package scores decodes and checks score snapshots arriving on the score feed.
package scores

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"hoops-broadcast/internal/state"
)

// ErrMalformedMessage marks a frame that could not be turned into a ScoreData.
var ErrMalformedMessage = errors.New("malformed score message")

var validate = validator.New()

// frame is the wire schema. Scores is a pointer so a missing object can be
// told apart from an empty one.
type frame struct {
	Phase  string       `json:"phase" validate:"required,oneof=semi final"`
	Scores *state.Games `json:"scores" validate:"required"`
}

// Decode parses one text frame. On failure the returned error wraps
// ErrMalformedMessage and the ScoreData is the zero value.
func Decode(data []byte) (state.ScoreData, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return state.ScoreData{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validate.Struct(f); err != nil {
		return state.ScoreData{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return state.ScoreData{Phase: state.Phase(f.Phase), Scores: *f.Scores}, nil
}

// Severity grades an Issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is one consistency problem found by Check.
type Issue struct {
	Severity Severity
	Message  string
}

func (i Issue) String() string { return string(i.Severity) + ": " + i.Message }

// Check reports games that do not fit the snapshot's phase. A semi-final
// snapshot needs game1 or game2 and a final snapshot needs final; present but
// empty games are warnings. Check never modifies d.
func Check(d state.ScoreData) []Issue {
	var issues []Issue
	empty := func(g state.Game) {
		issues = append(issues, Issue{SeverityWarning, fmt.Sprintf("%s exists but has no team data", g)})
	}

	switch d.Phase {
	case state.PhaseSemi:
		g1, g2 := d.Scores.Game1, d.Scores.Game2
		if g1 == nil && g2 == nil {
			issues = append(issues, Issue{SeverityError, "semi-finals snapshot without game1 or game2 data"})
		}
		if g1 != nil && len(g1) == 0 {
			empty(state.Game1)
		}
		if g2 != nil && len(g2) == 0 {
			empty(state.Game2)
		}
	case state.PhaseFinal:
		f := d.Scores.Final
		if f == nil {
			issues = append(issues, Issue{SeverityError, "finals snapshot without final game data"})
		} else if len(f) == 0 {
			empty(state.GameFinal)
		}
	default:
		issues = append(issues, Issue{SeverityWarning, fmt.Sprintf("unknown phase %q", d.Phase)})
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
