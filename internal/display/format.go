// Package display renders store values as text for operators and logs.
package display

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"hoops-broadcast/internal/state"
)

var (
	letterDigits = regexp.MustCompile(`([A-Za-z]+)(\d+)`)
	digitsBan    = regexp.MustCompile(`(\d+)班`)
)

// FormatClassName spaces out class names for display: "Class101" becomes
// "Class 101" and "101班" becomes "101 班". Only the first match of each
// pattern is rewritten.
func FormatClassName(name string) string {
	name = replaceFirst(letterDigits, name, "$1 $2")
	return replaceFirst(digitsBan, name, "$1 班")
}

func replaceFirst(re *regexp.Regexp, s, tmpl string) string {
	m := re.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	out := re.ExpandString(nil, tmpl, s, m)
	return s[:m[0]] + string(out) + s[m[1]:]
}

// FormatError returns the message of an error, a string unchanged, and
// "Unknown error" for anything else.
func FormatError(v any) string {
	switch e := v.(type) {
	case error:
		return e.Error()
	case string:
		return e
	default:
		return "Unknown error"
	}
}

// BuildScoreboard renders the games of the snapshot's phase, one class per
// line in name order. A game without scores is shown as waiting.
func BuildScoreboard(d state.ScoreData) string {
	var b strings.Builder

	b.WriteString(phaseTitle(d.Phase))
	b.WriteString("\n")

	for _, game := range d.Phase.Games() {
		score := d.Game(game)
		b.WriteString(fmt.Sprintf("\n[%s]\n", game))
		if len(score) == 0 {
			b.WriteString("  waiting for scores\n")
			continue
		}

		classes := slices.Sorted(maps.Keys(score))
		width := 0
		for _, c := range classes {
			width = max(width, utf8.RuneCountInString(FormatClassName(c)))
		}
		for _, c := range classes {
			b.WriteString(fmt.Sprintf("  %-*s  %s\n", width, FormatClassName(c), score[c]))
		}
	}

	return b.String()
}

func phaseTitle(p state.Phase) string {
	switch p {
	case state.PhaseSemi:
		return "SEMI-FINALS"
	case state.PhaseFinal:
		return "FINAL"
	}
	return strings.ToUpper(string(p))
}
