package remedy

import (
	"regexp"
	"strings"
)

// stepDelimiter matches a step number such as "2)" or a sentence period.
var stepDelimiter = regexp.MustCompile(`\d\)|\.`)

// Step is one numbered instruction of a remedy.
type Step struct {
	Number int
	Text   string
}

// SplitSteps segments free-text remedy instructions into trimmed, non-empty
// fragments in source order. Empty input yields an empty slice.
func SplitSteps(text string) []string {
	fragments := stepDelimiter.Split(text, -1)
	steps := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if trimmed := strings.TrimSpace(fragment); trimmed != "" {
			steps = append(steps, trimmed)
		}
	}
	return steps
}

// NumberSteps numbers the fragments sequentially starting at 1.
func NumberSteps(fragments []string) []Step {
	steps := make([]Step, len(fragments))
	for i, text := range fragments {
		steps[i] = Step{Number: i + 1, Text: text}
	}
	return steps
}
