// Package remedy holds the remedy records, the age group matcher, the step
// splitter and the lookup over the immutable remedy table.
package remedy

import (
	"strconv"
	"strings"
)

const allAges = "all ages"

// AgeGroupKind identifies which grammar an age group uses.
type AgeGroupKind int

const (
	AgeGroupUnknown AgeGroupKind = iota
	AgeGroupAll
	AgeGroupMinimum
	AgeGroupRange
)

// ParseAgeGroup resolves an age group into its kind and bounds.
// The forms are checked in priority order: "all ages", "<N>+", "<N> to <M>".
// Anything else, including a recognized separator with non-numeric bounds,
// yields AgeGroupUnknown.
func ParseAgeGroup(group string) (kind AgeGroupKind, min, max int) {
	if strings.EqualFold(strings.TrimSpace(group), allAges) {
		return AgeGroupAll, 0, 0
	}

	if before, _, found := strings.Cut(group, "+"); found {
		n, err := strconv.Atoi(strings.TrimSpace(before))
		if err != nil {
			return AgeGroupUnknown, 0, 0
		}
		return AgeGroupMinimum, n, 0
	}

	if strings.Contains(group, " to ") {
		parts := strings.Split(group, " to ")
		if len(parts) != 2 {
			return AgeGroupUnknown, 0, 0
		}
		lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return AgeGroupUnknown, 0, 0
		}
		hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return AgeGroupUnknown, 0, 0
		}
		return AgeGroupRange, lo, hi
	}

	return AgeGroupUnknown, 0, 0
}

// Matches reports whether age falls inside the age group.
// The age itself is not validated.
func Matches(group string, age int) bool {
	kind, lo, hi := ParseAgeGroup(group)
	switch kind {
	case AgeGroupAll:
		return true
	case AgeGroupMinimum:
		return age >= lo
	case AgeGroupRange:
		return lo <= age && age <= hi
	default:
		return false
	}
}

// IsKnownAgeGroup reports whether group uses one of the recognized grammars.
func IsKnownAgeGroup(group string) bool {
	kind, _, _ := ParseAgeGroup(group)
	return kind != AgeGroupUnknown
}
