// Package validation provides request input and dataset validation for the remedy service.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/pri779/Ayurvedic-chatbot/remedy"
)

const (
	maxDiseaseLength = 100
	minAge           = 0
	maxAge           = 150
)

var (
	// ErrInvalidDisease is returned for a missing or unusable disease name
	ErrInvalidDisease = errors.New("invalid disease")

	// ErrInvalidAge is returned for an age that is not a whole number in range
	ErrInvalidAge = errors.New("invalid age")
)

// Printable text of any script: letters, marks, digits, punctuation, symbols
// and spaces. Control characters, tabs and newlines are rejected. Output is
// escaped by html/template, so markup characters are allowed.
var diseaseRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\p{P}\p{S}\p{Zs}]+$`)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateDisease validates the disease name submitted through the form
func (v *DataValidatorImpl) ValidateDisease(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("%w: disease cannot be empty", ErrInvalidDisease)
	}

	if utf8.RuneCountInString(trimmed) > maxDiseaseLength {
		return fmt.Errorf("%w: maximum %d characters", ErrInvalidDisease, maxDiseaseLength)
	}

	if !utf8.ValidString(trimmed) {
		return fmt.Errorf("%w: input is not valid UTF-8", ErrInvalidDisease)
	}

	if !diseaseRegex.MatchString(trimmed) {
		return fmt.Errorf("%w: control characters are not allowed", ErrInvalidDisease)
	}

	return nil
}

// ParseAge converts the submitted age to an integer.
// Non-integer input is rejected rather than coerced.
func (v *DataValidatorImpl) ParseAge(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return -1, fmt.Errorf("%w: age cannot be empty", ErrInvalidAge)
	}

	age, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("%w: age must be a whole number", ErrInvalidAge)
	}

	if age < minAge || age > maxAge {
		return -1, fmt.Errorf("%w: age must be between %d and %d", ErrInvalidAge, minAge, maxAge)
	}

	return age, nil
}

// ReportDataQuality generates a data quality report for the loaded records.
// Row numbers are 1-based and exclude the header.
func (v *DataValidatorImpl) ReportDataQuality(records []remedy.Record) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		InvalidDiseaseRows:      []int{},
		UnknownAgeGroupRows:     []int{},
		DuplicateDiseaseAgePair: []string{},
	}

	seenPairs := make(map[string]int)
	for i, rec := range records {
		// Such rows can never be requested through the form
		if v.ValidateDisease(rec.Disease) != nil {
			report.InvalidDiseases++
			if len(report.InvalidDiseaseRows) < 10 {
				report.InvalidDiseaseRows = append(report.InvalidDiseaseRows, i+1)
			}
		}

		if !remedy.IsKnownAgeGroup(rec.AgeGroup) {
			report.UnknownAgeGroups++
			if len(report.UnknownAgeGroupRows) < 10 {
				report.UnknownAgeGroupRows = append(report.UnknownAgeGroupRows, i+1)
			}
		}

		if len(remedy.SplitSteps(rec.Remedies)) == 0 {
			report.RecordsWithoutRemedies++
		}

		if len(rec.Images()) == 0 {
			report.RecordsWithoutImages++
		}

		pair := remedy.NormalizeDisease(rec.Disease) + "|" + strings.ToLower(strings.TrimSpace(rec.AgeGroup))
		seenPairs[pair]++
		if seenPairs[pair] == 2 {
			report.DuplicateDiseaseAgePair = append(report.DuplicateDiseaseAgePair, pair)
		}
	}

	return report
}
