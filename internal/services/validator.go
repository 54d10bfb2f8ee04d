package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/clinicore/clinicore/internal/common"
)

const (
	minNameLen      = 3
	minDiagnosisLen = 5
	minContactLen   = 7
	maxContactLen   = 15
)

// ValidatePatientInput checks raw intake fields and returns a single
// common.ErrValidation-wrapped error listing every problem, or nil.
func ValidatePatientInput(name, contact, diagnosis string) error {
	var problems []string
	problems = append(problems, validateName(name)...)
	problems = append(problems, validateContact(contact)...)
	problems = append(problems, validateDiagnosis(diagnosis)...)

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(problems, "; "))
}

func validateName(name string) []string {
	if strings.TrimSpace(name) == "" {
		return []string{"name cannot be empty"}
	}
	if len(name) < minNameLen {
		return []string{fmt.Sprintf("name must be at least %d characters", minNameLen)}
	}
	for _, r := range name {
		if unicode.IsDigit(r) {
			return []string{"name cannot contain numbers"}
		}
	}
	return nil
}

func validateContact(contact string) []string {
	if strings.TrimSpace(contact) == "" {
		return []string{"contact number cannot be empty"}
	}

	var problems []string

	// Optional leading +, digits only after that.
	digits := strings.TrimPrefix(contact, "+")
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			problems = append(problems, "contact number must contain digits only")
			break
		}
	}

	if len(digits) < minContactLen || len(digits) > maxContactLen {
		problems = append(problems, fmt.Sprintf("contact number must be between %d and %d digits", minContactLen, maxContactLen))
	}

	return problems
}

func validateDiagnosis(diagnosis string) []string {
	if strings.TrimSpace(diagnosis) == "" {
		return []string{"diagnosis cannot be empty"}
	}
	if len(diagnosis) < minDiagnosisLen {
		return []string{fmt.Sprintf("diagnosis must be at least %d characters long", minDiagnosisLen)}
	}
	return nil
}
