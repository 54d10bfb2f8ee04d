package models

import "time"

// PatientRecord is a clinical record row. Diagnosis holds ciphertext at rest;
// plaintext diagnoses are never persisted. AnonymizedName and
// AnonymizedContact are derived from the raw fields and must be recomputed
// whenever those change.
type PatientRecord struct {
	ID                string
	Name              string
	Contact           string
	Diagnosis         string
	AnonymizedName    string
	AnonymizedContact string
	CreatedAt         time.Time
}
