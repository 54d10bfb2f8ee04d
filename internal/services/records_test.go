package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/privacy"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func setupRecordService(t *testing.T) (*RecordService, *fakeRepoManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	rm := newFakeRepoManager()
	engine, err := privacy.NewEngine(testKey)
	require.NoError(t, err)
	svc := NewRecordService(db, rm, engine, newRecorder(rm), testLogger())
	return svc, rm, mock
}

func actor() (*string, string) {
	id := "u-1"
	return &id, "doctor"
}

func TestAddPatient(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)

	actorID, role := actor()
	rec, err := svc.AddPatient(context.Background(), actorID, role, "John Smith", "03211234567", "Chronic migraine")
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	// Raw fields kept, diagnosis stored only as ciphertext, projections derived.
	assert.Equal(t, "John Smith", rec.Name)
	assert.NotEqual(t, "Chronic migraine", rec.Diagnosis)
	assert.NotContains(t, rec.Diagnosis, "migraine")
	assert.Equal(t, privacy.MaskIdentity("John Smith"), rec.AnonymizedName)
	assert.Equal(t, "XXXXXXX4567", rec.AnonymizedContact)

	entry := rm.logs.last()
	require.NotNil(t, entry)
	assert.Equal(t, models.ActionAdd, entry.Action)
	assert.Equal(t, "u-1", *entry.ActorID)
}

func TestAddPatient_Validation(t *testing.T) {
	svc, rm, _ := setupRecordService(t)
	actorID, role := actor()

	tests := []struct {
		name      string
		patient   string
		contact   string
		diagnosis string
		wantMsg   string
	}{
		{"short name", "Jo", "0321-1234567", "Chronic migraine", "name must be at least"},
		{"digits in name", "J0hn Smith", "03211234567", "Chronic migraine", "name cannot contain numbers"},
		{"empty name", "  ", "03211234567", "Chronic migraine", "name cannot be empty"},
		{"letters in contact", "John Smith", "0321-ABC", "Chronic migraine", "digits only"},
		{"separators in contact", "John Smith", "0321-1234567", "Chronic migraine", "digits only"},
		{"contact too short", "John Smith", "12345", "Chronic migraine", "between 7 and 15 digits"},
		{"contact too long", "John Smith", "+1234567890123456", "Chronic migraine", "between 7 and 15 digits"},
		{"empty contact", "John Smith", "", "Chronic migraine", "contact number cannot be empty"},
		{"short diagnosis", "John Smith", "03211234567", "flu", "at least 5 characters"},
		{"empty diagnosis", "John Smith", "03211234567", "", "diagnosis cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddPatient(context.Background(), actorID, role, tt.patient, tt.contact, tt.diagnosis)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	assert.Empty(t, rm.patients.records, "rejected input must not be stored")
	assert.Empty(t, rm.logs.entries, "rejected input must not be audited")
}

func TestAddPatient_PlusPrefixedContact(t *testing.T) {
	svc, _, mock := setupRecordService(t)
	expectTx(mock)

	actorID, role := actor()
	rec, err := svc.AddPatient(context.Background(), actorID, role, "Jane Doe", "+15551234567", "Seasonal allergies")
	require.NoError(t, err)
	assert.Equal(t, "+XXXXXXX4567", rec.AnonymizedContact)
}

func TestGetPatient_DecryptsAndAudits(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)

	actorID, role := actor()
	created, err := svc.AddPatient(context.Background(), actorID, role, "John Smith", "03211234567", "Chronic migraine")
	require.NoError(t, err)

	rec, diagnosis, err := svc.GetPatient(context.Background(), actorID, role, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, rec.ID)
	assert.Equal(t, "Chronic migraine", diagnosis)

	entry := rm.logs.last()
	require.NotNil(t, entry)
	assert.Equal(t, models.ActionDecrypt, entry.Action)
	assert.Contains(t, entry.Detail, created.ID)
}

func TestGetPatient_NotFound(t *testing.T) {
	svc, _, _ := setupRecordService(t)
	actorID, role := actor()

	_, _, err := svc.GetPatient(context.Background(), actorID, role, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetPatient_ForeignCiphertext(t *testing.T) {
	svc, rm, _ := setupRecordService(t)
	actorID, role := actor()

	// A row written under a different key must fail loudly, not leak garbage.
	other, err := privacy.NewEngine([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	foreign, err := other.Encrypt("Chronic migraine")
	require.NoError(t, err)

	rm.patients.records = append(rm.patients.records, &models.PatientRecord{ID: "p-1", Diagnosis: foreign})

	_, _, err = svc.GetPatient(context.Background(), actorID, role, "p-1")
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestListPatients_MaskedOnly(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)
	expectTx(mock)

	actorID, role := actor()
	_, err := svc.AddPatient(context.Background(), actorID, role, "John Smith", "03211234567", "Chronic migraine")
	require.NoError(t, err)
	_, err = svc.AddPatient(context.Background(), actorID, role, "Jane Doe", "+15551234567", "Seasonal allergies")
	require.NoError(t, err)

	list, err := svc.ListPatients(context.Background(), actorID, role)
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, p := range list {
		assert.True(t, strings.HasPrefix(p.Name, "ANON_"), "listing must show pseudonyms, got %q", p.Name)
		assert.NotContains(t, p.Contact, "1234567", "masked contact must hide all but the last 4 digits")
	}

	entry := rm.logs.last()
	require.NotNil(t, entry)
	assert.Equal(t, models.ActionView, entry.Action)
	assert.Contains(t, entry.Detail, "2 records")
}

func TestUpdatePatient_RecomputesProjections(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)
	expectTx(mock)

	actorID, role := actor()
	created, err := svc.AddPatient(context.Background(), actorID, role, "John Smith", "03211234567", "Chronic migraine")
	require.NoError(t, err)

	ok, err := svc.UpdatePatient(context.Background(), actorID, role, created.ID, "Jane Doe", "+15559876543", "Recovered fully")
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := rm.patients.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stored.Name)
	assert.Equal(t, privacy.MaskIdentity("Jane Doe"), stored.AnonymizedName, "projection must follow the raw name")
	assert.Equal(t, "+XXXXXXX6543", stored.AnonymizedContact)
	assert.NotContains(t, stored.Diagnosis, "Recovered")

	entry := rm.logs.last()
	require.NotNil(t, entry)
	assert.Equal(t, models.ActionUpdate, entry.Action)
}

func TestUpdatePatient_Missing(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)

	actorID, role := actor()
	ok, err := svc.UpdatePatient(context.Background(), actorID, role, "missing", "Jane Doe", "03211234567", "Recovered fully")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rm.logs.entries, "a miss is not audited")
}

func TestDeletePatient(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)
	expectTx(mock)

	actorID, role := actor()
	created, err := svc.AddPatient(context.Background(), actorID, role, "John Smith", "03211234567", "Chronic migraine")
	require.NoError(t, err)

	ok, err := svc.DeletePatient(context.Background(), actorID, role, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rm.patients.records)

	entry := rm.logs.last()
	require.NotNil(t, entry)
	assert.Equal(t, models.ActionDelete, entry.Action)
}

func TestDeletePatient_Missing(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)

	actorID, role := actor()
	ok, err := svc.DeletePatient(context.Background(), actorID, role, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rm.logs.entries)
}

func TestAnonymizeAll(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)

	// Legacy rows: plaintext diagnosis, stale or missing projections.
	rm.patients.records = []*models.PatientRecord{
		{ID: "p-1", Name: "John Smith", Contact: "0321-1234567", Diagnosis: "Chronic migraine"},
		{ID: "p-2", Name: "Jane Doe", Contact: "+15551234567", Diagnosis: "Seasonal allergies"},
	}

	actorID, role := actor()
	n, err := svc.AnonymizeAll(context.Background(), actorID, role)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, r := range rm.patients.records {
		assert.True(t, strings.HasPrefix(r.AnonymizedName, "ANON_"))
		assert.NotContains(t, r.Diagnosis, "migraine")
		assert.NotContains(t, r.Diagnosis, "allergies")
	}

	require.Len(t, rm.logs.entries, 1, "one audit entry for the whole pass")
	entry := rm.logs.entries[0]
	assert.Equal(t, models.ActionAnonymization, entry.Action)
	assert.Contains(t, entry.Detail, "Anonymized 2 patient records")
}

func TestAnonymizeAll_AlreadyEncryptedIsStable(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)
	expectTx(mock)

	actorID, role := actor()
	created, err := svc.AddPatient(context.Background(), actorID, role, "John Smith", "03211234567", "Chronic migraine")
	require.NoError(t, err)

	n, err := svc.AnonymizeAll(context.Background(), actorID, role)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := rm.patients.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Diagnosis, stored.Diagnosis, "an already encrypted diagnosis is not re-encrypted")

	_, diagnosis, err := svc.GetPatient(context.Background(), actorID, role, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chronic migraine", diagnosis)
}

func TestAnonymizeAll_Empty(t *testing.T) {
	svc, rm, mock := setupRecordService(t)
	expectTx(mock)

	actorID, role := actor()
	n, err := svc.AnonymizeAll(context.Background(), actorID, role)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, rm.logs.entries, 1)
	assert.Contains(t, rm.logs.entries[0].Detail, "Anonymized 0 patient records")
}
