package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/dbx"
	"github.com/clinicore/clinicore/internal/logging"
	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/privacy"
	"github.com/clinicore/clinicore/internal/repositories/repomanager"
)

// MaskedPatient is the display-safe projection of a record: masked identity
// and contact, no diagnosis at all.
type MaskedPatient struct {
	ID      string
	Name    string
	Contact string
}

// RecordService manages patient records. Diagnoses are encrypted before they
// reach storage and the anonymized projections are kept in lockstep with the
// raw fields.
type RecordService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	engine *privacy.Engine
	audit  *audit.Recorder
	log    logging.Logger
}

func NewRecordService(db *sql.DB, rm repomanager.RepositoryManager, engine *privacy.Engine, rec *audit.Recorder, log logging.Logger) *RecordService {
	return &RecordService{
		db:     db,
		rm:     rm,
		engine: engine,
		audit:  rec,
		log:    log.With("component", "records"),
	}
}

// AddPatient validates the intake fields, encrypts the diagnosis, derives the
// anonymized projections and stores the record. The stored row never contains
// the plaintext diagnosis.
func (s *RecordService) AddPatient(ctx context.Context, actorID *string, role string, name, contact, diagnosis string) (*models.PatientRecord, error) {
	if err := ValidatePatientInput(name, contact, diagnosis); err != nil {
		return nil, err
	}

	anon, err := s.engine.AnonymizeRecord(name, contact, diagnosis)
	if err != nil {
		return nil, err
	}

	rec := &models.PatientRecord{
		Name:              name,
		Contact:           contact,
		Diagnosis:         anon.EncryptedDiagnosis,
		AnonymizedName:    anon.Name,
		AnonymizedContact: anon.Contact,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		rec, err = s.rm.Patients(tx).Create(ctx, rec)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.audit.Record(ctx, actorID, role, string(models.ActionAdd),
		fmt.Sprintf("Added patient record %s", rec.ID))
	return rec, nil
}

// GetPatient loads one record and returns it together with the decrypted
// diagnosis. The access is audited as "decrypt" because it exposes the
// plaintext. A record whose diagnosis cannot be decrypted under the current
// key fails with common.ErrDecryptionFailed.
func (s *RecordService) GetPatient(ctx context.Context, actorID *string, role string, id string) (*models.PatientRecord, string, error) {
	rec, err := s.rm.Patients(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	var diagnosis string
	if rec.Diagnosis != "" {
		diagnosis, err = s.engine.Decrypt(rec.Diagnosis)
		if err != nil {
			return nil, "", err
		}
	}

	s.audit.Record(ctx, actorID, role, string(models.ActionDecrypt),
		fmt.Sprintf("Viewed diagnosis of patient record %s", id))
	return rec, diagnosis, nil
}

// ListPatients returns the privacy-safe listing: every row masked, no
// diagnosis. One "view" audit entry covers the whole listing.
func (s *RecordService) ListPatients(ctx context.Context, actorID *string, role string) ([]MaskedPatient, error) {
	recs, err := s.rm.Patients(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	out := make([]MaskedPatient, 0, len(recs))
	for _, r := range recs {
		out = append(out, MaskedPatient{
			ID:      r.ID,
			Name:    r.AnonymizedName,
			Contact: r.AnonymizedContact,
		})
	}

	s.audit.Record(ctx, actorID, role, string(models.ActionView),
		fmt.Sprintf("Viewed patient list (%d records)", len(out)))
	return out, nil
}

// UpdatePatient replaces the raw fields of a record and recomputes the
// derived ones in the same write, so the anonymized projections can never go
// stale. It returns false without error when the record does not exist.
func (s *RecordService) UpdatePatient(ctx context.Context, actorID *string, role string, id, name, contact, diagnosis string) (bool, error) {
	if err := ValidatePatientInput(name, contact, diagnosis); err != nil {
		return false, err
	}

	anon, err := s.engine.AnonymizeRecord(name, contact, diagnosis)
	if err != nil {
		return false, err
	}

	var updated bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		updated, err = s.rm.Patients(tx).Update(ctx, &models.PatientRecord{
			ID:                id,
			Name:              name,
			Contact:           contact,
			Diagnosis:         anon.EncryptedDiagnosis,
			AnonymizedName:    anon.Name,
			AnonymizedContact: anon.Contact,
		})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	if updated {
		s.audit.Record(ctx, actorID, role, string(models.ActionUpdate),
			fmt.Sprintf("Updated patient record %s", id))
	}
	return updated, nil
}

// DeletePatient removes one record. It returns false without error when the
// record does not exist; only actual deletions are audited.
func (s *RecordService) DeletePatient(ctx context.Context, actorID *string, role string, id string) (bool, error) {
	var deleted bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		deleted, err = s.rm.Patients(tx).Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	if deleted {
		s.audit.Record(ctx, actorID, role, string(models.ActionDelete),
			fmt.Sprintf("Deleted patient record %s", id))
	}
	return deleted, nil
}

// AnonymizeAll rewrites every record with freshly derived anonymized
// projections and ensures the diagnosis is encrypted. A diagnosis that
// decrypts under the current key is left as-is; one that does not is treated
// as legacy plaintext and encrypted. The whole pass leaves a single
// "anonymization" audit entry carrying the processed count.
func (s *RecordService) AnonymizeAll(ctx context.Context, actorID *string, role string) (int, error) {
	recs, err := s.rm.Patients(s.db).List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	var processed int
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Patients(tx)
		for _, rec := range recs {
			diagnosis := rec.Diagnosis
			if diagnosis != "" {
				if _, err := s.engine.Decrypt(diagnosis); err != nil {
					diagnosis, err = s.engine.Encrypt(rec.Diagnosis)
					if err != nil {
						return err
					}
				}
			}

			updated, err := repo.Update(ctx, &models.PatientRecord{
				ID:                rec.ID,
				Name:              rec.Name,
				Contact:           rec.Contact,
				Diagnosis:         diagnosis,
				AnonymizedName:    privacy.MaskIdentity(rec.Name),
				AnonymizedContact: privacy.MaskContact(rec.Contact),
			})
			if err != nil {
				return err
			}
			if updated {
				processed++
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrDecryptionFailed) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.audit.Record(ctx, actorID, role, string(models.ActionAnonymization),
		fmt.Sprintf("Anonymized %d patient records", processed))
	s.log.Info(ctx, "mass anonymization finished", "processed", processed)
	return processed, nil
}
