package services

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/dbx"
	"github.com/clinicore/clinicore/internal/logging"
	"github.com/clinicore/clinicore/internal/models"
	logsrepo "github.com/clinicore/clinicore/internal/repositories/logs"
	patientsrepo "github.com/clinicore/clinicore/internal/repositories/patients"
	usersrepo "github.com/clinicore/clinicore/internal/repositories/users"
)

// --- fakes ---

type fakeUsersRepo struct {
	byUsername map[string]*models.User
	createErr  error
	lookupErr  error
	updated    map[string]string // userID -> new credential
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byUsername: make(map[string]*models.User),
		updated:    make(map[string]string),
	}
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *user
	if out.ID == "" {
		out.ID = "u-" + strconv.Itoa(len(f.byUsername)+1)
	}
	f.byUsername[out.Username] = &out
	return &out, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) UpdateCredential(ctx context.Context, userID string, cred string) (bool, error) {
	for _, u := range f.byUsername {
		if u.ID == userID {
			u.Credential = cred
			f.updated[userID] = cred
			return true, nil
		}
	}
	return false, nil
}

type fakePatientsRepo struct {
	records   []*models.PatientRecord
	createErr error
	listErr   error
	updateErr error
}

func (f *fakePatientsRepo) Create(ctx context.Context, rec *models.PatientRecord) (*models.PatientRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *rec
	if out.ID == "" {
		out.ID = "p-" + strconv.Itoa(len(f.records)+1)
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	f.records = append(f.records, &out)
	return &out, nil
}

func (f *fakePatientsRepo) GetByID(ctx context.Context, id string) (*models.PatientRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakePatientsRepo) List(ctx context.Context) ([]*models.PatientRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakePatientsRepo) Update(ctx context.Context, rec *models.PatientRecord) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	for i, r := range f.records {
		if r.ID == rec.ID {
			out := *rec
			out.CreatedAt = r.CreatedAt
			f.records[i] = &out
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePatientsRepo) Delete(ctx context.Context, id string) (bool, error) {
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePatientsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeLogsRepo struct {
	entries   []*models.AuditEntry
	appendErr error
}

func (f *fakeLogsRepo) Append(ctx context.Context, entry *models.AuditEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogsRepo) List(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	return f.entries, nil
}

func (f *fakeLogsRepo) last() *models.AuditEntry {
	if len(f.entries) == 0 {
		return nil
	}
	return f.entries[len(f.entries)-1]
}

type fakeRepoManager struct {
	users    *fakeUsersRepo
	patients *fakePatientsRepo
	logs     *fakeLogsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    newFakeUsersRepo(),
		patients: &fakePatientsRepo{},
		logs:     &fakeLogsRepo{},
	}
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *fakeRepoManager) Patients(db dbx.DBTX) patientsrepo.Repository { return m.patients }
func (m *fakeRepoManager) Logs(db dbx.DBTX) logsrepo.Repository         { return m.logs }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

// --- helpers ---

func newRecorder(rm *fakeRepoManager) *audit.Recorder {
	return audit.NewRecorder(rm.logs, testLogger())
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectFailedTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}
