package ledger

import (
	"context"
	stderrors "errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logimpl "github.com/weisyn/wallet/internal/core/infrastructure/log"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS transactions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := NewSQLiteStore(context.Background(), db, logimpl.NewNop())
	require.NoError(t, err)
	return s, mock
}

func TestSQLiteStore_Append(t *testing.T) {
	s, mock := newMockStore(t)
	rec := testRecord(1)

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(rec.ID, rec.Timestamp, rec.Sender, rec.Recipient, rec.Amount, "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Append(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_AppendDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	rec := testRecord(1)

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(rec.ID, rec.Timestamp, rec.Sender, rec.Recipient, rec.Amount, "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Append(context.Background(), rec), ErrDuplicateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_UpdateStatusOnlyTouchesPending(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status = ? WHERE id = ? AND status = ?")).
		WithArgs("confirmed", "0xabc", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateStatus(context.Background(), "0xabc", StatusConfirmed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ReadAll(t *testing.T) {
	s, mock := newMockStore(t)
	r1, r2 := testRecord(1), testRecord(2)
	r2.Status = StatusFailed

	rows := sqlmock.NewRows([]string{"id", "timestamp", "sender", "recipient", "amount", "status"}).
		AddRow(r1.ID, r1.Timestamp, r1.Sender, r1.Recipient, r1.Amount, "pending").
		AddRow(r2.ID, r2.Timestamp, r2.Sender, r2.Recipient, r2.Amount, "failed")
	mock.ExpectQuery("SELECT id, timestamp, sender, recipient, amount, status FROM transactions ORDER BY seq").
		WillReturnRows(rows)

	assert.Equal(t, []Record{r1, r2}, s.ReadAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ReadAllFailureIsEmpty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id").WillReturnError(stderrors.New("database is locked"))

	records := s.ReadAll(context.Background())
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
