package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"credit-app/internal/adapters/persistence/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens a gorm handle over sqlmock using the MySQL dialector
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock database")
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(7, 1))

	user := &models.User{Name: "Ada", Email: "ada@x.com", Password: "hash", Role: "USER"}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.Equal(t, uint(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	dbErr := errors.New("Error 1062: Duplicate entry 'ada@x.com' for key 'idx_users_email'")
	mock.ExpectExec("INSERT INTO `users`").WillReturnError(dbErr)

	err := repo.Create(context.Background(), &models.User{Name: "Ada", Email: "ada@x.com"})
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password", "role"}).
		AddRow(3, "Ada", "ada@x.com", "hash", "VERIFIER")
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint(3), user.ID)
	assert.Equal(t, "VERIFIER", user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetByID(context.Background(), 42)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE email = \\?").
		WithArgs("ada@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "ada@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete_CascadesLoans(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `loan_transitions` WHERE loan_id IN \\(SELECT .*id.* FROM `loans` WHERE user_id = \\?\\)").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM `loans` WHERE user_id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `users` WHERE `users`.`id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `loan_transitions`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `loans`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `users`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CountByRole(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT role, COUNT\\(\\*\\) AS count FROM `users` GROUP BY `role`").
		WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
			AddRow("USER", 10).
			AddRow("ADMIN", 1))

	counts, err := repo.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"USER": 10, "ADMIN": 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_Create_WritesHistory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `loans`").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO `loan_transitions`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	loan := &models.Loan{UserID: 1, CustomerName: "Ada", Amount: 50000, Reason: "school fees", Status: "PENDING", Version: 1}
	entry := &models.LoanTransition{ToStatus: "PENDING", ActorID: 1, ActorRole: "USER"}
	require.NoError(t, repo.Create(context.Background(), loan, entry))

	assert.Equal(t, uint(11), loan.ID)
	assert.Equal(t, uint(11), entry.LoanID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_List_FiltersByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanRepository(db)

	owner := uint(4)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `loans` WHERE user_id = \\?").
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `loans` WHERE user_id = \\? ORDER BY created_at DESC,id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "status"}).
			AddRow(9, owner, 50000, "PENDING"))

	loans, total, err := repo.List(context.Background(), LoanFilter{UserID: &owner}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, loans, 1)
	assert.Equal(t, owner, loans[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanRepository(db)

	verifier := uint(2)
	loan := &models.Loan{ID: 9, Status: "VERIFIED", Version: 1, VerifiedByID: &verifier}
	from := "PENDING"
	entry := &models.LoanTransition{FromStatus: &from, ToStatus: "VERIFIED", ActorID: verifier, ActorRole: "VERIFIER"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `loans` SET .* WHERE .*id = \\? AND status = \\? AND version = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `loan_transitions`").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateStatus(context.Background(), loan, from, 1, entry))
	assert.Equal(t, 2, loan.Version)
	assert.Equal(t, uint(9), entry.LoanID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_UpdateStatus_Stale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanRepository(db)

	loan := &models.Loan{ID: 9, Status: "APPROVED", Version: 2}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `loans` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), loan, "VERIFIED", 2, &models.LoanTransition{})
	assert.ErrorIs(t, err, ErrStaleRecord)
	assert.Equal(t, 2, loan.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_Summarize(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanRepository(db)

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) AS count, COALESCE\\(SUM\\(amount\\), 0\\) AS amount FROM `loans` GROUP BY `status`").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "amount"}).
			AddRow("PENDING", 2, 3000.0).
			AddRow("APPROVED", 1, 50000.0))

	summary, err := repo.Summarize(context.Background(), LoanFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, int64(0), summary.Counts["REJECTED"])
	assert.Equal(t, int64(2), summary.Counts["PENDING"])
	assert.Equal(t, 53000.0, summary.TotalAmount)
	assert.Equal(t, 50000.0, summary.ApprovedAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanTransitionRepository_GetByLoanID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanTransitionRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `loan_transitions` WHERE loan_id = \\? ORDER BY created_at ASC,id ASC").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "from_status", "to_status"}).
			AddRow(1, 9, nil, "PENDING").
			AddRow(2, 9, "PENDING", "VERIFIED"))

	entries, err := repo.GetByLoanID(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].FromStatus)
	assert.Equal(t, "PENDING", *entries[1].FromStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokedSessionRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRevokedSessionRepository(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO `revoked_sessions`").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(ctx, &models.RevokedSession{
		TokenID:   "jti-1",
		UserID:    1,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `revoked_sessions` WHERE token_id = \\? AND expires_at > \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	revoked, err := repo.ExistsByTokenID(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mock.ExpectExec("DELETE FROM `revoked_sessions` WHERE expires_at < \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
