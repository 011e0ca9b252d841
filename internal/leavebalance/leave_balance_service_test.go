package leavebalance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-erp/internal/leavebalance"
	leavebalanceerrors "go-erp/internal/leavebalance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeBalanceRepository struct {
	findAllByEmployeeFn func(ctx context.Context, companyID, employeeID string, year int) ([]leavebalance.LeaveBalance, error)
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) leavebalance.Repository { return f }

func (f *fakeBalanceRepository) Reserve(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error) {
	return true, nil
}

func (f *fakeBalanceRepository) Commit(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error) {
	return true, nil
}

func (f *fakeBalanceRepository) Release(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error) {
	return true, nil
}

func (f *fakeBalanceRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]leavebalance.LeaveBalance, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, companyID, employeeID, year)
	}
	return nil, nil
}

func TestLeaveBalanceService_GetForEmployee(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("success derives available days", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			findAllByEmployeeFn: func(ctx context.Context, cid, eid string, year int) ([]leavebalance.LeaveBalance, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, 2026, year)
				return []leavebalance.LeaveBalance{
					{
						ID:                 uuid.New(),
						CompanyID:          uuid.MustParse(companyID),
						EmployeeID:         uuid.MustParse(employeeID),
						LeaveTypeID:        uuid.New(),
						Year:               2026,
						AllocatedDays:      decimal.NewFromInt(12),
						UsedDays:           decimal.NewFromInt(3),
						PendingDays:        decimal.RequireFromString("0.5"),
						CarriedForwardDays: decimal.NewFromInt(2),
					},
				}, nil
			},
		}
		svc := leavebalance.NewService(repo)

		resp, err := svc.GetForEmployee(ctx, companyID, employeeID, 2026)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "12", resp[0].AllocatedDays)
		assert.Equal(t, "10.5", resp[0].AvailableDays)
	})

	t.Run("negative invalid employee id", func(t *testing.T) {
		svc := leavebalance.NewService(&fakeBalanceRepository{})

		_, err := svc.GetForEmployee(ctx, companyID, "not-a-uuid", 2026)
		assert.ErrorIs(t, err, leavebalanceerrors.ErrInvalidEmployeeID)
	})

	t.Run("negative year out of range", func(t *testing.T) {
		svc := leavebalance.NewService(&fakeBalanceRepository{})

		_, err := svc.GetForEmployee(ctx, companyID, employeeID, 1999)
		assert.ErrorIs(t, err, leavebalanceerrors.ErrInvalidYear)

		_, err = svc.GetForEmployee(ctx, companyID, employeeID, 2999)
		assert.ErrorIs(t, err, leavebalanceerrors.ErrInvalidYear)
	})

	t.Run("negative repo error", func(t *testing.T) {
		repo := &fakeBalanceRepository{
			findAllByEmployeeFn: func(ctx context.Context, cid, eid string, year int) ([]leavebalance.LeaveBalance, error) {
				return nil, errors.New("db down")
			},
		}
		svc := leavebalance.NewService(repo)

		_, err := svc.GetForEmployee(ctx, companyID, employeeID, 2026)
		assert.Error(t, err)
	})
}

func TestLeaveBalanceRepository_Reserve(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	leaveTypeID := uuid.New().String()
	days := decimal.NewFromInt(3)

	t.Run("success when the guard admits the move", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("INSERT INTO leave_balances").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("UPDATE leave_balances").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := leavebalance.NewRepository(db)
		reserved, err := repo.Reserve(ctx, companyID, employeeID, leaveTypeID, 2026, days)

		assert.NoError(t, err)
		assert.True(t, reserved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative insufficient balance rejects the move", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("INSERT INTO leave_balances").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE leave_balances").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := leavebalance.NewRepository(db)
		reserved, err := repo.Reserve(ctx, companyID, employeeID, leaveTypeID, 2026, days)

		assert.NoError(t, err)
		assert.False(t, reserved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeaveBalanceRepository_CommitAndRelease(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	leaveTypeID := uuid.New().String()
	days := decimal.RequireFromString("0.5")

	t.Run("commit reports false when nothing is pending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_balances").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := leavebalance.NewRepository(db)
		committed, err := repo.Commit(ctx, companyID, employeeID, leaveTypeID, 2026, days)

		assert.NoError(t, err)
		assert.False(t, committed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("release succeeds while days are pending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_balances").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := leavebalance.NewRepository(db)
		released, err := repo.Release(ctx, companyID, employeeID, leaveTypeID, 2026, days)

		assert.NoError(t, err)
		assert.True(t, released)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
