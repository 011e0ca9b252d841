package leavebalance

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=leave_balance_repo.go -destination=mock/leave_balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// Reserve moves days into pending, guarded against the derived
	// available balance. Returns false when the guard rejects the move.
	Reserve(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error)

	// Commit converts previously reserved pending days into used days.
	Commit(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error)

	// Release gives reserved pending days back without touching used days.
	Release(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error)

	FindAllByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalance, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// Reserve runs two statements: a lazy seed of the ledger row for the
// (employee, leave type, year) triple, then a single guarded increment.
// Both are row-atomic, so concurrent submissions cannot race past the
// available-days check.
func (r *repository) Reserve(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error) {
	exec := r.execer()

	seed := `
INSERT INTO leave_balances (
	id, company_id, employee_id, leave_type_id, year,
	allocated_days, used_days, pending_days, carried_forward_days,
	created_at, updated_at
)
SELECT gen_random_uuid(), lt.company_id, $2, lt.id, $4,
	lt.max_days_per_year, 0, 0, 0,
	now(), now()
FROM leave_types lt
WHERE lt.id = $3
	AND lt.company_id = $1
	AND lt.deleted_at IS NULL
ON CONFLICT (company_id, employee_id, leave_type_id, year) DO NOTHING
`
	if _, err := exec.ExecContext(ctx, seed, companyID, employeeID, leaveTypeID, year); err != nil {
		return false, err
	}

	reserve := `
UPDATE leave_balances
SET pending_days = pending_days + $5, updated_at = now()
WHERE company_id = $1
	AND employee_id = $2
	AND leave_type_id = $3
	AND year = $4
	AND allocated_days + carried_forward_days - used_days - pending_days >= $5
`
	res, err := exec.ExecContext(ctx, reserve, companyID, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) Commit(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error) {
	query := `
UPDATE leave_balances
SET used_days = used_days + $5, pending_days = pending_days - $5, updated_at = now()
WHERE company_id = $1
	AND employee_id = $2
	AND leave_type_id = $3
	AND year = $4
	AND pending_days >= $5
`
	res, err := r.execer().ExecContext(ctx, query, companyID, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) Release(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error) {
	query := `
UPDATE leave_balances
SET pending_days = pending_days - $5, updated_at = now()
WHERE company_id = $1
	AND employee_id = $2
	AND leave_type_id = $3
	AND year = $4
	AND pending_days >= $5
`
	res, err := r.execer().ExecContext(ctx, query, companyID, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalance, error) {
	query := `
SELECT
	id, company_id, employee_id, leave_type_id, year,
	allocated_days, used_days, pending_days, carried_forward_days,
	created_at, updated_at
FROM leave_balances
WHERE company_id = $1
	AND employee_id = $2
	AND year = $3
ORDER BY leave_type_id
`
	rows, err := r.db.QueryContext(ctx, query, companyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []LeaveBalance
	for rows.Next() {
		var b LeaveBalance
		if err := rows.Scan(
			&b.ID,
			&b.CompanyID,
			&b.EmployeeID,
			&b.LeaveTypeID,
			&b.Year,
			&b.AllocatedDays,
			&b.UsedDays,
			&b.PendingDays,
			&b.CarriedForwardDays,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return balances, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
