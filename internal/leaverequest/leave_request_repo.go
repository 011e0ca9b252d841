package leaverequest

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ChainStep is one row of the approval chain template configured per
// company, optionally per leave type.
type ChainStep struct {
	Level      int
	ApproverID uuid.UUID
}

//go:generate mockgen -source=leave_request_repo.go -destination=mock/leave_request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, lr *LeaveRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]LeaveRequest, error)
	CountByCompany(ctx context.Context, companyID string, filter ListFilter) (int64, error)

	FindApprovalChain(ctx context.Context, companyID, leaveTypeID string) ([]ChainStep, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
	LeaveTypeExists(ctx context.Context, companyID, leaveTypeID string) (bool, error)
	HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error)

	// MarkStepAction decides the step at the given level. The update only
	// lands while the step is still pending and owned by the approver, so
	// the first committed action wins and every later one reports false.
	MarkStepAction(ctx context.Context, requestID string, level int, approverID, status string, comments *string) (bool, error)

	// AdvanceLevel moves the current-level pointer forward by one, guarded
	// on the level it is moving from.
	AdvanceLevel(ctx context.Context, requestID string, fromLevel int) (bool, error)

	// Finalize stamps the terminal status and completion flag, guarded on
	// the current level and the pending status.
	Finalize(ctx context.Context, requestID string, fromLevel int, status string) (bool, error)

	// CancelOwned flips a still-pending request to CANCELLED, guarded on
	// ownership so only the requesting employee can land it.
	CancelOwned(ctx context.Context, companyID, id, employeeID string) (bool, error)

	AddComment(ctx context.Context, comment *RequestComment) error
	SoftDelete(ctx context.Context, companyID, id string) (bool, error)
}

// ListFilter narrows the company-wide listing; zero values mean no filter.
type ListFilter struct {
	EmployeeID string
	Status     string
	Limit      int
	Offset     int
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

func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	exec := r.execer()

	insertRequest := `
INSERT INTO leave_requests (
	id, company_id, employee_id, request_number, leave_type_id,
	start_date, end_date, total_days, is_half_day, reason, priority,
	status, current_level, is_completed, created_by, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
`
	if _, err := exec.ExecContext(ctx, insertRequest,
		lr.ID, lr.CompanyID, lr.EmployeeID, lr.RequestNumber, lr.LeaveTypeID,
		lr.StartDate, lr.EndDate, lr.TotalDays, lr.IsHalfDay, lr.Reason, lr.Priority,
		lr.Status, lr.CurrentLevel, lr.IsCompleted, lr.CreatedBy,
	); err != nil {
		return err
	}

	insertStep := `
INSERT INTO approval_steps (
	id, leave_request_id, level, approver_id, status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, now(), now())
`
	for i := range lr.Steps {
		step := &lr.Steps[i]
		if _, err := exec.ExecContext(ctx, insertStep,
			step.ID, lr.ID, step.Level, step.ApproverID, step.Status,
		); err != nil {
			return err
		}
	}

	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	q := r.querier()

	query := `
SELECT
	id, company_id, employee_id, request_number, leave_type_id,
	start_date, end_date, total_days, is_half_day, reason, priority,
	status, current_level, is_completed, completed_at, created_by,
	created_at, updated_at
FROM leave_requests
WHERE id = $2 AND company_id = $1 AND deleted_at IS NULL
`
	var lr LeaveRequest
	err := q.QueryRowContext(ctx, query, companyID, id).Scan(
		&lr.ID, &lr.CompanyID, &lr.EmployeeID, &lr.RequestNumber, &lr.LeaveTypeID,
		&lr.StartDate, &lr.EndDate, &lr.TotalDays, &lr.IsHalfDay, &lr.Reason, &lr.Priority,
		&lr.Status, &lr.CurrentLevel, &lr.IsCompleted, &lr.CompletedAt, &lr.CreatedBy,
		&lr.CreatedAt, &lr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lr.Steps, err = r.loadSteps(ctx, lr.ID); err != nil {
		return nil, err
	}
	if lr.Comments, err = r.loadComments(ctx, lr.ID); err != nil {
		return nil, err
	}

	return &lr, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]LeaveRequest, error) {
	query := `
SELECT
	id, company_id, employee_id, request_number, leave_type_id,
	start_date, end_date, total_days, is_half_day, reason, priority,
	status, current_level, is_completed, completed_at, created_by,
	created_at, updated_at
FROM leave_requests
WHERE company_id = $1
	AND deleted_at IS NULL
	AND ($2 = '' OR employee_id::text = $2)
	AND ($3 = '' OR status = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`
	rows, err := r.querier().QueryContext(ctx, query,
		companyID, filter.EmployeeID, filter.Status, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		var lr LeaveRequest
		if err := rows.Scan(
			&lr.ID, &lr.CompanyID, &lr.EmployeeID, &lr.RequestNumber, &lr.LeaveTypeID,
			&lr.StartDate, &lr.EndDate, &lr.TotalDays, &lr.IsHalfDay, &lr.Reason, &lr.Priority,
			&lr.Status, &lr.CurrentLevel, &lr.IsCompleted, &lr.CompletedAt, &lr.CreatedBy,
			&lr.CreatedAt, &lr.UpdatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range requests {
		if requests[i].Steps, err = r.loadSteps(ctx, requests[i].ID); err != nil {
			return nil, err
		}
	}

	return requests, nil
}

func (r *repository) CountByCompany(ctx context.Context, companyID string, filter ListFilter) (int64, error) {
	query := `
SELECT count(*)
FROM leave_requests
WHERE company_id = $1
	AND deleted_at IS NULL
	AND ($2 = '' OR employee_id::text = $2)
	AND ($3 = '' OR status = $3)
`
	var total int64
	err := r.querier().QueryRowContext(ctx, query, companyID, filter.EmployeeID, filter.Status).Scan(&total)
	return total, err
}

// FindApprovalChain prefers a chain configured for the specific leave type
// and falls back to the company-wide default rows (leave_type_id IS NULL).
func (r *repository) FindApprovalChain(ctx context.Context, companyID, leaveTypeID string) ([]ChainStep, error) {
	query := `
SELECT level, approver_id
FROM approval_chain_steps
WHERE company_id = $1 AND leave_type_id = $2
ORDER BY level ASC
`
	steps, err := r.queryChain(ctx, query, companyID, leaveTypeID)
	if err != nil {
		return nil, err
	}
	if len(steps) > 0 {
		return steps, nil
	}

	fallback := `
SELECT level, approver_id
FROM approval_chain_steps
WHERE company_id = $1 AND leave_type_id IS NULL
ORDER BY level ASC
`
	return r.queryChain(ctx, fallback, companyID)
}

func (r *repository) queryChain(ctx context.Context, query string, args ...any) ([]ChainStep, error) {
	rows, err := r.querier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []ChainStep
	for rows.Next() {
		var s ChainStep
		if err := rows.Scan(&s.Level, &s.ApproverID); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	query := `
SELECT EXISTS (
	SELECT 1 FROM employees
	WHERE id = $2 AND company_id = $1 AND deleted_at IS NULL
)
`
	var exists bool
	err := r.querier().QueryRowContext(ctx, query, companyID, employeeID).Scan(&exists)
	return exists, err
}

func (r *repository) LeaveTypeExists(ctx context.Context, companyID, leaveTypeID string) (bool, error) {
	query := `
SELECT EXISTS (
	SELECT 1 FROM leave_types
	WHERE id = $2 AND company_id = $1 AND deleted_at IS NULL
)
`
	var exists bool
	err := r.querier().QueryRowContext(ctx, query, companyID, leaveTypeID).Scan(&exists)
	return exists, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error) {
	query := `
SELECT EXISTS (
	SELECT 1 FROM leave_requests
	WHERE company_id = $1
		AND employee_id = $2
		AND status IN ('PENDING', 'APPROVED')
		AND deleted_at IS NULL
		AND start_date <= $4
		AND end_date >= $3
)
`
	var exists bool
	err := r.querier().QueryRowContext(ctx, query, companyID, employeeID, start, end).Scan(&exists)
	return exists, err
}

func (r *repository) MarkStepAction(ctx context.Context, requestID string, level int, approverID, status string, comments *string) (bool, error) {
	query := `
UPDATE approval_steps
SET status = $4, comments = $5, action_date = now(), updated_at = now()
WHERE leave_request_id = $1
	AND level = $2
	AND approver_id = $3
	AND status = 'PENDING'
`
	res, err := r.execer().ExecContext(ctx, query, requestID, level, approverID, status, comments)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) AdvanceLevel(ctx context.Context, requestID string, fromLevel int) (bool, error) {
	query := `
UPDATE leave_requests
SET current_level = current_level + 1, updated_at = now()
WHERE id = $1
	AND current_level = $2
	AND status = 'PENDING'
	AND is_completed = false
`
	res, err := r.execer().ExecContext(ctx, query, requestID, fromLevel)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) Finalize(ctx context.Context, requestID string, fromLevel int, status string) (bool, error) {
	query := `
UPDATE leave_requests
SET status = $3, is_completed = true, completed_at = now(), updated_at = now()
WHERE id = $1
	AND current_level = $2
	AND status = 'PENDING'
	AND is_completed = false
`
	res, err := r.execer().ExecContext(ctx, query, requestID, fromLevel, status)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) CancelOwned(ctx context.Context, companyID, id, employeeID string) (bool, error) {
	query := `
UPDATE leave_requests
SET status = 'CANCELLED', updated_at = now()
WHERE id = $2
	AND company_id = $1
	AND employee_id = $3
	AND status = 'PENDING'
	AND is_completed = false
	AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, companyID, id, employeeID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) AddComment(ctx context.Context, comment *RequestComment) error {
	query := `
INSERT INTO request_comments (
	id, leave_request_id, author_id, author_role, message, is_internal, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, now())
`
	_, err := r.execer().ExecContext(ctx, query,
		comment.ID, comment.LeaveRequestID, comment.AuthorID,
		comment.AuthorRole, comment.Message, comment.IsInternal,
	)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id string) (bool, error) {
	query := `
UPDATE leave_requests
SET deleted_at = now(), updated_at = now()
WHERE id = $2
	AND company_id = $1
	AND status IN ('CANCELLED', 'REJECTED')
	AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, companyID, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) loadSteps(ctx context.Context, requestID uuid.UUID) ([]ApprovalStep, error) {
	query := `
SELECT id, leave_request_id, level, approver_id, status, comments, action_date, created_at, updated_at
FROM approval_steps
WHERE leave_request_id = $1
ORDER BY level ASC
`
	rows, err := r.querier().QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []ApprovalStep
	for rows.Next() {
		var s ApprovalStep
		if err := rows.Scan(
			&s.ID, &s.LeaveRequestID, &s.Level, &s.ApproverID,
			&s.Status, &s.Comments, &s.ActionDate, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *repository) loadComments(ctx context.Context, requestID uuid.UUID) ([]RequestComment, error) {
	query := `
SELECT id, leave_request_id, author_id, author_role, message, is_internal, created_at
FROM request_comments
WHERE leave_request_id = $1
ORDER BY created_at ASC
`
	rows, err := r.querier().QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []RequestComment
	for rows.Next() {
		var c RequestComment
		if err := rows.Scan(
			&c.ID, &c.LeaveRequestID, &c.AuthorID, &c.AuthorRole,
			&c.Message, &c.IsInternal, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type dbtx interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func (r *repository) execer() dbtx {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) querier() dbtx {
	return r.execer()
}
