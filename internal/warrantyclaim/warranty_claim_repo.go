package warrantyclaim

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardSnapshot is the slice of the parent card the claim workflow needs for
// its preconditions.
type CardSnapshot struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Status     string
	EndDate    time.Time
}

//go:generate mockgen -source=warranty_claim_repo.go -destination=mock/warranty_claim_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	FindCardForClaim(ctx context.Context, companyID, cardID string) (*CardSnapshot, error)
	Create(ctx context.Context, claim *WarrantyClaim) error

	// IncrementCardClaims bumps the parent card's claim counter and stamps
	// last_claim_date in one atomic statement.
	IncrementCardClaims(ctx context.Context, companyID, cardID string) (bool, error)

	// DecrementCardClaims lowers the counter, guarded so it never goes
	// below zero.
	DecrementCardClaims(ctx context.Context, companyID, cardID string) (bool, error)

	FindByIDAndCompany(ctx context.Context, companyID, id string) (*WarrantyClaim, error)
	FindAllByCard(ctx context.Context, companyID, cardID string, limit, offset int) ([]WarrantyClaim, error)
	CountByCard(ctx context.Context, companyID, cardID string) (int64, error)

	// UpdateStatusFrom lands the move only while the claim still holds the
	// expected status. A move into COMPLETED stamps actual_resolution_date
	// unless it is already set.
	UpdateStatusFrom(ctx context.Context, companyID, id, from, to string) (bool, error)

	UpdateResolution(ctx context.Context, companyID, id, resolutionType, description string, cost decimal.Decimal, approverID *uuid.UUID) (bool, error)
	AddCommunication(ctx context.Context, entry *CommunicationEntry) error
	FindCommunications(ctx context.Context, claimID string) ([]CommunicationEntry, error)
	SoftDeleteIfDeletable(ctx context.Context, companyID, id string) (bool, error)
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

func (r *repository) FindCardForClaim(ctx context.Context, companyID, cardID string) (*CardSnapshot, error) {
	query := `
SELECT id, customer_id, status, end_date
FROM warranty_cards
WHERE id = $2 AND company_id = $1 AND deleted_at IS NULL
`
	var snap CardSnapshot
	err := r.querier().QueryRowContext(ctx, query, companyID, cardID).Scan(
		&snap.ID, &snap.CustomerID, &snap.Status, &snap.EndDate,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *repository) Create(ctx context.Context, claim *WarrantyClaim) error {
	query := `
INSERT INTO warranty_claims (
	id, company_id, warranty_card_id, claim_number,
	claim_type, priority, severity, issue_description, evidence,
	status, resolution_cost, reported_date, created_by,
	created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
`
	_, err := r.execer().ExecContext(ctx, query,
		claim.ID, claim.CompanyID, claim.WarrantyCardID, claim.ClaimNumber,
		claim.ClaimType, claim.Priority, claim.Severity, claim.IssueDescription, claim.Evidence,
		claim.Status, claim.ResolutionCost, claim.ReportedDate, claim.CreatedBy,
	)
	return err
}

func (r *repository) IncrementCardClaims(ctx context.Context, companyID, cardID string) (bool, error) {
	query := `
UPDATE warranty_cards
SET total_claims = total_claims + 1, last_claim_date = now(), updated_at = now()
WHERE id = $2 AND company_id = $1 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, companyID, cardID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) DecrementCardClaims(ctx context.Context, companyID, cardID string) (bool, error) {
	query := `
UPDATE warranty_cards
SET total_claims = total_claims - 1, updated_at = now()
WHERE id = $2 AND company_id = $1 AND total_claims > 0 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, companyID, cardID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*WarrantyClaim, error) {
	query := `
SELECT
	id, company_id, warranty_card_id, claim_number,
	claim_type, priority, severity, issue_description, evidence, status,
	resolution_type, resolution_description, resolution_cost, resolution_approver_id,
	reported_date, actual_resolution_date, created_by, created_at, updated_at
FROM warranty_claims
WHERE id = $2 AND company_id = $1 AND deleted_at IS NULL
`
	var claim WarrantyClaim
	err := r.querier().QueryRowContext(ctx, query, companyID, id).Scan(
		&claim.ID, &claim.CompanyID, &claim.WarrantyCardID, &claim.ClaimNumber,
		&claim.ClaimType, &claim.Priority, &claim.Severity, &claim.IssueDescription, &claim.Evidence, &claim.Status,
		&claim.ResolutionType, &claim.ResolutionDescription, &claim.ResolutionCost, &claim.ResolutionApproverID,
		&claim.ReportedDate, &claim.ActualResolutionDate, &claim.CreatedBy, &claim.CreatedAt, &claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *repository) FindAllByCard(ctx context.Context, companyID, cardID string, limit, offset int) ([]WarrantyClaim, error) {
	query := `
SELECT
	id, company_id, warranty_card_id, claim_number,
	claim_type, priority, severity, issue_description, evidence, status,
	resolution_type, resolution_description, resolution_cost, resolution_approver_id,
	reported_date, actual_resolution_date, created_by, created_at, updated_at
FROM warranty_claims
WHERE company_id = $1 AND warranty_card_id = $2 AND deleted_at IS NULL
ORDER BY reported_date DESC
LIMIT $3 OFFSET $4
`
	rows, err := r.querier().QueryContext(ctx, query, companyID, cardID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []WarrantyClaim
	for rows.Next() {
		var claim WarrantyClaim
		if err := rows.Scan(
			&claim.ID, &claim.CompanyID, &claim.WarrantyCardID, &claim.ClaimNumber,
			&claim.ClaimType, &claim.Priority, &claim.Severity, &claim.IssueDescription, &claim.Evidence, &claim.Status,
			&claim.ResolutionType, &claim.ResolutionDescription, &claim.ResolutionCost, &claim.ResolutionApproverID,
			&claim.ReportedDate, &claim.ActualResolutionDate, &claim.CreatedBy, &claim.CreatedAt, &claim.UpdatedAt,
		); err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

func (r *repository) CountByCard(ctx context.Context, companyID, cardID string) (int64, error) {
	query := `
SELECT count(*)
FROM warranty_claims
WHERE company_id = $1 AND warranty_card_id = $2 AND deleted_at IS NULL
`
	var total int64
	err := r.querier().QueryRowContext(ctx, query, companyID, cardID).Scan(&total)
	return total, err
}

func (r *repository) UpdateStatusFrom(ctx context.Context, companyID, id, from, to string) (bool, error) {
	query := `
UPDATE warranty_claims
SET status = $4,
	actual_resolution_date = CASE
		WHEN $4 = 'COMPLETED' THEN COALESCE(actual_resolution_date, now())
		ELSE actual_resolution_date
	END,
	updated_at = now()
WHERE id = $2 AND company_id = $1 AND status = $3 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, companyID, id, from, to)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) UpdateResolution(ctx context.Context, companyID, id, resolutionType, description string, cost decimal.Decimal, approverID *uuid.UUID) (bool, error) {
	query := `
UPDATE warranty_claims
SET resolution_type = $3,
	resolution_description = $4,
	resolution_cost = $5,
	resolution_approver_id = $6,
	updated_at = now()
WHERE id = $2 AND company_id = $1 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, companyID, id, resolutionType, description, cost, approverID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) AddCommunication(ctx context.Context, entry *CommunicationEntry) error {
	query := `
INSERT INTO claim_communications (
	id, warranty_claim_id, author_id, author_role, channel, message, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, now())
`
	_, err := r.execer().ExecContext(ctx, query,
		entry.ID, entry.WarrantyClaimID, entry.AuthorID,
		entry.AuthorRole, entry.Channel, entry.Message,
	)
	return err
}

func (r *repository) SoftDeleteIfDeletable(ctx context.Context, companyID, id string) (bool, error) {
	query := `
UPDATE warranty_claims
SET deleted_at = now(), updated_at = now()
WHERE id = $2
	AND company_id = $1
	AND status NOT IN ('IN_PROGRESS', 'COMPLETED')
	AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, companyID, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// FindCommunications loads the contact log oldest first.
func (r *repository) FindCommunications(ctx context.Context, claimID string) ([]CommunicationEntry, error) {
	query := `
SELECT id, warranty_claim_id, author_id, author_role, channel, message, created_at
FROM claim_communications
WHERE warranty_claim_id = $1
ORDER BY created_at ASC
`
	rows, err := r.querier().QueryContext(ctx, query, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CommunicationEntry
	for rows.Next() {
		var e CommunicationEntry
		if err := rows.Scan(
			&e.ID, &e.WarrantyClaimID, &e.AuthorID, &e.AuthorRole,
			&e.Channel, &e.Message, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
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
