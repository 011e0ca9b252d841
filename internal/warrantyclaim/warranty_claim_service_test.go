package warrantyclaim_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-erp/internal/messaging/kafka"
	"go-erp/internal/warrantyclaim"
	warrantyclaimerrors "go-erp/internal/warrantyclaim/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeClaimRepository struct {
	findCardForClaimFn      func(ctx context.Context, companyID, cardID string) (*warrantyclaim.CardSnapshot, error)
	createFn                func(ctx context.Context, claim *warrantyclaim.WarrantyClaim) error
	incrementCardClaimsFn   func(ctx context.Context, companyID, cardID string) (bool, error)
	decrementCardClaimsFn   func(ctx context.Context, companyID, cardID string) (bool, error)
	findByIDAndCompanyFn    func(ctx context.Context, companyID, id string) (*warrantyclaim.WarrantyClaim, error)
	findAllByCardFn         func(ctx context.Context, companyID, cardID string, limit, offset int) ([]warrantyclaim.WarrantyClaim, error)
	countByCardFn           func(ctx context.Context, companyID, cardID string) (int64, error)
	updateStatusFromFn      func(ctx context.Context, companyID, id, from, to string) (bool, error)
	updateResolutionFn      func(ctx context.Context, companyID, id, resolutionType, description string, cost decimal.Decimal, approverID *uuid.UUID) (bool, error)
	addCommunicationFn      func(ctx context.Context, entry *warrantyclaim.CommunicationEntry) error
	findCommunicationsFn    func(ctx context.Context, claimID string) ([]warrantyclaim.CommunicationEntry, error)
	softDeleteIfDeletableFn func(ctx context.Context, companyID, id string) (bool, error)
}

func (f *fakeClaimRepository) WithTx(tx *sql.Tx) warrantyclaim.Repository { return f }

func (f *fakeClaimRepository) FindCardForClaim(ctx context.Context, companyID, cardID string) (*warrantyclaim.CardSnapshot, error) {
	if f.findCardForClaimFn != nil {
		return f.findCardForClaimFn(ctx, companyID, cardID)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClaimRepository) Create(ctx context.Context, claim *warrantyclaim.WarrantyClaim) error {
	if f.createFn != nil {
		return f.createFn(ctx, claim)
	}
	return nil
}

func (f *fakeClaimRepository) IncrementCardClaims(ctx context.Context, companyID, cardID string) (bool, error) {
	if f.incrementCardClaimsFn != nil {
		return f.incrementCardClaimsFn(ctx, companyID, cardID)
	}
	return true, nil
}

func (f *fakeClaimRepository) DecrementCardClaims(ctx context.Context, companyID, cardID string) (bool, error) {
	if f.decrementCardClaimsFn != nil {
		return f.decrementCardClaimsFn(ctx, companyID, cardID)
	}
	return true, nil
}

func (f *fakeClaimRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*warrantyclaim.WarrantyClaim, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClaimRepository) FindAllByCard(ctx context.Context, companyID, cardID string, limit, offset int) ([]warrantyclaim.WarrantyClaim, error) {
	if f.findAllByCardFn != nil {
		return f.findAllByCardFn(ctx, companyID, cardID, limit, offset)
	}
	return nil, nil
}

func (f *fakeClaimRepository) CountByCard(ctx context.Context, companyID, cardID string) (int64, error) {
	if f.countByCardFn != nil {
		return f.countByCardFn(ctx, companyID, cardID)
	}
	return 0, nil
}

func (f *fakeClaimRepository) UpdateStatusFrom(ctx context.Context, companyID, id, from, to string) (bool, error) {
	if f.updateStatusFromFn != nil {
		return f.updateStatusFromFn(ctx, companyID, id, from, to)
	}
	return true, nil
}

func (f *fakeClaimRepository) UpdateResolution(ctx context.Context, companyID, id, resolutionType, description string, cost decimal.Decimal, approverID *uuid.UUID) (bool, error) {
	if f.updateResolutionFn != nil {
		return f.updateResolutionFn(ctx, companyID, id, resolutionType, description, cost, approverID)
	}
	return true, nil
}

func (f *fakeClaimRepository) AddCommunication(ctx context.Context, entry *warrantyclaim.CommunicationEntry) error {
	if f.addCommunicationFn != nil {
		return f.addCommunicationFn(ctx, entry)
	}
	return nil
}

func (f *fakeClaimRepository) FindCommunications(ctx context.Context, claimID string) ([]warrantyclaim.CommunicationEntry, error) {
	if f.findCommunicationsFn != nil {
		return f.findCommunicationsFn(ctx, claimID)
	}
	return nil, nil
}

func (f *fakeClaimRepository) SoftDeleteIfDeletable(ctx context.Context, companyID, id string) (bool, error) {
	if f.softDeleteIfDeletableFn != nil {
		return f.softDeleteIfDeletableFn(ctx, companyID, id)
	}
	return true, nil
}

type fakeClaimCounter struct {
	next int64
}

func (f *fakeClaimCounter) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service warrantyclaim.Service
	repo    *fakeClaimRepository
	outbox  *fakeOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeClaimRepository{}
	outbox := &fakeOutboxRepository{}
	svc := warrantyclaim.NewService(db, repo, &fakeClaimCounter{}, outbox)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		outbox:  outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func activeCardSnapshot() *warrantyclaim.CardSnapshot {
	return &warrantyclaim.CardSnapshot{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Status:     "ACTIVE",
		EndDate:    time.Now().UTC().AddDate(1, 0, 0),
	}
}

func pendingClaim(companyID string) *warrantyclaim.WarrantyClaim {
	return &warrantyclaim.WarrantyClaim{
		ID:               uuid.New(),
		CompanyID:        uuid.MustParse(companyID),
		WarrantyCardID:   uuid.New(),
		ClaimNumber:      "CLM-2026-00001",
		ClaimType:        warrantyclaim.ClaimTypeDefect,
		Priority:         "MEDIUM",
		Severity:         warrantyclaim.SeverityMedium,
		IssueDescription: "device does not power on",
		Status:           warrantyclaim.ClaimStatusPending,
		ResolutionCost:   decimal.Zero,
		ReportedDate:     time.Now().UTC(),
		CreatedBy:        uuid.New(),
	}
}

func TestWarrantyClaimService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	cardID := uuid.New().String()

	baseReq := warrantyclaim.CreateClaimRequest{
		WarrantyCardID:   cardID,
		ClaimType:        warrantyclaim.ClaimTypeDefect,
		IssueDescription: "screen flickers after ten minutes of use",
	}

	t.Run("success files claim and bumps card counter", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findCardForClaimFn = func(ctx context.Context, cid, cardID string) (*warrantyclaim.CardSnapshot, error) {
			return activeCardSnapshot(), nil
		}
		bumped := false
		deps.repo.incrementCardClaimsFn = func(ctx context.Context, cid, cardID string) (bool, error) {
			bumped = true
			return true, nil
		}
		deps.repo.createFn = func(ctx context.Context, claim *warrantyclaim.WarrantyClaim) error {
			assert.Equal(t, warrantyclaim.ClaimStatusPending, claim.Status)
			assert.Equal(t, warrantyclaim.SeverityMedium, claim.Severity)
			assert.True(t, claim.ResolutionCost.IsZero())
			assert.Contains(t, claim.ClaimNumber, "CLM-")
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID, actorID, "SUPPORT", baseReq)

		assert.NoError(t, err)
		assert.Equal(t, warrantyclaim.ClaimStatusPending, resp.Status)
		assert.True(t, bumped)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "warranty_claim.filed", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative card not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx, companyID, actorID, "SUPPORT", baseReq)
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrCardNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative card not active", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findCardForClaimFn = func(ctx context.Context, cid, cardID string) (*warrantyclaim.CardSnapshot, error) {
			snap := activeCardSnapshot()
			snap.Status = "VOID"
			return snap, nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, "SUPPORT", baseReq)
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrWarrantyNotActive)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative card past end date", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findCardForClaimFn = func(ctx context.Context, cid, cardID string) (*warrantyclaim.CardSnapshot, error) {
			snap := activeCardSnapshot()
			snap.EndDate = time.Now().UTC().AddDate(0, -1, 0)
			return snap, nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, "SUPPORT", baseReq)
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrWarrantyExpired)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestWarrantyClaimService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	t.Run("first completion stamps date and emits event", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		claim := pendingClaim(companyID)
		claim.Status = warrantyclaim.ClaimStatusInProgress

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*warrantyclaim.WarrantyClaim, error) {
			return claim, nil
		}
		deps.repo.findCardForClaimFn = func(ctx context.Context, cid, cardID string) (*warrantyclaim.CardSnapshot, error) {
			return activeCardSnapshot(), nil
		}
		deps.repo.updateStatusFromFn = func(ctx context.Context, cid, id, from, to string) (bool, error) {
			assert.Equal(t, warrantyclaim.ClaimStatusInProgress, from)
			assert.Equal(t, warrantyclaim.ClaimStatusCompleted, to)
			return true, nil
		}

		_, err := deps.service.UpdateStatus(ctx, companyID, actorID, claim.ID.String(), warrantyclaim.UpdateClaimStatusRequest{
			Status: warrantyclaim.ClaimStatusCompleted,
		})

		assert.NoError(t, err)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "warranty_claim.resolved", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repeat completion is accepted without a second event", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		resolvedAt := time.Now().UTC().Add(-time.Hour)
		claim := pendingClaim(companyID)
		claim.Status = warrantyclaim.ClaimStatusCompleted
		claim.ActualResolutionDate = &resolvedAt

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*warrantyclaim.WarrantyClaim, error) {
			return claim, nil
		}

		_, err := deps.service.UpdateStatus(ctx, companyID, actorID, claim.ID.String(), warrantyclaim.UpdateClaimStatusRequest{
			Status: warrantyclaim.ClaimStatusCompleted,
		})

		assert.NoError(t, err)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative pending cannot jump to completed", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		claim := pendingClaim(companyID)

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*warrantyclaim.WarrantyClaim, error) {
			return claim, nil
		}

		_, err := deps.service.UpdateStatus(ctx, companyID, actorID, claim.ID.String(), warrantyclaim.UpdateClaimStatusRequest{
			Status: warrantyclaim.ClaimStatusCompleted,
		})

		assert.ErrorIs(t, err, warrantyclaimerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative rejected is terminal", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		claim := pendingClaim(companyID)
		claim.Status = warrantyclaim.ClaimStatusRejected

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*warrantyclaim.WarrantyClaim, error) {
			return claim, nil
		}

		_, err := deps.service.UpdateStatus(ctx, companyID, actorID, claim.ID.String(), warrantyclaim.UpdateClaimStatusRequest{
			Status: warrantyclaim.ClaimStatusApproved,
		})

		assert.ErrorIs(t, err, warrantyclaimerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative concurrent writer wins", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		claim := pendingClaim(companyID)

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*warrantyclaim.WarrantyClaim, error) {
			return claim, nil
		}
		deps.repo.updateStatusFromFn = func(ctx context.Context, cid, id, from, to string) (bool, error) {
			return false, nil
		}

		_, err := deps.service.UpdateStatus(ctx, companyID, actorID, claim.ID.String(), warrantyclaim.UpdateClaimStatusRequest{
			Status: warrantyclaim.ClaimStatusApproved,
		})

		assert.ErrorIs(t, err, warrantyclaimerrors.ErrStatusConflict)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestWarrantyClaimService_UpdateResolution(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		claim := pendingClaim(companyID)
		repair := warrantyclaim.ResolutionRepair
		claim.ResolutionType = &repair
		claim.ResolutionCost = decimal.RequireFromString("125.50")

		deps.repo.updateResolutionFn = func(ctx context.Context, cid, id, resolutionType, description string, cost decimal.Decimal, approverID *uuid.UUID) (bool, error) {
			assert.Equal(t, warrantyclaim.ResolutionRepair, resolutionType)
			assert.True(t, cost.Equal(decimal.RequireFromString("125.50")))
			assert.Nil(t, approverID)
			return true, nil
		}
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*warrantyclaim.WarrantyClaim, error) {
			return claim, nil
		}

		resp, err := deps.service.UpdateResolution(ctx, companyID, claim.ID.String(), warrantyclaim.UpdateResolutionRequest{
			ResolutionType: warrantyclaim.ResolutionRepair,
			Description:    "replaced display cable",
			Cost:           "125.50",
		})

		assert.NoError(t, err)
		assert.Equal(t, "125.5", resp.ResolutionCost)
	})

	t.Run("negative malformed cost", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.UpdateResolution(ctx, companyID, uuid.New().String(), warrantyclaim.UpdateResolutionRequest{
			ResolutionType: warrantyclaim.ResolutionRepair,
			Cost:           "abc",
		})
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrInvalidCost)
	})

	t.Run("negative negative cost", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.UpdateResolution(ctx, companyID, uuid.New().String(), warrantyclaim.UpdateResolutionRequest{
			ResolutionType: warrantyclaim.ResolutionRefund,
			Cost:           "-10",
		})
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrInvalidCost)
	})

	t.Run("negative claim not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.updateResolutionFn = func(ctx context.Context, cid, id, resolutionType, description string, cost decimal.Decimal, approverID *uuid.UUID) (bool, error) {
			return false, nil
		}

		_, err := deps.service.UpdateResolution(ctx, companyID, uuid.New().String(), warrantyclaim.UpdateResolutionRequest{
			ResolutionType: warrantyclaim.ResolutionRepair,
			Cost:           "10",
		})
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrClaimNotFound)
	})
}

func TestWarrantyClaimService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success gives the card its slot back", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		claim := pendingClaim(companyID)
		claim.Status = warrantyclaim.ClaimStatusCancelled

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*warrantyclaim.WarrantyClaim, error) {
			return claim, nil
		}
		lowered := false
		deps.repo.decrementCardClaimsFn = func(ctx context.Context, cid, cardID string) (bool, error) {
			assert.Equal(t, claim.WarrantyCardID.String(), cardID)
			lowered = true
			return true, nil
		}

		err := deps.service.Delete(ctx, companyID, claim.ID.String())

		assert.NoError(t, err)
		assert.True(t, lowered)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative in progress claims stay", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		claim := pendingClaim(companyID)
		claim.Status = warrantyclaim.ClaimStatusInProgress

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*warrantyclaim.WarrantyClaim, error) {
			return claim, nil
		}
		deps.repo.softDeleteIfDeletableFn = func(ctx context.Context, cid, id string) (bool, error) {
			return false, nil
		}

		err := deps.service.Delete(ctx, companyID, claim.ID.String())
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrDeleteNotAllowed)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		err := deps.service.Delete(ctx, companyID, uuid.New().String())
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrClaimNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestWarrantyClaimService_GetAllByCard(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	cardID := uuid.New().String()

	t.Run("success clamps pagination", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		claim := pendingClaim(companyID)
		deps.repo.findAllByCardFn = func(ctx context.Context, cid, cardID string, limit, offset int) ([]warrantyclaim.WarrantyClaim, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 0, offset)
			return []warrantyclaim.WarrantyClaim{*claim}, nil
		}
		deps.repo.countByCardFn = func(ctx context.Context, cid, cardID string) (int64, error) {
			return 1, nil
		}

		resp, total, err := deps.service.GetAllByCard(ctx, companyID, cardID, 0, -5)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, resp, 1)
		assert.Equal(t, claim.ClaimNumber, resp[0].ClaimNumber)
	})

	t.Run("negative bad card id", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, _, err := deps.service.GetAllByCard(ctx, companyID, "not-a-uuid", 20, 0)
		assert.ErrorIs(t, err, warrantyclaimerrors.ErrInvalidCardID)
	})
}
