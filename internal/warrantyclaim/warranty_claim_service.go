package warrantyclaim

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-erp/internal/events"
	"go-erp/internal/messaging/kafka"
	"go-erp/internal/shared/contextutil"
	"go-erp/internal/shared/counter"
	warrantyclaimerrors "go-erp/internal/warrantyclaim/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=warranty_claim_service.go -destination=mock/warranty_claim_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID, actorRole string, req CreateClaimRequest) (*WarrantyClaimResponse, error)
	UpdateStatus(ctx context.Context, companyID, actorID, id string, req UpdateClaimStatusRequest) (*WarrantyClaimResponse, error)
	UpdateResolution(ctx context.Context, companyID, id string, req UpdateResolutionRequest) (*WarrantyClaimResponse, error)
	AddCommunication(ctx context.Context, companyID, actorID, actorRole, id string, req AddCommunicationRequest) (*CommunicationResponse, error)
	GetAllByCard(ctx context.Context, companyID, cardID string, limit, offset int) ([]WarrantyClaimResponse, int64, error)
	GetByID(ctx context.Context, companyID, id string) (*WarrantyClaimResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db          *sql.DB
	repo        Repository
	counterRepo counter.Repository
	outboxRepo  kafka.OutboxRepository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("warrantyclaim.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("warrantyclaim.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		counterRepo: counterRepo,
		outboxRepo:  outboxRepo,
		logger:      l,
	}
}

// Create files a claim against a card. Preconditions are checked in order
// and the first failure wins: the card must exist, must be ACTIVE, and must
// not be past its end date. The claim insert and the card counter bump land
// in one transaction.
func (s *service) Create(ctx context.Context, companyID, actorID, actorRole string, req CreateClaimRequest) (*WarrantyClaimResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, warrantyclaimerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, warrantyclaimerrors.ErrInvalidActorID
	}
	cardUUID, err := uuid.Parse(req.WarrantyCardID)
	if err != nil {
		return nil, warrantyclaimerrors.ErrInvalidCardID
	}

	priority := req.Priority
	if priority == "" {
		priority = "MEDIUM"
	}
	severity := req.Severity
	if severity == "" {
		severity = SeverityMedium
	}

	var evidence EvidenceList
	for _, e := range req.Evidence {
		evidence = append(evidence, Evidence{
			Kind:        e.Kind,
			URL:         e.URL,
			Description: e.Description,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	outboxQtx := s.outboxRepo.WithTx(tx)

	card, err := qtx.FindCardForClaim(ctx, companyID, req.WarrantyCardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, warrantyclaimerrors.ErrCardNotFound
		}
		return nil, err
	}
	if card.Status != "ACTIVE" {
		return nil, warrantyclaimerrors.ErrWarrantyNotActive
	}
	if time.Now().UTC().After(card.EndDate) {
		return nil, warrantyclaimerrors.ErrWarrantyExpired
	}

	seq, err := s.counterRepo.GetNextValue(ctx, companyID, counter.TypeWarrantyClaim)
	if err != nil {
		return nil, err
	}
	claimNumber := fmt.Sprintf("CLM-%d-%05d", time.Now().UTC().Year(), seq)

	claim := &WarrantyClaim{
		ID:               uuid.New(),
		CompanyID:        companyUUID,
		WarrantyCardID:   cardUUID,
		ClaimNumber:      claimNumber,
		ClaimType:        req.ClaimType,
		Priority:         priority,
		Severity:         severity,
		IssueDescription: req.IssueDescription,
		Evidence:         evidence,
		Status:           ClaimStatusPending,
		ResolutionCost:   decimal.Zero,
		ReportedDate:     time.Now().UTC(),
		CreatedBy:        actorUUID,
	}

	if err := qtx.Create(ctx, claim); err != nil {
		s.logger.Error("create warranty claim failed",
			zap.String("claim_number", claimNumber),
			zap.Error(err),
		)
		return nil, err
	}

	bumped, err := qtx.IncrementCardClaims(ctx, companyID, req.WarrantyCardID)
	if err != nil {
		return nil, err
	}
	if !bumped {
		return nil, warrantyclaimerrors.ErrCardNotFound
	}

	if err := s.enqueueClaimEvent(ctx, outboxQtx, claim, card.CustomerID, events.WarrantyClaimFiled); err != nil {
		return nil, err
	}

	note := &CommunicationEntry{
		ID:              uuid.New(),
		WarrantyClaimID: claim.ID,
		AuthorID:        actorUUID,
		AuthorRole:      actorRole,
		Channel:         "NOTE",
		Message:         "claim filed",
	}
	if err := qtx.AddCommunication(ctx, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("warranty claim filed",
		zap.String("claim_number", claimNumber),
		zap.String("warranty_card_id", req.WarrantyCardID),
	)

	resp := mapToResponse(claim)
	resp.Communications = append(resp.Communications, mapCommunicationToResponse(*note))
	return &resp, nil
}

// UpdateStatus moves the claim through the closed transition table. The
// first move into COMPLETED stamps the resolution date and emits the
// resolved event; repeat COMPLETED updates are accepted but change nothing.
func (s *service) UpdateStatus(ctx context.Context, companyID, actorID, id string, req UpdateClaimStatusRequest) (*WarrantyClaimResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, warrantyclaimerrors.ErrInvalidClaimID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	outboxQtx := s.outboxRepo.WithTx(tx)

	claim, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, warrantyclaimerrors.ErrClaimNotFound
		}
		return nil, err
	}

	if !isAllowedStatusTransition(claim.Status, req.Status) {
		return nil, warrantyclaimerrors.ErrInvalidStatusTransition
	}

	moved, err := qtx.UpdateStatusFrom(ctx, companyID, id, claim.Status, req.Status)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, warrantyclaimerrors.ErrStatusConflict
	}

	firstCompletion := req.Status == ClaimStatusCompleted && claim.ActualResolutionDate == nil
	if firstCompletion {
		card, err := qtx.FindCardForClaim(ctx, companyID, claim.WarrantyCardID.String())
		if err != nil {
			return nil, err
		}
		claim.Status = ClaimStatusCompleted
		if err := s.enqueueClaimEvent(ctx, outboxQtx, claim, card.CustomerID, events.WarrantyClaimResolved); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("claim status updated",
		zap.String("claim_id", id),
		zap.String("to", req.Status),
		zap.Bool("first_completion", firstCompletion),
	)

	return s.GetByID(ctx, companyID, id)
}

// UpdateResolution replaces the resolution fields. It stays allowed after
// completion; only the resolution date stamp is immutable.
func (s *service) UpdateResolution(ctx context.Context, companyID, id string, req UpdateResolutionRequest) (*WarrantyClaimResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, warrantyclaimerrors.ErrInvalidClaimID
	}

	cost, err := decimal.NewFromString(req.Cost)
	if err != nil || cost.IsNegative() {
		return nil, warrantyclaimerrors.ErrInvalidCost
	}

	var approverID *uuid.UUID
	if req.ApproverID != "" {
		parsed, err := uuid.Parse(req.ApproverID)
		if err != nil {
			return nil, warrantyclaimerrors.ErrInvalidApproverID
		}
		approverID = &parsed
	}

	updated, err := s.repo.UpdateResolution(ctx, companyID, id, req.ResolutionType, req.Description, cost, approverID)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, warrantyclaimerrors.ErrClaimNotFound
	}

	s.logger.Info("claim resolution updated",
		zap.String("claim_id", id),
		zap.String("resolution_type", req.ResolutionType),
		zap.String("cost", cost.String()),
	)

	return s.GetByID(ctx, companyID, id)
}

func (s *service) AddCommunication(ctx context.Context, companyID, actorID, actorRole, id string, req AddCommunicationRequest) (*CommunicationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, warrantyclaimerrors.ErrInvalidClaimID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, warrantyclaimerrors.ErrInvalidActorID
	}

	claim, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, warrantyclaimerrors.ErrClaimNotFound
		}
		return nil, err
	}

	channel := req.Channel
	if channel == "" {
		channel = "NOTE"
	}

	entry := &CommunicationEntry{
		ID:              uuid.New(),
		WarrantyClaimID: claim.ID,
		AuthorID:        actorUUID,
		AuthorRole:      actorRole,
		Channel:         channel,
		Message:         req.Message,
	}
	if err := s.repo.AddCommunication(ctx, entry); err != nil {
		return nil, err
	}

	resp := mapCommunicationToResponse(*entry)
	return &resp, nil
}

func (s *service) GetAllByCard(ctx context.Context, companyID, cardID string, limit, offset int) ([]WarrantyClaimResponse, int64, error) {
	if _, err := uuid.Parse(cardID); err != nil {
		return nil, 0, warrantyclaimerrors.ErrInvalidCardID
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	claims, err := s.repo.FindAllByCard(ctx, companyID, cardID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByCard(ctx, companyID, cardID)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]WarrantyClaimResponse, len(claims))
	for i := range claims {
		resp[i] = mapToResponse(&claims[i])
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (*WarrantyClaimResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, warrantyclaimerrors.ErrInvalidClaimID
	}

	claim, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, warrantyclaimerrors.ErrClaimNotFound
		}
		return nil, err
	}

	communications, err := s.repo.FindCommunications(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := mapToResponse(claim)
	for _, e := range communications {
		resp.Communications = append(resp.Communications, mapCommunicationToResponse(e))
	}
	return &resp, nil
}

// Delete removes a claim that never went into fulfilment and gives the
// parent card its claim slot back.
func (s *service) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return warrantyclaimerrors.ErrInvalidClaimID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	claim, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return warrantyclaimerrors.ErrClaimNotFound
		}
		return err
	}

	deleted, err := qtx.SoftDeleteIfDeletable(ctx, companyID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return warrantyclaimerrors.ErrDeleteNotAllowed
	}

	lowered, err := qtx.DecrementCardClaims(ctx, companyID, claim.WarrantyCardID.String())
	if err != nil {
		return err
	}
	if !lowered {
		s.logger.Warn("claim counter already at zero on delete",
			zap.String("warranty_card_id", claim.WarrantyCardID.String()),
		)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("warranty claim deleted", zap.String("claim_id", id))
	return nil
}

func (s *service) enqueueClaimEvent(ctx context.Context, outbox kafka.OutboxRepository, claim *WarrantyClaim, customerID uuid.UUID, eventType string) error {
	evt := events.WarrantyClaimEvent{
		EventType:      eventType,
		ClaimID:        claim.ID.String(),
		ClaimNumber:    claim.ClaimNumber,
		WarrantyCardID: claim.WarrantyCardID.String(),
		CompanyID:      claim.CompanyID.String(),
		CustomerID:     customerID.String(),
		Status:         claim.Status,
		OccurredAt:     time.Now().UTC(),
	}
	if claim.ResolutionType != nil {
		evt.ResolutionType = *claim.ResolutionType
		evt.ResolutionCost = claim.ResolutionCost.String()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "warranty_claim",
		AggregateID:   claim.ID.String(),
		EventType:     eventType,
		Topic:         events.WarrantyClaimTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func mapToResponse(claim *WarrantyClaim) WarrantyClaimResponse {
	resp := WarrantyClaimResponse{
		ID:               claim.ID.String(),
		CompanyID:        claim.CompanyID.String(),
		WarrantyCardID:   claim.WarrantyCardID.String(),
		ClaimNumber:      claim.ClaimNumber,
		ClaimType:        claim.ClaimType,
		Priority:         claim.Priority,
		Severity:         claim.Severity,
		IssueDescription: claim.IssueDescription,
		Evidence:         claim.Evidence,
		Status:           claim.Status,

		ResolutionType:        claim.ResolutionType,
		ResolutionDescription: claim.ResolutionDescription,
		ResolutionCost:        claim.ResolutionCost.String(),

		ReportedDate:         claim.ReportedDate,
		ActualResolutionDate: claim.ActualResolutionDate,

		CreatedAt: claim.CreatedAt,
		UpdatedAt: claim.UpdatedAt,
	}
	if claim.ResolutionApproverID != nil {
		approver := claim.ResolutionApproverID.String()
		resp.ResolutionApproverID = &approver
	}
	return resp
}

func mapCommunicationToResponse(e CommunicationEntry) CommunicationResponse {
	return CommunicationResponse{
		ID:         e.ID.String(),
		AuthorID:   e.AuthorID.String(),
		AuthorRole: e.AuthorRole,
		Channel:    e.Channel,
		Message:    e.Message,
		CreatedAt:  e.CreatedAt,
	}
}
