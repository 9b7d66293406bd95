// services/mutation_coordinator.go
package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/souqly/souqly_backend/models"
)

// SellerMutator is the mutating surface the coordinator needs from the
// gateway.
type SellerMutator interface {
	UpdateDocumentStatus(ctx context.Context, req models.DocumentUpdateRequest) (*models.DocumentUpdateResult, error)
	ApproveVerification(ctx context.Context, req models.VerificationActionRequest) (*models.VerificationActionResult, error)
	RejectVerification(ctx context.Context, req models.VerificationActionRequest) (*models.VerificationActionResult, error)
	ApprovePayout(ctx context.Context, req models.PayoutActionRequest) (*models.PayoutActionResult, error)
	RejectPayout(ctx context.Context, req models.PayoutActionRequest) (*models.PayoutActionResult, error)
	ResetBalance(ctx context.Context, req models.BalanceResetUpstreamRequest) (*models.BalanceResetResult, error)
	ResetLockedBalance(ctx context.Context, req models.BalanceResetUpstreamRequest) (*models.BalanceResetResult, error)
}

// AuditRecorder persists mutation audit entries. Recording is
// best-effort; failures never fail the mutation itself.
type AuditRecorder interface {
	Record(audit models.MutationAudit)
}

// MutationCoordinator executes status-changing actions against the
// backend of record. It enforces at most one in-flight action per
// target, validates that every response echoes the requested status,
// and is the only component allowed to merge into the cached
// projection. No optimistic updates: the projection only advances on a
// confirmed, validated backend response.
type MutationCoordinator struct {
	gateway SellerMutator
	store   *ProjectionStore
	audit   AuditRecorder // may be nil

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewMutationCoordinator creates a coordinator over the given gateway
// and projection store.
func NewMutationCoordinator(gateway SellerMutator, store *ProjectionStore, audit AuditRecorder) *MutationCoordinator {
	return &MutationCoordinator{
		gateway:  gateway,
		store:    store,
		audit:    audit,
		inflight: make(map[string]struct{}),
	}
}

func targetKey(sellerID, kind, target string) string {
	return sellerID + ":" + kind + ":" + target
}

// begin claims the single-flight slot for a target. A concurrent
// trigger is rejected, never queued.
func (mc *MutationCoordinator) begin(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, busy := mc.inflight[key]; busy {
		return ErrStillProcessing
	}
	mc.inflight[key] = struct{}{}
	return nil
}

func (mc *MutationCoordinator) end(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.inflight, key)
}

func (mc *MutationCoordinator) record(attemptID, sellerID, adminID, action, target, requestedStatus, reason, outcome string, cause error) {
	if mc.audit == nil {
		return
	}
	entry := models.MutationAudit{
		AttemptID:       attemptID,
		SellerID:        sellerID,
		AdminID:         adminID,
		Action:          action,
		Target:          target,
		RequestedStatus: requestedStatus,
		Reason:          reason,
		Outcome:         outcome,
		CreatedAt:       time.Now(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	mc.audit.Record(entry)
}

// UpdateDocumentStatus verifies or rejects one verification document.
// The response must echo the updated document with the requested status
// or nothing is merged.
func (mc *MutationCoordinator) UpdateDocumentStatus(ctx context.Context, sellerID, documentType, status, reason, adminID string) (*models.DocumentInfo, error) {
	if status != models.StatusVerified && status != models.StatusRejected {
		return nil, fmt.Errorf("invalid document status %q", status)
	}

	// Terminal guard before any request is issued. Client-side
	// belt-and-braces, not a security boundary.
	if seller, ok := mc.store.Get(sellerID); ok {
		if doc := seller.VerificationDocuments[documentType]; doc != nil && IsTerminalStatus(doc.Status) {
			mc.record("", sellerID, adminID, "document_status", documentType, status, reason, models.AuditOutcomeRejectedBy, ErrAlreadyProcessed)
			return nil, ErrAlreadyProcessed
		}
	}

	key := targetKey(sellerID, "document", documentType)
	if err := mc.begin(key); err != nil {
		return nil, err
	}
	defer mc.end(key)

	attemptID := uuid.New().String()
	result, err := mc.gateway.UpdateDocumentStatus(ctx, models.DocumentUpdateRequest{
		SellerID:     sellerID,
		DocumentType: documentType,
		Status:       status,
		Reason:       reason,
	})
	if err != nil {
		mc.store.Invalidate(sellerID)
		mc.record(attemptID, sellerID, adminID, "document_status", documentType, status, reason, models.AuditOutcomeFailed, err)
		return nil, err
	}

	echoed := result.VerificationDocuments[documentType]
	if echoed == nil || echoed.Status != status {
		mc.store.Invalidate(sellerID)
		got := "<missing>"
		if echoed != nil {
			got = echoed.Status
		}
		log.Printf("Document status mismatch for seller %s, document %s: requested %q, backend echoed %q (attempt %s)",
			sellerID, documentType, status, got, attemptID)
		mc.record(attemptID, sellerID, adminID, "document_status", documentType, status, reason, models.AuditOutcomeMismatch, ErrStatusMismatch)
		return nil, ErrStatusMismatch
	}

	mc.store.MergeDocument(sellerID, documentType, echoed)
	mc.record(attemptID, sellerID, adminID, "document_status", documentType, status, reason, models.AuditOutcomeConfirmed, nil)
	info := ResolveDocument(echoed)
	return &info, nil
}

// ApproveVerification approves a seller's verification
func (mc *MutationCoordinator) ApproveVerification(ctx context.Context, sellerID, adminID string) (*models.VerificationActionResult, error) {
	return mc.verificationAction(ctx, sellerID, adminID, models.StatusVerified, "")
}

// RejectVerification rejects a seller's verification with a reason
func (mc *MutationCoordinator) RejectVerification(ctx context.Context, sellerID, reason, adminID string) (*models.VerificationActionResult, error) {
	return mc.verificationAction(ctx, sellerID, adminID, models.StatusRejected, reason)
}

func (mc *MutationCoordinator) verificationAction(ctx context.Context, sellerID, adminID, status, reason string) (*models.VerificationActionResult, error) {
	action := "verification_approve"
	if status == models.StatusRejected {
		action = "verification_reject"
	}

	key := targetKey(sellerID, "verification", "seller")
	if err := mc.begin(key); err != nil {
		return nil, err
	}
	defer mc.end(key)

	attemptID := uuid.New().String()
	req := models.VerificationActionRequest{SellerID: sellerID, Reason: reason}

	var result *models.VerificationActionResult
	var err error
	if status == models.StatusVerified {
		result, err = mc.gateway.ApproveVerification(ctx, req)
	} else {
		result, err = mc.gateway.RejectVerification(ctx, req)
	}
	if err != nil {
		mc.store.Invalidate(sellerID)
		mc.record(attemptID, sellerID, adminID, action, "seller", status, reason, models.AuditOutcomeFailed, err)
		return nil, err
	}

	if result.VerificationStatus != status {
		mc.store.Invalidate(sellerID)
		log.Printf("Verification status mismatch for seller %s: requested %q, backend echoed %q (attempt %s)",
			sellerID, status, result.VerificationStatus, attemptID)
		mc.record(attemptID, sellerID, adminID, action, "seller", status, reason, models.AuditOutcomeMismatch, ErrStatusMismatch)
		return nil, ErrStatusMismatch
	}

	mc.store.MergeVerification(sellerID, result)
	mc.record(attemptID, sellerID, adminID, action, "seller", status, reason, models.AuditOutcomeConfirmed, nil)
	return result, nil
}

// ApprovePayout approves a payout through a specific payment method.
// The method must not already be verified.
func (mc *MutationCoordinator) ApprovePayout(ctx context.Context, sellerID, paymentMethodID, adminID string) (*models.PayoutActionResult, error) {
	if seller, ok := mc.store.Get(sellerID); ok {
		for _, record := range seller.PaymentMethodRecords {
			if record.ID == paymentMethodID && record.VerificationStatus == models.StatusVerified {
				mc.record("", sellerID, adminID, "payout_approve", paymentMethodID, models.StatusVerified, "", models.AuditOutcomeRejectedBy, ErrAlreadyProcessed)
				return nil, ErrAlreadyProcessed
			}
		}
	}

	key := targetKey(sellerID, "payout", paymentMethodID)
	if err := mc.begin(key); err != nil {
		return nil, err
	}
	defer mc.end(key)

	attemptID := uuid.New().String()
	result, err := mc.gateway.ApprovePayout(ctx, models.PayoutActionRequest{SellerID: sellerID, PaymentMethod: paymentMethodID})
	if err != nil {
		mc.store.Invalidate(sellerID)
		mc.record(attemptID, sellerID, adminID, "payout_approve", paymentMethodID, models.StatusVerified, "", models.AuditOutcomeFailed, err)
		return nil, err
	}

	record := result.PaymentMethodRecord
	if record == nil || record.ID != paymentMethodID || record.VerificationStatus != models.StatusVerified {
		mc.store.Invalidate(sellerID)
		log.Printf("Payout approval mismatch for seller %s, method %s: backend echoed %+v (attempt %s)",
			sellerID, paymentMethodID, result, attemptID)
		mc.record(attemptID, sellerID, adminID, "payout_approve", paymentMethodID, models.StatusVerified, "", models.AuditOutcomeMismatch, ErrStatusMismatch)
		return nil, ErrStatusMismatch
	}

	mc.store.MergePayoutStatus(sellerID, result, "")
	mc.record(attemptID, sellerID, adminID, "payout_approve", paymentMethodID, models.StatusVerified, "", models.AuditOutcomeConfirmed, nil)
	return result, nil
}

// RejectPayout rejects a seller's payout with a reason
func (mc *MutationCoordinator) RejectPayout(ctx context.Context, sellerID, reason, adminID string) (*models.PayoutActionResult, error) {
	key := targetKey(sellerID, "payout", "seller")
	if err := mc.begin(key); err != nil {
		return nil, err
	}
	defer mc.end(key)

	attemptID := uuid.New().String()
	result, err := mc.gateway.RejectPayout(ctx, models.PayoutActionRequest{SellerID: sellerID, Reason: reason})
	if err != nil {
		mc.store.Invalidate(sellerID)
		mc.record(attemptID, sellerID, adminID, "payout_reject", "seller", models.StatusRejected, reason, models.AuditOutcomeFailed, err)
		return nil, err
	}

	if result.PayoutStatus != models.StatusRejected {
		mc.store.Invalidate(sellerID)
		log.Printf("Payout rejection mismatch for seller %s: backend echoed %q (attempt %s)",
			sellerID, result.PayoutStatus, attemptID)
		mc.record(attemptID, sellerID, adminID, "payout_reject", "seller", models.StatusRejected, reason, models.AuditOutcomeMismatch, ErrStatusMismatch)
		return nil, ErrStatusMismatch
	}

	mc.store.MergePayoutStatus(sellerID, result, reason)
	mc.record(attemptID, sellerID, adminID, "payout_reject", "seller", models.StatusRejected, reason, models.AuditOutcomeConfirmed, nil)
	return result, nil
}

// ResetBalance resets a seller's balance. When newBalance is provided
// the echoed snapshot must report that exact value.
func (mc *MutationCoordinator) ResetBalance(ctx context.Context, sellerID string, newBalance *float64, reason, adminID string) (*models.BalanceSnapshot, error) {
	return mc.balanceAction(ctx, sellerID, newBalance, reason, adminID, false)
}

// ResetLockedBalance resets a seller's locked balance
func (mc *MutationCoordinator) ResetLockedBalance(ctx context.Context, sellerID string, newBalance *float64, reason, adminID string) (*models.BalanceSnapshot, error) {
	return mc.balanceAction(ctx, sellerID, newBalance, reason, adminID, true)
}

func (mc *MutationCoordinator) balanceAction(ctx context.Context, sellerID string, newBalance *float64, reason, adminID string, locked bool) (*models.BalanceSnapshot, error) {
	action := "balance_reset"
	target := "balance"
	if locked {
		action = "locked_balance_reset"
		target = "lockedBalance"
	}

	key := targetKey(sellerID, "balance", target)
	if err := mc.begin(key); err != nil {
		return nil, err
	}
	defer mc.end(key)

	attemptID := uuid.New().String()
	req := models.BalanceResetUpstreamRequest{SellerID: sellerID, NewBalance: newBalance, Reason: reason}

	var result *models.BalanceResetResult
	var err error
	if locked {
		result, err = mc.gateway.ResetLockedBalance(ctx, req)
	} else {
		result, err = mc.gateway.ResetBalance(ctx, req)
	}
	if err != nil {
		mc.store.Invalidate(sellerID)
		mc.record(attemptID, sellerID, adminID, action, target, "", reason, models.AuditOutcomeFailed, err)
		return nil, err
	}

	if !balanceEchoMatches(result, newBalance, locked) {
		mc.store.Invalidate(sellerID)
		log.Printf("Balance reset mismatch for seller %s (%s): echoed %+v (attempt %s)",
			sellerID, target, result.Snapshot, attemptID)
		mc.record(attemptID, sellerID, adminID, action, target, "", reason, models.AuditOutcomeMismatch, ErrStatusMismatch)
		return nil, ErrStatusMismatch
	}

	mc.store.MergeBalance(sellerID, &result.Snapshot)
	mc.record(attemptID, sellerID, adminID, action, target, "", reason, models.AuditOutcomeConfirmed, nil)
	return &result.Snapshot, nil
}

// balanceEchoMatches validates a balance reset echo: the snapshot must
// carry the affected field, and when an explicit value was requested it
// must match exactly.
func balanceEchoMatches(result *models.BalanceResetResult, requested *float64, locked bool) bool {
	if result == nil {
		return false
	}
	echoed := result.Snapshot.Balance
	if locked {
		echoed = result.Snapshot.LockedBalance
	}
	if echoed == nil {
		return false
	}
	if requested != nil && *echoed != *requested {
		return false
	}
	return true
}
