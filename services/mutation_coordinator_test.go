package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/souqly/souqly_backend/models"
)

// fakeGateway implements SellerMutator with per-operation hooks and a
// request counter, so tests can assert that guarded calls never reach
// the wire.
type fakeGateway struct {
	calls int32

	updateDocument func(models.DocumentUpdateRequest) (*models.DocumentUpdateResult, error)
	approvePayout  func(models.PayoutActionRequest) (*models.PayoutActionResult, error)
	rejectPayout   func(models.PayoutActionRequest) (*models.PayoutActionResult, error)
	verification   func(models.VerificationActionRequest, string) (*models.VerificationActionResult, error)
	resetBalance   func(models.BalanceResetUpstreamRequest, bool) (*models.BalanceResetResult, error)
}

func (f *fakeGateway) UpdateDocumentStatus(ctx context.Context, req models.DocumentUpdateRequest) (*models.DocumentUpdateResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.updateDocument(req)
}

func (f *fakeGateway) ApproveVerification(ctx context.Context, req models.VerificationActionRequest) (*models.VerificationActionResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.verification(req, models.StatusVerified)
}

func (f *fakeGateway) RejectVerification(ctx context.Context, req models.VerificationActionRequest) (*models.VerificationActionResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.verification(req, models.StatusRejected)
}

func (f *fakeGateway) ApprovePayout(ctx context.Context, req models.PayoutActionRequest) (*models.PayoutActionResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.approvePayout(req)
}

func (f *fakeGateway) RejectPayout(ctx context.Context, req models.PayoutActionRequest) (*models.PayoutActionResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.rejectPayout(req)
}

func (f *fakeGateway) ResetBalance(ctx context.Context, req models.BalanceResetUpstreamRequest) (*models.BalanceResetResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.resetBalance(req, false)
}

func (f *fakeGateway) ResetLockedBalance(ctx context.Context, req models.BalanceResetUpstreamRequest) (*models.BalanceResetResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.resetBalance(req, true)
}

func (f *fakeGateway) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

func echoDocument(status string) func(models.DocumentUpdateRequest) (*models.DocumentUpdateResult, error) {
	return func(req models.DocumentUpdateRequest) (*models.DocumentUpdateResult, error) {
		return &models.DocumentUpdateResult{
			VerificationDocuments: map[string]*models.VerificationDocument{
				req.DocumentType: {URL: "https://x/doc.png", Status: status},
			},
		}, nil
	}
}

func TestUpdateDocumentStatus_ConfirmedMerge(t *testing.T) {
	store := seedStore(t)
	gateway := &fakeGateway{updateDocument: echoDocument(models.StatusVerified)}
	mc := NewMutationCoordinator(gateway, store, nil)

	info, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, models.StatusVerified, "", "admin1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.IsVerified || info.ShouldShowButtons {
		t.Errorf("resolved info wrong: %+v", info)
	}

	seller, _ := store.Get("s1")
	if seller.VerificationDocuments[models.DocumentIDProof].Status != models.StatusVerified {
		t.Error("confirmed response not merged into projection")
	}
	if store.IsStale("s1") {
		t.Error("confirmed mutation must not invalidate the projection")
	}
}

func TestUpdateDocumentStatus_EchoMismatchNeverMerged(t *testing.T) {
	store := seedStore(t)
	// Backend claims the document is still pending after a verify
	// request; the late or wrong response must not be trusted.
	gateway := &fakeGateway{updateDocument: echoDocument(models.StatusPending)}
	mc := NewMutationCoordinator(gateway, store, nil)

	_, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, models.StatusVerified, "", "admin1")
	if !errors.Is(err, ErrStatusMismatch) {
		t.Fatalf("want ErrStatusMismatch, got %v", err)
	}

	seller, _ := store.Get("s1")
	if seller.VerificationDocuments[models.DocumentIDProof].Status != models.StatusPending {
		t.Error("mismatched response leaked into the projection")
	}
	if !store.IsStale("s1") {
		t.Error("mismatch must schedule a re-fetch")
	}
}

func TestUpdateDocumentStatus_TransportFailureInvalidates(t *testing.T) {
	store := seedStore(t)
	gateway := &fakeGateway{updateDocument: func(models.DocumentUpdateRequest) (*models.DocumentUpdateResult, error) {
		return nil, &GatewayError{StatusCode: 502}
	}}
	mc := NewMutationCoordinator(gateway, store, nil)

	_, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, models.StatusVerified, "", "admin1")
	if _, ok := AsGatewayError(err); !ok {
		t.Fatalf("want GatewayError, got %v", err)
	}
	if !store.IsStale("s1") {
		t.Error("transport failure must invalidate the projection")
	}
}

func TestUpdateDocumentStatus_SingleFlight(t *testing.T) {
	store := seedStore(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	gateway := &fakeGateway{updateDocument: func(req models.DocumentUpdateRequest) (*models.DocumentUpdateResult, error) {
		close(entered)
		<-release
		return echoDocument(models.StatusVerified)(req)
	}}
	mc := NewMutationCoordinator(gateway, store, nil)

	done := make(chan error, 1)
	go func() {
		_, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, models.StatusVerified, "", "admin1")
		done <- err
	}()
	<-entered

	// Second trigger while the first is in flight: rejected, not
	// queued, and no second request is issued.
	_, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, models.StatusVerified, "", "admin2")
	if !errors.Is(err, ErrStillProcessing) {
		t.Fatalf("want ErrStillProcessing, got %v", err)
	}
	if gateway.callCount() != 1 {
		t.Errorf("second trigger issued a request: %d calls", gateway.callCount())
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first trigger failed: %v", err)
	}

	// After the first completes the target is terminal; the guard now
	// rejects before any request.
	_, err = mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, models.StatusRejected, "", "admin2")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("want ErrAlreadyProcessed, got %v", err)
	}
	if gateway.callCount() != 1 {
		t.Errorf("terminal guard issued a request: %d calls", gateway.callCount())
	}
}

func TestUpdateDocumentStatus_IndependentTargets(t *testing.T) {
	store := seedStore(t)
	gateway := &fakeGateway{updateDocument: echoDocument(models.StatusVerified)}
	mc := NewMutationCoordinator(gateway, store, nil)

	if _, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, models.StatusVerified, "", "a"); err != nil {
		t.Fatalf("idProof: %v", err)
	}
	if _, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentBusinessCert, models.StatusVerified, "", "a"); err != nil {
		t.Fatalf("businessCert: %v", err)
	}
}

func TestUpdateDocumentStatus_InvalidStatus(t *testing.T) {
	mc := NewMutationCoordinator(&fakeGateway{}, NewProjectionStore(), nil)
	if _, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, "approved", "", "a"); err == nil {
		t.Error("expected error for a status outside verified/rejected")
	}
}

func TestApprovePayout_TerminalGuard(t *testing.T) {
	store := NewProjectionStore()
	store.Replace("s1", &models.Seller{
		ID: "s1",
		PaymentMethodRecords: []models.PaymentMethodRecord{
			{ID: "pm1", VerificationStatus: models.StatusVerified},
		},
	})
	gateway := &fakeGateway{}
	mc := NewMutationCoordinator(gateway, store, nil)

	_, err := mc.ApprovePayout(context.Background(), "s1", "pm1", "admin1")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("want ErrAlreadyProcessed, got %v", err)
	}
	if gateway.callCount() != 0 {
		t.Error("guard rejection must not issue a request")
	}
}

func TestApprovePayout_ConfirmedMerge(t *testing.T) {
	store := seedStore(t)
	gateway := &fakeGateway{approvePayout: func(req models.PayoutActionRequest) (*models.PayoutActionResult, error) {
		return &models.PayoutActionResult{
			PayoutStatus: models.StatusVerified,
			PaymentMethodRecord: &models.PaymentMethodRecord{
				ID:                 req.PaymentMethod,
				VerificationStatus: models.StatusVerified,
			},
		}, nil
	}}
	mc := NewMutationCoordinator(gateway, store, nil)

	if _, err := mc.ApprovePayout(context.Background(), "s1", "pm1", "admin1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seller, _ := store.Get("s1")
	if seller.PayoutStatus != models.StatusVerified {
		t.Error("payout status not merged")
	}
	if seller.PaymentMethodRecords[0].VerificationStatus != models.StatusVerified {
		t.Error("payment method record not merged")
	}
}

func TestApprovePayout_WrongRecordEchoed(t *testing.T) {
	store := seedStore(t)
	gateway := &fakeGateway{approvePayout: func(models.PayoutActionRequest) (*models.PayoutActionResult, error) {
		return &models.PayoutActionResult{
			PayoutStatus:        models.StatusVerified,
			PaymentMethodRecord: &models.PaymentMethodRecord{ID: "other", VerificationStatus: models.StatusVerified},
		}, nil
	}}
	mc := NewMutationCoordinator(gateway, store, nil)

	if _, err := mc.ApprovePayout(context.Background(), "s1", "pm1", "admin1"); !errors.Is(err, ErrStatusMismatch) {
		t.Fatalf("want ErrStatusMismatch, got %v", err)
	}
	if !store.IsStale("s1") {
		t.Error("wrong-target echo must invalidate the projection")
	}
}

func TestRejectVerification_Confirmed(t *testing.T) {
	store := seedStore(t)
	gateway := &fakeGateway{verification: func(req models.VerificationActionRequest, status string) (*models.VerificationActionResult, error) {
		return &models.VerificationActionResult{
			VerificationStatus: status,
			RejectionReason:    req.Reason,
		}, nil
	}}
	mc := NewMutationCoordinator(gateway, store, nil)

	result, err := mc.RejectVerification(context.Background(), "s1", "blurry documents", "admin1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.VerificationStatus != models.StatusRejected {
		t.Errorf("status = %q", result.VerificationStatus)
	}

	seller, _ := store.Get("s1")
	if seller.VerificationStatus != models.StatusRejected || seller.RejectionReason != "blurry documents" {
		t.Errorf("verification block not merged: %+v", seller)
	}
}

func TestResetBalance_EchoValidation(t *testing.T) {
	store := seedStore(t)
	requested := 50.0

	t.Run("matching echo merges", func(t *testing.T) {
		gateway := &fakeGateway{resetBalance: func(req models.BalanceResetUpstreamRequest, locked bool) (*models.BalanceResetResult, error) {
			return &models.BalanceResetResult{Snapshot: models.BalanceSnapshot{Balance: req.NewBalance}}, nil
		}}
		mc := NewMutationCoordinator(gateway, store, nil)

		snapshot, err := mc.ResetBalance(context.Background(), "s1", &requested, "support case 4411", "admin1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *snapshot.Balance != requested {
			t.Errorf("Balance = %v, want %v", *snapshot.Balance, requested)
		}
		seller, _ := store.Get("s1")
		if seller.Balance != requested {
			t.Error("balance not merged into projection")
		}
	})

	t.Run("divergent echo rejected", func(t *testing.T) {
		wrong := 999.0
		gateway := &fakeGateway{resetBalance: func(models.BalanceResetUpstreamRequest, bool) (*models.BalanceResetResult, error) {
			return &models.BalanceResetResult{Snapshot: models.BalanceSnapshot{Balance: &wrong}}, nil
		}}
		mc := NewMutationCoordinator(gateway, store, nil)

		if _, err := mc.ResetBalance(context.Background(), "s1", &requested, "", "admin1"); !errors.Is(err, ErrStatusMismatch) {
			t.Fatalf("want ErrStatusMismatch, got %v", err)
		}
	})

	t.Run("locked reset validates locked field", func(t *testing.T) {
		gateway := &fakeGateway{resetBalance: func(req models.BalanceResetUpstreamRequest, locked bool) (*models.BalanceResetResult, error) {
			if !locked {
				t.Error("expected locked balance endpoint")
			}
			zero := 0.0
			return &models.BalanceResetResult{Snapshot: models.BalanceSnapshot{LockedBalance: &zero}}, nil
		}}
		mc := NewMutationCoordinator(gateway, store, nil)

		if _, err := mc.ResetLockedBalance(context.Background(), "s1", nil, "", "admin1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// recordingAudit captures audit entries for assertions
type recordingAudit struct {
	entries []models.MutationAudit
}

func (r *recordingAudit) Record(audit models.MutationAudit) {
	r.entries = append(r.entries, audit)
}

func TestMutationAuditTrail(t *testing.T) {
	store := seedStore(t)
	audit := &recordingAudit{}
	gateway := &fakeGateway{updateDocument: echoDocument(models.StatusVerified)}
	mc := NewMutationCoordinator(gateway, store, audit)

	if _, err := mc.UpdateDocumentStatus(context.Background(), "s1", models.DocumentIDProof, models.StatusVerified, "", "admin1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Outcome != models.AuditOutcomeConfirmed {
		t.Errorf("Outcome = %q", entry.Outcome)
	}
	if entry.AdminID != "admin1" || entry.SellerID != "s1" || entry.Target != models.DocumentIDProof {
		t.Errorf("attribution wrong: %+v", entry)
	}
	if entry.AttemptID == "" {
		t.Error("audit entry missing attempt id")
	}
}
