package services

import (
	"testing"

	"github.com/souqly/souqly_backend/models"
)

func TestAggregatePayout_DerivedStatus(t *testing.T) {
	tests := []struct {
		name          string
		records       []models.PaymentMethodRecord
		profile       *models.ProfilePaymentMethods
		backendStatus string
		want          string
	}{
		{
			name: "verified record wins over stale backend flag",
			records: []models.PaymentMethodRecord{
				{ID: "pm1", Type: models.PaymentTypeBankTransfer, VerificationStatus: models.StatusVerified},
			},
			backendStatus: models.StatusPending,
			want:          models.StatusVerified,
		},
		{
			name: "verified record wins over backend rejected",
			records: []models.PaymentMethodRecord{
				{ID: "pm1", VerificationStatus: models.StatusVerified},
				{ID: "pm2", VerificationStatus: models.StatusRejected},
			},
			backendStatus: models.StatusRejected,
			want:          models.StatusVerified,
		},
		{
			name: "profile mobile money verified with zero records",
			profile: &models.ProfilePaymentMethods{
				MobileMoney: &models.ProfilePaymentMethod{Provider: "mpesa", PayoutStatus: models.StatusVerified},
			},
			want: models.StatusVerified,
		},
		{
			name:          "explicit backend verified respected",
			backendStatus: models.StatusVerified,
			want:          models.StatusVerified,
		},
		{
			name:          "explicit backend rejected respected",
			backendStatus: models.StatusRejected,
			want:          models.StatusRejected,
		},
		{
			name:          "unknown backend status falls back to pending",
			backendStatus: "processing",
			want:          models.StatusPending,
		},
		{
			name: "no signals at all",
			want: models.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := AggregatePayout(tt.records, tt.profile, tt.backendStatus)
			if view.DerivedStatus != tt.want {
				t.Errorf("DerivedStatus = %q, want %q", view.DerivedStatus, tt.want)
			}
		})
	}
}

func TestAggregatePayout_ActionEligibility(t *testing.T) {
	records := []models.PaymentMethodRecord{
		{ID: "pending", VerificationStatus: models.StatusPending},
		{ID: "absent"},
		{ID: "rejected", VerificationStatus: models.StatusRejected},
		{ID: "verified", VerificationStatus: models.StatusVerified},
	}

	view := AggregatePayout(records, nil, "")
	if len(view.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(view.Records))
	}

	canVerify := map[string]bool{}
	for _, record := range view.Records {
		canVerify[record.ID] = record.CanVerify
	}

	for _, id := range []string{"pending", "absent", "rejected"} {
		if !canVerify[id] {
			t.Errorf("record %q should remain actionable", id)
		}
	}
	if canVerify["verified"] {
		t.Error("verified record must not be actionable")
	}
}

func TestAggregatePayout_RejectedRecordFlags(t *testing.T) {
	view := AggregatePayout([]models.PaymentMethodRecord{
		{ID: "pm1", VerificationStatus: models.StatusRejected, RejectionReason: "name mismatch"},
	}, nil, "")

	record := view.Records[0]
	if record.IsVerified {
		t.Error("rejected record must not be verified")
	}
	if !record.IsProcessed {
		t.Error("rejected record is processed")
	}
	if !record.CanVerify {
		t.Error("rejected record stays actionable for re-verification")
	}
	if record.RejectionReason != "name mismatch" {
		t.Errorf("RejectionReason = %q, want %q", record.RejectionReason, "name mismatch")
	}
}
