// services/payout_aggregator.go
package services

import (
	"github.com/souqly/souqly_backend/models"
)

// resolvePaymentMethod derives the action-eligibility flags for one
// payment-method record. Verified is terminal for the verify button;
// pending, absent, and rejected methods stay actionable so a rejected
// method can be re-submitted and re-verified.
func resolvePaymentMethod(record models.PaymentMethodRecord) models.PaymentMethodView {
	effective := effectiveStatus(record.VerificationStatus)
	return models.PaymentMethodView{
		PaymentMethodRecord: record,
		IsVerified:          effective == models.StatusVerified,
		IsProcessed:         IsTerminalStatus(effective),
		CanVerify:           effective != models.StatusVerified,
	}
}

// AggregatePayout merges per-method verification records and legacy
// profile-embedded payment methods into one payout picture.
//
// The derived seller-level status resolves the case where a payout was
// verified through a specific method but the coarse upstream flag has
// not caught up: any verified record or profile method wins, then an
// explicit upstream verified/rejected, then pending.
func AggregatePayout(records []models.PaymentMethodRecord, profile *models.ProfilePaymentMethods, backendStatus string) models.PayoutView {
	views := make([]models.PaymentMethodView, 0, len(records))
	anyVerified := false
	for _, record := range records {
		view := resolvePaymentMethod(record)
		if view.IsVerified {
			anyVerified = true
		}
		views = append(views, view)
	}

	derived := models.StatusPending
	switch {
	case anyVerified || profile.HasVerified():
		derived = models.StatusVerified
	case backendStatus == models.StatusVerified || backendStatus == models.StatusRejected:
		derived = backendStatus
	}

	return models.PayoutView{
		Records:        views,
		ProfileMethods: profile,
		DerivedStatus:  derived,
	}
}
