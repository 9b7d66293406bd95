// services/projection_store.go
package services

import (
	"sync"
	"time"

	"github.com/souqly/souqly_backend/models"
)

// ProjectionStore holds the unified seller projections, one mutable
// cell per seller. Only two writers are permitted: a full replace after
// a source refresh and a validated sub-entity merge from the mutation
// coordinator. Everything else reads.
type ProjectionStore struct {
	mu      sync.RWMutex
	sellers map[string]*models.Seller
	stale   map[string]bool
}

// NewProjectionStore creates an empty projection store
func NewProjectionStore() *ProjectionStore {
	return &ProjectionStore{
		sellers: make(map[string]*models.Seller),
		stale:   make(map[string]bool),
	}
}

// Get returns a copy of the cached projection for a seller
func (s *ProjectionStore) Get(sellerID string) (*models.Seller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seller, ok := s.sellers[sellerID]
	if !ok {
		return nil, false
	}
	clone := *seller
	return &clone, true
}

// IsStale reports whether the cached projection has been invalidated
// and must be re-fetched before the next read is trusted.
func (s *ProjectionStore) IsStale(sellerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale[sellerID]
}

// Replace installs a freshly rebuilt projection and clears staleness
func (s *ProjectionStore) Replace(sellerID string, seller *models.Seller) {
	if seller == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sellers[sellerID] = seller
	delete(s.stale, sellerID)
}

// Invalidate marks a seller's projection stale so the next read is
// guaranteed fresh. The last-known-good data stays available for
// partial-source overlays.
func (s *ProjectionStore) Invalidate(sellerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale[sellerID] = true
}

// MergeDocument replaces a single document in the cached projection
// with a backend-confirmed record. The documents map is copied rather
// than mutated so previously returned projections are unaffected.
func (s *ProjectionStore) MergeDocument(sellerID, documentType string, doc *models.VerificationDocument) bool {
	if doc == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seller, ok := s.sellers[sellerID]
	if !ok {
		return false
	}
	clone := *seller
	docs := make(map[string]*models.VerificationDocument, len(seller.VerificationDocuments)+1)
	for kind, existing := range seller.VerificationDocuments {
		docs[kind] = existing
	}
	docs[documentType] = doc
	clone.VerificationDocuments = docs
	clone.UpdatedAt = timePtr(time.Now())
	s.sellers[sellerID] = &clone
	return true
}

// MergePaymentMethod replaces a single payment-method record in the
// cached projection with a backend-confirmed record, matched by id.
func (s *ProjectionStore) MergePaymentMethod(sellerID string, record models.PaymentMethodRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seller, ok := s.sellers[sellerID]
	if !ok {
		return false
	}
	clone := *seller
	records := make([]models.PaymentMethodRecord, len(seller.PaymentMethodRecords))
	copy(records, seller.PaymentMethodRecords)

	replaced := false
	for i := range records {
		if records[i].ID == record.ID {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, record)
	}
	clone.PaymentMethodRecords = records
	clone.UpdatedAt = timePtr(time.Now())
	s.sellers[sellerID] = &clone
	return true
}

// MergeVerification replaces the seller-level verification block with a
// backend-confirmed state.
func (s *ProjectionStore) MergeVerification(sellerID string, result *models.VerificationActionResult) bool {
	if result == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seller, ok := s.sellers[sellerID]
	if !ok {
		return false
	}
	clone := *seller
	clone.VerificationStatus = result.VerificationStatus
	if result.VerifiedBy != "" {
		clone.VerifiedBy = result.VerifiedBy
	}
	clone.RejectionReason = result.RejectionReason
	clone.VerifiedAt = timePtr(time.Now())
	clone.UpdatedAt = clone.VerifiedAt
	s.sellers[sellerID] = &clone
	return true
}

// MergePayoutStatus replaces the seller-level payout status and, when
// echoed, the affected payment-method record.
func (s *ProjectionStore) MergePayoutStatus(sellerID string, result *models.PayoutActionResult, reason string) bool {
	if result == nil {
		return false
	}
	s.mu.Lock()
	seller, ok := s.sellers[sellerID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	clone := *seller
	clone.PayoutStatus = result.PayoutStatus
	if reason != "" {
		clone.PayoutRejectionReason = reason
	}
	clone.UpdatedAt = timePtr(time.Now())
	s.sellers[sellerID] = &clone
	s.mu.Unlock()

	if result.PaymentMethodRecord != nil {
		return s.MergePaymentMethod(sellerID, *result.PaymentMethodRecord)
	}
	return true
}

// MergeBalance overlays a backend-confirmed balance snapshot onto the
// cached projection.
func (s *ProjectionStore) MergeBalance(sellerID string, snapshot *models.BalanceSnapshot) bool {
	if snapshot == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seller, ok := s.sellers[sellerID]
	if !ok {
		return false
	}
	clone := *seller
	ApplyBalance(&clone, snapshot)
	clone.UpdatedAt = timePtr(time.Now())
	s.sellers[sellerID] = &clone
	return true
}

func timePtr(t time.Time) *time.Time {
	return &t
}
