// services/seller_view_service.go
package services

import (
	"context"
	"log"
	"sync"

	"github.com/souqly/souqly_backend/models"
)

// SellerFetcher is the read surface the view service needs from the
// gateway.
type SellerFetcher interface {
	FetchSellerCore(ctx context.Context, sellerID string) ([]byte, error)
	FetchBalanceSnapshot(ctx context.Context, sellerID string) ([]byte, error)
	FetchPayoutVerification(ctx context.Context, sellerID string) ([]byte, error)
}

// SellerViewService builds the unified seller view: it fans out the
// three source fetches, normalizes and merges whatever arrived, stores
// the projection, and composes the derived document and payout state.
type SellerViewService struct {
	gateway    SellerFetcher
	store      *ProjectionStore
	identities *IdentityResolver // may be nil
}

// NewSellerViewService creates a view service over the given gateway
// and projection store.
func NewSellerViewService(gateway SellerFetcher, store *ProjectionStore, identities *IdentityResolver) *SellerViewService {
	return &SellerViewService{gateway: gateway, store: store, identities: identities}
}

// Load fetches all three sources, rebuilds the projection, and returns
// the composed view. Sources are fetched independently and may fail
// independently; a failed source degrades to the last-known-good data
// rather than failing the view. Identity enrichment is kicked off in
// the background and never awaited.
func (svc *SellerViewService) Load(ctx context.Context, sellerID string) (*models.SellerView, error) {
	var (
		wg          sync.WaitGroup
		coreBody    []byte
		balanceBody []byte
		payoutBody  []byte
		coreErr     error
		balanceErr  error
		payoutErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		coreBody, coreErr = svc.gateway.FetchSellerCore(ctx, sellerID)
	}()
	go func() {
		defer wg.Done()
		balanceBody, balanceErr = svc.gateway.FetchBalanceSnapshot(ctx, sellerID)
	}()
	go func() {
		defer wg.Done()
		payoutBody, payoutErr = svc.gateway.FetchPayoutVerification(ctx, sellerID)
	}()
	wg.Wait()

	var core *models.Seller
	var balance *models.BalanceSnapshot
	var payout *models.PayoutDetails

	if coreErr != nil {
		log.Printf("Seller core fetch failed for %s: %v", sellerID, coreErr)
	} else {
		core = NormalizeCore(coreBody)
	}
	if balanceErr != nil {
		log.Printf("Balance fetch failed for %s: %v", sellerID, balanceErr)
	} else {
		balance = NormalizeBalance(balanceBody)
	}
	if payoutErr != nil {
		log.Printf("Payout verification fetch failed for %s: %v", sellerID, payoutErr)
	} else {
		payout = NormalizePayout(payoutBody)
	}

	sources := models.SourceAvailability{
		Core:    core != nil,
		Balance: balance != nil,
		Payout:  payout != nil,
	}

	// Overlay onto the last-known-good record when the core source is
	// missing, so a partial refresh still renders.
	base := core
	if base == nil {
		if cached, ok := svc.store.Get(sellerID); ok {
			base = cached
		}
	}

	merged := MergeSources(base, balance, payout)
	if merged == nil || merged.ID == "" {
		if gwErr, ok := AsGatewayError(coreErr); ok {
			return nil, gwErr
		}
		return nil, ErrNoSources
	}
	svc.store.Replace(sellerID, merged)

	if svc.identities != nil {
		adminIDs := CollectAdminIDs(merged)
		if len(adminIDs) > 0 {
			go svc.identities.ResolveAll(context.Background(), adminIDs)
		}
	}

	return BuildView(merged, sources), nil
}

// Invalidate marks the cached projection stale so the next load is
// guaranteed fresh.
func (svc *SellerViewService) Invalidate(sellerID string) {
	svc.store.Invalidate(sellerID)
}

// BuildView composes the unified view from a projection: raw seller
// data plus resolved documents and the aggregated payout picture.
func BuildView(seller *models.Seller, sources models.SourceAvailability) *models.SellerView {
	return &models.SellerView{
		Seller:    seller,
		Documents: ResolveDocuments(seller.VerificationDocuments),
		Payout:    AggregatePayout(seller.PaymentMethodRecords, seller.PaymentMethods, seller.PayoutStatus),
		Sources:   sources,
	}
}

// CollectAdminIDs gathers the distinct verifier ids referenced across
// a seller's documents, payment methods, and seller-level blocks.
func CollectAdminIDs(seller *models.Seller) []string {
	if seller == nil {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	add(seller.VerifiedBy)
	add(seller.PayoutVerifiedBy)
	for _, doc := range seller.VerificationDocuments {
		if doc != nil {
			add(doc.VerifiedBy)
		}
	}
	for _, record := range seller.PaymentMethodRecords {
		add(record.VerifiedBy)
	}
	return ids
}
