// services/normalizer.go
package services

import (
	"encoding/json"

	"github.com/souqly/souqly_backend/models"
)

// SourceType identifies one of the independently fetched upstream
// payloads contributing to the unified seller view.
type SourceType string

const (
	SourceCore    SourceType = "sellerCore"
	SourceBalance SourceType = "balanceSnapshot"
	SourcePayout  SourceType = "payoutVerification"
)

// extractionStrategy is one named candidate path into a response
// envelope. Strategies are tried in order; the first plausible payload
// wins.
type extractionStrategy struct {
	name string
	path []string
}

var extractionStrategies = map[SourceType][]extractionStrategy{
	SourceCore: {
		{name: "data.data", path: []string{"data", "data"}},
		{name: "data.seller", path: []string{"data", "seller"}},
		{name: "data", path: []string{"data"}},
		{name: "root", path: nil},
	},
	SourceBalance: {
		{name: "data.data", path: []string{"data", "data"}},
		{name: "data.balance", path: []string{"data", "balance"}},
		{name: "data", path: []string{"data"}},
		{name: "root", path: nil},
	},
	SourcePayout: {
		{name: "data.seller", path: []string{"data", "seller"}},
		{name: "seller", path: []string{"seller"}},
		{name: "data.data", path: []string{"data", "data"}},
		{name: "data", path: []string{"data"}},
		{name: "root", path: nil},
	},
}

// descend walks a nested map path, returning false when any step is
// missing or not an object. Absence is "source not yet loaded", never an
// error.
func descend(m map[string]interface{}, path []string) (map[string]interface{}, bool) {
	current := m
	for _, key := range path {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// identityOf returns the seller id carried by a candidate payload,
// accepting the field names the upstream has used over time.
func identityOf(candidate map[string]interface{}) string {
	for _, key := range []string{"id", "_id", "sellerId"} {
		if id, ok := candidate[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// plausible reports whether a candidate payload looks like a real
// payload for the given source rather than an envelope layer.
func plausible(candidate map[string]interface{}, source SourceType) bool {
	if identityOf(candidate) != "" {
		return true
	}
	switch source {
	case SourceBalance:
		for _, key := range []string{"balance", "withdrawableBalance", "lockedBalance", "pendingBalance"} {
			if _, ok := candidate[key]; ok {
				return true
			}
		}
	case SourcePayout:
		for _, key := range []string{"paymentMethodRecords", "paymentMethods", "payoutStatus"} {
			if _, ok := candidate[key]; ok {
				return true
			}
		}
	}
	return false
}

// ExtractSellerPayload tries the source's extraction strategies in
// priority order and returns the first plausible payload along with the
// strategy name that produced it.
func ExtractSellerPayload(envelope map[string]interface{}, source SourceType) (map[string]interface{}, string, bool) {
	if envelope == nil {
		return nil, "", false
	}
	for _, strategy := range extractionStrategies[source] {
		candidate, ok := descend(envelope, strategy.path)
		if !ok {
			continue
		}
		if plausible(candidate, source) {
			return candidate, strategy.name, true
		}
	}
	return nil, "", false
}

// decodeInto round-trips a payload map into a typed record. Seller id
// aliases are folded onto "id" first so every upstream vintage decodes
// the same way.
func decodeInto(payload map[string]interface{}, out interface{}) bool {
	if _, ok := payload["id"]; !ok {
		if id := identityOf(payload); id != "" {
			payload["id"] = id
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// NormalizeCore extracts the canonical seller record from a seller-core
// response body. Returns nil when the body holds no plausible seller;
// that means "source not yet loaded", not an error.
func NormalizeCore(body []byte) *models.Seller {
	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	payload, _, ok := ExtractSellerPayload(envelope, SourceCore)
	if !ok {
		return nil
	}
	var seller models.Seller
	if !decodeInto(payload, &seller) {
		return nil
	}
	if seller.ID == "" {
		return nil
	}
	return &seller
}

// NormalizeBalance extracts the balance snapshot from a balance response
// body, or nil when the source is not yet available.
func NormalizeBalance(body []byte) *models.BalanceSnapshot {
	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	payload, _, ok := ExtractSellerPayload(envelope, SourceBalance)
	if !ok {
		return nil
	}
	var snapshot models.BalanceSnapshot
	if !decodeInto(payload, &snapshot) {
		return nil
	}
	return &snapshot
}

// NormalizePayout extracts the payout-verification details from a
// response body, or nil when the source is not yet available.
func NormalizePayout(body []byte) *models.PayoutDetails {
	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	payload, _, ok := ExtractSellerPayload(envelope, SourcePayout)
	if !ok {
		return nil
	}
	var details models.PayoutDetails
	if !decodeInto(payload, &details) {
		return nil
	}
	return &details
}

// ApplyBalance overlays a balance snapshot onto a seller projection with
// defined-value-wins semantics: a nil overlay field never erases a
// previously known value.
func ApplyBalance(seller *models.Seller, snapshot *models.BalanceSnapshot) {
	if seller == nil || snapshot == nil {
		return
	}
	if snapshot.Balance != nil {
		seller.Balance = *snapshot.Balance
	}
	if snapshot.WithdrawableBalance != nil {
		seller.WithdrawableBalance = *snapshot.WithdrawableBalance
	}
	if snapshot.LockedBalance != nil {
		seller.LockedBalance = *snapshot.LockedBalance
	}
	if snapshot.PendingBalance != nil {
		seller.PendingBalance = *snapshot.PendingBalance
	}
	if snapshot.BalanceHistory != nil {
		seller.BalanceHistory = snapshot.BalanceHistory
	}
	if snapshot.WithdrawalHistory != nil {
		seller.WithdrawalHistory = snapshot.WithdrawalHistory
	}
}

// ApplyPayout overlays payout-verification details onto a seller
// projection. Payment methods from this source are preferred over the
// core profile because they reflect the most recent seller-submitted
// data.
func ApplyPayout(seller *models.Seller, details *models.PayoutDetails) {
	if seller == nil || details == nil {
		return
	}
	if details.PayoutStatus != nil {
		seller.PayoutStatus = *details.PayoutStatus
	}
	if details.PayoutVerifiedBy != nil {
		seller.PayoutVerifiedBy = *details.PayoutVerifiedBy
	}
	if details.PayoutVerifiedAt != nil {
		seller.PayoutVerifiedAt = details.PayoutVerifiedAt
	}
	if details.PayoutRejectionReason != nil {
		seller.PayoutRejectionReason = *details.PayoutRejectionReason
	}
	if details.PaymentMethods != nil {
		seller.PaymentMethods = details.PaymentMethods
	}
	if details.PaymentMethodRecords != nil {
		seller.PaymentMethodRecords = details.PaymentMethodRecords
	}
}

// MergeSources builds the unified seller projection from whichever
// sources have loaded. Returns nil only when nothing is available; a
// projection built from a subset of sources is valid and renderable.
func MergeSources(core *models.Seller, balance *models.BalanceSnapshot, payout *models.PayoutDetails) *models.Seller {
	if core == nil && balance == nil && payout == nil {
		return nil
	}

	seller := &models.Seller{}
	if core != nil {
		clone := *core
		seller = &clone
	}
	ApplyBalance(seller, balance)
	ApplyPayout(seller, payout)
	return seller
}
