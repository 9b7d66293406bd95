// models/gateway.go
package models

// GatewayEnvelope is the raw response wrapper returned by the backend of
// record. Payloads arrive nested at varying depths; the normalizer walks
// Data with its extraction strategies rather than assuming a shape here.
type GatewayEnvelope struct {
	Status  interface{}            `json:"status,omitempty"` // int or string depending on endpoint age
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// DocumentUpdateRequest is the upstream request for changing a
// document's status.
type DocumentUpdateRequest struct {
	SellerID     string `json:"sellerId"`
	DocumentType string `json:"documentType"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
}

// DocumentUpdateResult is the upstream response for a document status
// change. The echoed map must contain the updated document under the
// requested type; the coordinator validates this before merging.
type DocumentUpdateResult struct {
	VerificationDocuments map[string]*VerificationDocument `json:"verificationDocuments"`
}

// VerificationActionRequest is the upstream request for seller-level
// verification approval or rejection.
type VerificationActionRequest struct {
	SellerID string `json:"sellerId"`
	Reason   string `json:"reason,omitempty"`
}

// VerificationActionResult echoes the seller-level verification state
type VerificationActionResult struct {
	VerificationStatus string `json:"verificationStatus"`
	VerifiedBy         string `json:"verifiedBy,omitempty"`
	RejectionReason    string `json:"rejectionReason,omitempty"`
}

// PayoutActionRequest is the upstream request for payout approval or
// rejection. PaymentMethod identifies the record on approval.
type PayoutActionRequest struct {
	SellerID      string `json:"sellerId"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// PayoutActionResult echoes the affected payment-method record and the
// seller-level payout status.
type PayoutActionResult struct {
	PayoutStatus        string               `json:"payoutStatus"`
	PaymentMethodRecord *PaymentMethodRecord `json:"paymentMethodRecord,omitempty"`
}

// BalanceResetUpstreamRequest is the upstream request for resetting a
// seller's balance or locked balance.
type BalanceResetUpstreamRequest struct {
	SellerID   string   `json:"sellerId"`
	NewBalance *float64 `json:"newBalance,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// BalanceResetResult echoes the balance block after a reset
type BalanceResetResult struct {
	Status   string          `json:"status"`
	Snapshot BalanceSnapshot `json:"balance"`
}

// AdminLookupRequest is the request body for admin identity lookups
type AdminLookupRequest struct {
	AdminID string `json:"adminId"`
}

// AdminLookupResult carries whichever name fields the directory knows.
// Preference order: Name, FullName, Username, Email.
type AdminLookupResult struct {
	Name     string `json:"name,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// BestName returns the preferred display name, or "" when none is set
func (r *AdminLookupResult) BestName() string {
	if r == nil {
		return ""
	}
	for _, name := range []string{r.Name, r.FullName, r.Username, r.Email} {
		if name != "" {
			return name
		}
	}
	return ""
}
