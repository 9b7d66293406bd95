// models/seller.go
package models

import (
	"time"
)

// Status values reported by the backend of record for documents,
// payment methods, and seller-level verification.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Document kinds accepted by the verification flow
const (
	DocumentBusinessCert = "businessCert"
	DocumentIDProof      = "idProof"
	DocumentAddressProof = "addressProof"
)

// Payment method types
const (
	PaymentTypeBankTransfer = "bank_transfer"
	PaymentTypeMobileMoney  = "mobile_money"
)

// Seller is the unified projection of a seller, rebuilt from the upstream
// sources on every refresh. It is never hand-mutated except through
// confirmed-mutation merges in the projection store.
type Seller struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName,omitempty"`
	ShopName   string `json:"shopName,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IsActive   bool   `json:"isActive"`
	Status     string `json:"status,omitempty"` // "pending", "approved", "rejected", "active", "inactive"
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`

	// Verification block
	EmailVerified      bool       `json:"emailVerified"`
	PhoneVerified      bool       `json:"phoneVerified"`
	OnboardingStage    string     `json:"onboardingStage,omitempty"`
	VerificationStatus string     `json:"verificationStatus,omitempty"`
	VerifiedBy         string     `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
	RejectionReason    string     `json:"rejectionReason,omitempty"`

	// Balance block
	Balance             float64        `json:"balance"`
	WithdrawableBalance float64        `json:"withdrawableBalance"`
	LockedBalance       float64        `json:"lockedBalance"`
	PendingBalance      float64        `json:"pendingBalance"`
	BalanceHistory      []BalanceEntry `json:"balanceHistory,omitempty"`
	WithdrawalHistory   []BalanceEntry `json:"withdrawalHistory,omitempty"`

	// Payout block
	PayoutStatus          string     `json:"payoutStatus,omitempty"`
	PayoutVerifiedBy      string     `json:"payoutVerifiedBy,omitempty"`
	PayoutVerifiedAt      *time.Time `json:"payoutVerifiedAt,omitempty"`
	PayoutRejectionReason string     `json:"payoutRejectionReason,omitempty"`

	// Documents keyed by kind. Values may arrive as legacy bare URL
	// strings; VerificationDocument handles both shapes on decode.
	VerificationDocuments map[string]*VerificationDocument `json:"verificationDocuments,omitempty"`

	// Payment methods embedded in the seller profile (legacy) and the
	// per-method verification records (current).
	PaymentMethods       *ProfilePaymentMethods `json:"paymentMethods,omitempty"`
	PaymentMethodRecords []PaymentMethodRecord  `json:"paymentMethodRecords,omitempty"`
}

// BalanceEntry is a single movement in a seller's balance or withdrawal history
type BalanceEntry struct {
	Amount      float64   `json:"amount"`
	Type        string    `json:"type,omitempty"` // "credit", "debit", "withdrawal", "lock", "release"
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BalanceSnapshot is the partial seller record carried by the balance
// source. Pointer fields distinguish "absent" from zero so the overlay
// never erases a previously known value.
type BalanceSnapshot struct {
	Balance             *float64       `json:"balance,omitempty"`
	WithdrawableBalance *float64       `json:"withdrawableBalance,omitempty"`
	LockedBalance       *float64       `json:"lockedBalance,omitempty"`
	PendingBalance      *float64       `json:"pendingBalance,omitempty"`
	BalanceHistory      []BalanceEntry `json:"balanceHistory,omitempty"`
	WithdrawalHistory   []BalanceEntry `json:"withdrawalHistory,omitempty"`
}

// PayoutDetails is the partial seller record carried by the
// payout-verification source.
type PayoutDetails struct {
	PayoutStatus          *string                `json:"payoutStatus,omitempty"`
	PayoutVerifiedBy      *string                `json:"payoutVerifiedBy,omitempty"`
	PayoutVerifiedAt      *time.Time             `json:"payoutVerifiedAt,omitempty"`
	PayoutRejectionReason *string                `json:"payoutRejectionReason,omitempty"`
	PaymentMethods        *ProfilePaymentMethods `json:"paymentMethods,omitempty"`
	PaymentMethodRecords  []PaymentMethodRecord  `json:"paymentMethodRecords,omitempty"`
}

// SellerView is the composed result served to the admin console: the
// projection plus derived document and payout state.
type SellerView struct {
	Seller    *Seller                 `json:"seller"`
	Documents map[string]DocumentInfo `json:"verificationDocuments"`
	Payout    PayoutView              `json:"payout"`
	Sources   SourceAvailability      `json:"sources"`
}

// SourceAvailability reports which upstream sources contributed to the
// projection. A view with some sources unresolved is still valid.
type SourceAvailability struct {
	Core    bool `json:"core"`
	Balance bool `json:"balance"`
	Payout  bool `json:"payout"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
