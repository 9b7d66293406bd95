// models/verification.go
package models

import (
	"encoding/json"
	"time"
)

// VerificationDocument is the raw per-document record as stored by the
// backend of record. Older sellers have documents stored as bare URL
// strings; UnmarshalJSON accepts both shapes. The optional flag fields
// are pointers so an explicit backend value can be told apart from an
// absent one.
type VerificationDocument struct {
	URL               string     `json:"url,omitempty"`
	Status            string     `json:"status,omitempty"`
	VerifiedBy        string     `json:"verifiedBy,omitempty"`
	VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
	RejectionReason   string     `json:"rejectionReason,omitempty"`
	IsVerified        *bool      `json:"isVerified,omitempty"`
	IsProcessed       *bool      `json:"isProcessed,omitempty"`
	ShouldShowButtons *bool      `json:"shouldShowButtons,omitempty"`
}

// UnmarshalJSON accepts either a structured document record or a legacy
// bare URL string. A bare URL carries no status; the resolver treats it
// as awaiting review.
func (d *VerificationDocument) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		*d = VerificationDocument{URL: url}
		return nil
	}

	type documentAlias VerificationDocument
	var doc documentAlias
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*d = VerificationDocument(doc)
	return nil
}

// DocumentInfo is the resolved, display-ready state of a verification
// document. Once Status is terminal, ShouldShowButtons is always false.
type DocumentInfo struct {
	URL               string     `json:"url,omitempty"`
	Status            string     `json:"status,omitempty"`
	VerifiedBy        string     `json:"verifiedBy,omitempty"`
	VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
	RejectionReason   string     `json:"rejectionReason,omitempty"`
	IsVerified        bool       `json:"isVerified"`
	IsProcessed       bool       `json:"isProcessed"`
	ShouldShowButtons bool       `json:"shouldShowButtons"`
}

// PaymentMethodRecord is a per-method verification record. Each record
// has an independent lifecycle; a seller may hold zero or many.
type PaymentMethodRecord struct {
	ID                 string     `json:"id"`
	Type               string     `json:"type"` // "bank_transfer", "mobile_money"
	Provider           string     `json:"provider,omitempty"`
	AccountName        string     `json:"accountName,omitempty"`
	AccountNumber      string     `json:"accountNumber,omitempty"`
	MobileNumber       string     `json:"mobileNumber,omitempty"`
	VerificationStatus string     `json:"verificationStatus,omitempty"`
	VerifiedBy         string     `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
	RejectionReason    string     `json:"rejectionReason,omitempty"`
	IsDefault          bool       `json:"isDefault"`
}

// ProfilePaymentMethod is a payment method embedded in the legacy seller
// profile, before per-method verification records existed.
type ProfilePaymentMethod struct {
	Provider      string `json:"provider,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	MobileNumber  string `json:"mobileNumber,omitempty"`
	PayoutStatus  string `json:"payoutStatus,omitempty"`
}

// ProfilePaymentMethods groups the legacy profile-embedded methods
type ProfilePaymentMethods struct {
	BankTransfer *ProfilePaymentMethod `json:"bankTransfer,omitempty"`
	MobileMoney  *ProfilePaymentMethod `json:"mobileMoney,omitempty"`
}

// HasVerified reports whether any profile-embedded method is verified
func (p *ProfilePaymentMethods) HasVerified() bool {
	if p == nil {
		return false
	}
	if p.BankTransfer != nil && p.BankTransfer.PayoutStatus == StatusVerified {
		return true
	}
	if p.MobileMoney != nil && p.MobileMoney.PayoutStatus == StatusVerified {
		return true
	}
	return false
}

// PaymentMethodView is a payment-method record with its derived
// action-eligibility flags.
type PaymentMethodView struct {
	PaymentMethodRecord
	IsVerified  bool `json:"isVerified"`
	IsProcessed bool `json:"isProcessed"`
	CanVerify   bool `json:"canVerify"`
}

// PayoutView is the merged payout picture for a seller
type PayoutView struct {
	Records        []PaymentMethodView    `json:"paymentMethodRecords"`
	ProfileMethods *ProfilePaymentMethods `json:"paymentMethods,omitempty"`
	DerivedStatus  string                 `json:"payoutStatus"`
}

// DocumentStatusRequest is the body for updating a document's status
type DocumentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=verified rejected"`
	Reason string `json:"reason,omitempty"`
}

// RejectRequest is the body for rejecting a verification or payout
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// PayoutApproveRequest is the body for approving a payout
type PayoutApproveRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// BalanceResetRequest is the body for resetting a seller's balance.
// NewBalance is optional; a nil value resets to zero upstream.
type BalanceResetRequest struct {
	NewBalance *float64 `json:"newBalance,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// AdminIdentity is a resolved admin display name. Display-only; never
// authoritative for business logic.
type AdminIdentity struct {
	AdminID     string `json:"adminId"`
	DisplayName string `json:"displayName,omitempty"`
	Resolved    bool   `json:"resolved"`
}
