// models/mutation_audit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mutation audit outcomes
const (
	AuditOutcomeConfirmed  = "confirmed"
	AuditOutcomeMismatch   = "status_mismatch"
	AuditOutcomeFailed     = "failed"
	AuditOutcomeRejectedBy = "guard_rejected"
)

// MutationAudit records one status-changing action against a seller:
// who triggered it, the exact target, the requested status, and how the
// attempt ended. Written best-effort after every mutation attempt.
type MutationAudit struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AttemptID       string             `json:"attemptId" bson:"attemptId"`
	SellerID        string             `json:"sellerId" bson:"sellerId"`
	AdminID         string             `json:"adminId" bson:"adminId"`
	Action          string             `json:"action" bson:"action"` // "document_status", "verification_approve", ...
	Target          string             `json:"target,omitempty" bson:"target,omitempty"`
	RequestedStatus string             `json:"requestedStatus,omitempty" bson:"requestedStatus,omitempty"`
	Reason          string             `json:"reason,omitempty" bson:"reason,omitempty"`
	Outcome         string             `json:"outcome" bson:"outcome"`
	Error           string             `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}
