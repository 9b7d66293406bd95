// services/document_resolver.go
package services

import (
	"github.com/souqly/souqly_backend/models"
	"github.com/souqly/souqly_backend/utils"
)

// IsTerminalStatus reports whether a status can no longer change through
// admin action. Verified and rejected are terminal; everything else,
// including unknown strings, is not.
func IsTerminalStatus(status string) bool {
	return status == models.StatusVerified || status == models.StatusRejected
}

// effectiveStatus maps absent or unknown status strings to pending so the
// derived flags stay conservative. The raw string is still surfaced on
// the resolved document for display.
func effectiveStatus(status string) string {
	switch status {
	case models.StatusVerified, models.StatusRejected, models.StatusPending:
		return status
	default:
		return models.StatusPending
	}
}

// ResolveDocument computes the canonical display state of a verification
// document. It is total: nil and malformed inputs resolve to an empty,
// non-actionable DocumentInfo rather than an error.
//
// Explicit backend flags are trusted over the locally derived values,
// except that ShouldShowButtons is clamped to false whenever the status
// is terminal, no matter what upstream sent.
func ResolveDocument(doc *models.VerificationDocument) models.DocumentInfo {
	if doc == nil || (doc.URL == "" && doc.Status == "") {
		return models.DocumentInfo{}
	}

	status := doc.Status
	if status == "" {
		// A URL with no explicit status is awaiting review.
		status = models.StatusPending
	}
	effective := effectiveStatus(status)
	terminal := IsTerminalStatus(effective)

	info := models.DocumentInfo{
		URL:             doc.URL,
		Status:          status,
		VerifiedBy:      doc.VerifiedBy,
		VerifiedAt:      doc.VerifiedAt,
		RejectionReason: doc.RejectionReason,
	}

	info.IsVerified = utils.TrustOrDerive(doc.IsVerified, effective == models.StatusVerified, nil)
	info.IsProcessed = utils.TrustOrDerive(doc.IsProcessed, terminal, nil)
	info.ShouldShowButtons = utils.TrustOrDerive(
		doc.ShouldShowButtons,
		effective == models.StatusPending && doc.URL != "",
		func(v bool) bool {
			if terminal {
				return false
			}
			return v
		},
	)

	return info
}

// ResolveDocuments resolves every document in a seller's map, keeping
// the canonical kinds present even when a document is missing so the
// console always renders all three slots.
func ResolveDocuments(docs map[string]*models.VerificationDocument) map[string]models.DocumentInfo {
	resolved := make(map[string]models.DocumentInfo)
	for _, kind := range []string{models.DocumentBusinessCert, models.DocumentIDProof, models.DocumentAddressProof} {
		resolved[kind] = ResolveDocument(docs[kind])
	}
	for kind, doc := range docs {
		if _, ok := resolved[kind]; !ok {
			resolved[kind] = ResolveDocument(doc)
		}
	}
	return resolved
}
