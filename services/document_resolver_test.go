package services

import (
	"encoding/json"
	"testing"

	"github.com/souqly/souqly_backend/models"
)

func boolPtr(v bool) *bool { return &v }

func TestResolveDocument_Nil(t *testing.T) {
	info := ResolveDocument(nil)
	if info.URL != "" || info.Status != "" {
		t.Errorf("nil document should resolve empty, got %+v", info)
	}
	if info.IsVerified || info.IsProcessed || info.ShouldShowButtons {
		t.Errorf("nil document should have all flags false, got %+v", info)
	}
}

func TestResolveDocument_LegacyBareURL(t *testing.T) {
	var doc models.VerificationDocument
	if err := json.Unmarshal([]byte(`"https://x/doc.png"`), &doc); err != nil {
		t.Fatalf("failed to decode legacy document: %v", err)
	}

	info := ResolveDocument(&doc)
	if info.URL != "https://x/doc.png" {
		t.Errorf("URL = %q, want %q", info.URL, "https://x/doc.png")
	}
	if info.Status != models.StatusPending {
		t.Errorf("Status = %q, want pending", info.Status)
	}
	if !info.ShouldShowButtons {
		t.Error("legacy URL document should show action buttons")
	}
	if info.IsVerified || info.IsProcessed {
		t.Errorf("legacy URL document should not be verified or processed, got %+v", info)
	}
}

func TestResolveDocument_VerifiedWithoutExplicitFlag(t *testing.T) {
	doc := &models.VerificationDocument{
		URL:    "https://x/doc.png",
		Status: models.StatusVerified,
	}

	info := ResolveDocument(doc)
	if !info.IsVerified {
		t.Error("verified status should derive IsVerified = true")
	}
	if !info.IsProcessed {
		t.Error("verified status should derive IsProcessed = true")
	}
	if info.ShouldShowButtons {
		t.Error("verified document must never show action buttons")
	}
}

func TestResolveDocument_TerminalClampBeatsUpstreamFlag(t *testing.T) {
	// Upstream inconsistency: the computed flag claims the buttons
	// should show even though the status is terminal.
	tests := []struct {
		name   string
		status string
	}{
		{"verified", models.StatusVerified},
		{"rejected", models.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &models.VerificationDocument{
				URL:               "https://x/doc.png",
				Status:            tt.status,
				ShouldShowButtons: boolPtr(true),
			}
			if info := ResolveDocument(doc); info.ShouldShowButtons {
				t.Errorf("terminal status %q must clamp ShouldShowButtons to false", tt.status)
			}
		})
	}
}

func TestResolveDocument_ExplicitFlagsTrusted(t *testing.T) {
	doc := &models.VerificationDocument{
		URL:         "https://x/doc.png",
		Status:      models.StatusPending,
		IsVerified:  boolPtr(true),
		IsProcessed: boolPtr(true),
	}

	info := ResolveDocument(doc)
	if !info.IsVerified {
		t.Error("explicit IsVerified should be trusted over derivation")
	}
	if !info.IsProcessed {
		t.Error("explicit IsProcessed should be trusted over derivation")
	}
	// Status is still pending, so the clamp does not fire.
	if !info.ShouldShowButtons {
		t.Error("pending document with URL should show buttons")
	}
}

func TestResolveDocument_ExplicitButtonsOffRespected(t *testing.T) {
	doc := &models.VerificationDocument{
		URL:               "https://x/doc.png",
		Status:            models.StatusPending,
		ShouldShowButtons: boolPtr(false),
	}
	if info := ResolveDocument(doc); info.ShouldShowButtons {
		t.Error("explicit ShouldShowButtons=false should be trusted")
	}
}

func TestResolveDocument_UnknownStatusFailsClosed(t *testing.T) {
	doc := &models.VerificationDocument{
		URL:    "https://x/doc.png",
		Status: "in_review",
	}

	info := ResolveDocument(doc)
	if info.Status != "in_review" {
		t.Errorf("raw status must be surfaced for display, got %q", info.Status)
	}
	if info.IsVerified || info.IsProcessed {
		t.Error("unknown status must not count as verified or processed")
	}
	if !info.ShouldShowButtons {
		t.Error("unknown status is treated as pending for the buttons")
	}
}

func TestResolveDocument_StatusWithoutURL(t *testing.T) {
	doc := &models.VerificationDocument{Status: models.StatusPending}
	if info := ResolveDocument(doc); info.ShouldShowButtons {
		t.Error("document without a URL has nothing to review; no buttons")
	}
}

func TestResolveDocuments_AllKindsPresent(t *testing.T) {
	docs := map[string]*models.VerificationDocument{
		models.DocumentIDProof: {URL: "https://x/id.png", Status: models.StatusVerified},
	}

	resolved := ResolveDocuments(docs)
	for _, kind := range []string{models.DocumentBusinessCert, models.DocumentIDProof, models.DocumentAddressProof} {
		if _, ok := resolved[kind]; !ok {
			t.Errorf("resolved map missing canonical kind %q", kind)
		}
	}
	if !resolved[models.DocumentIDProof].IsVerified {
		t.Error("idProof should resolve verified")
	}
	if resolved[models.DocumentBusinessCert].ShouldShowButtons {
		t.Error("missing document should not be actionable")
	}
}
