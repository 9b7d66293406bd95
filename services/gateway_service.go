// services/gateway_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/souqly/souqly_backend/models"
)

// GatewayService is the REST client for the marketplace backend of
// record. Fetch endpoints return the raw body so the normalizer can
// work through the envelope variations; mutation endpoints decode into
// typed results for status-echo validation.
type GatewayService struct {
	client *resty.Client
	debug  bool
}

// NewGatewayService builds a gateway client from environment variables
func NewGatewayService() *GatewayService {
	baseURL := os.Getenv("GATEWAY_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:9000/api/v1"
	}
	apiKey := os.Getenv("GATEWAY_API_KEY")
	debug := os.Getenv("GATEWAY_DEBUG") == "true"

	if apiKey == "" {
		log.Printf("WARNING: GATEWAY_API_KEY is not set; upstream requests will be unauthenticated")
	} else {
		log.Printf("Gateway configuration:")
		log.Printf("  Base URL: %s", baseURL)
		log.Printf("  API Key: [CONFIGURED]")
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("X-API-Key", apiKey)
	}

	return &GatewayService{client: client, debug: debug}
}

// fetch performs a GET and returns the raw body. Non-2xx responses come
// back as GatewayError so the caller can propagate the upstream status.
func (s *GatewayService) fetch(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	if s.debug {
		log.Printf("Gateway GET %s -> %d: %s", path, resp.StatusCode(), resp.String())
	}
	if resp.IsError() {
		return nil, &GatewayError{StatusCode: resp.StatusCode(), Message: gatewayMessage(resp.Body())}
	}
	return resp.Body(), nil
}

// send performs a mutating request and decodes the result payload,
// accepting either an enveloped or a bare response body.
func (s *GatewayService) send(ctx context.Context, method, path string, payload, out interface{}) error {
	req := s.client.R().SetContext(ctx)
	if payload != nil {
		req.SetBody(payload)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	if s.debug {
		log.Printf("Gateway %s %s -> %d: %s", method, path, resp.StatusCode(), resp.String())
	}
	if resp.IsError() {
		return &GatewayError{StatusCode: resp.StatusCode(), Message: gatewayMessage(resp.Body())}
	}
	if out == nil {
		return nil
	}
	return decodeResult(resp.Body(), out)
}

// decodeResult unwraps a response body into out, preferring the "data"
// object when the body is enveloped.
func decodeResult(body []byte, out interface{}) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if data, ok := envelope["data"]; ok {
		var probe map[string]json.RawMessage
		if json.Unmarshal(data, &probe) == nil {
			return json.Unmarshal(data, out)
		}
	}
	return json.Unmarshal(body, out)
}

// gatewayMessage pulls the upstream error message out of a failed
// response body when one is present.
func gatewayMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

// FetchSellerCore retrieves the seller-core payload
func (s *GatewayService) FetchSellerCore(ctx context.Context, sellerID string) ([]byte, error) {
	return s.fetch(ctx, "/sellers/"+sellerID)
}

// FetchBalanceSnapshot retrieves the balance payload
func (s *GatewayService) FetchBalanceSnapshot(ctx context.Context, sellerID string) ([]byte, error) {
	return s.fetch(ctx, "/sellers/"+sellerID+"/balance")
}

// FetchPayoutVerification retrieves the payout-verification payload
func (s *GatewayService) FetchPayoutVerification(ctx context.Context, sellerID string) ([]byte, error) {
	return s.fetch(ctx, "/sellers/"+sellerID+"/payout-verification")
}

// UpdateDocumentStatus changes a document's verification status
func (s *GatewayService) UpdateDocumentStatus(ctx context.Context, req models.DocumentUpdateRequest) (*models.DocumentUpdateResult, error) {
	var result models.DocumentUpdateResult
	if err := s.send(ctx, resty.MethodPut, "/sellers/"+req.SellerID+"/documents/status", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ApproveVerification approves a seller's verification
func (s *GatewayService) ApproveVerification(ctx context.Context, req models.VerificationActionRequest) (*models.VerificationActionResult, error) {
	var result models.VerificationActionResult
	if err := s.send(ctx, resty.MethodPost, "/sellers/"+req.SellerID+"/verification/approve", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectVerification rejects a seller's verification
func (s *GatewayService) RejectVerification(ctx context.Context, req models.VerificationActionRequest) (*models.VerificationActionResult, error) {
	var result models.VerificationActionResult
	if err := s.send(ctx, resty.MethodPost, "/sellers/"+req.SellerID+"/verification/reject", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ApprovePayout approves a payout for a specific payment method
func (s *GatewayService) ApprovePayout(ctx context.Context, req models.PayoutActionRequest) (*models.PayoutActionResult, error) {
	var result models.PayoutActionResult
	if err := s.send(ctx, resty.MethodPost, "/sellers/"+req.SellerID+"/payout/approve", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectPayout rejects a seller's payout
func (s *GatewayService) RejectPayout(ctx context.Context, req models.PayoutActionRequest) (*models.PayoutActionResult, error) {
	var result models.PayoutActionResult
	if err := s.send(ctx, resty.MethodPost, "/sellers/"+req.SellerID+"/payout/reject", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetBalance resets a seller's balance
func (s *GatewayService) ResetBalance(ctx context.Context, req models.BalanceResetUpstreamRequest) (*models.BalanceResetResult, error) {
	var result models.BalanceResetResult
	if err := s.send(ctx, resty.MethodPost, "/sellers/"+req.SellerID+"/balance/reset", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetLockedBalance resets a seller's locked balance
func (s *GatewayService) ResetLockedBalance(ctx context.Context, req models.BalanceResetUpstreamRequest) (*models.BalanceResetResult, error) {
	var result models.BalanceResetResult
	if err := s.send(ctx, resty.MethodPost, "/sellers/"+req.SellerID+"/balance/reset-locked", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LookupAdminPrimary resolves an admin id through the admin directory
func (s *GatewayService) LookupAdminPrimary(ctx context.Context, adminID string) (*models.AdminLookupResult, error) {
	var result models.AdminLookupResult
	if err := s.send(ctx, resty.MethodPost, "/admins/lookup", models.AdminLookupRequest{AdminID: adminID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LookupAdminFallback resolves an admin id through the user directory,
// used when the admin directory fails or times out.
func (s *GatewayService) LookupAdminFallback(ctx context.Context, adminID string) (*models.AdminLookupResult, error) {
	var result models.AdminLookupResult
	if err := s.send(ctx, resty.MethodPost, "/users/lookup", models.AdminLookupRequest{AdminID: adminID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
