package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/souqly/souqly_backend/middleware"
	"github.com/souqly/souqly_backend/models"
	"github.com/souqly/souqly_backend/services"
)

// VerificationController handles the status-changing actions on a
// seller: document verification, seller-level verification, payout
// approval, and balance resets. Every action goes through the mutation
// coordinator; nothing here touches the cached projection directly.
type VerificationController struct {
	Coordinator *services.MutationCoordinator
}

// NewVerificationController creates a new verification controller
func NewVerificationController(coordinator *services.MutationCoordinator) *VerificationController {
	return &VerificationController{Coordinator: coordinator}
}

// actingAdmin returns the id of the admin performing the action
func actingAdmin(c echo.Context) string {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// UpdateDocumentStatus verifies or rejects a single document
func (vc *VerificationController) UpdateDocumentStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	documentType := c.Param("type")
	if sellerID == "" || documentType == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID and document type are required",
		})
	}

	var req models.DocumentStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be 'verified' or 'rejected'",
		})
	}

	info, err := vc.Coordinator.UpdateDocumentStatus(ctx, sellerID, documentType, req.Status, req.Reason, actingAdmin(c))
	if err != nil {
		return mutationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Document status updated successfully",
		Data:    info,
	})
}

// ApproveVerification approves a seller's verification
func (vc *VerificationController) ApproveVerification(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID is required",
		})
	}

	result, err := vc.Coordinator.ApproveVerification(ctx, sellerID, actingAdmin(c))
	if err != nil {
		return mutationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Seller verification approved successfully",
		Data:    result,
	})
}

// RejectVerification rejects a seller's verification with a reason
func (vc *VerificationController) RejectVerification(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID is required",
		})
	}

	var req models.RejectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Rejection reason is required",
		})
	}

	result, err := vc.Coordinator.RejectVerification(ctx, sellerID, req.Reason, actingAdmin(c))
	if err != nil {
		return mutationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Seller verification rejected successfully",
		Data:    result,
	})
}

// ApprovePayout approves a payout through a specific payment method
func (vc *VerificationController) ApprovePayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID is required",
		})
	}

	var req models.PayoutApproveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Payment method is required",
		})
	}

	result, err := vc.Coordinator.ApprovePayout(ctx, sellerID, req.PaymentMethod, actingAdmin(c))
	if err != nil {
		return mutationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout approved successfully",
		Data:    result,
	})
}

// RejectPayout rejects a seller's payout with a reason
func (vc *VerificationController) RejectPayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID is required",
		})
	}

	var req models.RejectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Rejection reason is required",
		})
	}

	result, err := vc.Coordinator.RejectPayout(ctx, sellerID, req.Reason, actingAdmin(c))
	if err != nil {
		return mutationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout rejected successfully",
		Data:    result,
	})
}

// ResetBalance resets a seller's balance
func (vc *VerificationController) ResetBalance(c echo.Context) error {
	return vc.balanceReset(c, false)
}

// ResetLockedBalance resets a seller's locked balance
func (vc *VerificationController) ResetLockedBalance(c echo.Context) error {
	return vc.balanceReset(c, true)
}

func (vc *VerificationController) balanceReset(c echo.Context, locked bool) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID is required",
		})
	}

	var req models.BalanceResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	var snapshot *models.BalanceSnapshot
	var err error
	if locked {
		snapshot, err = vc.Coordinator.ResetLockedBalance(ctx, sellerID, req.NewBalance, req.Reason, actingAdmin(c))
	} else {
		snapshot, err = vc.Coordinator.ResetBalance(ctx, sellerID, req.NewBalance, req.Reason, actingAdmin(c))
	}
	if err != nil {
		return mutationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Balance reset successfully",
		Data:    snapshot,
	})
}

// mutationErrorResponse maps coordinator failures onto HTTP responses.
// Guard rejections come back as conflicts; echo mismatches come back as
// a retryable conflict after the projection has been invalidated;
// upstream permission and not-found statuses pass through as-is.
func mutationErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrStillProcessing):
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "This action is still processing, please wait",
		})
	case errors.Is(err, services.ErrAlreadyProcessed):
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "This item has already been processed",
		})
	case errors.Is(err, services.ErrStatusMismatch):
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "The update could not be confirmed, please retry",
		})
	}
	if gwErr, ok := services.AsGatewayError(err); ok {
		return c.JSON(gwErr.StatusCode, models.Response{
			Status:  gwErr.StatusCode,
			Message: gwErr.Error(),
		})
	}
	return c.JSON(http.StatusBadGateway, models.Response{
		Status:  http.StatusBadGateway,
		Message: "Failed to reach the marketplace backend, please retry",
	})
}
