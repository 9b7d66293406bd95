package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/souqly/souqly_backend/models"
	"github.com/souqly/souqly_backend/repositories"
	"github.com/souqly/souqly_backend/services"
)

// SellerController serves the unified seller verification view and its
// enrichments to the admin console.
type SellerController struct {
	Views      *services.SellerViewService
	Identities *services.IdentityResolver
	Audits     *repositories.AuditRepository
}

// NewSellerController creates a new seller controller
func NewSellerController(views *services.SellerViewService, identities *services.IdentityResolver, audits *repositories.AuditRepository) *SellerController {
	return &SellerController{Views: views, Identities: identities, Audits: audits}
}

// GetSellerVerification returns the unified seller view: identity,
// balance, resolved documents, and the aggregated payout picture.
func (sc *SellerController) GetSellerVerification(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID is required",
		})
	}

	view, err := sc.Views.Load(ctx, sellerID)
	if err != nil {
		return sellerErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Seller verification view retrieved successfully",
		Data:    view,
	})
}

// RefreshSeller invalidates the cached projection so the next read is
// guaranteed fresh, then rebuilds the view.
func (sc *SellerController) RefreshSeller(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID is required",
		})
	}

	sc.Views.Invalidate(sellerID)
	view, err := sc.Views.Load(ctx, sellerID)
	if err != nil {
		return sellerErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Seller view refreshed successfully",
		Data:    view,
	})
}

// GetAdminIdentities returns display names for a comma-separated list
// of admin ids. Unresolved ids come back with their formatted fallback.
func (sc *SellerController) GetAdminIdentities(c echo.Context) error {
	idsParam := c.QueryParam("ids")
	if idsParam == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Query parameter 'ids' is required",
		})
	}

	var adminIDs []string
	for _, id := range strings.Split(idsParam, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			adminIDs = append(adminIDs, trimmed)
		}
	}

	// Kick off resolution for anything not yet cached; the response
	// carries whatever is resolved right now and the console re-reads.
	go sc.Identities.ResolveAll(context.Background(), adminIDs)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Admin identities retrieved successfully",
		Data:    sc.Identities.Identities(adminIDs),
	})
}

// GetSellerAuditTrail returns the recorded mutation attempts for a
// seller, newest first.
func (sc *SellerController) GetSellerAuditTrail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Seller ID is required",
		})
	}

	limit := int64(0)
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if parsed, err := strconv.ParseInt(limitParam, 10, 64); err == nil {
			limit = parsed
		}
	}

	audits, err := sc.Audits.FindBySeller(ctx, sellerID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve audit trail",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Audit trail retrieved successfully",
		Data:    audits,
	})
}

// sellerErrorResponse maps view-load failures onto HTTP responses,
// passing upstream permission and not-found statuses through as-is.
func sellerErrorResponse(c echo.Context, err error) error {
	if gwErr, ok := services.AsGatewayError(err); ok {
		return c.JSON(gwErr.StatusCode, models.Response{
			Status:  gwErr.StatusCode,
			Message: gwErr.Error(),
		})
	}
	if err == services.ErrNoSources {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Seller not found",
		})
	}
	return c.JSON(http.StatusBadGateway, models.Response{
		Status:  http.StatusBadGateway,
		Message: "Failed to load seller data",
	})
}
