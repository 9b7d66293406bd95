package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/souqly/souqly_backend/controllers"
	"github.com/souqly/souqly_backend/middleware"
)

// RegisterAdminRoutes sets up the seller verification and payout routes
func RegisterAdminRoutes(e *echo.Echo, sellerController *controllers.SellerController, verificationController *controllers.VerificationController) {
	// Admin routes group
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType("admin", "super_admin"))

	// Unified seller view and enrichments
	admin.GET("/sellers/:id/verification", sellerController.GetSellerVerification)
	admin.POST("/sellers/:id/refresh", sellerController.RefreshSeller)
	admin.GET("/sellers/:id/audit", sellerController.GetSellerAuditTrail)
	admin.GET("/identities", sellerController.GetAdminIdentities)

	// Document verification
	admin.PUT("/sellers/:id/documents/:type/status", verificationController.UpdateDocumentStatus)

	// Seller-level verification
	admin.POST("/sellers/:id/verification/approve", verificationController.ApproveVerification)
	admin.POST("/sellers/:id/verification/reject", verificationController.RejectVerification)

	// Payout verification
	admin.POST("/sellers/:id/payout/approve", verificationController.ApprovePayout)
	admin.POST("/sellers/:id/payout/reject", verificationController.RejectPayout)

	// Balance management
	admin.POST("/sellers/:id/balance/reset", verificationController.ResetBalance)
	admin.POST("/sellers/:id/balance/reset-locked", verificationController.ResetLockedBalance)
}
