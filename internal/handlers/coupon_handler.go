package handlers

import (
	"ecobazaar/internal/middleware"
	"ecobazaar/internal/models"
	"ecobazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type claimCouponRequest struct {
	PointsRequired int64           `json:"points_required" validate:"required,gt=0"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderValue  decimal.Decimal `json:"min_order_value"`
}

type applyCouponRequest struct {
	Code     string          `json:"code" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CouponHandler handles HTTP requests for coupons.
type CouponHandler struct {
	ledger   *services.CouponLedger
	validate *validator.Validate
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(ledger *services.CouponLedger) *CouponHandler {
	return &CouponHandler{
		ledger:   ledger,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the coupon routes with the Fiber app.
func (h *CouponHandler) RegisterRoutes(router fiber.Router) {
	couponRoutes := router.Group("/coupons")
	couponRoutes.Get("/", h.HandleListCoupons)
	couponRoutes.Post("/claim", middleware.RequireCapability(models.CapRedeemPoints), h.HandleClaimCoupon)
	couponRoutes.Post("/apply", h.HandleApplyCoupon)
}

func (h *CouponHandler) HandleListCoupons(c *fiber.Ctx) error {
	coupons, err := h.ledger.ListForUser(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err, "Could not retrieve coupons")
	}
	return c.JSON(coupons)
}

// HandleClaimCoupon redeems available points for a percent-off coupon.
func (h *CouponHandler) HandleClaimCoupon(c *fiber.Ctx) error {
	var req claimCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	result, err := h.ledger.IssueByRedemption(c.UserContext(), services.ClaimRequest{
		UserID:         identity(c).UserID,
		PointsRequired: req.PointsRequired,
		DiscountValue:  req.DiscountValue,
		MinOrderValue:  req.MinOrderValue,
	})
	if err != nil {
		return respondError(c, err, "Could not claim coupon")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleApplyCoupon previews a coupon against a subtotal without using it.
func (h *CouponHandler) HandleApplyCoupon(c *fiber.Ctx) error {
	var req applyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	preview, err := h.ledger.PreviewApply(c.UserContext(), req.Code, identity(c).UserID, req.Subtotal)
	if err != nil {
		return respondError(c, err, "Could not apply coupon")
	}
	return c.JSON(preview)
}
