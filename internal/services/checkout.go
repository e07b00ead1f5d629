package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/carbon"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	RoutingKeyOrderCreated = "order.created"

	// MaxIdempotencyKeyLength matches the orders.idempotency_key column.
	MaxIdempotencyKeyLength = 128
)

// OrderCreatedEvent is published after a checkout commits.
type OrderCreatedEvent struct {
	OrderID            string          `json:"order_id"`
	UserID             string          `json:"user_id"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	TotalCarbonSaved   float64         `json:"total_carbon_saved"`
	CarbonPointsEarned int64           `json:"carbon_points_earned"`
	CreatedAt          time.Time       `json:"created_at"`
}

// CheckoutRequest carries everything a checkout needs besides the cart.
type CheckoutRequest struct {
	Identity        models.Identity
	ShippingAddress models.Address
	CouponCode      string
	IdempotencyKey  string
}

// quote is the priced, not yet durable form of an order.
type quote struct {
	items       []models.OrderItem
	subtotal    decimal.Decimal
	shipping    decimal.Decimal
	carbonSaved float64
	discount    decimal.Decimal
	coupon      *models.Coupon
}

// CheckoutOrchestrator converts a cart into an order in one unit of work.
type CheckoutOrchestrator struct {
	carts     repositories.CartRepository
	orders    repositories.OrderRepository
	inventory *InventoryLedger
	coupons   *CouponLedger
	rewards   *RewardsEngine
	engine    *carbon.Engine
	tx        Transactor
	publisher EventPublisher
}

// NewCheckoutOrchestrator wires the orchestrator. publisher may be nil.
func NewCheckoutOrchestrator(
	repos *repositories.Repositories,
	inventory *InventoryLedger,
	coupons *CouponLedger,
	rewards *RewardsEngine,
	engine *carbon.Engine,
	tx Transactor,
	publisher EventPublisher,
) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{
		carts:     repos.Carts,
		orders:    repos.Orders,
		inventory: inventory,
		coupons:   coupons,
		rewards:   rewards,
		engine:    engine,
		tx:        tx,
		publisher: publisher,
	}
}

// Checkout locks and prices the cart, then decrements stock, persists the
// order, consumes the coupon, credits rewards and clears the cart in one
// transaction. A repeated IdempotencyKey returns the order created by the
// first call.
func (o *CheckoutOrchestrator) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "CheckoutOrchestrator.Checkout")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.Identity.UserID))

	if !req.Identity.Role.Can(models.CapCheckout) {
		return nil, apperrors.Unauthorized("role %s cannot check out", req.Identity.Role)
	}
	userID := req.Identity.UserID
	key := strings.TrimSpace(req.IdempotencyKey)
	if len(key) > MaxIdempotencyKeyLength {
		return nil, apperrors.Validation("idempotency key must be at most %d characters", MaxIdempotencyKeyLength)
	}

	if key != "" {
		existing, err := o.orders.GetByIdempotencyKey(ctx, userID, key)
		if err == nil {
			log.Printf("Checkout replay for user %s with key %s returns order %s", userID, key, existing.ID)
			return existing, nil
		}
		if !apperrors.Is(err, apperrors.KindNotFound) {
			return nil, err
		}
	}

	code := strings.TrimSpace(req.CouponCode)
	var order *models.Order
	err := o.tx.Do(ctx, func(ctx context.Context) error {
		cart, err := o.carts.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return apperrors.EmptyCart()
		}

		q, err := o.price(ctx, cart.Snapshot(), req.ShippingAddress)
		if err != nil {
			return err
		}
		gross := q.subtotal.Add(q.shipping)
		if code != "" {
			// The EXPIRED transition would roll back with this transaction;
			// it is applied after the failure instead.
			coupon, err := o.coupons.validate(ctx, code, userID, gross, false)
			if err != nil {
				return err
			}
			q.coupon = coupon
			q.discount = ComputeDiscount(coupon, gross)
		}

		order = o.newOrder(userID, q, gross, req.ShippingAddress, key)
		for _, item := range order.Items {
			ok, err := o.inventory.Decrement(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.OutOfStock(item.ProductName)
			}
		}
		if err := o.orders.Create(ctx, order); err != nil {
			return err
		}
		if q.coupon != nil {
			if err := o.coupons.Consume(ctx, q.coupon, order.ID); err != nil {
				return err
			}
		}
		if _, err := o.rewards.CreditOrder(ctx, order); err != nil {
			return err
		}
		cart.Clear()
		return o.carts.Save(ctx, cart)
	})
	if err != nil {
		if code != "" && apperrors.Is(err, apperrors.KindExpired) {
			if expireErr := o.coupons.ExpireIfPast(ctx, code, userID); expireErr != nil {
				log.Printf("Error expiring coupon %s for user %s: %v", code, userID, expireErr)
			}
		}
		if key != "" && database.IsDuplicateKey(err) {
			if existing, lookupErr := o.orders.GetByIdempotencyKey(ctx, userID, key); lookupErr == nil {
				return existing, nil
			}
		}
		span.RecordError(err)
		log.Printf("Checkout failed for user %s: %v", userID, err)
		return nil, err
	}

	log.Printf("Order %s created for user %s (total %s, %d points)", order.ID, userID, order.TotalAmount.StringFixed(2), order.CarbonPointsEarned)
	o.publishOrderCreated(order)
	return order, nil
}

func (o *CheckoutOrchestrator) newOrder(userID string, q *quote, gross decimal.Decimal, addr models.Address, key string) *models.Order {
	order := &models.Order{
		ID:               uuid.New().String(),
		UserID:           userID,
		Items:            q.items,
		Subtotal:         q.subtotal,
		ShippingCost:     q.shipping,
		DiscountAmount:   q.discount,
		TotalAmount:      gross.Sub(q.discount),
		TotalCarbonSaved: q.carbonSaved,
		Status:           models.OrderStatusConfirmed,
		ShippingAddress:  addr,
	}
	if q.coupon != nil {
		order.CouponCode = q.coupon.Code
	}
	if key != "" {
		order.IdempotencyKey = &key
	}
	return order
}

// price snapshots each cart line, re-checks stock and applies the delivery
// model against the shipping address.
func (o *CheckoutOrchestrator) price(ctx context.Context, lines []models.CartItem, addr models.Address) (*quote, error) {
	buyer := carbon.Location{City: addr.City, State: addr.State}
	q := &quote{subtotal: decimal.Zero, shipping: decimal.Zero, discount: decimal.Zero}

	for _, line := range lines {
		product, err := o.inventory.CheckAvailable(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		seller := carbon.Location{City: product.City, State: product.State}
		lq := o.engine.Quote(line.CarbonSavedPerItem, seller, buyer)

		sellerID := product.SellerID
		if sellerID == "" {
			sellerID = line.SellerID
		}
		item := models.OrderItem{
			ID:                     uuid.New().String(),
			ProductID:              line.ProductID,
			ProductName:            line.ProductName,
			SellerID:               sellerID,
			Price:                  line.Price,
			Quantity:               line.Quantity,
			CarbonFootprintPerUnit: line.CarbonFootprintPerUnit,
			CarbonSavedPerItem:     lq.AdjustedSavedPerItem,
			ShippingFee:            lq.ShippingFee,
		}
		q.items = append(q.items, item)
		q.subtotal = q.subtotal.Add(item.LineTotal())
		q.shipping = q.shipping.Add(lq.ShippingFee)
		q.carbonSaved += lq.AdjustedSavedPerItem * float64(line.Quantity)
	}
	return q, nil
}

func (o *CheckoutOrchestrator) publishOrderCreated(order *models.Order) {
	if o.publisher == nil {
		return
	}
	body, err := json.Marshal(OrderCreatedEvent{
		OrderID:            order.ID,
		UserID:             order.UserID,
		TotalAmount:        order.TotalAmount,
		TotalCarbonSaved:   order.TotalCarbonSaved,
		CarbonPointsEarned: order.CarbonPointsEarned,
		CreatedAt:          order.CreatedAt,
	})
	if err != nil {
		log.Printf("Error marshaling order event for %s: %v", order.ID, err)
		return
	}
	if err := o.publisher.Publish(RoutingKeyOrderCreated, body); err != nil {
		log.Printf("Error publishing order event for %s: %v", order.ID, err)
	}
}
