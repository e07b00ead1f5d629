package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/services"

	amqp "github.com/streadway/amqp"
)

// Reconciler rebuilds a user's cached lifetime points.
type Reconciler interface {
	Reconcile(ctx context.Context, userID string) (*models.User, error)
}

// ReconcileWorker consumes order.created events and reconciles the buyer.
type ReconcileWorker struct {
	rewards Reconciler
	timeout time.Duration
}

func NewReconcileWorker(rewards Reconciler, timeout time.Duration) *ReconcileWorker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ReconcileWorker{rewards: rewards, timeout: timeout}
}

// HandleDelivery returns nil for messages that can never succeed so they
// are acked and dropped. Storage failures are returned for requeue.
func (w *ReconcileWorker) HandleDelivery(msg amqp.Delivery) error {
	if msg.RoutingKey != "" && msg.RoutingKey != services.RoutingKeyOrderCreated {
		log.Printf("Ignoring event %s (tag %d)", msg.RoutingKey, msg.DeliveryTag)
		return nil
	}

	var event services.OrderCreatedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Dropping malformed order event (tag %d): %v", msg.DeliveryTag, err)
		return nil
	}
	if event.UserID == "" {
		log.Printf("Dropping order event %s without user (tag %d)", event.OrderID, msg.DeliveryTag)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	user, err := w.rewards.Reconcile(ctx, event.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			log.Printf("Dropping order event %s for unknown user %s", event.OrderID, event.UserID)
			return nil
		}
		return err
	}
	log.Printf("Reconciled user %s after order %s: %d lifetime points", user.ID, event.OrderID, user.TotalCarbonPoints)
	return nil
}
