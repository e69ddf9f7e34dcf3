package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/payment"
	"github.com/avelin/stitchmart/internal/repo"
)

type OrderService struct {
	Repo    *repo.GormRepo
	Gateway payment.Gateway
}

type PlaceOrderResult struct {
	Order        *models.Order `json:"order"`
	ClientSecret string        `json:"client_secret"`
}

// PlaceOrder converts the user's cart into an order. The gateway intent
// is requested before the transaction and is therefore not covered by it;
// a crash in between leaves an orphaned intent at the gateway and nothing
// in the database.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, requestedUserID uint) (*PlaceOrderResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.place_order", "user_id", userID)

	if requestedUserID != userID {
		l.Warn("place order rejected", "status", 403, "reason", "user id mismatch")
		return nil, fmt.Errorf("%w: user id does not match", ErrForbidden)
	}

	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart", ErrNotFound)
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Re-validate stock and compute the total from live prices, not a
	// cart-time snapshot. First violation aborts.
	var total float64
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	decrements := make([]repo.StockDecrement, 0, len(cart.Items))
	for _, it := range cart.Items {
		p, err := s.Repo.GetProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
			}
			return nil, err
		}

		size, err := s.Repo.GetProductSize(ctx, it.ProductID, it.Size)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s has no size %s", ErrSizeUnavailable, p.Name, it.Size)
			}
			return nil, err
		}
		if size.Quantity < it.Quantity {
			return nil, fmt.Errorf("%w: %s size %s, available: %d, requested: %d",
				ErrInsufficientStock, p.Name, it.Size, size.Quantity, it.Quantity)
		}

		total += p.Price * float64(it.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: it.ProductID,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		})
		decrements = append(decrements, repo.StockDecrement{
			ProductID: it.ProductID,
			Size:      it.Size,
			Quantity:  it.Quantity,
		})
	}

	intent, err := s.Gateway.CreateIntent(ctx, toCents(total), "usd", uuid.NewString())
	if err != nil {
		l.Error("payment intent failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	order := &models.Order{
		UserID: userID,
		Total:  total,
		Status: models.OrderStatusPending,
		Items:  orderItems,
	}
	pay := &models.Payment{
		Amount:                total,
		Status:                models.PaymentStatusPending,
		StripePaymentIntentID: intent.ID,
	}

	if err := s.Repo.CreateOrderTx(ctx, order, pay, cart.ID, decrements); err != nil {
		if errors.Is(err, repo.ErrStockConflict) {
			return nil, fmt.Errorf("%w: stock changed during checkout", ErrInsufficientStock)
		}
		return nil, err
	}

	l.Info("order placed", "order_id", order.ID, "total", order.Total, "intent_id", intent.ID)
	return &PlaceOrderResult{Order: order, ClientSecret: intent.ClientSecret}, nil
}

// HandleWebhook applies a verified gateway event. The paid/processing
// update is idempotent by construction; replays are harmless.
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	l := logging.FromContext(ctx).With("svc", "order.webhook")

	event, err := s.Gateway.VerifyWebhook(payload, sigHeader)
	if err != nil {
		l.Warn("webhook rejected", "status", 400, "error", err)
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if event.Type != payment.EventPaymentSucceeded {
		l.Info("webhook ignored", "type", event.Type)
		return nil
	}

	if err := s.Repo.MarkPaymentPaid(ctx, event.IntentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: payment for intent %s", ErrNotFound, event.IntentID)
		}
		return err
	}
	l.Info("payment confirmed", "intent_id", event.IntentID)
	return nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) GetUserOrder(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f repo.OrderFilter) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, f)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	if _, err := s.Repo.GetOrderByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}
	return s.Repo.UpdateOrderStatus(ctx, orderID, models.OrderStatus(status))
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
