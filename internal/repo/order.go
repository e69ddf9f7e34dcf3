package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/models"
)

type StockDecrement struct {
	ProductID uint
	Size      string
	Quantity  uint
}

// CreateOrderTx performs the all-or-nothing tail of order placement: the
// order with its items, the pending payment, the per-size stock decrements
// and the cart wipe either all land or none do.
func (r *GormRepo) CreateOrderTx(ctx context.Context, order *models.Order, payment *models.Payment, cartID uint, decrements []StockDecrement) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		payment.OrderID = order.ID
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		order.Payment = payment

		for _, d := range decrements {
			var size models.ProductSize
			if err := tx.Where("product_id = ? AND size = ?", d.ProductID, d.Size).
				First(&size).Error; err != nil {
				return err
			}
			if size.Quantity < d.Quantity {
				return ErrStockConflict
			}
			if err := tx.Model(&size).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", d.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	if err := r.DB.WithContext(ctx).
		Preload("Items.Product").Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrderForUser(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items.Product").Preload("Payment").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	Search string
	Status models.OrderStatus
	Offset int
	Limit  int
}

func (r *GormRepo) orderQuery(ctx context.Context, f OrderFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Search != "" {
		q = q.Joins("JOIN users ON users.id = orders.user_id").
			Where("LOWER(users.email) LIKE LOWER(?) OR LOWER(users.name) LIKE LOWER(?)",
				"%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	return q
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) (int64, []models.Order, error) {
	var total int64
	if err := r.orderQuery(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := r.orderQuery(ctx, f).
		Preload("User").Preload("Items.Product").Preload("Payment").
		Order("orders.created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) GetOrderByID(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("User").Preload("Items.Product").Preload("Payment").
		First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	return r.GetOrderByID(ctx, orderID)
}

func (r *GormRepo) GetPaymentByIntent(ctx context.Context, intentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.DB.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", intentID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkPaymentPaid sets the payment to PAID and moves the owning order to
// PROCESSING. Replayed webhook deliveries re-apply the same values.
func (r *GormRepo) MarkPaymentPaid(ctx context.Context, intentID string) error {
	payment, err := r.GetPaymentByIntent(ctx, intentID)
	if err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Model(payment).
		Update("status", models.PaymentStatusPaid).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", payment.OrderID).
		Update("status", models.OrderStatusProcessing).Error
}
