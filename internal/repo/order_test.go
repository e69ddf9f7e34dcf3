package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return New(db)
}

func seedOrderFixture(t *testing.T, r *GormRepo) (*models.Cart, *models.Product) {
	t.Helper()
	user := models.User{Email: "tx@example.com", Name: "U"}
	require.NoError(t, r.DB.Create(&user).Error)

	cat := models.Category{Name: "Tees"}
	require.NoError(t, r.DB.Create(&cat).Error)

	p := models.Product{
		Name: "Tee", Price: 10, CategoryID: cat.ID,
		Sizes: []models.ProductSize{{Size: "M", Quantity: 5}},
	}
	require.NoError(t, r.DB.Create(&p).Error)

	cart := models.Cart{
		UserID: user.ID,
		Items:  []models.CartItem{{ProductID: p.ID, Size: "M", Quantity: 2}},
	}
	require.NoError(t, r.DB.Create(&cart).Error)
	return &cart, &p
}

func TestCreateOrderTxCommitsAllWrites(t *testing.T) {
	r := newTestRepo(t)
	cart, p := seedOrderFixture(t, r)
	ctx := context.Background()

	order := &models.Order{
		UserID: cart.UserID, Total: 20, Status: models.OrderStatusPending,
		Items: []models.OrderItem{{ProductID: p.ID, Size: "M", Quantity: 2, UnitPrice: 10}},
	}
	pay := &models.Payment{Amount: 20, Status: models.PaymentStatusPending, StripePaymentIntentID: "pi_1"}
	decs := []StockDecrement{{ProductID: p.ID, Size: "M", Quantity: 2}}

	require.NoError(t, r.CreateOrderTx(ctx, order, pay, cart.ID, decs))
	require.Equal(t, order.ID, pay.OrderID)

	var size models.ProductSize
	require.NoError(t, r.DB.Where("product_id = ? AND size = ?", p.ID, "M").First(&size).Error)
	require.EqualValues(t, 3, size.Quantity)

	var itemCount int64
	require.NoError(t, r.DB.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&itemCount).Error)
	require.EqualValues(t, 0, itemCount)
}

// A stock conflict surfacing inside the transaction must roll back the
// order, payment and any decrement already applied.
func TestCreateOrderTxRollsBackOnStockConflict(t *testing.T) {
	r := newTestRepo(t)
	cart, p := seedOrderFixture(t, r)
	ctx := context.Background()

	second := models.Product{
		Name: "Cap", Price: 5, CategoryID: p.CategoryID,
		Sizes: []models.ProductSize{{Size: "L", Quantity: 1}},
	}
	require.NoError(t, r.DB.Create(&second).Error)

	order := &models.Order{
		UserID: cart.UserID, Total: 35, Status: models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: p.ID, Size: "M", Quantity: 2, UnitPrice: 10},
			{ProductID: second.ID, Size: "L", Quantity: 3, UnitPrice: 5},
		},
	}
	pay := &models.Payment{Amount: 35, Status: models.PaymentStatusPending, StripePaymentIntentID: "pi_2"}
	decs := []StockDecrement{
		{ProductID: p.ID, Size: "M", Quantity: 2},
		{ProductID: second.ID, Size: "L", Quantity: 3},
	}

	err := r.CreateOrderTx(ctx, order, pay, cart.ID, decs)
	require.ErrorIs(t, err, ErrStockConflict)

	var orderCount, payCount, itemCount int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, r.DB.Model(&models.Payment{}).Count(&payCount).Error)
	require.NoError(t, r.DB.Model(&models.CartItem{}).Count(&itemCount).Error)
	require.EqualValues(t, 0, orderCount)
	require.EqualValues(t, 0, payCount)
	require.EqualValues(t, 1, itemCount)

	// The first product's decrement was rolled back too.
	var size models.ProductSize
	require.NoError(t, r.DB.Where("product_id = ? AND size = ?", p.ID, "M").First(&size).Error)
	require.EqualValues(t, 5, size.Quantity)
}

func TestMarkPaymentPaidIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	cart, p := seedOrderFixture(t, r)
	ctx := context.Background()

	order := &models.Order{
		UserID: cart.UserID, Total: 10, Status: models.OrderStatusPending,
		Items: []models.OrderItem{{ProductID: p.ID, Size: "M", Quantity: 1, UnitPrice: 10}},
	}
	pay := &models.Payment{Amount: 10, Status: models.PaymentStatusPending, StripePaymentIntentID: "pi_3"}
	require.NoError(t, r.CreateOrderTx(ctx, order, pay, cart.ID, []StockDecrement{{ProductID: p.ID, Size: "M", Quantity: 1}}))

	require.NoError(t, r.MarkPaymentPaid(ctx, "pi_3"))
	require.NoError(t, r.MarkPaymentPaid(ctx, "pi_3"))

	var got models.Payment
	require.NoError(t, r.DB.Where("stripe_payment_intent_id = ?", "pi_3").First(&got).Error)
	require.Equal(t, models.PaymentStatusPaid, got.Status)

	var o models.Order
	require.NoError(t, r.DB.First(&o, order.ID).Error)
	require.Equal(t, models.OrderStatusProcessing, o.Status)

	require.ErrorIs(t, r.MarkPaymentPaid(ctx, "pi_missing"), gorm.ErrRecordNotFound)
}
