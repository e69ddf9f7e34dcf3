package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/hash"
	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/payment"
	"github.com/avelin/stitchmart/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return repo.New(db)
}

func seedUser(t *testing.T, r *repo.GormRepo, email string) *models.User {
	t.Helper()
	pwHash, err := hash.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{Email: email, Name: "Test User", PasswordHash: &pwHash}
	require.NoError(t, r.DB.Create(&user).Error)
	return &user
}

func seedAdmin(t *testing.T, r *repo.GormRepo, email string, role models.AdminRole) *models.Admin {
	t.Helper()
	pwHash, err := hash.HashPassword("password123")
	require.NoError(t, err)
	admin := models.Admin{Email: email, PasswordHash: pwHash, Role: role}
	require.NoError(t, r.DB.Create(&admin).Error)
	return &admin
}

func seedCategory(t *testing.T, r *repo.GormRepo) *models.Category {
	t.Helper()
	cat := models.Category{Name: "Hoodies", Description: "warm"}
	require.NoError(t, r.DB.Create(&cat).Error)
	return &cat
}

func seedProduct(t *testing.T, r *repo.GormRepo, price float64, sizes map[string]uint) *models.Product {
	t.Helper()
	cat := seedCategory(t, r)
	p := models.Product{Name: "Hoodie", Description: "plain", Price: price, CategoryID: cat.ID}
	for size, qty := range sizes {
		p.Sizes = append(p.Sizes, models.ProductSize{Size: size, Quantity: qty})
	}
	require.NoError(t, r.DB.Create(&p).Error)
	return &p
}

// fakeGateway records calls and returns canned intents.
type fakeGateway struct {
	calls   int
	fail    bool
	lastKey string
	event   payment.Event
	sigErr  error
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountCents int64, currency, idempotencyKey string) (*payment.Intent, error) {
	g.calls++
	g.lastKey = idempotencyKey
	if g.fail {
		return nil, fmt.Errorf("gateway down")
	}
	id := fmt.Sprintf("pi_test_%d", g.calls)
	return &payment.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, sigHeader string) (*payment.Event, error) {
	if g.sigErr != nil {
		return nil, g.sigErr
	}
	return &g.event, nil
}
