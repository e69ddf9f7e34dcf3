package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authmw "github.com/avelin/stitchmart/internal/middleware/auth"

	"github.com/avelin/stitchmart/internal/events"
	"github.com/avelin/stitchmart/internal/hash"
	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/payment"
	"github.com/avelin/stitchmart/internal/repo"
	"github.com/avelin/stitchmart/internal/service"
)

type fakeGateway struct {
	calls  int
	event  payment.Event
	sigErr error
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountCents int64, currency, idempotencyKey string) (*payment.Intent, error) {
	g.calls++
	id := fmt.Sprintf("pi_test_%d", g.calls)
	return &payment.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, sigHeader string) (*payment.Event, error) {
	if g.sigErr != nil {
		return nil, g.sigErr
	}
	return &g.event, nil
}

type testServer struct {
	e       *echo.Echo
	repo    *repo.GormRepo
	tokens  *service.TokenService
	gateway *fakeGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	r := repo.New(db)
	gw := &fakeGateway{}
	prod := &events.Producer{}

	tokenSvc := &service.TokenService{Repo: r, AccessSecret: []byte("access"), RefreshSecret: []byte("refresh")}
	authSvc := &service.AuthService{Repo: r, Tokens: tokenSvc}
	cartSvc := &service.CartService{Repo: r}
	orderSvc := &service.OrderService{Repo: r, Gateway: gw}
	catalogSvc := &service.CatalogService{Repo: r}
	uploadSvc := &service.UploadService{Repo: r, BaseURL: "http://test"}

	e := echo.New()
	e.Validator = NewValidator()

	deps := Deps{
		Auth:          &AuthHandler{Auth: authSvc, Producer: prod},
		Cart:          &CartHandler{Cart: cartSvc, Producer: prod},
		Orders:        &OrderHandler{Orders: orderSvc, Producer: prod},
		Catalog:       &CatalogHandler{Catalog: catalogSvc},
		AdminProducts: &AdminProductHandler{Catalog: catalogSvc, Producer: prod},
		AdminOrders:   &AdminOrderHandler{Orders: orderSvc},
		Uploads:       &UploadHandler{Uploads: uploadSvc, Dir: t.TempDir()},
		UserMW:        authmw.NewUserMiddleware(tokenSvc, false),
		AdminMW:       authmw.NewAdminMiddleware(tokenSvc, false),
		UploadDir:     t.TempDir(),
	}
	Register(e, &deps)

	return &testServer{e: e, repo: r, tokens: tokenSvc, gateway: gw}
}

func (s *testServer) request(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	pwHash, err := hash.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{Email: email, Name: "Test User", PasswordHash: &pwHash}
	require.NoError(t, s.repo.DB.Create(&user).Error)
	return &user
}

func (s *testServer) seedAdmin(t *testing.T, email string, role models.AdminRole) *models.Admin {
	t.Helper()
	pwHash, err := hash.HashPassword("password123")
	require.NoError(t, err)
	admin := models.Admin{Email: email, PasswordHash: pwHash, Role: role}
	require.NoError(t, s.repo.DB.Create(&admin).Error)
	return &admin
}

func (s *testServer) seedProduct(t *testing.T, price float64, sizes map[string]uint) *models.Product {
	t.Helper()
	cat := models.Category{Name: "Hoodies"}
	require.NoError(t, s.repo.DB.Create(&cat).Error)
	p := models.Product{Name: "Hoodie", Price: price, CategoryID: cat.ID}
	for size, qty := range sizes {
		p.Sizes = append(p.Sizes, models.ProductSize{Size: size, Quantity: qty})
	}
	require.NoError(t, s.repo.DB.Create(&p).Error)
	return &p
}

func (s *testServer) userCookies(t *testing.T, user *models.User) []*http.Cookie {
	t.Helper()
	pair, err := s.tokens.IssuePair(context.Background(), user.ID, user.Email, "user", service.AudienceUser)
	require.NoError(t, err)
	access, refresh := service.AudienceUser.CookieNames()
	return []*http.Cookie{
		{Name: access, Value: pair.AccessToken},
		{Name: refresh, Value: pair.RefreshToken},
	}
}

func (s *testServer) adminCookies(t *testing.T, admin *models.Admin) []*http.Cookie {
	t.Helper()
	pair, err := s.tokens.IssuePair(context.Background(), admin.ID, admin.Email, string(admin.Role), service.AudienceAdmin)
	require.NoError(t, err)
	access, refresh := service.AudienceAdmin.CookieNames()
	return []*http.Cookie{
		{Name: access, Value: pair.AccessToken},
		{Name: refresh, Value: pair.RefreshToken},
	}
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
