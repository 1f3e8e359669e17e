package transport

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"stockroom/internal/database"
	"stockroom/internal/domain"
	"stockroom/internal/middleware"
	"stockroom/internal/repository"
	"stockroom/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

// Mock repositories backing the real services under test.

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) WithTx(tx database.DBTX) repository.ProductRepository {
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	for _, existing := range m.products {
		if existing.SKU() == product.SKU() {
			return nil, repository.ErrDuplicateSKU
		}
	}
	id := uuid.New()
	stored, err := domain.RestoreProduct(id, product.Name(), product.Price(), product.SKU(),
		product.Quantity(), product.Description(), product.Category())
	if err != nil {
		return nil, err
	}
	m.products[id] = stored
	return stored, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, product := range m.products {
		if product.SKU() == sku {
			return product, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	for _, product := range m.products {
		if strings.Contains(strings.ToLower(product.Name()), strings.ToLower(name)) {
			return product, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindAll(ctx context.Context, searchTerm string) ([]*domain.Product, error) {
	results := []*domain.Product{}
	term := strings.ToLower(searchTerm)
	for _, product := range m.products {
		if term == "" ||
			strings.Contains(strings.ToLower(product.Name()), term) ||
			strings.Contains(strings.ToLower(product.SKU()), term) {
			results = append(results, product)
		}
	}
	return results, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id uuid.UUID, product *domain.Product) (*domain.Product, error) {
	if _, ok := m.products[id]; !ok {
		return nil, repository.ErrProductNotFound
	}
	for otherID, existing := range m.products {
		if otherID != id && existing.SKU() == product.SKU() {
			return nil, repository.ErrDuplicateSKU
		}
	}
	stored, err := domain.RestoreProduct(id, product.Name(), product.Price(), product.SKU(),
		product.Quantity(), product.Description(), product.Category())
	if err != nil {
		return nil, err
	}
	m.products[id] = stored
	return stored, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

type mockMovementRepository struct {
	movements map[uuid.UUID]*domain.Movement
}

func newMockMovementRepository() *mockMovementRepository {
	return &mockMovementRepository{movements: make(map[uuid.UUID]*domain.Movement)}
}

func (m *mockMovementRepository) WithTx(tx database.DBTX) repository.MovementRepository {
	return m
}

func (m *mockMovementRepository) Create(ctx context.Context, movement *domain.Movement) (*domain.Movement, error) {
	created := *movement
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	m.movements[created.ID] = &created
	return &created, nil
}

func (m *mockMovementRepository) List(ctx context.Context) ([]*domain.Movement, error) {
	result := make([]*domain.Movement, 0, len(m.movements))
	for _, movement := range m.movements {
		result = append(result, movement)
	}
	return result, nil
}

func (m *mockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error) {
	movement, ok := m.movements[id]
	if !ok {
		return nil, repository.ErrMovementNotFound
	}
	return movement, nil
}

func (m *mockMovementRepository) Update(ctx context.Context, id uuid.UUID, params repository.UpdateMovementParams) (bool, error) {
	movement, ok := m.movements[id]
	if !ok {
		return false, nil
	}
	if params.Quantity != nil {
		movement.Quantity = *params.Quantity
	}
	if params.Type != nil {
		movement.Type = *params.Type
	}
	if params.Note != nil {
		movement.Note = params.Note
	}
	return true, nil
}

func (m *mockMovementRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.movements[id]; !ok {
		return false, nil
	}
	delete(m.movements, id)
	return true, nil
}

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.RA]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.RA] = user
	return nil
}

func (m *mockUserRepository) FindByRA(ctx context.Context, ra string) (*domain.User, error) {
	user, exists := m.users[ra]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	for ra, user := range m.users {
		if user.ID == id {
			delete(m.users, ra)
			return true, nil
		}
	}
	return false, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTx(ctx context.Context, fn func(tx database.DBTX) error) error {
	return fn(nil)
}

// testEnv wires real services over the mocks and mounts every handler on a
// chi router the way the server does.
type testEnv struct {
	router    chi.Router
	products  *mockProductRepository
	movements *mockMovementRepository
	users     *mockUserRepository
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()
	products := newMockProductRepository()
	movements := newMockMovementRepository()
	users := newMockUserRepository()
	refreshTokens := newMockRefreshTokenRepository()

	productService := service.NewProductService(products, logger)
	movementService := service.NewMovementService(fakeTxRunner{}, movements, products, logger)
	userService := service.NewUserService(users, refreshTokens, testJWTSecret)

	router := chi.NewRouter()
	authMiddleware := middleware.AuthMiddleware(testJWTSecret, logger)
	adminMiddleware := middleware.RequireAdmin(logger)

	NewProductHandler(productService, logger).RegisterRoutes(router, authMiddleware)
	NewMovementHandler(movementService, logger).RegisterRoutes(router, authMiddleware)
	NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware, nil)

	return &testEnv{
		router:    router,
		products:  products,
		movements: movements,
		users:     users,
	}
}

func (e *testEnv) token(t *testing.T, userID uuid.UUID, isAdmin bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  userID.String(),
		"is_admin": isAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tokenString
}

func (e *testEnv) seedProduct(t *testing.T, name, sku string, quantity int) uuid.UUID {
	t.Helper()
	product, err := domain.NewProduct(name, 9.9, sku, quantity, "", "")
	if err != nil {
		t.Fatalf("build product: %v", err)
	}
	created, err := e.products.Create(context.Background(), product)
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	id, _ := created.ID()
	return id
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req
}
