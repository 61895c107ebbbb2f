package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-catalog-service/internal/auth"
	"shop-catalog-service/internal/catalog"
	"shop-catalog-service/internal/domain"
	"shop-catalog-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCatalogQuerier is a mock implementation of catalog.Querier
type MockCatalogQuerier struct {
	mock.Mock
}

func (m *MockCatalogQuerier) ListProducts(ctx context.Context, category *string) ([]catalog.CatalogView, error) {
	args := m.Called(ctx, category)
	var views []catalog.CatalogView
	if arg0 := args.Get(0); arg0 != nil {
		views = arg0.([]catalog.CatalogView)
	}
	return views, args.Error(1)
}

func (m *MockCatalogQuerier) GetProduct(ctx context.Context, id int64) (catalog.CatalogView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.CatalogView), args.Error(1)
}

// MockProductStorer is a mock implementation of store.ProductStorer
type MockProductStorer struct {
	mock.Mock
}

func (m *MockProductStorer) ListProducts(ctx context.Context, params store.ListProductsParams) ([]store.ProductWithSale, error) {
	args := m.Called(ctx, params)
	var rows []store.ProductWithSale
	if arg0 := args.Get(0); arg0 != nil {
		rows = arg0.([]store.ProductWithSale)
	}
	return rows, args.Error(1)
}

func (m *MockProductStorer) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductStorer) CountProducts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockSaleStorer is a mock implementation of store.SaleStorer
type MockSaleStorer struct {
	mock.Mock
}

func (m *MockSaleStorer) GetSaleByID(ctx context.Context, id int64) (*domain.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleStorer) ListSales(ctx context.Context) ([]domain.Sale, error) {
	args := m.Called(ctx)
	var sales []domain.Sale
	if arg0 := args.Get(0); arg0 != nil {
		sales = arg0.([]domain.Sale)
	}
	return sales, args.Error(1)
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T, c catalog.Querier, ps store.ProductStorer, ss store.SaleStorer) *httptest.Server {
	handler := NewHTTPHandler(c, ps, ss, auth.NewHeaderRoleSource(""))
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return httptest.NewServer(router)
}

// Helper function to get a pointer (useful for optional fields in domain structs)
func PtrTo[T any](v T) *T {
	return &v
}

func saleView(id int64, discount float64) *catalog.SaleView {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &catalog.SaleView{
		ID:              id,
		Name:            "Summer Sale",
		DiscountPercent: discount,
		StartDate:       start,
		EndDate:         start.AddDate(0, 1, 0),
		IsActive:        true,
	}
}

func TestHTTPHandler_ListProducts_Success(t *testing.T) {
	mockCatalog := new(MockCatalogQuerier)
	server := setupTestChiServer(t, mockCatalog, nil, nil)
	defer server.Close()

	views := []catalog.CatalogView{
		{ID: 1, Name: "Runner", Price: 100, Category: "shoes", Sale: saleView(7, 20)},
		{ID: 2, Name: "Fedora", Price: 50, Category: "hats"},
	}
	mockCatalog.On("ListProducts", mock.Anything, (*string)(nil)).Return(views, nil).Once()

	res, err := http.Get(server.URL + "/api/products")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload []map[string]json.RawMessage
	err = json.NewDecoder(res.Body).Decode(&payload)
	require.NoError(t, err)
	require.Len(t, payload, 2)

	// Both items carry the full shape; the sale key is null when absent.
	require.Contains(t, payload[0], "sale")
	assert.NotEqual(t, "null", string(payload[0]["sale"]))
	require.Contains(t, payload[1], "sale")
	assert.Equal(t, "null", string(payload[1]["sale"]))

	mockCatalog.AssertExpectations(t)
}

func TestHTTPHandler_ListProducts_CategoryFilter(t *testing.T) {
	mockCatalog := new(MockCatalogQuerier)
	server := setupTestChiServer(t, mockCatalog, nil, nil)
	defer server.Close()

	views := []catalog.CatalogView{
		{ID: 1, Name: "Runner", Price: 100, Category: "shoes", Sale: saleView(7, 20)},
	}
	mockCatalog.On("ListProducts", mock.Anything, PtrTo("shoes")).Return(views, nil).Once()

	res, err := http.Get(server.URL + "/api/products?category=shoes")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload []catalog.CatalogView
	err = json.NewDecoder(res.Body).Decode(&payload)
	require.NoError(t, err)
	require.Len(t, payload, 1)
	assert.Equal(t, int64(1), payload[0].ID)
	assert.Equal(t, 80.0, payload[0].DisplayPrice())

	mockCatalog.AssertExpectations(t)
}

func TestHTTPHandler_ListProducts_EmptyResult(t *testing.T) {
	mockCatalog := new(MockCatalogQuerier)
	server := setupTestChiServer(t, mockCatalog, nil, nil)
	defer server.Close()

	mockCatalog.On("ListProducts", mock.Anything, PtrTo("gloves")).
		Return([]catalog.CatalogView{}, nil).Once()

	res, err := http.Get(server.URL + "/api/products?category=gloves")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	var payload []catalog.CatalogView
	err = json.NewDecoder(res.Body).Decode(&payload)
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestHTTPHandler_ListProducts_StoreFault(t *testing.T) {
	mockCatalog := new(MockCatalogQuerier)
	server := setupTestChiServer(t, mockCatalog, nil, nil)
	defer server.Close()

	mockCatalog.On("ListProducts", mock.Anything, (*string)(nil)).
		Return(nil, store.ErrStoreUnavailable).Once()

	res, err := http.Get(server.URL + "/api/products")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	var errResp ErrorResponse
	err = json.NewDecoder(res.Body).Decode(&errResp)
	require.NoError(t, err)
	// Internal detail stays in the logs, not in the payload.
	assert.Equal(t, "Failed to retrieve products", errResp.Error)
}

func TestHTTPHandler_GetProductByID_Found(t *testing.T) {
	mockCatalog := new(MockCatalogQuerier)
	server := setupTestChiServer(t, mockCatalog, nil, nil)
	defer server.Close()

	view := catalog.CatalogView{ID: 1, Name: "Runner", Price: 100, Category: "shoes", Sale: saleView(7, 20)}
	mockCatalog.On("GetProduct", mock.Anything, int64(1)).Return(view, nil).Once()

	res, err := http.Get(server.URL + "/api/products/1")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	var payload catalog.CatalogView
	err = json.NewDecoder(res.Body).Decode(&payload)
	require.NoError(t, err)
	assert.Equal(t, int64(1), payload.ID)
	require.NotNil(t, payload.Sale)
	assert.Equal(t, 20.0, payload.Sale.DiscountPercent)

	mockCatalog.AssertExpectations(t)
}

func TestHTTPHandler_GetProductByID_NotFound(t *testing.T) {
	mockCatalog := new(MockCatalogQuerier)
	server := setupTestChiServer(t, mockCatalog, nil, nil)
	defer server.Close()

	mockCatalog.On("GetProduct", mock.Anything, int64(99)).
		Return(catalog.CatalogView{}, store.ErrProductNotFound).Once()

	res, err := http.Get(server.URL + "/api/products/99")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	var errResp ErrorResponse
	err = json.NewDecoder(res.Body).Decode(&errResp)
	require.NoError(t, err)
	assert.Equal(t, "Product with ID 99 not found", errResp.Error)

	mockCatalog.AssertExpectations(t)
}

func TestHTTPHandler_GetProductByID_InvalidID(t *testing.T) {
	mockCatalog := new(MockCatalogQuerier)
	server := setupTestChiServer(t, mockCatalog, nil, nil)
	defer server.Close()

	res, err := http.Get(server.URL + "/api/products/not-a-number")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	mockCatalog.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestHTTPHandler_TestConnection(t *testing.T) {
	mockCatalog := new(MockCatalogQuerier)
	mockProducts := new(MockProductStorer)
	server := setupTestChiServer(t, mockCatalog, mockProducts, nil)
	defer server.Close()

	mockProducts.On("CountProducts", mock.Anything).Return(42, nil).Once()

	res, err := http.Get(server.URL + "/api/products/test-connection")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	var payload map[string]string
	err = json.NewDecoder(res.Body).Decode(&payload)
	require.NoError(t, err)
	assert.Equal(t, "Connection successful. Product count: 42", payload["message"])

	mockProducts.AssertExpectations(t)
}

func TestHTTPHandler_ListSales_DeniedWithoutRole(t *testing.T) {
	mockSales := new(MockSaleStorer)
	server := setupTestChiServer(t, new(MockCatalogQuerier), nil, mockSales)
	defer server.Close()

	res, err := http.Get(server.URL + "/api/sales")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	// Fail closed: the store must never be touched on a denied request.
	mockSales.AssertNotCalled(t, "ListSales", mock.Anything)
}

func TestHTTPHandler_ListSales_DeniedForGuest(t *testing.T) {
	mockSales := new(MockSaleStorer)
	server := setupTestChiServer(t, new(MockCatalogQuerier), nil, mockSales)
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/sales", nil)
	require.NoError(t, err)
	req.Header.Set("UserRole", "guest")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	mockSales.AssertNotCalled(t, "ListSales", mock.Anything)
}

func TestHTTPHandler_ListSales_AllowedForAdmin(t *testing.T) {
	mockSales := new(MockSaleStorer)
	server := setupTestChiServer(t, new(MockCatalogQuerier), nil, mockSales)
	defer server.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expectedSales := []domain.Sale{
		{ID: 7, Name: "Summer Sale", DiscountPercent: 20, StartDate: start, EndDate: start.AddDate(0, 1, 0), IsActive: true},
	}
	mockSales.On("ListSales", mock.Anything).Return(expectedSales, nil).Once()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/sales", nil)
	require.NoError(t, err)
	req.Header.Set("UserRole", "admin")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	var payload []domain.Sale
	err = json.NewDecoder(res.Body).Decode(&payload)
	require.NoError(t, err)
	require.Len(t, payload, 1)
	assert.Equal(t, "Summer Sale", payload[0].Name)

	mockSales.AssertExpectations(t)
}

func TestHTTPHandler_GetSaleByID_NotFoundForManager(t *testing.T) {
	mockSales := new(MockSaleStorer)
	server := setupTestChiServer(t, new(MockCatalogQuerier), nil, mockSales)
	defer server.Close()

	mockSales.On("GetSaleByID", mock.Anything, int64(99)).Return(nil, store.ErrSaleNotFound).Once()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/sales/99", nil)
	require.NoError(t, err)
	req.Header.Set("UserRole", "manager")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	var errResp ErrorResponse
	err = json.NewDecoder(res.Body).Decode(&errResp)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Sale with ID %d not found", 99), errResp.Error)

	mockSales.AssertExpectations(t)
}
