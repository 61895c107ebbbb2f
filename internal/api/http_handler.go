package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"shop-catalog-service/internal/auth"
	"shop-catalog-service/internal/catalog"
	"shop-catalog-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog  catalog.Querier
	products store.ProductStorer
	sales    store.SaleStorer
	roles    auth.RoleSource
	validate *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(c catalog.Querier, ps store.ProductStorer, ss store.SaleStorer, roles auth.RoleSource) *HTTPHandler {
	return &HTTPHandler{
		catalog:  c,
		products: ps,
		sales:    ss,
		roles:    roles,
		validate: validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
			http.Error(w, `{"error": "Internal server error during JSON encoding"}`, http.StatusInternalServerError)
		}
	}
}

// --- Product Handlers ---

// ProductListQuery defines the accepted query parameters for listing products.
type ProductListQuery struct {
	Category string `validate:"omitempty,max=100"`
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	input := ProductListQuery{Category: r.URL.Query().Get("category")}
	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	var category *string
	if input.Category != "" {
		category = &input.Category
	}

	views, err := h.catalog.ListProducts(r.Context(), category)
	if err != nil {
		log.Printf("ERROR: ListProducts catalog query failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	respondWithJSON(w, http.StatusOK, views)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	view, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", productID))
		} else {
			log.Printf("ERROR: GetProduct catalog query for ID %d failed: %v", productID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve product")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// TestConnection is a liveness probe the storefront uses during setup: it
// counts products to prove the database round-trip works.
func (h *HTTPHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	count, err := h.products.CountProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: TestConnection count failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Database connection failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Connection successful. Product count: %d", count),
	})
}

// --- Sale Handlers (protected) ---

func (h *HTTPHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.ListSales(r.Context())
	if err != nil {
		log.Printf("ERROR: ListSales store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve sales")
		return
	}
	respondWithJSON(w, http.StatusOK, sales)
}

func (h *HTTPHandler) GetSaleByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "saleId")
	saleID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || saleID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	sale, err := h.sales.GetSaleByID(r.Context(), saleID)
	if err != nil {
		if errors.Is(err, store.ErrSaleNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Sale with ID %d not found", saleID))
		} else {
			log.Printf("ERROR: GetSaleByID store operation for ID %d failed: %v", saleID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve sale")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, sale)
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service. Allowed roles for
// protected route groups are declared statically here.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts) // GET /api/products?category=
		// Must be registered before {productId} so "test-connection" is not parsed as an ID.
		r.Get("/test-connection", h.TestConnection) // GET /api/products/test-connection
		r.Get("/{productId}", h.GetProductByID)     // GET /api/products/{productId}
	})

	r.Route("/api/sales", func(r chi.Router) {
		r.Use(auth.RequireRole(h.roles, "admin", "manager"))
		r.Get("/", h.ListSales)          // GET /api/sales
		r.Get("/{saleId}", h.GetSaleByID) // GET /api/sales/{saleId}
	})
}
