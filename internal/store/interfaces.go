package store

import (
	"context"

	"shop-catalog-service/internal/domain"
)

// ListProductsParams holds filter parameters for listing products.
type ListProductsParams struct {
	Category *string // Case-insensitive category filter; nil means no filter.
}

// ProductWithSale pairs a product with the sale it references, resolved in the
// same joined read. Sale is nil when the product carries no sale reference (or
// the referenced sale no longer exists).
type ProductWithSale struct {
	Product domain.Product
	Sale    *domain.Sale
}

// ProductStorer defines the read operations the catalog performs over products.
type ProductStorer interface {
	ListProducts(ctx context.Context, params ListProductsParams) ([]ProductWithSale, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
}

// SaleStorer defines the read operations over sales.
type SaleStorer interface {
	GetSaleByID(ctx context.Context, id int64) (*domain.Sale, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
}
