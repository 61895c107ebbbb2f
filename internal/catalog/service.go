package catalog

import (
	"context"
	"errors"

	"shop-catalog-service/internal/domain"
	"shop-catalog-service/internal/store"
)

// Querier is the read contract the transport layer consumes.
type Querier interface {
	ListProducts(ctx context.Context, category *string) ([]CatalogView, error)
	GetProduct(ctx context.Context, id int64) (CatalogView, error)
}

// Service answers catalog queries by joining products with their sales and
// projecting the result into CatalogView. It is stateless per call and only
// ever reads; store faults propagate unchanged in kind.
type Service struct {
	products store.ProductStorer
	sales    store.SaleStorer
}

// NewService creates a catalog query service over the given stores.
func NewService(products store.ProductStorer, sales store.SaleStorer) *Service {
	return &Service{products: products, sales: sales}
}

// ListProducts returns every product joined with its sale, optionally
// restricted to a category (matched case-insensitively). An empty result is
// an empty slice, not an error. Ordering follows the store: id ascending.
func (s *Service) ListProducts(ctx context.Context, category *string) ([]CatalogView, error) {
	rows, err := s.products.ListProducts(ctx, store.ListProductsParams{Category: category})
	if err != nil {
		return nil, err
	}

	views := make([]CatalogView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newCatalogView(row.Product, row.Sale))
	}
	return views, nil
}

// GetProduct returns one product joined with its sale. The product and the
// sale are fetched in two reads with no transactional guarantee between them;
// if the referenced sale was deleted in the gap, the view simply carries no
// sale rather than faulting.
func (s *Service) GetProduct(ctx context.Context, id int64) (CatalogView, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return CatalogView{}, err
	}

	var sale *domain.Sale
	if product.SaleID != nil {
		sale, err = s.sales.GetSaleByID(ctx, *product.SaleID)
		if err != nil {
			if !errors.Is(err, store.ErrSaleNotFound) {
				return CatalogView{}, err
			}
			sale = nil
		}
	}

	return newCatalogView(*product, sale), nil
}
