package catalog

import (
	"time"

	"shop-catalog-service/internal/domain"
)

// SaleView is a plain snapshot of a sale taken at projection time, never a
// live reference to the stored entity.
type SaleView struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DiscountPercent float64   `json:"discountPercent"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	IsActive        bool      `json:"isActive"`
}

// CatalogView is the read-only projection of a product combined with its
// optional sale. It is rebuilt on every query and never persisted. The sale
// key is always serialized, as null when the product has no sale, to keep the
// client-facing shape stable.
type CatalogView struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	StockQuantity int32     `json:"stockQuantity"`
	Manufacturer  string    `json:"manufacturer"`
	Sale          *SaleView `json:"sale"`
}

// newCatalogView is the single projection used by both the list and the
// single-item read paths, so the two endpoints cannot diverge in shape.
// The discount percent is clamped to [0,100] here; out-of-range values should
// never have been persisted, but the read path must not misprice if one slips
// through.
func newCatalogView(p domain.Product, sale *domain.Sale) CatalogView {
	view := CatalogView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		Manufacturer:  p.Manufacturer,
	}
	if sale != nil {
		view.Sale = &SaleView{
			ID:              sale.ID,
			Name:            sale.Name,
			DiscountPercent: clampPercent(sale.DiscountPercent),
			StartDate:       sale.StartDate,
			EndDate:         sale.EndDate,
			IsActive:        sale.IsActive,
		}
	}
	return view
}

func clampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// DisplayPrice returns the sale-adjusted price shown to end users:
// price × (1 − discountPercent/100) when a sale is attached, the list price
// otherwise (exactly, with no rounding drift). The browser client computes
// the same value with the same float64 arithmetic, so both sides agree
// bit-for-bit.
func (v CatalogView) DisplayPrice() float64 {
	if v.Sale == nil {
		return v.Price
	}
	return v.Price * (1 - v.Sale.DiscountPercent/100)
}
