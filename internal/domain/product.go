package domain

import "time"

// Product represents a catalog item as stored. A product references zero or
// one sale at any instant; SaleID is nullable, never a sentinel value.
// The json tags correspond to the fields expected by the browser client.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"` // Currency-agnostic unit, non-negative.
	ImageURL      string  `json:"imageUrl"`
	Category      string  `json:"category"` // Matched case-insensitively on filter.
	StockQuantity int32   `json:"stockQuantity"`
	Manufacturer  string  `json:"manufacturer"`
	SaleID        *int64  `json:"saleId,omitempty"`
}

// Sale is a promotional discount. DiscountPercent is validated to [0,100] at
// write time; the read path still clamps defensively before pricing.
// IsActive is a stored flag maintained by the sale admin flow, not derived
// from the start/end window on read. Where activity ever needs deriving, the
// window is interpreted as [StartDate, EndDate).
type Sale struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DiscountPercent float64   `json:"discountPercent"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	IsActive        bool      `json:"isActive"`
}
