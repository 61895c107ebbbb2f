package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/lib/pq"

	"shop-catalog-service/internal/domain"
)

// Predefined errors for store operations. ErrStoreUnavailable marks transient
// infrastructure faults the caller may retry; the not-found errors are final.
var (
	ErrProductNotFound  = errors.New("store: product not found")
	ErrSaleNotFound     = errors.New("store: sale not found")
	ErrStoreUnavailable = errors.New("store: database unavailable")
)

// PostgresStore implements the ProductStorer and SaleStorer interfaces using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// classify wraps a driver error, folding connection-level failures into
// ErrStoreUnavailable so callers can distinguish retryable faults without
// inspecting pq internals.
func classify(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("store: %s: %w", op, ErrStoreUnavailable)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("store: %s: %w", op, ErrStoreUnavailable)
	}
	var pqErr *pq.Error
	// Class 08 covers the connection exception family.
	if errors.As(err, &pqErr) && strings.HasPrefix(string(pqErr.Code), "08") {
		return fmt.Errorf("store: %s: %w", op, ErrStoreUnavailable)
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

// --- ProductStorer Implementation ---

// ListProducts retrieves every product joined with its sale (if any) in a
// single read, ordered by id ascending so pagination and tests stay
// deterministic. A nil-sale row yields a nil Sale pointer, never a zero value.
func (s *PostgresStore) ListProducts(ctx context.Context, params ListProductsParams) ([]ProductWithSale, error) {
	var queryArgs []interface{}
	whereCondition := ""
	if params.Category != nil && *params.Category != "" {
		whereCondition = " WHERE LOWER(p.category) = LOWER($1)"
		queryArgs = append(queryArgs, *params.Category)
	}

	query := `
		SELECT p.id, p.name, p.description, p.price, p.image_url, p.category, p.stock_quantity, p.manufacturer, p.sale_id,
			s.id, s.name, s.discount_percent, s.start_date, s.end_date, s.is_active
		FROM products p
		LEFT JOIN sales s ON s.id = p.sale_id` + whereCondition + `
		ORDER BY p.id ASC;`

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, classify("ListProducts query", err)
	}
	defer rows.Close()

	results := make([]ProductWithSale, 0)
	for rows.Next() {
		var (
			p               domain.Product
			saleID          sql.NullInt64
			saleName        sql.NullString
			discountPercent sql.NullFloat64
			startDate       sql.NullTime
			endDate         sql.NullTime
			isActive        sql.NullBool
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category,
			&p.StockQuantity, &p.Manufacturer, &p.SaleID,
			&saleID, &saleName, &discountPercent, &startDate, &endDate, &isActive,
		); err != nil {
			return nil, classify("ListProducts scan", err)
		}

		row := ProductWithSale{Product: p}
		if saleID.Valid {
			row.Sale = &domain.Sale{
				ID:              saleID.Int64,
				Name:            saleName.String,
				DiscountPercent: discountPercent.Float64,
				StartDate:       startDate.Time,
				EndDate:         endDate.Time,
				IsActive:        isActive.Bool,
			}
		}
		results = append(results, row)
	}
	if err = rows.Err(); err != nil {
		return nil, classify("ListProducts iteration", err)
	}

	return results, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, image_url, category, stock_quantity, manufacturer, sale_id
		FROM products
		WHERE id = $1;`

	var p domain.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category,
		&p.StockQuantity, &p.Manufacturer, &p.SaleID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, classify("GetProductByID scan", err)
	}
	return &p, nil
}

// CountProducts backs the test-connection diagnostic endpoint.
func (s *PostgresStore) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products;`).Scan(&count); err != nil {
		return 0, classify("CountProducts scan", err)
	}
	return count, nil
}

// --- SaleStorer Implementation ---

func (s *PostgresStore) GetSaleByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query := `
		SELECT id, name, discount_percent, start_date, end_date, is_active
		FROM sales
		WHERE id = $1;`

	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sale.ID, &sale.Name, &sale.DiscountPercent, &sale.StartDate, &sale.EndDate, &sale.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, classify("GetSaleByID scan", err)
	}
	return &sale, nil
}

func (s *PostgresStore) ListSales(ctx context.Context) ([]domain.Sale, error) {
	query := `
		SELECT id, name, discount_percent, start_date, end_date, is_active
		FROM sales
		ORDER BY id ASC;`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("ListSales query", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.Name, &sale.DiscountPercent, &sale.StartDate, &sale.EndDate, &sale.IsActive); err != nil {
			return nil, classify("ListSales scan", err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, classify("ListSales iteration", err)
	}
	return sales, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		if err := s.db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
	}
	return nil
}
