package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restock-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateProduct inserts a new product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, category, default_unit, packaging_size, average_lifespan_days, last_purchase_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Category, product.DefaultUnit,
		product.PackagingSize, product.AverageLifespanDays, product.LastPurchaseDate, product.CreatedAt)
	return err
}

// UpdateProduct updates the user-editable fields of a product
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, category = $2, default_unit = $3, packaging_size = $4
		WHERE id = $5`,
		product.Name, product.Category, product.DefaultUnit, product.PackagingSize, product.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product not found: %s", product.ID)
	}
	return nil
}

// UpdateProductDerived writes the cached fields recomputed from purchase history
func (s *Store) UpdateProductDerived(ctx context.Context, productID string, lifespanDays int, lastPurchaseDate *time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET average_lifespan_days = $1, last_purchase_date = $2
		WHERE id = $3`,
		lifespanDays, lastPurchaseDate, productID)
	return err
}

// GetProductByID retrieves a product by ID, nil if it does not exist
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products ordered by name
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY name ASC")
	return products, err
}

// DeleteProduct deletes a product; its purchase history cascades
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product not found: %s", id)
	}
	return nil
}
