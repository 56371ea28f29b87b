package store

import (
	"context"
	"database/sql"
	"fmt"

	"restock-service/internal/models"
)

// CreatePurchase inserts a new purchase event
func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	query := `
		INSERT INTO purchase_history (id, product_id, date, quantity, unit, price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		purchase.ID, purchase.ProductID, purchase.Date,
		purchase.Quantity, purchase.Unit, purchase.Price)
	return err
}

// UpdatePurchase updates a purchase's user-editable fields
func (s *Store) UpdatePurchase(ctx context.Context, purchase *models.Purchase) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE purchase_history
		SET date = $1, quantity = $2, unit = $3, price = $4
		WHERE id = $5`,
		purchase.Date, purchase.Quantity, purchase.Unit, purchase.Price, purchase.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("purchase not found: %s", purchase.ID)
	}
	return nil
}

// GetPurchaseByID retrieves a purchase by ID, nil if it does not exist
func (s *Store) GetPurchaseByID(ctx context.Context, id string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.GetContext(ctx, &purchase, "SELECT * FROM purchase_history WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// GetPurchasesByProductID retrieves a product's purchases, newest first
func (s *Store) GetPurchasesByProductID(ctx context.Context, productID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.SelectContext(ctx, &purchases,
		"SELECT * FROM purchase_history WHERE product_id = $1 ORDER BY date DESC", productID)
	return purchases, err
}

// GetPurchases retrieves all purchases, newest first
func (s *Store) GetPurchases(ctx context.Context) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.SelectContext(ctx, &purchases,
		"SELECT * FROM purchase_history ORDER BY date DESC")
	return purchases, err
}

// DeletePurchase deletes a purchase event
func (s *Store) DeletePurchase(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM purchase_history WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("purchase not found: %s", id)
	}
	return nil
}

// ReplaceAll wipes both tables and inserts the given collections inside one
// transaction. Used by snapshot import, which replaces rather than merges.
func (s *Store) ReplaceAll(ctx context.Context, products []models.Product, history []models.Purchase) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM purchase_history"); err != nil {
		return fmt.Errorf("failed to clear purchase history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}

	for i := range products {
		p := &products[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, category, default_unit, packaging_size, average_lifespan_days, last_purchase_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, p.Name, p.Category, p.DefaultUnit,
			p.PackagingSize, p.AverageLifespanDays, p.LastPurchaseDate, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
		}
	}

	for i := range history {
		h := &history[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_history (id, product_id, date, quantity, unit, price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			h.ID, h.ProductID, h.Date, h.Quantity, h.Unit, h.Price)
		if err != nil {
			return fmt.Errorf("failed to insert purchase %s: %w", h.ID, err)
		}
	}

	return tx.Commit()
}
