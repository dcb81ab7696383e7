package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shoply/shoply/internal/model"
)

// ErrCartItemNotFound indicates the cart row does not exist or belongs to
// a different account.
var ErrCartItemNotFound = errors.New("cart item not found")

// AddCartItem inserts a cart row for the owning account.
// Returns ErrProductNotFound when the referenced product does not exist.
func (r *Repository) AddCartItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Quantity,
		item.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// ListCartItems returns the account's cart joined with product name and price.
func (r *Repository) ListCartItems(ctx context.Context, userID string) ([]*model.CartItemDetail, error) {
	query := `
		SELECT c.id, c.product_id, p.name, p.price, c.quantity, c.created_at
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []*model.CartItemDetail
	for rows.Next() {
		var item model.CartItemDetail
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ProductName,
			&item.Price,
			&item.Quantity,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}

	return items, nil
}

// DeleteCartItem removes one cart row, scoped to the owning account so one
// user can never delete another user's item.
func (r *Repository) DeleteCartItem(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// GetCartItemByID retrieves a single cart row scoped to the owning account.
func (r *Repository) GetCartItemByID(ctx context.Context, id, userID string) (*model.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at
		FROM cart_items
		WHERE id = $1 AND user_id = $2
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	return &item, nil
}
