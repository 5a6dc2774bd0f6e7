package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/autoparts-tn/orders-api/internal/database"
	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/pkg/logger"
)

// AddressRepository handles database operations for addresses.
type AddressRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewAddressRepository creates a new AddressRepository.
func NewAddressRepository(db *database.Database, logger logger.Logger) *AddressRepository {
	return &AddressRepository{
		db:     db,
		logger: logger,
	}
}

// CreateInTx inserts an address within a transaction.
func (r *AddressRepository) CreateInTx(tx *sql.Tx, address *models.Address) error {
	query := `
		INSERT INTO addresses (
			id, user_id, type, first_name, last_name, company,
			address_line1, address_line2, city, state, postal_code,
			country, phone, is_default, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err := tx.Exec(
		query,
		address.ID,
		address.UserID,
		address.Type,
		address.FirstName,
		address.LastName,
		address.Company,
		address.AddressLine1,
		address.AddressLine2,
		address.City,
		address.State,
		address.PostalCode,
		address.Country,
		address.Phone,
		address.IsDefault,
		address.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create address in transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an address by its id.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*models.Address, error) {
	query := `
		SELECT id, user_id, type, first_name, last_name, company,
		       address_line1, address_line2, city, state, postal_code,
		       country, phone, is_default, created_at
		FROM addresses
		WHERE id = $1
	`

	var address models.Address
	err := r.db.DB.GetContext(ctx, &address, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get address by ID", "error", err, "addressID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &address, nil
}
