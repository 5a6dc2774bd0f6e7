package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/autoparts-tn/orders-api/internal/config"
	"github.com/autoparts-tn/orders-api/pkg/logger"
)

// Database wraps the sqlx connection pool.
type Database struct {
	DB     *sqlx.DB
	logger logger.Logger
}

// New opens the connection pool.
func New(cfg *config.Config, logger logger.Logger) (*Database, error) {
	db, err := sqlx.Connect("postgres", cfg.DBConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("Connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	return &Database{
		DB:     db,
		logger: logger,
	}, nil
}

// Ping checks the database connection.
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.DB.Close()
}

// RunMigrations creates the schema if it does not exist.
func (d *Database) RunMigrations() error {
	schema := `
	CREATE TABLE IF NOT EXISTS addresses (
		id VARCHAR(50) PRIMARY KEY,
		user_id VARCHAR(50),
		type VARCHAR(20) NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		company VARCHAR(200),
		address_line1 VARCHAR(200) NOT NULL,
		address_line2 VARCHAR(200),
		city VARCHAR(100) NOT NULL,
		state VARCHAR(100),
		postal_code VARCHAR(20) NOT NULL,
		country VARCHAR(100) NOT NULL DEFAULT 'Tunisia',
		phone VARCHAR(50),
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(50) PRIMARY KEY,
		order_number VARCHAR(30) NOT NULL UNIQUE,
		user_id VARCHAR(50),
		customer_email VARCHAR(200) NOT NULL,
		customer_first_name VARCHAR(100) NOT NULL,
		customer_last_name VARCHAR(100) NOT NULL,
		customer_phone VARCHAR(50),
		shipping_address_id VARCHAR(50) NOT NULL REFERENCES addresses(id),
		billing_address_id VARCHAR(50) NOT NULL REFERENCES addresses(id),
		subtotal DECIMAL(10, 2) NOT NULL,
		shipping_cost DECIMAL(10, 2) NOT NULL DEFAULT 0,
		tax_amount DECIMAL(10, 2) NOT NULL DEFAULT 0,
		total_amount DECIMAL(10, 2) NOT NULL,
		currency VARCHAR(10) NOT NULL DEFAULT 'TND',
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		payment_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		payment_method VARCHAR(30),
		payment_intent_id VARCHAR(100),
		notes TEXT,
		source VARCHAR(20) NOT NULL DEFAULT 'WEBSITE',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		placed_at TIMESTAMP,
		shipped_at TIMESTAMP,
		delivered_at TIMESTAMP,
		cancelled_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
	CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

	CREATE TABLE IF NOT EXISTS order_items (
		id VARCHAR(50) PRIMARY KEY,
		order_id VARCHAR(50) NOT NULL REFERENCES orders(id),
		article_id BIGINT NOT NULL,
		article_no VARCHAR(100) NOT NULL,
		name VARCHAR(300) NOT NULL,
		supplier VARCHAR(200) NOT NULL,
		price DECIMAL(10, 2) NOT NULL,
		quantity INT NOT NULL CHECK (quantity >= 1),
		image TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

	CREATE TABLE IF NOT EXISTS order_status_history (
		id VARCHAR(50) PRIMARY KEY,
		order_id VARCHAR(50) NOT NULL REFERENCES orders(id),
		status VARCHAR(20) NOT NULL,
		notes TEXT,
		created_by VARCHAR(100) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_order_status_history_order_id ON order_status_history(order_id);

	CREATE TABLE IF NOT EXISTS outbox_messages (
		id SERIAL PRIMARY KEY,
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id VARCHAR(50) NOT NULL,
		event_type VARCHAR(50) NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMP,
		processing_attempts INT NOT NULL DEFAULT 0,
		last_error TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
	);

	CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox_messages(status);
	CREATE INDEX IF NOT EXISTS idx_outbox_aggregate ON outbox_messages(aggregate_type, aggregate_id);

	CREATE TABLE IF NOT EXISTS dead_letter_messages (
		id SERIAL PRIMARY KEY,
		outbox_message_id BIGINT NOT NULL,
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id VARCHAR(50) NOT NULL,
		event_type VARCHAR(50) NOT NULL,
		payload JSONB NOT NULL,
		failure_reason TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		retry_count INT NOT NULL DEFAULT 0,
		last_retry_at TIMESTAMP,
		resolved_at TIMESTAMP,
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
	);

	CREATE INDEX IF NOT EXISTS idx_dead_letter_status ON dead_letter_messages(status);
	`

	if _, err := d.DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}
