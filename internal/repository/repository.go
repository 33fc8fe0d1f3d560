package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var ErrReceiptNotFound = errors.New("receipt not found")

// DefaultListLimit applies when ListReceipts is called without a positive limit.
const DefaultListLimit = 50

// Repository is the local journal of sales the backend accepted.
type Repository struct {
	db *sql.DB
}

type RepoInterface interface {
	RecordReceipt(ctx context.Context, receipt domain.Receipt) error
	ListReceipts(ctx context.Context, owner string, limit int) ([]domain.Receipt, error)
	GetReceipt(ctx context.Context, id string) (domain.Receipt, error)
	Close() error
	RunMigrations(string) error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// sqlite allows one writer; this also keeps ":memory:" on a single database
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) RecordReceipt(ctx context.Context, receipt domain.Receipt) error {
	items, err := json.Marshal(receipt.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	var customerID sql.NullInt64
	if receipt.CustomerID != nil {
		customerID = sql.NullInt64{Int64: *receipt.CustomerID, Valid: true}
	}

	query := `
		INSERT INTO receipts (id, owner, session_id, transaction_id, customer_id, payment_status,
			items, total, item_count, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		receipt.ID,
		receipt.Owner,
		receipt.SessionID,
		receipt.TransactionID,
		customerID,
		string(receipt.PaymentStatus),
		string(items),
		receipt.Total.String(),
		receipt.ItemCount,
		receipt.Notes,
		receipt.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// ListReceipts returns the owner's receipts, newest first.
func (r *Repository) ListReceipts(ctx context.Context, owner string, limit int) ([]domain.Receipt, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, owner, session_id, transaction_id, customer_id, payment_status,
			items, total, item_count, notes, created_at
		FROM receipts
		WHERE owner = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	receipts := make([]domain.Receipt, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return receipts, nil
}

func (r *Repository) GetReceipt(ctx context.Context, id string) (domain.Receipt, error) {
	query := `
		SELECT id, owner, session_id, transaction_id, customer_id, payment_status,
			items, total, item_count, notes, created_at
		FROM receipts
		WHERE id = ?
	`
	receipt, err := scanReceipt(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Receipt{}, ErrReceiptNotFound
	}
	return receipt, err
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row scanner) (domain.Receipt, error) {
	var (
		receipt    domain.Receipt
		customerID sql.NullInt64
		status     string
		items      string
		total      string
		createdAt  int64
	)
	err := row.Scan(
		&receipt.ID,
		&receipt.Owner,
		&receipt.SessionID,
		&receipt.TransactionID,
		&customerID,
		&status,
		&items,
		&total,
		&receipt.ItemCount,
		&receipt.Notes,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Receipt{}, err
	}
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to scan receipt: %w", err)
	}

	if customerID.Valid {
		id := customerID.Int64
		receipt.CustomerID = &id
	}
	receipt.PaymentStatus = domain.PaymentStatus(status)
	if err := json.Unmarshal([]byte(items), &receipt.Items); err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to decode items: %w", err)
	}
	if receipt.Total, err = decimal.NewFromString(total); err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to decode total: %w", err)
	}
	receipt.CreatedAt = time.Unix(0, createdAt).UTC()
	return receipt, nil
}
