package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/apperror"
	"fintrack/internal/models"
)

// TransactionServiceProvider defines the interface for transaction services.
type TransactionServiceProvider interface {
	Add(ctx context.Context, userID string, input TransactionInput) (models.Transaction, error)
	List(ctx context.Context, userID string) ([]models.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
}

// TransactionInput is the payload for recording a transaction.
type TransactionInput struct {
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
	Note     string    `json:"note"`
}

// TransactionService provides per-user CRUD over transaction records.
// Every query is scoped by the owning user id; a transaction belonging to
// another user is indistinguishable from a missing one.
type TransactionService struct {
	db *sql.DB
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{db: db}
}

// Add records a new transaction for the user.
func (s *TransactionService) Add(ctx context.Context, userID string, input TransactionInput) (models.Transaction, error) {
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	input.Category = strings.TrimSpace(input.Category)
	switch {
	case input.Type != models.TransactionIncome && input.Type != models.TransactionExpense:
		return models.Transaction{}, apperror.Validation("type must be income or expense")
	case input.Category == "":
		return models.Transaction{}, apperror.Validation("category is required")
	case input.Amount <= 0:
		return models.Transaction{}, apperror.Validation("amount must be positive")
	case input.Date.IsZero():
		return models.Transaction{}, apperror.Validation("date is required")
	}

	tx := models.Transaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      input.Type,
		Category:  input.Category,
		Amount:    input.Amount,
		Date:      input.Date,
		Note:      strings.TrimSpace(input.Note),
		CreatedAt: time.Now(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (id, user_id, type, category, amount, date, note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		tx.ID, tx.UserID, tx.Type, tx.Category, tx.Amount, tx.Date.UTC(), tx.Note, tx.CreatedAt.UTC())
	if err != nil {
		return models.Transaction{}, apperror.StoreUnavailable(err)
	}
	return tx, nil
}

// List returns the user's transactions in descending date order.
func (s *TransactionService) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, type, category, amount, date, note, created_at FROM transactions WHERE user_id = ? ORDER BY date DESC",
		userID)
	if err != nil {
		return nil, apperror.StoreUnavailable(err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Category, &tx.Amount, &tx.Date, &tx.Note, &tx.CreatedAt); err != nil {
			return nil, apperror.StoreUnavailable(err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.StoreUnavailable(err)
	}
	return transactions, nil
}

// Delete removes a transaction by id, scoped to the owning user. A missing id
// and an id owned by someone else both report NOT_FOUND.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return apperror.StoreUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.StoreUnavailable(err)
	}
	if n == 0 {
		return apperror.NotFound("transaction not found")
	}
	return nil
}
