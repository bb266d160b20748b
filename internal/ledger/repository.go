package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) MaxSequentialId(ctx context.Context) (uint64, error) {
	var max uint64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(MAX(sequential_id), 0)").
		Scan(&max).Error
	return max, err
}

func (r *Repository) MaxEventId(ctx context.Context, eventType model.EventType) (uint64, error) {
	var max uint64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(MAX(event_id), 0)").
		Where("event_type = ?", eventType).
		Scan(&max).Error
	return max, err
}

func (r *Repository) ExistingHashes(ctx context.Context, hashes []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(hashes))
	if len(hashes) == 0 {
		return existing, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("transaction_hash IN ?", hashes).
		Pluck("transaction_hash", &found).Error
	if err != nil {
		return nil, err
	}
	for _, hash := range found {
		existing[hash] = struct{}{}
	}
	return existing, nil
}

func (r *Repository) InsertTransactions(ctx context.Context, transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transactions).Error; err != nil {
			return classifyInsertError(err)
		}
		return nil
	})
}

// classifyInsertError turns a unique violation into a DuplicateKeyError naming the constraint.
func classifyInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &DuplicateKeyError{Constraint: pgErr.ConstraintName, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateKeyError{Err: err}
	}
	return fmt.Errorf("inserting transactions: %w", err)
}

func (r *Repository) ListTransactions(ctx context.Context, page utils.PageRequest) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var count int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Transaction{}).Count(&count).Error; err != nil {
			return err
		}
		return tx.Order("sequential_id DESC").
			Limit(page.Size).
			Offset(page.Offset).
			Find(&transactions).Error
	})
	return transactions, count, err
}

func (r *Repository) FindTransaction(ctx context.Context, sequentialId uint64) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).
		Where("sequential_id = ?", sequentialId).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

type methodCount struct {
	Method model.Method
	Count  int64
}

type feeSummary struct {
	Method  model.Method
	Average decimal.NullDecimal
	Total   decimal.NullDecimal
}

func (r *Repository) Stats(ctx context.Context) (*TransactionStats, error) {
	stats := &TransactionStats{ByMethod: map[string]int64{}}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counts []methodCount
		if err := tx.Model(&model.Transaction{}).
			Select("method, COUNT(*) AS count").
			Group("method").
			Scan(&counts).Error; err != nil {
			return err
		}
		for _, c := range counts {
			stats.ByMethod[ResolveMethod(string(c.Method))] += c.Count
			stats.Total += c.Count
		}

		var fees []feeSummary
		if err := tx.Model(&model.Transaction{}).
			Select("method, AVG(fee) AS average, SUM(fee) AS total").
			Where("method IN ?", []model.Method{model.MethodRollDice, model.MethodVrfCallback}).
			Group("method").
			Scan(&fees).Error; err != nil {
			return err
		}
		for _, f := range fees {
			summary := FeeSummary{Average: f.Average.Decimal.Round(0), Total: f.Total.Decimal}
			if f.Method == model.MethodRollDice {
				stats.Player = summary
			} else {
				stats.Vrf = summary
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type ChartPoint struct {
	Day        time.Time
	Method     model.Method
	AverageFee decimal.Decimal
}

// AverageFeeByDay groups fees per calendar day and method since the given time.
func (r *Repository) AverageFeeByDay(ctx context.Context, since time.Time) ([]ChartPoint, error) {
	var points []ChartPoint
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("DATE(timestamp) AS day, method, AVG(fee) AS average_fee").
		Where("timestamp >= ?", since).
		Where("method IN ?", []model.Method{model.MethodRollDice, model.MethodVrfCallback}).
		Group("DATE(timestamp), method").
		Order("day").
		Scan(&points).Error
	return points, err
}
