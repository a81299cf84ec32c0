package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"socialbot-gateway/internal/models"
	"socialbot-gateway/pkg/apperror"
	dto "socialbot-gateway/pkg/models"
)

const creditAccountID = 1

type CreditRepository struct {
	db              *gorm.DB
	startingBalance int
}

func NewCreditRepository(db *gorm.DB, startingBalance int) *CreditRepository {
	return &CreditRepository{db: db, startingBalance: startingBalance}
}

// Balance returns the account, opening it with the starting balance on first
// use.
func (r *CreditRepository) Balance(ctx context.Context) (dto.CreditBalance, error) {
	acct, err := r.account(r.db.WithContext(ctx))
	if err != nil {
		return dto.CreditBalance{}, err
	}
	return acct.ToDomain(), nil
}

func (r *CreditRepository) account(tx *gorm.DB) (models.CreditAccount, error) {
	var acct models.CreditAccount
	err := tx.First(&acct, creditAccountID).Error
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return acct, err
	}
	acct = models.CreditAccount{ID: creditAccountID, Balance: r.startingBalance, LifetimeAdded: r.startingBalance}
	if err := tx.Create(&acct).Error; err != nil {
		return acct, fmt.Errorf("open credit account: %w", err)
	}
	if r.startingBalance > 0 {
		err := tx.Create(&models.CreditTransaction{
			Type:         string(dto.TxTopUp),
			Amount:       r.startingBalance,
			BalanceAfter: r.startingBalance,
			Description:  "Starting balance",
		}).Error
		if err != nil {
			return acct, fmt.Errorf("record starting balance: %w", err)
		}
	}
	return acct, nil
}

// Charge debits credits for one executed action. The balance never goes
// negative; a debit larger than the balance fails as a whole.
func (r *CreditRepository) Charge(ctx context.Context, amount int, automationID string, action dto.ActionType, description string) (dto.CreditTransaction, error) {
	if amount <= 0 {
		return dto.CreditTransaction{}, apperror.ValidationError("charge amount must be positive")
	}
	var txRow models.CreditTransaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.account(tx); err != nil {
			return err
		}
		res := tx.Model(&models.CreditAccount{}).
			Where("id = ? AND balance >= ?", creditAccountID, amount).
			Updates(map[string]interface{}{
				"balance":        gorm.Expr("balance - ?", amount),
				"lifetime_spent": gorm.Expr("lifetime_spent + ?", amount),
				"updated_at":     time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.InsufficientCreditsError(fmt.Sprintf("not enough credits for %d", amount))
		}
		var acct models.CreditAccount
		if err := tx.First(&acct, creditAccountID).Error; err != nil {
			return err
		}
		txRow = models.CreditTransaction{
			Type:         string(dto.TxUsage),
			Amount:       -amount,
			BalanceAfter: acct.Balance,
			AutomationID: automationID,
			ActionType:   string(action),
			Description:  description,
		}
		return tx.Create(&txRow).Error
	})
	if err != nil {
		return dto.CreditTransaction{}, err
	}
	return txRow.ToDomain(), nil
}

// Credit adds credits as a top-up, refund or adjustment.
func (r *CreditRepository) Credit(ctx context.Context, kind dto.CreditTransactionType, amount int, description string) (dto.CreditTransaction, error) {
	if amount <= 0 {
		return dto.CreditTransaction{}, apperror.ValidationError("credit amount must be positive")
	}
	if kind == dto.TxUsage {
		return dto.CreditTransaction{}, apperror.ValidationError("usage is recorded through charges")
	}
	var txRow models.CreditTransaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.account(tx); err != nil {
			return err
		}
		if err := tx.Model(&models.CreditAccount{}).Where("id = ?", creditAccountID).
			Updates(map[string]interface{}{
				"balance":        gorm.Expr("balance + ?", amount),
				"lifetime_added": gorm.Expr("lifetime_added + ?", amount),
				"updated_at":     time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		var acct models.CreditAccount
		if err := tx.First(&acct, creditAccountID).Error; err != nil {
			return err
		}
		txRow = models.CreditTransaction{
			Type:         string(kind),
			Amount:       amount,
			BalanceAfter: acct.Balance,
			Description:  description,
		}
		return tx.Create(&txRow).Error
	})
	if err != nil {
		return dto.CreditTransaction{}, err
	}
	return txRow.ToDomain(), nil
}

func (r *CreditRepository) Transactions(ctx context.Context, p dto.TransactionListParams) ([]dto.CreditTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CreditTransaction{})
	if p.Type != "" {
		q = q.Where("type = ?", string(p.Type))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.CreditTransaction
	if err := q.Order("created_at DESC, id DESC").Scopes(paginate(p.Page, p.PerPage)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]dto.CreditTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, total, nil
}

// Usage aggregates usage debits by action type over the last days.
func (r *CreditRepository) Usage(ctx context.Context, days int) (dto.CreditUsage, error) {
	if days < 1 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var buckets []struct {
		ActionType string
		Count      int64
		Credits    int64
	}
	err := r.db.WithContext(ctx).Model(&models.CreditTransaction{}).
		Select("action_type, COUNT(*) AS count, -SUM(amount) AS credits").
		Where("type = ? AND created_at >= ?", string(dto.TxUsage), since).
		Group("action_type").
		Order("credits DESC").
		Scan(&buckets).Error
	if err != nil {
		return dto.CreditUsage{}, err
	}

	usage := dto.CreditUsage{Days: days, ByActionType: make([]dto.CreditUsageBucket, 0, len(buckets))}
	for _, b := range buckets {
		usage.TotalCredits += b.Credits
		usage.ByActionType = append(usage.ByActionType, dto.CreditUsageBucket{
			ActionType: dto.ActionType(b.ActionType),
			Count:      b.Count,
			Credits:    b.Credits,
		})
	}
	return usage, nil
}
