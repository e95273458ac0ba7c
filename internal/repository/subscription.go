package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shenikar/city_alert/internal/models"
)

const subscriptionColumns = `id, email, department_filter, is_active, created_at`

type SubscriptionRepository struct {
	db DB
}

func NewSubscriptionRepository(db DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*models.UserSubscription, error) {
	s := &models.UserSubscription{}
	if err := row.Scan(&s.ID, &s.Email, &s.DepartmentFilter, &s.IsActive, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe создает подписку, реактивирует отключенную или возвращает уже активную.
// email должен быть нормализован вызывающим.
func (r *SubscriptionRepository) Subscribe(ctx context.Context, email string, departmentFilter *string) (*models.UserSubscription, models.SubscribeOutcome, error) {
	var (
		result  *models.UserSubscription
		outcome models.SubscribeOutcome
	)
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		selectQuery := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE email = $1 FOR UPDATE;`
		existing, err := scanSubscription(tx.QueryRow(ctx, selectQuery, email))
		switch {
		case err == nil && existing.IsActive:
			result, outcome = existing, models.SubscriptionAlreadyActive
			return nil
		case err == nil:
			reactivateQuery := `
				UPDATE user_subscriptions SET is_active = TRUE, department_filter = $1
				WHERE id = $2
				RETURNING ` + subscriptionColumns + `;
			`
			result, err = scanSubscription(tx.QueryRow(ctx, reactivateQuery, departmentFilter, existing.ID))
			if err != nil {
				return fmt.Errorf("failed to reactivate subscription: %w", err)
			}
			outcome = models.SubscriptionReactivated
			return nil
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("failed to look up subscription: %w", err)
		}

		insertQuery := `
			INSERT INTO user_subscriptions (email, department_filter)
			VALUES ($1, $2)
			RETURNING ` + subscriptionColumns + `;
		`
		result, err = scanSubscription(tx.QueryRow(ctx, insertQuery, email, departmentFilter))
		if err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		outcome = models.SubscriptionCreated
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result, outcome, nil
}

// Deactivate отключает активную подписку. false - активной подписки не было.
func (r *SubscriptionRepository) Deactivate(ctx context.Context, email string) (bool, error) {
	query := `UPDATE user_subscriptions SET is_active = FALSE WHERE email = $1 AND is_active;`
	cmdTag, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// ListActive возвращает активные подписки
func (r *SubscriptionRepository) ListActive(ctx context.Context) ([]*models.UserSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE is_active ORDER BY id;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subscriptions := make([]*models.UserSubscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subscriptions = append(subscriptions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return subscriptions, nil
}
