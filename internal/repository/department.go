package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shenikar/city_alert/internal/models"
)

type DepartmentRepository struct {
	db DB
}

func NewDepartmentRepository(db DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Seed создает отсутствующие департаменты одной транзакцией и возвращает число добавленных
func (r *DepartmentRepository) Seed(ctx context.Context, departments []models.Department) (int, error) {
	inserted := 0
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO departments (name, login_key)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING;
		`
		for _, d := range departments {
			cmdTag, err := tx.Exec(ctx, query, d.Name, d.LoginKey)
			if err != nil {
				return fmt.Errorf("failed to seed department %s: %w", d.Name, err)
			}
			inserted += int(cmdTag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetByLoginKey ищет департамент по ключу входа
func (r *DepartmentRepository) GetByLoginKey(ctx context.Context, loginKey string) (*models.Department, error) {
	department := &models.Department{}
	query := `SELECT id, name, login_key FROM departments WHERE login_key = $1;`
	err := r.db.QueryRow(ctx, query, loginKey).Scan(&department.ID, &department.Name, &department.LoginKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("department by login key: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get department by login key: %w", err)
	}
	return department, nil
}

// List возвращает все департаменты
func (r *DepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, login_key FROM departments ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	departments := make([]*models.Department, 0)
	for rows.Next() {
		d := &models.Department{}
		if err := rows.Scan(&d.ID, &d.Name, &d.LoginKey); err != nil {
			return nil, fmt.Errorf("failed to scan department row: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return departments, nil
}
