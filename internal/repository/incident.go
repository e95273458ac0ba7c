package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/city_alert/internal/models"
)

const incidentColumns = `id, description, location, latitude, longitude, image_url, department_classification, status, "timestamp"`

type IncidentRepository struct {
	db          DB
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewIncidentRepository создает репозиторий; redisClient == nil отключает кеш
func NewIncidentRepository(db DB, redisClient *redis.Client, cacheTTL time.Duration) *IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.Description,
		&incident.Location,
		&incident.Latitude,
		&incident.Longitude,
		&incident.ImageURL,
		&incident.DepartmentClassification,
		&incident.Status,
		&incident.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

func collectIncidents(rows pgx.Rows) ([]*models.Incident, error) {
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// Create сохраняет инцидент; id и timestamp выставляет база
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (description, location, latitude, longitude, image_url, department_classification, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, "timestamp";
	`
	err := r.db.QueryRow(ctx, query,
		incident.Description,
		incident.Location,
		incident.Latitude,
		incident.Longitude,
		incident.ImageURL,
		incident.DepartmentClassification,
		incident.Status,
	).Scan(&incident.ID, &incident.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по идентификатору
func (r *IncidentRepository) GetByID(ctx context.Context, id int64) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// List возвращает инциденты по фильтру.
// Департамент ищется через strpos, то есть подстрокой: "POLICE" совпадет и с "POLICE_AUX".
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, "strpos(department_classification, $"+strconv.Itoa(len(args))+") > 0")
	}

	query := `SELECT ` + incidentColumns + ` FROM incidents`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	if filter.NewestFirst {
		query += ` ORDER BY "timestamp" DESC, id DESC`
	} else {
		query += ` ORDER BY id`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return collectIncidents(rows)
}

// FindExactDuplicate ищет инцидент с тем же описанием и адресом, созданный не раньше since.
// Возвращает nil, nil, если совпадений нет.
func (r *IncidentRepository) FindExactDuplicate(ctx context.Context, description, location string, since time.Time) (*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE description = $1 AND location = $2 AND "timestamp" >= $3
		ORDER BY "timestamp" DESC
		LIMIT 1;
	`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, description, location, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up exact duplicate: %w", err)
	}
	return incident, nil
}

// FindActiveAtLocation возвращает самый свежий незакрытый инцидент по тому же адресу
// и с той же классификацией, созданный не раньше since. nil, nil если такого нет.
func (r *IncidentRepository) FindActiveAtLocation(ctx context.Context, location, classification string, since time.Time) (*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE location = $1
			AND department_classification = $2
			AND "timestamp" >= $3
			AND status IN ('reported', 'in_progress')
		ORDER BY "timestamp" DESC
		LIMIT 1;
	`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, location, classification, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up active incident at location: %w", err)
	}
	return incident, nil
}

// Update применяет patch к инциденту под блокировкой строки.
// Возвращает состояние до и после изменения.
func (r *IncidentRepository) Update(ctx context.Context, id int64, patch models.IncidentPatch) (*models.Incident, *models.Incident, error) {
	var before, after *models.Incident
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		selectQuery := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1 FOR UPDATE;`
		current, err := scanIncident(tx.QueryRow(ctx, selectQuery, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("incident with id %d: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("failed to lock incident: %w", err)
		}

		snapshot := *current
		before = &snapshot
		patch.Apply(current)

		updateQuery := `
			UPDATE incidents SET
				description = $1,
				location = $2,
				latitude = $3,
				longitude = $4,
				image_url = $5,
				department_classification = $6,
				status = $7
			WHERE id = $8;
		`
		if _, err := tx.Exec(ctx, updateQuery,
			current.Description,
			current.Location,
			current.Latitude,
			current.Longitude,
			current.ImageURL,
			current.DepartmentClassification,
			current.Status,
			current.ID,
		); err != nil {
			return fmt.Errorf("failed to update incident: %w", err)
		}
		after = current
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Delete удаляет инцидент. authorize вызывается с заблокированной строкой;
// ошибка authorize отменяет удаление и возвращается как есть.
func (r *IncidentRepository) Delete(ctx context.Context, id int64, authorize func(*models.Incident) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		selectQuery := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1 FOR UPDATE;`
		incident, err := scanIncident(tx.QueryRow(ctx, selectQuery, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("incident with id %d: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("failed to lock incident: %w", err)
		}

		if authorize != nil {
			if err := authorize(incident); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM incidents WHERE id = $1;`, id); err != nil {
			return fmt.Errorf("failed to delete incident: %w", err)
		}
		return nil
	})
}

// DeleteAll удаляет все инциденты и возвращает их количество
func (r *IncidentRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM incidents;`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear incidents: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func incidentCacheKey(id int64) string {
	return "incident:" + strconv.FormatInt(id, 10)
}

// GetIncidentFromCache пытается получить инцидент из Redis; nil, nil при промахе
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id int64) (*models.Incident, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	val, err := r.redisClient.Get(ctx, incidentCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// cacheFillGuard - сколько живет метка инвалидации. Пока она есть, заполнение кеша
// после промаха пропускается: читатель мог получить строку до коммита изменения.
const cacheFillGuard = 30 * time.Second

const flushGuardKey = "incident_guard:all"

func incidentGuardKey(id int64) string {
	return "incident_guard:" + strconv.FormatInt(id, 10)
}

// KEYS[1] - запись, KEYS[2] - метка инцидента, KEYS[3] - метка полной очистки
var setIfNotGuarded = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 or redis.call("EXISTS", KEYS[3]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// SetIncidentCache сохраняет инцидент в Redis, если он недавно не инвалидировался
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	if r.redisClient == nil || r.cacheTTL <= 0 {
		return nil
	}
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	keys := []string{incidentCacheKey(incident.ID), incidentGuardKey(incident.ID), flushGuardKey}
	if err := setIfNotGuarded.Run(ctx, r.redisClient, keys, val, r.cacheTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из кеша и на cacheFillGuard запрещает его повторное заполнение
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id int64) error {
	if r.redisClient == nil {
		return nil
	}
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, incidentGuardKey(id), 1, cacheFillGuard)
		pipe.Del(ctx, incidentCacheKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}

// FlushIncidentCache удаляет из кеша все инциденты
func (r *IncidentRepository) FlushIncidentCache(ctx context.Context) error {
	if r.redisClient == nil {
		return nil
	}
	if err := r.redisClient.Set(ctx, flushGuardKey, 1, cacheFillGuard).Err(); err != nil {
		return fmt.Errorf("failed to flush incident cache: %w", err)
	}

	iter := r.redisClient.Scan(ctx, 0, "incident:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan incident cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to flush incident cache: %w", err)
	}
	return nil
}
