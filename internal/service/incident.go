package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/metrics"
	"github.com/shenikar/city_alert/internal/models"
	"github.com/shenikar/city_alert/internal/storage"
)

// timeAgoMagnitudes - "less than a minute ago", "1 minute ago", "5 hours ago", "2 days ago"
var timeAgoMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "less than a minute %s", DivBy: 1},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
	{D: time.Duration(math.MaxInt64), Format: "%d days %s", DivBy: humanize.Day},
}

// TimeAgo - фраза о давности события относительно now
func TimeAgo(then, now time.Time) string {
	return humanize.CustomRelTime(then, now, "ago", "from now", timeAgoMagnitudes)
}

// IncidentOptions - настройки сервиса инцидентов
type IncidentOptions struct {
	DuplicateWindow   time.Duration
	NotifySubscribers bool
}

type incidentService struct {
	repo     IncidentRepository
	depts    DepartmentRepository
	geocoder Geocoder
	images   ImageStore
	notifier Notifier
	opts     IncidentOptions
	logger   *logrus.Logger
	now      func() time.Time
}

func NewIncidentService(
	repo IncidentRepository,
	depts DepartmentRepository,
	geocoder Geocoder,
	images ImageStore,
	notifier Notifier,
	opts IncidentOptions,
	logger *logrus.Logger,
) IncidentService {
	if opts.DuplicateWindow <= 0 {
		opts.DuplicateWindow = time.Hour
	}
	return &incidentService{
		repo:     repo,
		depts:    depts,
		geocoder: geocoder,
		images:   images,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateIncident проверяет дубликаты, сохраняет изображение, геокодирует адрес и создает инцидент
func (s *incidentService) CreateIncident(ctx context.Context, draft models.IncidentDraft) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "CreateIncident",
		"location": draft.Location,
	})
	log.Info("Attempting to create a new incident")

	if strings.TrimSpace(draft.Description) == "" || strings.TrimSpace(draft.Location) == "" ||
		strings.TrimSpace(draft.DepartmentClassification) == "" {
		return nil, validationError("Missing required incident fields (description, location, department_classification)")
	}

	now := s.now()
	since := now.Add(-s.opts.DuplicateWindow)

	exact, err := s.repo.FindExactDuplicate(ctx, draft.Description, draft.Location, since)
	if err != nil {
		log.WithError(err).Error("Failed to check for exact duplicates")
		return nil, fmt.Errorf("service: could not check duplicates: %w", err)
	}
	if exact != nil {
		log.WithField("existing_id", exact.ID).Warn("Duplicate incident detected")
		metrics.DuplicateIncidents.WithLabelValues(DuplicateExact).Inc()
		return nil, &DuplicateError{Kind: DuplicateExact, Existing: exact}
	}

	near, err := s.repo.FindActiveAtLocation(ctx, draft.Location, draft.DepartmentClassification, since)
	if err != nil {
		log.WithError(err).Error("Failed to check for active incidents at location")
		return nil, fmt.Errorf("service: could not check duplicates: %w", err)
	}
	if near != nil {
		timeAgo := TimeAgo(near.Timestamp, now)
		log.WithFields(logrus.Fields{"existing_id": near.ID, "time_ago": timeAgo}).Warn("Active incident already reported at location")
		metrics.DuplicateIncidents.WithLabelValues(DuplicateNear).Inc()
		return nil, &DuplicateError{Kind: DuplicateNear, Existing: near, TimeAgo: timeAgo}
	}

	incident := &models.Incident{
		Description:              draft.Description,
		Location:                 draft.Location,
		DepartmentClassification: draft.DepartmentClassification,
		ImageURL:                 s.resolveImage(log, draft.Image),
		Status:                   models.StatusReported,
	}
	incident.Latitude, incident.Longitude = s.geocoder.Geocode(ctx, draft.Location)

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}
	log.WithField("incident_id", incident.ID).Info("Incident created successfully")

	if s.opts.NotifySubscribers {
		s.notifier.NotifyNewIncident(ctx, incident)
	}
	return incident, nil
}

// resolveImage сохраняет data URI в uploads; обычный URL хранится как есть.
// Ошибка декодирования не мешает созданию инцидента.
func (s *incidentService) resolveImage(log *logrus.Entry, image string) *string {
	if image == "" {
		return nil
	}
	if !storage.IsDataURI(image) {
		return &image
	}
	path, err := s.images.SaveDataURI(image)
	if err != nil {
		log.WithError(err).Warn("Failed to save incident image, continuing without it")
		return nil
	}
	log.WithField("image_url", path).Debug("Incident image saved")
	return &path
}

// GetIncident получает инцидент по ID, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, id int64) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Debug("Fetching incident by ID")

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	switch {
	case err != nil:
		log.WithError(err).Warn("Failed to read incident from cache")
		metrics.IncidentCacheLookups.WithLabelValues("error").Inc()
	case cached != nil:
		metrics.IncidentCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.IncidentCacheLookups.WithLabelValues("miss").Inc()
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Info("Incident not found")
		} else {
			log.WithError(err).Error("Failed to get incident in repository")
		}
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListIncidents возвращает инциденты по фильтру
func (s *incidentService) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "incident",
		"method":     "ListIncidents",
		"status":     filter.Status,
		"department": filter.Department,
	})

	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Debug("Incidents listed successfully")
	return incidents, nil
}

// UpdateIncident применяет частичное обновление. Новый адрес всегда геокодируется заново.
func (s *incidentService) UpdateIncident(ctx context.Context, id int64, patch models.IncidentPatch) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncident",
		"incident_id": id,
	})
	log.Info("Attempting to update incident")

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	if patch.Location != nil {
		lat, lng := s.geocoder.Geocode(ctx, *patch.Location)
		patch.Coordinates = &models.Coordinates{Latitude: lat, Longitude: lng}
	}

	before, after, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("Attempted to update a non-existent incident")
		} else {
			log.WithError(err).Error("Failed to update incident in repository")
		}
		return nil, fmt.Errorf("service: could not update incident: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	if before.Status != after.Status {
		log.WithFields(logrus.Fields{"old_status": before.Status, "new_status": after.Status}).Info("Incident status changed")
		if s.opts.NotifySubscribers {
			s.notifier.NotifyStatusChange(ctx, after, before.Status)
		}
	}

	log.Info("Incident updated successfully")
	return after, nil
}

func validatePatch(patch models.IncidentPatch) error {
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return validationError("description must not be empty")
	}
	if patch.Location != nil && strings.TrimSpace(*patch.Location) == "" {
		return validationError("location must not be empty")
	}
	if patch.DepartmentClassification != nil && strings.TrimSpace(*patch.DepartmentClassification) == "" {
		return validationError("department_classification must not be empty")
	}
	if patch.Status != nil && !models.IsValidStatus(*patch.Status) {
		return validationError("invalid status %q", *patch.Status)
	}
	return nil
}

// DeleteIncident удаляет инцидент. Без учетных данных удаление разрешено;
// с ключом департамент должен существовать, совпадать по названию и входить в классификацию.
func (s *incidentService) DeleteIncident(ctx context.Context, id int64, credentials models.DepartmentCredentials) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteIncident",
		"incident_id": id,
	})
	log.Info("Attempting to delete incident")

	var authorize func(*models.Incident) error
	if credentials.Present() {
		department, err := s.depts.GetByLoginKey(ctx, credentials.Key)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				log.Warn("Delete attempted with unknown department key")
				return ErrInvalidCredentials
			}
			return fmt.Errorf("service: could not verify department: %w", err)
		}
		if credentials.Name != "" && !strings.EqualFold(credentials.Name, department.Name) {
			log.WithField("department", credentials.Name).Warn("Department name does not match key")
			return ErrInvalidCredentials
		}
		log = log.WithField("department", department.Name)
		authorize = func(incident *models.Incident) error {
			if !incident.MentionsDepartment(department.Name) {
				return ErrForbidden
			}
			return nil
		}
	} else {
		log.Warn("Deleting incident without department credentials")
	}

	if err := s.repo.Delete(ctx, id, authorize); err != nil {
		if errors.Is(err, ErrForbidden) {
			log.Warn("Department is not authorized to delete this incident")
			return err
		}
		if !errors.Is(err, models.ErrNotFound) {
			log.WithError(err).Error("Failed to delete incident in repository")
		}
		return fmt.Errorf("service: could not delete incident: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
	log.Info("Incident deleted successfully")
	return nil
}

// ClearIncidents удаляет все инциденты
func (s *incidentService) ClearIncidents(ctx context.Context) (int64, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ClearIncidents",
	})

	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to clear incidents")
		return 0, fmt.Errorf("service: could not clear incidents: %w", err)
	}
	if err := s.repo.FlushIncidentCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to flush incident cache")
	}

	log.WithField("deleted", deleted).Warn("All incidents cleared")
	return deleted, nil
}
