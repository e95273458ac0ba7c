package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"time"

	"github.com/shenikar/city_alert/internal/gemini"
	"github.com/shenikar/city_alert/internal/models"
)

// IncidentRepository определяет контракт для работы с бд и кешем инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id int64) (*models.Incident, error)
	List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	FindExactDuplicate(ctx context.Context, description, location string, since time.Time) (*models.Incident, error)
	FindActiveAtLocation(ctx context.Context, location, classification string, since time.Time) (*models.Incident, error)
	Update(ctx context.Context, id int64, patch models.IncidentPatch) (*models.Incident, *models.Incident, error)
	Delete(ctx context.Context, id int64, authorize func(*models.Incident) error) error
	DeleteAll(ctx context.Context) (int64, error)
	GetIncidentFromCache(ctx context.Context, id int64) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id int64) error
	FlushIncidentCache(ctx context.Context) error
}

// DepartmentRepository - хранилище департаментов
type DepartmentRepository interface {
	Seed(ctx context.Context, departments []models.Department) (int, error)
	GetByLoginKey(ctx context.Context, loginKey string) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
}

// SubscriptionRepository - хранилище email-подписок
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, email string, departmentFilter *string) (*models.UserSubscription, models.SubscribeOutcome, error)
	Deactivate(ctx context.Context, email string) (bool, error)
	ListActive(ctx context.Context) ([]*models.UserSubscription, error)
}

// Geocoder переводит адрес в координаты; (nil, nil) при любой неудаче
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*float64, *float64)
}

// ImageStore сохраняет изображения из data URI и возвращает публичный путь
type ImageStore interface {
	SaveDataURI(dataURI string) (string, error)
}

// Notifier - рассылка писем; ошибки не пробрасываются
type Notifier interface {
	SendConfirmation(ctx context.Context, email string) bool
	SendIncidentAlert(ctx context.Context, email string, incident *models.Incident) bool
	SendStatusUpdate(ctx context.Context, email string, incident *models.Incident, oldStatus string) bool
	NotifyNewIncident(ctx context.Context, incident *models.Incident) (int, int)
	NotifyStatusChange(ctx context.Context, incident *models.Incident, oldStatus string) (int, int)
}

// GenerativeClient - транспорт до языковой модели
type GenerativeClient interface {
	GenerateContent(ctx context.Context, request gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// IncidentService определяет контракт бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, draft models.IncidentDraft) (*models.Incident, error)
	GetIncident(ctx context.Context, id int64) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	UpdateIncident(ctx context.Context, id int64, patch models.IncidentPatch) (*models.Incident, error)
	DeleteIncident(ctx context.Context, id int64, credentials models.DepartmentCredentials) error
	ClearIncidents(ctx context.Context) (int64, error)
}

// DepartmentService - вход департаментов и их инциденты
type DepartmentService interface {
	Login(ctx context.Context, loginKey string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]*models.Department, error)
	DepartmentIncidents(ctx context.Context, name, status string) ([]*models.Incident, error)
	SeedDefaults(ctx context.Context) error
}

// SubscriptionService - подписки на email-оповещения
type SubscriptionService interface {
	Subscribe(ctx context.Context, email, departmentFilter string) (*models.UserSubscription, models.SubscribeOutcome, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
	ListSubscriptions(ctx context.Context) ([]*models.UserSubscription, error)
	SendTestEmail(ctx context.Context, email, template string) (bool, error)
}

// ChatService - прокси чата к языковой модели
type ChatService interface {
	Chat(ctx context.Context, history []gemini.Content) (string, error)
}
