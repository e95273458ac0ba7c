package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/models"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail обрезает пробелы и приводит адрес к нижнему регистру
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail - простая проверка вида local@domain.tld
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Шаблоны диагностического письма
const (
	TestTemplateConfirmation = "confirmation"
	TestTemplateAlert        = "alert"
	TestTemplateStatus       = "status"
)

type subscriptionService struct {
	repo     SubscriptionRepository
	notifier Notifier
	logger   *logrus.Logger
}

func NewSubscriptionService(repo SubscriptionRepository, notifier Notifier, logger *logrus.Logger) SubscriptionService {
	return &subscriptionService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Subscribe создает или реактивирует подписку. Письмо-подтверждение уходит только новым подписчикам.
func (s *subscriptionService) Subscribe(ctx context.Context, email, departmentFilter string) (*models.UserSubscription, models.SubscribeOutcome, error) {
	email = NormalizeEmail(email)
	log := s.logger.WithFields(logrus.Fields{
		"service": "subscription",
		"method":  "Subscribe",
		"email":   email,
	})

	if email == "" {
		return nil, 0, validationError("Email is required")
	}
	if !IsValidEmail(email) {
		return nil, 0, validationError("Invalid email format")
	}

	var filter *string
	if f := strings.TrimSpace(departmentFilter); f != "" {
		filter = &f
	}

	subscription, outcome, err := s.repo.Subscribe(ctx, email, filter)
	if err != nil {
		log.WithError(err).Error("Failed to subscribe")
		return nil, 0, fmt.Errorf("service: could not subscribe: %w", err)
	}

	switch outcome {
	case models.SubscriptionCreated:
		log.Info("New subscription created")
		if !s.notifier.SendConfirmation(ctx, email) {
			log.Warn("Confirmation email was not sent")
		}
	case models.SubscriptionReactivated:
		log.Info("Subscription reactivated")
	case models.SubscriptionAlreadyActive:
		log.Debug("Email is already subscribed")
	}
	return subscription, outcome, nil
}

// Unsubscribe отключает подписку; false - адрес не был подписан
func (s *subscriptionService) Unsubscribe(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)
	log := s.logger.WithFields(logrus.Fields{
		"service": "subscription",
		"method":  "Unsubscribe",
		"email":   email,
	})

	if email == "" || !IsValidEmail(email) {
		return false, validationError("Valid email is required")
	}

	deactivated, err := s.repo.Deactivate(ctx, email)
	if err != nil {
		log.WithError(err).Error("Failed to unsubscribe")
		return false, fmt.Errorf("service: could not unsubscribe: %w", err)
	}
	if deactivated {
		log.Info("Subscription deactivated")
	}
	return deactivated, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context) ([]*models.UserSubscription, error) {
	subscriptions, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("service", "subscription").Error("Failed to list subscriptions")
		return nil, fmt.Errorf("service: could not list subscriptions: %w", err)
	}
	return subscriptions, nil
}

// SendTestEmail отправляет пример письма выбранного шаблона
func (s *subscriptionService) SendTestEmail(ctx context.Context, email, template string) (bool, error) {
	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return false, validationError("Valid email is required")
	}

	sample := &models.Incident{
		ID:                       0,
		Description:              "Test incident: streetlight out near the crosswalk",
		Location:                 "City Hall, Main St",
		DepartmentClassification: "PUBLIC_WORKS",
		Status:                   models.StatusInProgress,
		Timestamp:                time.Now(),
	}

	var sent bool
	switch template {
	case "", TestTemplateConfirmation:
		sent = s.notifier.SendConfirmation(ctx, email)
	case TestTemplateAlert:
		sent = s.notifier.SendIncidentAlert(ctx, email, sample)
	case TestTemplateStatus:
		sent = s.notifier.SendStatusUpdate(ctx, email, sample, models.StatusReported)
	default:
		return false, validationError("unknown template %q", template)
	}

	s.logger.WithFields(logrus.Fields{
		"service":  "subscription",
		"method":   "SendTestEmail",
		"template": template,
		"sent":     sent,
	}).Info("Test email processed")
	return sent, nil
}
