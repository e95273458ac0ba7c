package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/models"
	"github.com/shenikar/city_alert/internal/seed"
)

type departmentService struct {
	repo      DepartmentRepository
	incidents IncidentRepository
	logger    *logrus.Logger
}

func NewDepartmentService(repo DepartmentRepository, incidents IncidentRepository, logger *logrus.Logger) DepartmentService {
	return &departmentService{
		repo:      repo,
		incidents: incidents,
		logger:    logger,
	}
}

// Login ищет департамент по ключу. Неверный ключ и отсутствующий департамент неразличимы для клиента.
func (s *departmentService) Login(ctx context.Context, loginKey string) (*models.Department, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "department",
		"method":  "Login",
	})

	// Пустой ключ не принадлежит ни одному департаменту
	if loginKey == "" {
		log.Warn("Department login failed")
		return nil, ErrInvalidCredentials
	}

	department, err := s.repo.GetByLoginKey(ctx, loginKey)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("Department login failed")
			return nil, ErrInvalidCredentials
		}
		log.WithError(err).Error("Failed to look up department")
		return nil, fmt.Errorf("service: could not log in department: %w", err)
	}

	log.WithField("department", department.Name).Info("Department logged in")
	return department, nil
}

func (s *departmentService) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("service", "department").Error("Failed to list departments")
		return nil, fmt.Errorf("service: could not list departments: %w", err)
	}
	return departments, nil
}

// DepartmentIncidents возвращает инциденты департамента, новые первыми
func (s *departmentService) DepartmentIncidents(ctx context.Context, name, status string) ([]*models.Incident, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	log := s.logger.WithFields(logrus.Fields{
		"service":    "department",
		"method":     "DepartmentIncidents",
		"department": name,
		"status":     status,
	})

	if name == "" {
		return nil, validationError("department name is required")
	}

	incidents, err := s.incidents.List(ctx, models.IncidentFilter{
		Status:      status,
		Department:  name,
		NewestFirst: true,
	})
	if err != nil {
		log.WithError(err).Error("Failed to list department incidents")
		return nil, fmt.Errorf("service: could not list department incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Debug("Department incidents listed")
	return incidents, nil
}

// SeedDefaults создает департаменты по умолчанию, если их еще нет
func (s *departmentService) SeedDefaults(ctx context.Context) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "department",
		"method":  "SeedDefaults",
	})

	departments, err := seed.Departments()
	if err != nil {
		return fmt.Errorf("service: could not load department seed: %w", err)
	}

	inserted, err := s.repo.Seed(ctx, departments)
	if err != nil {
		log.WithError(err).Error("Failed to seed departments")
		return fmt.Errorf("service: could not seed departments: %w", err)
	}

	log.WithFields(logrus.Fields{"total": len(departments), "inserted": inserted}).Info("Default department check complete")
	return nil
}
