package models

import "time"

// UserSubscription - подписка на email-оповещения
type UserSubscription struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	DepartmentFilter *string   `json:"department_filter"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// SubscribeOutcome - результат попытки подписки
type SubscribeOutcome int

const (
	SubscriptionCreated SubscribeOutcome = iota
	SubscriptionReactivated
	SubscriptionAlreadyActive
)
