package models

import (
	"strings"
	"time"
)

// Статусы инцидента
const (
	StatusReported   = "reported"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Incident - обращение жителя, классифицированное по департаментам
type Incident struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ImageURL    *string  `json:"image_url"`
	// DepartmentClassification - названия департаментов через запятую, например "POLICE,MEDICAL"
	DepartmentClassification string    `json:"department_classification"`
	Status                   string    `json:"status"`
	Timestamp                time.Time `json:"timestamp"`
}

// IsActive - инцидент еще не закрыт
func (i *Incident) IsActive() bool {
	return i.Status == StatusReported || i.Status == StatusInProgress
}

// MentionsDepartment проверяет вхождение названия департамента в классификацию.
// Сравнение подстрокой: "POLICE" совпадет и с "POLICE_AUX".
func (i *Incident) MentionsDepartment(name string) bool {
	return name != "" && strings.Contains(i.DepartmentClassification, name)
}

// IsValidStatus проверяет, что статус входит в допустимый набор
func IsValidStatus(status string) bool {
	switch status {
	case StatusReported, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// IncidentFilter - фильтры выборки инцидентов
type IncidentFilter struct {
	Status string
	// Department ищется подстрокой в department_classification
	Department string
	NewestFirst bool
}

// Coordinates - результат геокодирования; nil-поля означают неудачу
type Coordinates struct {
	Latitude  *float64
	Longitude *float64
}

// IncidentPatch - частичное обновление; nil означает "поле не передано"
type IncidentPatch struct {
	Description              *string
	Location                 *string
	DepartmentClassification *string
	Status                   *string
	// ImageURLSet отличает явный null от отсутствующего поля
	ImageURLSet bool
	ImageURL    *string
	// Coordinates заполняется сервисом после повторного геокодирования
	Coordinates *Coordinates
}

// Apply применяет переданные поля к инциденту. Timestamp не изменяется никогда.
func (p IncidentPatch) Apply(incident *Incident) {
	if p.Description != nil {
		incident.Description = *p.Description
	}
	if p.Location != nil {
		incident.Location = *p.Location
	}
	if p.Coordinates != nil {
		incident.Latitude = p.Coordinates.Latitude
		incident.Longitude = p.Coordinates.Longitude
	}
	if p.ImageURLSet {
		incident.ImageURL = p.ImageURL
	}
	if p.DepartmentClassification != nil {
		incident.DepartmentClassification = *p.DepartmentClassification
	}
	if p.Status != nil {
		incident.Status = *p.Status
	}
}

// IncidentDraft - данные нового обращения до дедупликации и геокодирования
type IncidentDraft struct {
	Description              string
	Location                 string
	DepartmentClassification string
	// Image - data URI (data:image/...;base64,...) или обычный URL; пустая строка - без изображения
	Image string
}

// DepartmentCredentials - пара ключ/название департамента при удалении инцидента
type DepartmentCredentials struct {
	Key  string
	Name string
}

// Present - учетные данные считаются переданными, если указан ключ
func (c DepartmentCredentials) Present() bool {
	return c.Key != ""
}
