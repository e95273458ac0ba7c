package v1

import (
	"bytes"
	"encoding/json"
	"time"
)

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента. image_url может быть data URI (data:image/...;base64,...) или обычным URL
type CreateIncidentRequest struct {
	Description              string `json:"description" validate:"required"`
	Location                 string `json:"location" validate:"required"`
	DepartmentClassification string `json:"department_classification" validate:"required"`
	ImageURL                 string `json:"image_url,omitempty"`
}

// OptionalString различает отсутствующее поле, явный null и значение
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// UpdateIncidentRequest DTO для частичного обновления инцидента; изменяются только переданные поля
// @Description DTO для частичного обновления инцидента
type UpdateIncidentRequest struct {
	Description              OptionalString `json:"description" swaggertype:"string"`
	Location                 OptionalString `json:"location" swaggertype:"string"`
	ImageURL                 OptionalString `json:"image_url" swaggertype:"string"`
	DepartmentClassification OptionalString `json:"department_classification" swaggertype:"string"`
	Status                   OptionalString `json:"status" swaggertype:"string" enums:"reported,in_progress,resolved"`
}

func (r UpdateIncidentRequest) empty() bool {
	return !r.Description.Set && !r.Location.Set && !r.ImageURL.Set &&
		!r.DepartmentClassification.Set && !r.Status.Set
}

// DeleteIncidentRequest - необязательные учетные данные департамента
// @Description Необязательные учетные данные департамента для удаления инцидента
type DeleteIncidentRequest struct {
	DepartmentKey  string `json:"department_key"`
	DepartmentName string `json:"department_name"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                       int64     `json:"id"`
	Description              string    `json:"description"`
	Location                 string    `json:"location"`
	Latitude                 *float64  `json:"latitude"`
	Longitude                *float64  `json:"longitude"`
	ImageURL                 *string   `json:"image_url"`
	DepartmentClassification string    `json:"department_classification"`
	Status                   string    `json:"status"`
	Timestamp                time.Time `json:"timestamp"`
}

// DuplicateIncidentResponse - тело ответа 409
// @Description Обращение совпало с недавним инцидентом
type DuplicateIncidentResponse struct {
	Warning          string            `json:"warning"`
	Message          string            `json:"message,omitempty"`
	ExistingIncident *IncidentResponse `json:"existing_incident"`
	TimeAgo          string            `json:"time_ago,omitempty"`
}

// ClearIncidentsResponse - результат удаления всех инцидентов
type ClearIncidentsResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

// DepartmentLoginRequest DTO для входа департамента
type DepartmentLoginRequest struct {
	// nil - ключ не передан; пустая строка - передан, но неверен
	LoginKey *string `json:"login_key" validate:"required"`
}

// DepartmentResponse - департамент без ключа входа
type DepartmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubscribeRequest DTO для подписки на оповещения
type SubscribeRequest struct {
	Email            string `json:"email"`
	DepartmentFilter string `json:"department_filter,omitempty"`
}

// UnsubscribeRequest DTO для отписки через POST
type UnsubscribeRequest struct {
	Email string `json:"email"`
}

// SubscriptionResponse DTO для ответа с подпиской
type SubscriptionResponse struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	DepartmentFilter *string   `json:"department_filter"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// SubscribeResponse - ответ на новую подписку
type SubscribeResponse struct {
	Message      string                `json:"message"`
	Subscription *SubscriptionResponse `json:"subscription"`
}

// ChatInlineData - изображение в реплике чата
type ChatInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// ChatPart - часть реплики: text и/или inlineData
type ChatPart struct {
	Text       *string         `json:"text,omitempty"`
	InlineData *ChatInlineData `json:"inlineData,omitempty"`
}

// ChatTurn - одна реплика диалога
type ChatTurn struct {
	Role  string     `json:"role"`
	Parts []ChatPart `json:"parts"`
}

// ChatRequest DTO для запроса к чату
// @Description История диалога с ассистентом
type ChatRequest struct {
	ChatHistory []ChatTurn `json:"chatHistory" validate:"required"`
}

// ChatResponse DTO для ответа чата
type ChatResponse struct {
	Response string `json:"response"`
}

// TestEmailResponse - результат диагностической отправки
type TestEmailResponse struct {
	Success bool `json:"success"`
}
