package v1

import (
	"errors"

	"github.com/shenikar/city_alert/internal/gemini"
	"github.com/shenikar/city_alert/internal/models"
)

// DTOToIncidentDraft преобразует DTO создания в черновик инцидента
func DTOToIncidentDraft(dto CreateIncidentRequest) models.IncidentDraft {
	return models.IncidentDraft{
		Description:              dto.Description,
		Location:                 dto.Location,
		DepartmentClassification: dto.DepartmentClassification,
		Image:                    dto.ImageURL,
	}
}

// DTOToIncidentPatch преобразует DTO обновления в частичное обновление.
// null допустим только для image_url.
func DTOToIncidentPatch(dto UpdateIncidentRequest) (models.IncidentPatch, error) {
	var patch models.IncidentPatch

	required := []struct {
		name  string
		field OptionalString
		dst   **string
	}{
		{"description", dto.Description, &patch.Description},
		{"location", dto.Location, &patch.Location},
		{"department_classification", dto.DepartmentClassification, &patch.DepartmentClassification},
		{"status", dto.Status, &patch.Status},
	}
	for _, r := range required {
		if !r.field.Set {
			continue
		}
		if r.field.Null {
			return models.IncidentPatch{}, errors.New(r.name + " must not be null")
		}
		value := r.field.Value
		*r.dst = &value
	}

	if dto.ImageURL.Set {
		patch.ImageURLSet = true
		if !dto.ImageURL.Null {
			value := dto.ImageURL.Value
			patch.ImageURL = &value
		}
	}
	return patch, nil
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:                       model.ID,
		Description:              model.Description,
		Location:                 model.Location,
		Latitude:                 model.Latitude,
		Longitude:                model.Longitude,
		ImageURL:                 model.ImageURL,
		DepartmentClassification: model.DepartmentClassification,
		Status:                   model.Status,
		Timestamp:                model.Timestamp,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelToDepartmentResponse(model *models.Department) *DepartmentResponse {
	return &DepartmentResponse{ID: model.ID, Name: model.Name}
}

func ModelsToDepartmentResponses(models []*models.Department) []*DepartmentResponse {
	responses := make([]*DepartmentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToDepartmentResponse(model)
	}
	return responses
}

func ModelToSubscriptionResponse(model *models.UserSubscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:               model.ID,
		Email:            model.Email,
		DepartmentFilter: model.DepartmentFilter,
		IsActive:         model.IsActive,
		CreatedAt:        model.CreatedAt,
	}
}

func ModelsToSubscriptionResponses(models []*models.UserSubscription) []*SubscriptionResponse {
	responses := make([]*SubscriptionResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToSubscriptionResponse(model)
	}
	return responses
}

// DTOToChatHistory переносит реплики в формат Gemini без изменений
func DTOToChatHistory(turns []ChatTurn) []gemini.Content {
	history := make([]gemini.Content, len(turns))
	for i, turn := range turns {
		parts := make([]gemini.Part, len(turn.Parts))
		for j, part := range turn.Parts {
			parts[j] = gemini.Part{Text: part.Text}
			if part.InlineData != nil {
				parts[j].InlineData = &gemini.InlineData{
					MimeType: part.InlineData.MimeType,
					Data:     part.InlineData.Data,
				}
			}
		}
		history[i] = gemini.Content{Role: turn.Role, Parts: parts}
	}
	return history
}
