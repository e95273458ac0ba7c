package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shenikar/city_alert/internal/models"
)

// Имена шаблонов писем
const (
	TemplateConfirmation = "confirmation"
	TemplateAlert        = "alert"
	TemplateStatus       = "status"
)

const reportedLayout = "January 02, 2006 at 03:04 PM"

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

var statusLabels = map[string]string{
	models.StatusReported:   "Reported",
	models.StatusInProgress: "In Progress",
	models.StatusResolved:   "Resolved",
}

var statusColors = map[string]string{
	models.StatusReported:   "#ef4444",
	models.StatusInProgress: "#f59e0b",
	models.StatusResolved:   "#10b981",
}

const defaultStatusColor = "#6b7280"

// StatusLabel превращает код статуса в подпись: "in_progress" -> "In Progress"
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return cases.Title(language.English).String(strings.ReplaceAll(status, "_", " "))
}

// StatusColor - цвет бейджа статуса в HTML-письмах
func StatusColor(status string) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return defaultStatusColor
}

// FormatReported форматирует время создания инцидента для писем
func FormatReported(t time.Time) string {
	return t.Format(reportedLayout)
}

type templateData struct {
	AlertsURL      string
	UnsubscribeURL string
	Incident       *models.Incident
	Reported       string
	Status         string
	OldStatus      string
	StatusColor    string
}

func newTemplateData(baseURL, recipient string, incident *models.Incident) templateData {
	data := templateData{
		AlertsURL:      baseURL + "/public/alerts.html",
		UnsubscribeURL: baseURL + "/api/subscriptions/unsubscribe?email=" + url.QueryEscape(recipient),
		Incident:       incident,
		StatusColor:    defaultStatusColor,
	}
	if incident != nil {
		data.Reported = FormatReported(incident.Timestamp)
		data.Status = StatusLabel(incident.Status)
		data.StatusColor = StatusColor(incident.Status)
	}
	return data
}

func render(name string, data templateData) (string, string, error) {
	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, name, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s text template: %w", name, err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, name, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s html template: %w", name, err)
	}
	return text.String(), html.String(), nil
}

// ConfirmationMessage - письмо о подписке на оповещения
func ConfirmationMessage(baseURL, recipient string) (Message, error) {
	text, html, err := render(TemplateConfirmation, newTemplateData(baseURL, recipient, nil))
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateConfirmation,
		To:       recipient,
		Subject:  "Welcome to CityAlert Notifications!",
		Text:     text,
		HTML:     html,
	}, nil
}

// AlertMessage - письмо о новом инциденте
func AlertMessage(baseURL, recipient string, incident *models.Incident) (Message, error) {
	text, html, err := render(TemplateAlert, newTemplateData(baseURL, recipient, incident))
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateAlert,
		To:       recipient,
		Subject:  fmt.Sprintf("CityAlert: New %s Incident Reported", incident.DepartmentClassification),
		Text:     text,
		HTML:     html,
	}, nil
}

// StatusUpdateMessage - письмо о смене статуса инцидента
func StatusUpdateMessage(baseURL, recipient string, incident *models.Incident, oldStatus string) (Message, error) {
	data := newTemplateData(baseURL, recipient, incident)
	data.OldStatus = StatusLabel(oldStatus)
	text, html, err := render(TemplateStatus, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateStatus,
		To:       recipient,
		Subject:  fmt.Sprintf("CityAlert: Incident Status Updated - %s", incident.DepartmentClassification),
		Text:     text,
		HTML:     html,
	}, nil
}
