package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/city_alert/internal/models"
)

func sampleIncident() *models.Incident {
	return &models.Incident{
		ID:                       12,
		Description:              "Water main break <flooding>",
		Location:                 "Elm St & 3rd Ave",
		DepartmentClassification: "UTILITIES,PUBLIC_WORKS",
		Status:                   models.StatusInProgress,
		Timestamp:                time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC),
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Reported", StatusLabel("reported"))
	assert.Equal(t, "In Progress", StatusLabel("in_progress"))
	assert.Equal(t, "Resolved", StatusLabel("resolved"))
	assert.Equal(t, "On Hold", StatusLabel("on_hold"))
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "#ef4444", StatusColor("reported"))
	assert.Equal(t, "#f59e0b", StatusColor("in_progress"))
	assert.Equal(t, "#10b981", StatusColor("resolved"))
	assert.Equal(t, "#6b7280", StatusColor("archived"))
}

func TestFormatReported(t *testing.T) {
	assert.Equal(t, "March 05, 2024 at 02:07 PM", FormatReported(time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)))
}

func TestConfirmationMessage(t *testing.T) {
	msg, err := ConfirmationMessage("https://city.example", "jane@example.com")
	require.NoError(t, err)

	assert.Equal(t, TemplateConfirmation, msg.Template)
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Welcome to CityAlert Notifications!", msg.Subject)
	assert.Contains(t, msg.Text, "https://city.example/public/alerts.html")
	assert.Contains(t, msg.Text, "https://city.example/api/subscriptions/unsubscribe?email=jane%40example.com")
	assert.Contains(t, msg.HTML, "Welcome to CityAlert!")
	assert.Contains(t, msg.HTML, "unsubscribe?email=jane%40example.com")
}

func TestAlertMessage(t *testing.T) {
	msg, err := AlertMessage("https://city.example", "jane@example.com", sampleIncident())
	require.NoError(t, err)

	assert.Equal(t, "CityAlert: New UTILITIES,PUBLIC_WORKS Incident Reported", msg.Subject)
	assert.Contains(t, msg.Text, "Description: Water main break <flooding>")
	assert.Contains(t, msg.Text, "Status: In Progress")
	assert.Contains(t, msg.Text, "Reported: March 05, 2024 at 02:07 PM")
	// HTML экранирует пользовательский текст
	assert.Contains(t, msg.HTML, "Water main break &lt;flooding&gt;")
	assert.Contains(t, msg.HTML, "#f59e0b")
}

func TestStatusUpdateMessage(t *testing.T) {
	incident := sampleIncident()
	incident.Status = models.StatusResolved

	msg, err := StatusUpdateMessage("https://city.example", "jane@example.com", incident, models.StatusReported)
	require.NoError(t, err)

	assert.Equal(t, "CityAlert: Incident Status Updated - UTILITIES,PUBLIC_WORKS", msg.Subject)
	assert.Contains(t, msg.Text, "Status Changed: Reported → Resolved")
	assert.Contains(t, msg.Text, "Originally Reported: March 05, 2024 at 02:07 PM")
	assert.Contains(t, msg.HTML, "#10b981")
	assert.Contains(t, msg.HTML, "line-through;\">Reported</span>")
}
