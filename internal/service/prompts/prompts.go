package prompts

import (
	_ "embed"
	"strings"
)

// Version - текущая редакция системной инструкции чат-ассистента
const Version = "incident_assistant_v2"

// Acknowledgement - ответ модели, закрепляющий инструкцию перед диалогом пользователя
const Acknowledgement = "Understood. I am ready to assist with incident reporting."

//go:embed incident_assistant_v2.txt
var incidentAssistant string

// IncidentAssistant возвращает системную инструкцию для чата
func IncidentAssistant() string {
	return strings.TrimSpace(incidentAssistant)
}
