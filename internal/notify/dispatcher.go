package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/models"
)

// Sender - транспорт писем
type Sender interface {
	Send(ctx context.Context, msg Message) bool
}

// SubscriberLister - источник активных подписчиков для рассылки
type SubscriberLister interface {
	ListActive(ctx context.Context) ([]*models.UserSubscription, error)
}

// Dispatcher собирает письма из шаблонов и рассылает их.
// department_filter подписчика при рассылке не учитывается.
type Dispatcher struct {
	sender      Sender
	subscribers SubscriberLister
	baseURL     string
	logger      *logrus.Logger
}

func NewDispatcher(sender Sender, subscribers SubscriberLister, baseURL string, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		subscribers: subscribers,
		baseURL:     baseURL,
		logger:      logger,
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message, err error) bool {
	if err != nil {
		d.logger.WithError(err).WithField("template", msg.Template).Error("Failed to render email")
		return false
	}
	return d.sender.Send(ctx, msg)
}

// SendConfirmation отправляет подтверждение подписки
func (d *Dispatcher) SendConfirmation(ctx context.Context, email string) bool {
	msg, err := ConfirmationMessage(d.baseURL, email)
	return d.deliver(ctx, msg, err)
}

// SendIncidentAlert отправляет оповещение о новом инциденте
func (d *Dispatcher) SendIncidentAlert(ctx context.Context, email string, incident *models.Incident) bool {
	msg, err := AlertMessage(d.baseURL, email, incident)
	return d.deliver(ctx, msg, err)
}

// SendStatusUpdate отправляет уведомление о смене статуса
func (d *Dispatcher) SendStatusUpdate(ctx context.Context, email string, incident *models.Incident, oldStatus string) bool {
	msg, err := StatusUpdateMessage(d.baseURL, email, incident, oldStatus)
	return d.deliver(ctx, msg, err)
}

// NotifyNewIncident рассылает оповещение всем активным подписчикам.
// Письма уходят последовательно; возвращает число успешных и неудачных отправок.
func (d *Dispatcher) NotifyNewIncident(ctx context.Context, incident *models.Incident) (int, int) {
	return d.fanOut(ctx, "NotifyNewIncident", incident.ID, func(email string) bool {
		return d.SendIncidentAlert(ctx, email, incident)
	})
}

// NotifyStatusChange рассылает уведомление о смене статуса всем активным подписчикам
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, incident *models.Incident, oldStatus string) (int, int) {
	return d.fanOut(ctx, "NotifyStatusChange", incident.ID, func(email string) bool {
		return d.SendStatusUpdate(ctx, email, incident, oldStatus)
	})
}

func (d *Dispatcher) fanOut(ctx context.Context, method string, incidentID int64, send func(email string) bool) (int, int) {
	log := d.logger.WithFields(logrus.Fields{
		"component":   "notify",
		"method":      method,
		"incident_id": incidentID,
	})

	subscribers, err := d.subscribers.ListActive(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load subscribers")
		return 0, 0
	}

	sent, failed := 0, 0
	for _, s := range subscribers {
		if ctx.Err() != nil {
			failed += len(subscribers) - sent - failed
			break
		}
		if send(s.Email) {
			sent++
		} else {
			failed++
		}
	}

	log.WithFields(logrus.Fields{
		"subscribers": len(subscribers),
		"sent":        sent,
		"failed":      failed,
	}).Info("Subscriber notification finished")
	return sent, failed
}
