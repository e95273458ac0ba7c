package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/city_alert/internal/models"
)

type fakeSender struct {
	messages []Message
	fail     map[string]bool
}

func (f *fakeSender) Send(_ context.Context, msg Message) bool {
	f.messages = append(f.messages, msg)
	return !f.fail[msg.To]
}

type fakeSubscribers struct {
	subs []*models.UserSubscription
	err  error
}

func (f *fakeSubscribers) ListActive(context.Context) ([]*models.UserSubscription, error) {
	return f.subs, f.err
}

func TestDispatcher_SendConfirmation(t *testing.T) {
	logger, _ := newTestLogger()
	sender := &fakeSender{}
	d := NewDispatcher(sender, &fakeSubscribers{}, "https://city.example", logger)

	ok := d.SendConfirmation(context.Background(), "jane@example.com")

	assert.True(t, ok)
	require.Len(t, sender.messages, 1)
	assert.Equal(t, TemplateConfirmation, sender.messages[0].Template)
}

func TestDispatcher_NotifyNewIncident(t *testing.T) {
	logger, _ := newTestLogger()
	sender := &fakeSender{fail: map[string]bool{"bad@example.com": true}}
	subs := &fakeSubscribers{subs: []*models.UserSubscription{
		{Email: "a@example.com", IsActive: true},
		{Email: "bad@example.com", IsActive: true},
		{Email: "c@example.com", IsActive: true},
	}}
	d := NewDispatcher(sender, subs, "https://city.example", logger)

	sent, failed := d.NotifyNewIncident(context.Background(), sampleIncident())

	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
	require.Len(t, sender.messages, 3)
	for _, m := range sender.messages {
		assert.Equal(t, TemplateAlert, m.Template)
	}
}

func TestDispatcher_NotifyStatusChange(t *testing.T) {
	logger, _ := newTestLogger()
	sender := &fakeSender{}
	subs := &fakeSubscribers{subs: []*models.UserSubscription{{Email: "a@example.com", IsActive: true}}}
	d := NewDispatcher(sender, subs, "", logger)

	sent, failed := d.NotifyStatusChange(context.Background(), sampleIncident(), models.StatusReported)

	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)
	assert.Equal(t, TemplateStatus, sender.messages[0].Template)
	assert.Contains(t, sender.messages[0].Text, "Reported → In Progress")
}

func TestDispatcher_SubscriberLookupFailure(t *testing.T) {
	logger, buf := newTestLogger()
	sender := &fakeSender{}
	d := NewDispatcher(sender, &fakeSubscribers{err: errors.New("db down")}, "", logger)

	sent, failed := d.NotifyNewIncident(context.Background(), sampleIncident())

	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Empty(t, sender.messages)
	assert.Contains(t, buf.String(), "Failed to load subscribers")
}

func TestDispatcher_StopsOnCancelledContext(t *testing.T) {
	logger, _ := newTestLogger()
	sender := &fakeSender{}
	subs := &fakeSubscribers{subs: []*models.UserSubscription{{Email: "a@example.com"}, {Email: "b@example.com"}}}
	d := NewDispatcher(sender, subs, "", logger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, failed := d.NotifyNewIncident(ctx, sampleIncident())

	assert.Zero(t, sent)
	assert.Equal(t, 2, failed)
	assert.Empty(t, sender.messages)
}
