// Package notify implements the scheduler's notification sink on top of the
// Kafka notifications topic. Delivery to the actual chat transport happens in
// the worker, which consumes the topic.
package notify

import (
	"context"
	"strconv"

	"github.com/Domenick1991/showbooking/internal/kafka"
	"github.com/Domenick1991/showbooking/internal/reminder"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Notifier struct {
	producer Producer
	topic    string
	channel  string
}

// NewNotifier returns a sink that publishes every notification to the given
// topic, addressed at the configured delivery channel.
func NewNotifier(producer Producer, topic, channel string) *Notifier {
	return &Notifier{producer: producer, topic: topic, channel: channel}
}

func (n *Notifier) Send(ctx context.Context, notification reminder.Notification) error {
	event := kafka.ReminderEvent{
		ReservationID: notification.ReservationID,
		UserID:        notification.UserID,
		Channel:       n.channel,
		Text:          notification.Text,
		ShowingName:   notification.ShowingName,
		StartsAt:      notification.StartsAt,
		LeadMinutes:   int(notification.Lead.Minutes()),
	}
	return n.producer.Publish(ctx, n.topic, strconv.FormatInt(notification.ReservationID, 10), event)
}

var _ reminder.Sink = (*Notifier)(nil)
