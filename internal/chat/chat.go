// Package chat is the boundary to the external group-chat transport. The
// real delivery service lives outside this repo; Sender stands in for it by
// writing the outbound message to stdout.
package chat

import (
	"context"
	"fmt"

	"github.com/Domenick1991/showbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReminderEvent) error {
	fmt.Printf("deliver to %s: @%s %s\n", event.Channel, event.UserID, event.Text)
	return nil
}
