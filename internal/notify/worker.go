package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

type Consumer interface {
	Consume(ctx context.Context, handle func(ctx context.Context, body []byte) error) error
}

// Worker drains the notification queue.
type Worker struct {
	consumer Consumer
	sender   Sender
	appURL   string
}

func NewWorker(consumer Consumer, sender Sender, appURL string) *Worker {
	return &Worker{consumer: consumer, sender: sender, appURL: appURL}
}

func (w *Worker) Run(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Str("event", "notification_worker_start").Msg("notification worker started")
	return w.consumer.Consume(ctx, w.Handle)
}

func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("decode job: %w", err)
	}
	msg, err := Render(job, w.appURL)
	if err != nil {
		return err
	}
	if err := w.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s to %s: %w", job.Kind, job.To, err)
	}
	zerolog.Ctx(ctx).Debug().Str("event", "notification_sent").Str("kind", string(job.Kind)).Msg("notification sent")
	return nil
}
