package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/models"
)

// SendEmail asks the notification actor to deliver one message.
type SendEmail struct {
	Kind  string
	Email Email
}

// Delivery is the reply sent when the request carried a sender.
type Delivery struct {
	Kind string
	Err  error
}

// NotificationActor delivers emails one at a time from its mailbox.
type NotificationActor struct {
	mailer  Mailer
	timeout time.Duration
	logger  *zap.Logger
}

func (a *NotificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *SendEmail:
		sendCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.mailer.Send(sendCtx, msg.Email)
		cancel()

		if err != nil {
			a.logger.Error("Failed to send notification",
				zap.String("kind", msg.Kind),
				zap.String("recipient", msg.Email.ToEmail),
				zap.Error(err))
		} else {
			a.logger.Info("Notification sent",
				zap.String("kind", msg.Kind),
				zap.String("recipient", msg.Email.ToEmail))
		}
		if ctx.Sender() != nil {
			ctx.Respond(&Delivery{Kind: msg.Kind, Err: err})
		}

	case *actor.Started:
		a.logger.Info("Notification actor started")

	case *actor.Stopping:
		a.logger.Info("Notification actor stopping")
	}
}

// Dispatcher implements shop.Notifier by rendering the message and handing it
// to the notification actor. Send never waits for delivery.
type Dispatcher struct {
	system  *actor.ActorSystem
	pid     *actor.PID
	company string
	logger  *zap.Logger
}

func NewDispatcher(mailer Mailer, timeout time.Duration, company string, logger *zap.Logger) (*Dispatcher, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return &NotificationActor{mailer: mailer, timeout: timeout, logger: logger.Named("notification-actor")}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	return &Dispatcher{
		system:  system,
		pid:     pid,
		company: company,
		logger:  logger.Named("notify"),
	}, nil
}

func (d *Dispatcher) SendOrderConfirmation(_ context.Context, order *models.Order, user *models.User) error {
	email, err := confirmationEmail(order, user, d.company)
	if err != nil {
		return err
	}
	d.system.Root.Send(d.pid, &SendEmail{Kind: "order_confirmation", Email: email})
	return nil
}

func (d *Dispatcher) SendOrderCancellation(_ context.Context, order *models.Order, user *models.User) error {
	email, err := cancellationEmail(order, user, d.company)
	if err != nil {
		return err
	}
	d.system.Root.Send(d.pid, &SendEmail{Kind: "order_cancellation", Email: email})
	return nil
}

// Deliver sends email and waits for the actor's reply.
func (d *Dispatcher) Deliver(kind string, email Email, timeout time.Duration) error {
	res, err := d.system.Root.RequestFuture(d.pid, &SendEmail{Kind: kind, Email: email}, timeout).Result()
	if err != nil {
		return fmt.Errorf("notification actor did not reply: %w", err)
	}
	delivery, ok := res.(*Delivery)
	if !ok {
		return fmt.Errorf("unexpected reply %T", res)
	}
	return delivery.Err
}

// Stop drains queued messages before returning.
func (d *Dispatcher) Stop() {
	if err := d.system.Root.PoisonFuture(d.pid).Wait(); err != nil {
		d.logger.Warn("Notification actor did not stop cleanly", zap.Error(err))
	}
}
