package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.GameNotificationPublisher = (*rabbitMQPublisher)(nil)

// rabbitMQPublisher публикует игровые уведомления в очередь доставки.
// Сервис доставки (push/SMS) разбирает их на своей стороне.
type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
}

// NewRabbitMQGameNotificationPublisher открывает канал и объявляет очередь.
// Паблишер создает очередь, если она не существует, чтобы не зависеть от
// порядка запуска сервисов. Параметры должны совпадать с консьюмером.
func NewRabbitMQGameNotificationPublisher(conn *amqp.Connection, queueName string) (interfaces.GameNotificationPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("game notification publisher: не удалось открыть канал: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("game notification publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}

	return &rabbitMQPublisher{channel: ch, queueName: queueName}, nil
}

// PublishGameNotification implements interfaces.GameNotificationPublisher.
func (p *rabbitMQPublisher) PublishGameNotification(ctx context.Context, payload models.GameNotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal game notification: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(publishCtx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish game notification to '%s': %w", p.queueName, err)
	}
	return nil
}
