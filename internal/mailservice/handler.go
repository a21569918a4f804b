package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/blogcontent/internal/common"
	"golang.org/x/exp/rand"
)

func NewMailService(mb common.MessageConsumer, users RecipientLookup, host, username, password, sender string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(host, port, username, password, sender, NewTemplate()),
		users:     users,
		logger:    logger,
		baseDelay: defaultBaseDelay,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// NotifyBlogPublished consumes blog.created events and emails the author of each new post.
func (s *MailService) NotifyBlogPublished() error {
	msgs, err := s.mb.Consume(common.BlogCreatedKey, common.BlogExchange, common.BlogCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handlePublished(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping NotifyBlogPublished due to context cancellation")
				return
			}
		}
	}()

	return nil
}

// handlePublished sends one notification. The message is acked whether or not the email went out.
func (s *MailService) handlePublished(msg amqp.Delivery) bool {
	defer msg.Ack(false)

	var event publishedEvent
	err := json.Unmarshal(msg.Body, &event)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		return false
	}

	user, err := s.users.GetUserByID(s.ctx, event.Author)
	if err != nil {
		s.logger.Error("could not find post author", slog.Int64("author", event.Author), slog.String("error", err.Error()))
		return false
	}

	payload := publishedPayload{
		Username: user.Username,
		Title:    event.Title,
		BlogID:   event.BlogID,
	}

	// using exponential backoff with jitter
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.m.send(user.Email, payload, postPublishedTemplate)
		if err == nil {
			s.logger.Info("publish notification sent", slog.String("email", user.Email))
			return true
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying publish notification", slog.String("email", user.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return false
		}
	}

	s.logger.Error("could not send publish notification", slog.String("email", user.Email), slog.String("error", err.Error()))
	return false
}

// Close stops the consumer and waits for the in-flight message to finish.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
