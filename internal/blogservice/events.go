package blogservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sushihentaime/blogcontent/internal/common"
)

const publishTimeout = 5 * time.Second

// BlogEvent is the payload published on the blog exchange after a committed mutation.
type BlogEvent struct {
	BlogID     uuid.UUID `json:"blogId"`
	Title      string    `json:"title,omitempty"`
	Author     int64     `json:"author"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publish sends the event without failing the caller: the mutation it describes is already committed.
func (s *BlogService) publish(ctx context.Context, key common.BindingKey, event BlogEvent) {
	if s.mb == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("could not marshal blog event", slog.String("key", string(key)), slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = s.mb.Publish(ctx, body, key, common.BlogExchange)
	if err != nil {
		s.logger.Error("could not publish blog event", slog.String("key", string(key)), slog.String("blog_id", event.BlogID.String()), slog.String("error", err.Error()))
	}
}
