package mailservice

import (
	"bytes"
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/blogcontent/internal/common"
	"github.com/sushihentaime/blogcontent/internal/userservice"
)

const (
	maxRetries       = 5
	defaultBaseDelay = 500 * time.Millisecond

	postPublishedTemplate = "post_published.html"
)

type MailService struct {
	mb        common.MessageConsumer
	m         Mailer
	users     RecipientLookup
	logger    MailLogger
	baseDelay time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

// RecipientLookup resolves the author of a blog event to an email address.
type RecipientLookup interface {
	GetUserByID(ctx context.Context, id int64) (*userservice.User, error)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

type Template struct {
	parsed map[string]*template.Template
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// publishedEvent is the part of a blog.created event the notifier reads.
type publishedEvent struct {
	BlogID string `json:"blogId"`
	Title  string `json:"title"`
	Author int64  `json:"author"`
}

type publishedPayload struct {
	Username string
	Title    string
	BlogID   string
}
