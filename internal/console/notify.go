package console

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// Tone classifies a notice.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
)

// Reserved literals for an action that succeeded while its invitation email was not delivered.
const (
	InvitationEmailFailedMessage       = models.InvitationEmailFailedMessage
	InvitationResendEmailFailedMessage = models.InvitationResendEmailFailedMessage
)

// Notice is the single transient message shown to the operator.
type Notice struct {
	Message  string    `json:"message"`
	Detail   string    `json:"detail,omitempty"`
	Tone     Tone      `json:"tone"`
	IssuedAt time.Time `json:"issued_at"`
}

// Body joins the message and its secondary line.
func (n Notice) Body() string {
	if n.Detail == "" {
		return n.Message
	}
	return n.Message + "\n" + n.Detail
}

// NoticeSink receives every notice as it is issued.
type NoticeSink func(Notice)

// Surface keeps at most one visible notice; issuing a new one replaces the previous.
type Surface struct {
	mu      sync.Mutex
	current *Notice
	sinks   []NoticeSink
	logger  *zap.Logger
	now     func() time.Time
}

// NewSurface constructs a notification surface.
func NewSurface(logger *zap.Logger, sinks ...NoticeSink) *Surface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Surface{sinks: sinks, logger: logger, now: time.Now}
}

// Notify replaces the visible notice. The reserved email-failure literals are always shown with
// warning tone and their detail rendered as a "Reason:" line.
func (s *Surface) Notify(message string, tone Tone, detail ...string) Notice {
	notice := Notice{Message: message, Tone: tone, Detail: strings.TrimSpace(strings.Join(detail, " "))}
	if message == InvitationEmailFailedMessage || message == InvitationResendEmailFailedMessage {
		notice.Tone = ToneWarning
		if notice.Detail != "" {
			notice.Detail = "Reason: " + notice.Detail
		}
	}
	switch notice.Tone {
	case ToneSuccess, ToneWarning, ToneError:
	default:
		notice.Tone = ToneSuccess
	}

	s.mu.Lock()
	notice.IssuedAt = s.now()
	s.current = &notice
	sinks := s.sinks
	s.mu.Unlock()

	s.logger.Debug("notice issued", zap.String("tone", string(notice.Tone)), zap.String("message", notice.Message))
	for _, sink := range sinks {
		sink(notice)
	}
	return notice
}

// Current returns the visible notice, if any.
func (s *Surface) Current() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Notice{}, false
	}
	return *s.current, true
}

// Dismiss hides the visible notice.
func (s *Surface) Dismiss() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
