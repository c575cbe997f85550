package contact

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/models"
)

// Store persists contact messages.
type Store interface {
	SaveContactMessage(context.Context, *models.ContactMessage) (int64, error)
}

// Verifier checks the reCAPTCHA token of a submission.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Limiter counts submissions per client.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Notifier tells the site owner about a stored message.
type Notifier interface {
	NotifyContact(ctx context.Context, msg models.ContactMessage) error
}

// Recorder counts submissions and notifications.
type Recorder interface {
	RecordContact(result string)
	RecordNotification(channel, result string)
}

type Log interface {
	Info(string, ...zap.Field)
	Warn(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Service runs the contact form workflow.
type Service struct {
	store    Store
	verifier Verifier
	limiter  Limiter
	notifier Notifier
	channel  string
	trusted  []netip.Prefix
	metrics  Recorder
	validate *validator.Validate
	now      func() time.Time
	log      Log
}

type Option func(*Service)

// WithLimiter rejects clients that exceed the submission rate.
func WithLimiter(l Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithNotifier sends notifications through n. channel labels them in logs and metrics.
func WithNotifier(n Notifier, channel string) Option {
	return func(s *Service) {
		s.notifier = n
		s.channel = channel
	}
}

// WithTrustedProxies lets connections from these networks name the client
// in X-Forwarded-For or Client-IP for rate limiting.
func WithTrustedProxies(proxies []netip.Prefix) Option {
	return func(s *Service) { s.trusted = proxies }
}

func WithMetrics(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, verifier Verifier, log Log, opts ...Option) *Service {
	s := &Service{
		store:    store,
		verifier: verifier,
		metrics:  nopRecorder{},
		validate: validator.New(),
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates, stores and announces one contact form submission.
// Rejections are returned as *Error.
func (s *Service) Submit(ctx context.Context, req models.ContactRequest, client Client) (*models.ContactMessage, error) {
	msg, err := s.submit(ctx, req, client)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			s.metrics.RecordContact(resultLabel(cerr.Status))
		}
		return nil, err
	}
	s.metrics.RecordContact("ok")
	return msg, nil
}

func (s *Service) submit(ctx context.Context, req models.ContactRequest, client Client) (*models.ContactMessage, error) {
	req = trimRequest(req)
	if err := s.validate.Struct(req); err != nil {
		return nil, badRequest(MsgRequired)
	}

	req = sanitizeRequest(req)
	if err := s.validate.Var(req.Email, "email"); err != nil {
		return nil, badRequest(MsgInvalidEmail)
	}

	ip := client.IP()
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, client.RateKey(s.trusted))
		switch {
		case err != nil:
			s.log.Warn("rate limiter unavailable", zap.Error(err))
		case !ok:
			return nil, &Error{Status: http.StatusTooManyRequests, Message: MsgTooManyRequests}
		}
	}

	if s.verifier == nil {
		return nil, badRequest(MsgSecurityFailed)
	}
	human, err := s.verifier.Verify(ctx, req.RecaptchaToken, client.RemoteIP())
	if err != nil {
		s.log.Error("recaptcha verification failed", zap.Error(err))
		return nil, &Error{Status: http.StatusBadRequest, Message: MsgSecurityFailed, Err: err}
	}
	if !human {
		return nil, badRequest(MsgSecurityFailed)
	}

	if s.store == nil {
		return nil, internal(MsgProcessing, errors.New("no message store"))
	}
	msg := &models.ContactMessage{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		IPAddress: ip,
		IsRead:    false,
		CreatedAt: s.now(),
	}
	id, err := s.store.SaveContactMessage(ctx, msg)
	if err != nil {
		s.log.Error("failed to save contact message", zap.Error(err))
		return nil, internal(MsgSaveFailed, err)
	}
	msg.ID = id

	s.notify(context.WithoutCancel(ctx), *msg)
	return msg, nil
}

// notify only logs failures; the message is already stored.
func (s *Service) notify(ctx context.Context, msg models.ContactMessage) {
	if s.notifier == nil {
		s.log.Info("contact notifications are disabled", zap.String("message_id", models.FormatID(msg.ID)))
		return
	}
	if err := s.notifier.NotifyContact(ctx, msg); err != nil {
		s.metrics.RecordNotification(s.channel, "error")
		s.log.Error("failed to send notification for message ID: "+models.FormatID(msg.ID),
			zap.String("channel", s.channel), zap.Error(err))
		return
	}
	s.metrics.RecordNotification(s.channel, "ok")
}

func resultLabel(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusBadRequest:
		return "rejected"
	}
	return "error"
}

type nopRecorder struct{}

func (nopRecorder) RecordContact(string)              {}
func (nopRecorder) RecordNotification(string, string) {}
