package app

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"ayurveda_resorts/internal/domain"
)

const defaultInsertTimeout = 10 * time.Second

// Confirmation is what a successful submission hands back to the visitor.
type Confirmation struct {
	State       ConfiguratorState    `json:"state"`
	WhatsAppURL string               `json:"whatsappUrl"`
	Booking     domain.BookingRecord `json:"booking"`
}

// BookingService finishes a configurator flow: it validates the contact
// form, records the booking in the background and builds the outbound
// message link.
type BookingService struct {
	sink     domain.BookingSink
	phone    string
	timeout  time.Duration
	validate *validator.Validate
	now      func() time.Time

	wg sync.WaitGroup
}

func NewBookingService(sink domain.BookingSink, contactPhone string) *BookingService {
	return &BookingService{
		sink:     sink,
		phone:    digitsOnly(contactPhone),
		timeout:  defaultInsertTimeout,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Submit moves cfg through Submitting to Success. Store failures never
// reach the caller.
func (s *BookingService) Submit(ctx context.Context, cfg *Configurator, contact domain.Contact) (Confirmation, error) {
	if cfg.State() >= StateSubmitting {
		return Confirmation{}, domain.ErrAlreadySubmitted
	}
	if !cfg.CanSubmit() {
		return Confirmation{}, domain.ErrNoPlanSelected
	}
	if err := s.validateContact(contact); err != nil {
		return Confirmation{}, err
	}
	rec, err := cfg.begin(trimContact(contact), s.now())
	if err != nil {
		return Confirmation{}, err
	}

	s.record(ctx, rec)

	link := MessageURL(s.phone, rec)
	cfg.succeed(link)
	return Confirmation{State: cfg.State(), WhatsAppURL: link, Booking: rec}, nil
}

// Drain blocks until background inserts finish or ctx is done.
func (s *BookingService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *BookingService) record(parent context.Context, rec domain.BookingRecord) {
	if s.sink == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
		defer cancel()
		if err := s.sink.InsertBooking(ctx, rec); err != nil {
			log.Error().Err(err).
				Str("resort", rec.ResortName).
				Str("plan", rec.Plan).
				Msg("booking insert failed")
		}
	}()
}

func (s *BookingService) validateContact(c domain.Contact) error {
	err := s.validate.Struct(trimContact(c))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := domain.NewValidationError()
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			ve.Add(field, "is required")
		case "email":
			ve.Add(field, "must be a valid email address")
		case "max":
			ve.Add(field, "is too long")
		default:
			ve.Add(field, "is invalid")
		}
	}
	return ve
}

// MessageURL builds the wa.me deep link carrying the whole booking.
func MessageURL(phone string, rec domain.BookingRecord) string {
	lines := []string{
		"مرحباً، أرغب بحجز باقة جديدة:",
		"📋 الباقة: " + rec.Plan,
		"⏳ المدة: " + rec.Duration,
		"🛏 نوع الغرفة: " + rec.RoomType.Label(),
		"💰 السعر التقديري: " + rec.Price.Display(),
		"👤 الاسم: " + rec.Name,
		"📱 الجوال: " + rec.Phone,
		"📧 الإيميل: " + rec.Email,
		"📅 التاريخ المقترح: " + rec.Date,
	}
	text := strings.Join(lines, "\n")
	return "https://wa.me/" + phone + "?text=" + escapeMessage(text)
}

// escapeMessage percent-encodes like encodeURIComponent for the characters
// that matter here: spaces become %20, newlines %0A.
func escapeMessage(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func trimContact(c domain.Contact) domain.Contact {
	return domain.Contact{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
		Date:  strings.TrimSpace(c.Date),
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
