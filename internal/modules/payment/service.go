package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/events"
	"vaccinebooking/internal/lock"
	"vaccinebooking/internal/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const placedMessage = "Your order is placed"

var minorUnits = decimal.NewFromInt(100)

type Options struct {
	Currency       string
	CallbackURL    string
	CallbackMethod string
}

type Dependencies struct {
	Bookings bookingStore
	Links    linkStore
	Gateway  gateway
	Reminder confirmationSender
	Debiter  inventoryDebiter
	Locker   lock.Locker
	Events   events.Publisher
	Log      logrus.FieldLogger
}

type Service struct {
	bookings bookingStore
	links    linkStore
	gateway  gateway
	reminder confirmationSender
	debiter  inventoryDebiter
	locker   lock.Locker
	events   events.Publisher
	log      logrus.FieldLogger
	opts     Options
	now      func() time.Time
}

func NewService(d Dependencies, opts Options) *Service {
	if d.Locker == nil {
		d.Locker = lock.NoopLocker{}
	}
	if d.Events == nil {
		d.Events = events.NoopPublisher{}
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &Service{
		bookings: d.Bookings,
		links:    d.Links,
		gateway:  d.Gateway,
		reminder: d.Reminder,
		debiter:  d.Debiter,
		locker:   d.Locker,
		events:   d.Events,
		log:      d.Log,
		opts:     opts,
		now:      time.Now,
	}
}

// CreateLink issues a gateway payment link for the booking. An unpaid link
// already issued for the same amount is returned instead of a new one.
func (s *Service) CreateLink(ctx context.Context, bookingID int64) (*domain.PaymentLink, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.IsPaid() {
		return nil, apperror.Validation("booking already paid")
	}

	amount := minorAmount(b)
	if amount <= 0 {
		return nil, apperror.Validation("booking total must be greater than zero")
	}
	ref := b.ReferenceID()
	log := s.log.WithFields(logrus.Fields{"booking_id": b.ID, "reference_id": ref})

	existing, found, err := s.links.LatestByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if found && existing.Status == domain.PaymentLinkCreated && existing.Amount == amount {
		log.WithField("link_id", existing.LinkID).Info("reusing issued payment link")
		return existing.Link(), nil
	}

	req := domain.PaymentLinkRequest{
		Amount:         amount,
		Currency:       s.opts.Currency,
		ReferenceID:    ref,
		Description:    fmt.Sprintf("Vaccine booking #%d", b.ID),
		NotifySMS:      true,
		NotifyEmail:    true,
		CallbackURL:    s.opts.CallbackURL,
		CallbackMethod: s.opts.CallbackMethod,
		Notes: map[string]string{
			"order_id":     strconv.FormatInt(b.ID, 10),
			"booking_kind": string(b.Kind),
		},
	}
	link, err := s.gateway.CreatePaymentLink(ctx, req)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to create payment link")
	}
	if link.ReferenceID == "" {
		link.ReferenceID = ref
	}

	rec := &domain.PaymentLinkRecord{
		BookingID:   b.ID,
		LinkID:      link.ID,
		ReferenceID: ref,
		ShortURL:    link.ShortURL,
		Amount:      amount,
		Currency:    req.Currency,
		Status:      domain.PaymentLinkCreated,
	}
	if err := s.links.Create(ctx, rec); err != nil {
		log.WithError(err).Error("payment link issued but not recorded")
	}
	log.WithFields(logrus.Fields{"link_id": link.ID, "amount": amount}).Info("payment link created")
	return link, nil
}

// Reconcile finalizes the booking a settled payment refers to. The booking is
// claimed with a conditional update before any side effect, so replays and
// concurrent callbacks return the stored result without decrementing or
// notifying again.
func (s *Service) Reconcile(ctx context.Context, paymentID, referenceID string) (*domain.ReconciliationResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, apperror.Validation("payment_id is required")
	}

	payment, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch payment")
	}
	if !payment.Settled() {
		return nil, apperror.PaymentNotCaptured(fmt.Sprintf("payment %s is %s", paymentID, payment.Status))
	}

	ref, err := ParseReference(referenceID)
	if err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{
		"booking_id":   ref.BookingID,
		"reference_id": ref.String(),
		"payment_id":   paymentID,
	})

	release, err := s.locker.Acquire(ctx, "booking:"+strconv.FormatInt(ref.BookingID, 10))
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.loadBooking(ctx, ref.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Kind != ref.Kind {
		return nil, apperror.Validation(fmt.Sprintf("reference %s does not match %s booking %d", ref, b.Kind, b.ID))
	}
	if err := s.checkAmount(payment, b); err != nil {
		log.WithFields(logrus.Fields{
			"paid_amount":   payment.Amount,
			"paid_currency": payment.Currency,
		}).Warn("payment does not cover booking")
		return nil, err
	}
	if b.IsPaid() {
		log.Info("payment already reconciled")
		return result(b), nil
	}

	paidAt := s.now().UTC()
	changed, err := s.bookings.MarkPaymentCompleted(ctx, b.ID, paymentID, paidAt)
	if err != nil {
		return nil, err
	}
	if !changed {
		log.Info("booking finalized concurrently")
		b, err = s.loadBooking(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		return result(b), nil
	}

	b.Status = domain.BookingPlaced
	b.PaymentStatus = domain.PaymentCompleted
	b.PaymentID = &paymentID
	b.PaidAt = &paidAt

	s.finalize(ctx, b, log)
	return result(b), nil
}

// finalize runs the side effects of a successful claim. None of them can
// undo the claim, so failures are only logged.
func (s *Service) finalize(ctx context.Context, b *domain.Booking, log *logrus.Entry) {
	if _, err := s.links.MarkPaidIdempotent(ctx, b.ReferenceID(), *b.PaymentID, *b.PaidAt); err != nil {
		log.WithError(err).Warn("failed to mark payment link paid")
	}

	debited, failed := s.debiter.DebitPending(ctx, b)

	if err := s.reminder.SendConfirmation(ctx, b.ID, b.IsCartOrder()); err != nil {
		log.WithError(err).Warn("failed to send booking confirmation")
	}
	if err := s.events.Publish(ctx, events.NewBookingEvent(events.TypeBookingPlaced, b, *b.PaidAt)); err != nil {
		log.WithError(err).Warn("failed to publish booking.placed")
	}

	log.WithFields(logrus.Fields{
		"kind":            b.Kind,
		"items_processed": itemsProcessed(b),
		"debited":         debited,
		"debit_failed":    failed,
	}).Info("booking placed")
}

// checkAmount ties the gateway payment to the booking: the captured amount
// and currency must equal what a payment link for the booking would charge.
func (s *Service) checkAmount(p *domain.GatewayPayment, b *domain.Booking) error {
	want := minorAmount(b)
	if p.Amount != want || !strings.EqualFold(p.Currency, s.opts.Currency) {
		return apperror.Validation(fmt.Sprintf("payment %s of %d %s does not match booking %s total of %d %s",
			p.ID, p.Amount, p.Currency, b.ReferenceID(), want, s.opts.Currency))
	}
	return nil
}

func minorAmount(b *domain.Booking) int64 {
	return b.TotalCost.Mul(minorUnits).Round(0).IntPart()
}

func (s *Service) loadBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, found, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(fmt.Sprintf("booking %d does not exist", id))
	}
	return b, nil
}

func result(b *domain.Booking) *domain.ReconciliationResult {
	res := &domain.ReconciliationResult{
		Message:        placedMessage,
		BookingID:      b.ID,
		ReferenceID:    b.ReferenceID(),
		Kind:           b.Kind,
		PaymentStatus:  b.PaymentStatus,
		Status:         b.Status,
		ItemsProcessed: itemsProcessed(b),
		TotalCost:      b.TotalCost,
	}
	if b.PaymentID != nil {
		res.PaymentID = *b.PaymentID
	}
	return res
}

func itemsProcessed(b *domain.Booking) int {
	if b.IsCartOrder() {
		return len(b.Items)
	}
	return 1
}
