package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/events"
	"vaccinebooking/internal/pkg/apperror"
	"vaccinebooking/internal/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/ttacon/libphonenumber"
	"golang.org/x/sync/errgroup"
)

const (
	notAvailable        = "N/A"
	enrichmentFanOut    = 8
	singleFailedMessage = "Failed to process booking"
	cartFailedMessage   = "Failed to create cart booking"
)

type Dependencies struct {
	Store       BookingStore
	Inventory   InventoryClient
	Identity    IdentityClient
	Names       VaccineNameLookup
	Events      events.Publisher
	PhoneRegion string
	Log         logrus.FieldLogger
}

type Service struct {
	store       BookingStore
	inventory   InventoryClient
	identity    IdentityClient
	names       VaccineNameLookup
	allocator   *Allocator
	debiter     *InventoryDebiter
	events      events.Publisher
	phoneRegion string
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewService(d Dependencies) *Service {
	pub := d.Events
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Service{
		store:       d.Store,
		inventory:   d.Inventory,
		identity:    d.Identity,
		names:       d.Names,
		allocator:   NewAllocator(d.Inventory),
		debiter:     NewInventoryDebiter(d.Inventory, d.Store, d.Log),
		events:      pub,
		phoneRegion: d.PhoneRegion,
		log:         d.Log,
		now:         time.Now,
	}
}

// Debiter exposes the inventory debiter so payment finalization can heal
// batches the creation step failed to decrement.
func (s *Service) Debiter() *InventoryDebiter {
	return s.debiter
}

func (s *Service) CreateSingleBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation(validator.Describe(errs))
	}
	b, err := s.create(ctx, req.UserID, domain.KindSingle, []CartItem{{VaccineID: req.VaccineID, NoOfDoses: req.NoOfDoses}})
	if err != nil {
		return nil, apperror.Wrap(err, singleFailedMessage)
	}
	return b, nil
}

// CreateCartBooking allocates every line in request order. Any failing line
// fails the whole cart before anything is stored.
func (s *Service) CreateCartBooking(ctx context.Context, req CreateCartBookingRequest) (*domain.Booking, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Validation("cart must contain at least one item")
	}
	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.Validation(validator.Describe(errs))
	}
	b, err := s.create(ctx, req.UserID, domain.KindCart, req.Items)
	if err != nil {
		return nil, apperror.Wrap(err, cartFailedMessage)
	}
	return b, nil
}

func (s *Service) create(ctx context.Context, userID int64, kind domain.BookingKind, lines []CartItem) (*domain.Booking, error) {
	if _, err := s.identity.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	items := make([]domain.BookingItem, 0, len(lines))
	for _, line := range lines {
		item, err := s.priceLine(ctx, line)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	b := domain.NewBooking(userID, kind, items)
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"booking_id": b.ID, "kind": b.Kind, "user_id": b.UserID})
	debited, failed := s.debiter.DebitPending(ctx, b)
	log.WithFields(logrus.Fields{"debited": debited, "failed": failed, "total_cost": b.TotalCost.String()}).
		Info("booking created")

	if err := s.events.Publish(ctx, events.NewBookingEvent(events.TypeBookingCreated, b, s.now())); err != nil {
		log.WithError(err).Warn("failed to publish booking.created")
	}
	return b, nil
}

// priceLine runs the nominal quantity check and then the batch walk. The
// nominal check only rejects early; the batch walk decides.
func (s *Service) priceLine(ctx context.Context, line CartItem) (*domain.BookingItem, error) {
	vaccine, err := s.inventory.GetVaccine(ctx, line.VaccineID)
	if err != nil {
		return nil, err
	}
	if line.NoOfDoses > vaccine.Quantity {
		return nil, apperror.InsufficientStock("Insufficient Stock",
			fmt.Sprintf("Not enough quantity for %s. Available: %d, Requested: %d", vaccine.Name, vaccine.Quantity, line.NoOfDoses))
	}

	alloc, err := s.allocator.Allocate(ctx, line.VaccineID, line.NoOfDoses)
	if err != nil {
		return nil, err
	}
	return &domain.BookingItem{
		VaccineID:   line.VaccineID,
		VaccineName: vaccine.Name,
		NoOfDoses:   line.NoOfDoses,
		ItemCost:    alloc.TotalCost,
		Batches:     alloc.ConsumedBatches,
	}, nil
}

// GetAllBookingsWithVaccineDetails lists every booking with a display name.
// A failed name lookup degrades to the stored name or N/A, never to an error.
func (s *Service) GetAllBookingsWithVaccineDetails(ctx context.Context) ([]BookingDetails, error) {
	bookings, err := s.store.FindAllBookings(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BookingDetails, len(bookings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichmentFanOut)
	for i, b := range bookings {
		i, b := i, b
		out[i] = toDetails(b)
		if b.IsCartOrder() {
			out[i].VaccineName = b.VaccineNames()
			continue
		}
		g.Go(func() error {
			out[i].VaccineName = s.resolveName(gctx, b)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (s *Service) resolveName(ctx context.Context, b *domain.Booking) string {
	name, err := s.names.Name(ctx, b.PrimaryVaccineID)
	if err == nil && name != "" {
		return name
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": b.ID,
			"vaccine_id": b.PrimaryVaccineID,
		}).Warn("vaccine fetch failed")
	}
	if len(b.Items) > 0 && b.Items[0].VaccineName != "" {
		return b.Items[0].VaccineName
	}
	return notAvailable
}

func toDetails(b *domain.Booking) BookingDetails {
	d := BookingDetails{
		ID:            b.ID,
		UserID:        b.UserID,
		VaccineID:     b.PrimaryVaccineID,
		NoOfDoses:     b.TotalNoOfDoses,
		TotalCost:     b.TotalCost,
		Status:        b.Status,
		Kind:          b.Kind,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
		CartItems:     []domain.BookingItem{},
	}
	if b.IsCartOrder() {
		d.CartItems = b.Items
	}
	return d
}

// FindOrderByID returns the booking with its owner's contact data. The
// booking is still returned when the identity lookup fails.
func (s *Service) FindOrderByID(ctx context.Context, id int64) (*OrderDetails, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	od := &OrderDetails{Booking: b, CartItems: []domain.BookingItem{}}
	if b.IsCartOrder() {
		od.CartItems = b.Items
	}

	user, err := s.identity.GetUser(ctx, b.UserID)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": b.ID,
			"user_id":    b.UserID,
		}).Warn("failed to fetch user data")
		return od, nil
	}
	od.User = &domain.UserContact{
		Email:   user.Email,
		PhoneNo: s.normalizePhone(user.MobileNumber),
	}
	return od, nil
}

// normalizePhone formats the number as E.164. Numbers the parser rejects are
// returned as given.
func (s *Service) normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, s.phoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	if id <= 0 {
		return nil, apperror.Validation("booking id must be a positive integer")
	}
	b, found, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(fmt.Sprintf("booking %d does not exist", id))
	}
	return b, nil
}

func (s *Service) GetBookingsByUser(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	if userID <= 0 {
		return nil, apperror.Validation("user id must be a positive integer")
	}
	return s.store.FindByUser(ctx, userID)
}

func (s *Service) GetBookingsByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.Validation("email must not be empty")
	}
	user, err := s.identity.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to resolve user")
	}
	return s.store.FindByUser(ctx, user.ID)
}
