package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventticketing/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, every call returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// seed inserts an event directly, bypassing Create's ID assignment.
func (f *fakeEventRepo) seed(e *domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[e.ID] = e
}

// fakeBookingRepo is an in-memory BookingRepository. It shares the event
// repo's store so that seat reservation and release mutate the same event
// rows a real transaction would, under a single lock.
type fakeBookingRepo struct {
	mu     sync.Mutex
	events *fakeEventRepo
	byID   map[string]*domain.Booking
	nextID int
	err    error
}

func newFakeBookingRepo(events *fakeEventRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		events: events,
		byID:   make(map[string]*domain.Booking),
		nextID: 1,
	}
}

func (f *fakeBookingRepo) CreateWithReservation(ctx context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	event, ok := f.events.byID[b.EventID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, existing := range f.byID {
		if existing.UserID == b.UserID && existing.EventID == b.EventID && existing.IsActive() {
			return domain.ErrAlreadyBooked
		}
	}
	if event.Capacity != nil {
		avail := 0
		if event.AvailableSeats != nil {
			avail = *event.AvailableSeats
		}
		if avail < b.Seats {
			return domain.ErrCapacityExceeded
		}
		avail -= b.Seats
		event.AvailableSeats = &avail
	}

	b.ID = fmt.Sprintf("bk-%d", f.nextID)
	f.nextID++
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Booking
	for _, b := range f.byID {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListPendingByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ids := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = true
	}
	var out []*domain.Booking
	for _, b := range f.byID {
		if b.Status == domain.BookingStatusPending && ids[b.EventID] {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) DeleteWithRelease(ctx context.Context, booking *domain.Booking, releaseSeats bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	stored, ok := f.byID[booking.ID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, booking.ID)
	if releaseSeats {
		f.releaseLocked(stored.EventID, stored.Seats)
	}
	return nil
}

func (f *fakeBookingRepo) TransitionStatus(ctx context.Context, booking *domain.Booking, fromStatus, toStatus string, releaseSeats bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	stored, ok := f.byID[booking.ID]
	if !ok || stored.Status != fromStatus {
		return domain.ErrInvalidTransition
	}
	stored.Status = toStatus
	stored.UpdatedAt = time.Now()
	booking.Status = toStatus
	if releaseSeats {
		f.releaseLocked(stored.EventID, stored.Seats)
	}
	return nil
}

func (f *fakeBookingRepo) releaseLocked(eventID string, seats int) {
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	event, ok := f.events.byID[eventID]
	if !ok || event.Capacity == nil {
		return
	}
	avail := 0
	if event.AvailableSeats != nil {
		avail = *event.AvailableSeats
	}
	avail += seats
	if avail > *event.Capacity {
		avail = *event.Capacity
	}
	event.AvailableSeats = &avail
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu           sync.Mutex
	byID         map[string]*domain.User
	byEmail      map[string]*domain.User
	bookedEvents map[string]map[string]bool // userID -> eventID set
	nextID       int
	err          error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:         make(map[string]*domain.User),
		byEmail:      make(map[string]*domain.User),
		bookedEvents: make(map[string]map[string]bool),
		nextID:       1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("u-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) AddBookedEvent(ctx context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.bookedEvents[userID] == nil {
		f.bookedEvents[userID] = make(map[string]bool)
	}
	f.bookedEvents[userID][eventID] = true
	return nil
}

func (f *fakeUserRepo) RemoveBookedEvent(ctx context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.bookedEvents[userID], eventID)
	return nil
}

func (f *fakeUserRepo) ListBookedEventIDs(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for id := range f.bookedEvents[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeUserRepo) hasBookedEvent(userID, eventID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookedEvents[userID][eventID]
}

// fakeReviewRepo records upserts and maintains simple in-memory aggregates
// on the shared event store.
type fakeReviewRepo struct {
	events  *fakeEventRepo
	reviews map[string]*domain.Review // key userID+"/"+eventID
	err     error
}

func newFakeReviewRepo(events *fakeEventRepo) *fakeReviewRepo {
	return &fakeReviewRepo{
		events:  events,
		reviews: make(map[string]*domain.Review),
	}
}

func (f *fakeReviewRepo) Upsert(ctx context.Context, review *domain.Review) error {
	if f.err != nil {
		return f.err
	}
	key := review.UserID + "/" + review.EventID
	f.reviews[key] = review

	sum, count := 0, 0
	for _, r := range f.reviews {
		if r.EventID == review.EventID {
			sum += r.Rating
			count++
		}
	}
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	if e, ok := f.events.byID[review.EventID]; ok {
		e.AverageRating = float64(sum) / float64(count)
		e.RatingCount = count
	}
	return nil
}

func (f *fakeReviewRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Review, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.reviews[userID+"/"+eventID]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

// fakeNotifier records every notification it receives.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []*domain.Notification
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

// fakeEmailService records decision emails by template kind.
type fakeEmailService struct {
	approved []*domain.BookingDecisionEmailData
	rejected []*domain.BookingDecisionEmailData
	err      error
}

func (f *fakeEmailService) SendBookingApproved(ctx context.Context, data *domain.BookingDecisionEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.approved = append(f.approved, data)
	return nil
}

func (f *fakeEmailService) SendBookingRejected(ctx context.Context, data *domain.BookingDecisionEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.rejected = append(f.rejected, data)
	return nil
}

// fakeNotificationRepo is an in-memory NotificationRepository.
type fakeNotificationRepo struct {
	byID   map[string]*domain.Notification
	nextID int
	err    error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		byID:   make(map[string]*domain.Notification),
		nextID: 1,
	}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	n.ID = fmt.Sprintf("nt-%d", f.nextID)
	f.nextID++
	f.byID[n.ID] = n
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n, ok := f.byID[id]; ok {
		return n, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) ListByRecipientID(ctx context.Context, recipientID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Notification
	for _, n := range f.byID {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	n, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.IsRead = true
	return nil
}

// fakePublisher records published notifications.
type fakePublisher struct {
	published []*domain.Notification
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, n)
	return nil
}

// fakeCommentRepo is an in-memory CommentRepository.
type fakeCommentRepo struct {
	byID   map[string]*domain.Comment
	nextID int
	err    error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{
		byID:   make(map[string]*domain.Comment),
		nextID: 1,
	}
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	if f.err != nil {
		return f.err
	}
	c.ID = fmt.Sprintf("cm-%d", f.nextID)
	f.nextID++
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCommentRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Comment, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Comment
	for _, c := range f.byID {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}
