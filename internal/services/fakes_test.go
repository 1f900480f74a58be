package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"tricy/internal/models"
	"tricy/internal/utils"

	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory stand-in for the graph, shared by the fake
// repositories below so cross-entity lookups behave like the real store.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	drivers       map[string]*models.Driver
	bookings      map[string]*models.Booking
	accepted      map[string][]string
	transactions  map[string]*models.Transaction
	notifications map[string]*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]*models.User),
		drivers:       make(map[string]*models.Driver),
		bookings:      make(map[string]*models.Booking),
		accepted:      make(map[string][]string),
		transactions:  make(map[string]*models.Transaction),
		notifications: make(map[string]*models.Notification),
	}
}

func (s *memStore) addUser(id, phone string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &models.User{
		UserID:      id,
		Name:        "User " + id,
		Email:       id + "@example.com",
		PhoneNumber: phone,
		Role:        models.UserRolePassenger,
		CreatedAt:   time.Now().UTC(),
	}
	s.users[id] = user
	return user
}

func copyBooking(b *models.Booking) *models.Booking {
	c := *b
	return &c
}

type fakeBookingRepo struct {
	*memStore
	// completeFailures makes the next n Complete calls fail as unavailable.
	completeFailures int
	completeCalls    int
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[booking.UserID]; !ok {
		return nil, utils.NotFoundError("user")
	}
	r.bookings[booking.BookingID] = copyBooking(booking)
	return copyBooking(booking), nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, utils.NotFoundError("booking")
	}
	return copyBooking(b), nil
}

func (r *fakeBookingRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Booking, error) {
	all, _ := r.filter(func(*models.Booking) bool { return true })
	if params.Skip >= len(all) {
		return []*models.Booking{}, nil
	}
	end := params.Skip + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[params.Skip:end], nil
}

func (r *fakeBookingRepo) ListByStatus(ctx context.Context, status models.BookingStatus) ([]*models.Booking, error) {
	return r.filter(func(b *models.Booking) bool { return b.Status == status })
}

func (r *fakeBookingRepo) ListByDriver(ctx context.Context, driverID string) ([]*models.Booking, error) {
	r.mu.Lock()
	accepted := make(map[string]bool)
	for bookingID, drivers := range r.accepted {
		for _, d := range drivers {
			if d == driverID {
				accepted[bookingID] = true
			}
		}
	}
	r.mu.Unlock()
	return r.filter(func(b *models.Booking) bool { return accepted[b.BookingID] })
}

func (r *fakeBookingRepo) filter(keep func(*models.Booking) bool) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeBookingRepo) Assign(ctx context.Context, bookingID, driverID string, assignedAt time.Time) (*models.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, false, utils.NotFoundError("booking")
	}
	if err := models.CanAssign(b.Status, r.accepted[bookingID], driverID); err != nil {
		return nil, false, err
	}
	if b.Status == models.BookingStatusCompleted {
		return copyBooking(b), false, nil
	}
	accepted := b.Status == models.BookingStatusRequested
	if _, ok := r.drivers[driverID]; !ok {
		r.drivers[driverID] = &models.Driver{DriverID: driverID}
	}
	if len(r.accepted[bookingID]) == 0 {
		r.accepted[bookingID] = []string{driverID}
	}
	b.Status = models.BookingStatusAccepted
	b.AssignedAt = &assignedAt
	return copyBooking(b), accepted, nil
}

func (r *fakeBookingRepo) Complete(ctx context.Context, bookingID string, completedAt time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeCalls++
	if r.completeFailures > 0 {
		r.completeFailures--
		return nil, utils.NewError(utils.KindUnavailable, "store unavailable")
	}
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, utils.NotFoundError("booking")
	}
	if err := models.CanComplete(b.Status); err != nil {
		return nil, err
	}
	b.Status = models.BookingStatusCompleted
	b.CompletedAt = &completedAt
	return copyBooking(b), nil
}

func (r *fakeBookingRepo) Delete(ctx context.Context, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, utils.NotFoundError("booking")
	}
	delete(r.bookings, bookingID)
	delete(r.accepted, bookingID)
	return b, nil
}

type fakeTransactionRepo struct {
	*memStore
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, hasBooking := r.bookings[tx.BookingID]
	_, hasPayer := r.users[tx.UserID]
	_, hasPayee := r.users[tx.DriverID]
	if !hasBooking || !hasPayer || !hasPayee {
		return nil, utils.NotFoundError("booking, user or driver")
	}
	stored := *tx
	r.transactions[tx.TransactionID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok {
		return nil, utils.NotFoundError("transaction")
	}
	out := *tx
	return &out, nil
}

func (r *fakeTransactionRepo) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok {
		return nil, utils.NotFoundError("transaction")
	}
	tx.PaymentStatus = status
	out := *tx
	return &out, nil
}

func (r *fakeTransactionRepo) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return r.filter(func(t *models.Transaction) bool { return t.UserID == userID }), nil
}

func (r *fakeTransactionRepo) ListByDriver(ctx context.Context, driverID string) ([]*models.Transaction, error) {
	return r.filter(func(t *models.Transaction) bool { return t.DriverID == driverID }), nil
}

func (r *fakeTransactionRepo) filter(keep func(*models.Transaction) bool) []*models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Transaction{}
	for _, t := range r.transactions {
		if keep(t) {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeTransactionRepo) SumForDate(ctx context.Context, day time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, t := range r.transactions {
		if t.CreatedAt.UTC().Format(utils.DateLayout) == day.Format(utils.DateLayout) {
			total += t.Amount
		}
	}
	return total, nil
}

type fakeUserRepo struct {
	*memStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return utils.NewError(utils.KindConflict, "constraint violation")
		}
	}
	stored := *user
	r.users[user.UserID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, utils.NotFoundError("user")
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, utils.NotFoundError("user")
}

func (r *fakeUserRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.User{}
	for _, u := range r.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, utils.NotFoundError("user")
	}
	for key, value := range updates {
		switch key {
		case "name":
			u.Name = value.(string)
		case "email":
			u.Email = value.(string)
		case "phone_number":
			u.PhoneNumber = value.(string)
		case "password_hash":
			u.PasswordHash = value.(string)
		case "device_token":
			u.DeviceToken = value.(string)
		case "device_platform":
			u.DevicePlatform = value.(string)
		}
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return utils.NotFoundError("user")
	}
	delete(r.users, userID)
	return nil
}

type fakeDriverRepo struct {
	*memStore
}

func (r *fakeDriverRepo) Create(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[driver.UserID]; !ok {
		return nil, utils.NotFoundError("user")
	}
	stored := *driver
	r.drivers[driver.DriverID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeDriverRepo) GetByID(ctx context.Context, driverID string) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[driverID]
	if !ok {
		return nil, utils.NotFoundError("driver")
	}
	out := *d
	return &out, nil
}

type fakeNotificationRepo struct {
	*memStore
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[n.UserID]; !ok {
		return nil, utils.NotFoundError("user")
	}
	stored := *n
	r.notifications[n.NotificationID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Notification{}
	for _, n := range r.notifications {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, utils.NotFoundError("notification")
	}
	n.Read = true
	out := *n
	return &out, nil
}

type mockNotificationSender struct {
	mock.Mock
}

func (m *mockNotificationSender) Notify(ctx context.Context, userID, title, message, category string) (*models.Notification, error) {
	args := m.Called(ctx, userID, title, message, category)
	n, _ := args.Get(0).(*models.Notification)
	return n, args.Error(1)
}

type mockReconnector struct {
	mock.Mock
	generation uint64
}

func (m *mockReconnector) Generation() uint64 {
	return m.generation
}

func (m *mockReconnector) ReconnectIfCurrent(ctx context.Context, generation uint64) error {
	return m.Called(ctx, generation).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, routingKey string, msg any) error {
	return m.Called(ctx, routingKey, msg).Error(0)
}

type mockRealtime struct {
	mock.Mock
}

func (m *mockRealtime) SendUserNotification(userID string, notificationType string, data map[string]interface{}) int {
	return m.Called(userID, notificationType, data).Int(0)
}

func (m *mockRealtime) SendBookingUpdate(bookingID string, updateType string, data map[string]interface{}) int {
	return m.Called(bookingID, updateType, data).Int(0)
}

// recordingEvents captures dispatched events in order.
type recordingEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEvents) Publish(ctx context.Context, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEvents) BookingChanged(ctx context.Context, event string, booking *models.Booking) {
	r.Publish(ctx, event, booking)
}

func (r *recordingEvents) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
