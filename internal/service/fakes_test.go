package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/events"
	"github.com/vanline/support-service/internal/notify"
	"github.com/vanline/support-service/internal/repository"
)

type fakeTicketRepo struct {
	seq     int
	tickets map[string]domain.Ticket

	createErr  error
	getErr     error
	updateErr  error
	setLastErr error
	searchErr  error

	searchItems []domain.Ticket
	searchTotal int
	searchCalls int
	lastSearch  repository.TicketSearchQuery
	updateCalls int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	ticket.ID = fmt.Sprintf("tic-%d", f.seq)
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := ticket
	return &out, nil
}

func (f *fakeTicketRepo) UpdateFields(_ context.Context, id string, update repository.TicketUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	f.updateCalls++
	if update.Status != nil {
		ticket.Status = *update.Status
	}
	if update.AssignedAdminID != nil {
		ticket.AssignedAdminID = update.AssignedAdminID
	}
	ticket.UpdatedAt = time.Now().UTC()
	f.tickets[id] = ticket
	return nil
}

func (f *fakeTicketRepo) SetLastMessageAt(_ context.Context, id string, at time.Time) error {
	if f.setLastErr != nil {
		return f.setLastErr
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stamp := at
	ticket.LastMessageAt = &stamp
	f.tickets[id] = ticket
	return nil
}

func (f *fakeTicketRepo) Search(_ context.Context, query repository.TicketSearchQuery) ([]domain.Ticket, int, error) {
	f.searchCalls++
	f.lastSearch = query
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	return f.searchItems, f.searchTotal, nil
}

type fakeMessageRepo struct {
	seq  int
	msgs []domain.TicketMessage

	createErr error
	listErr   error

	lastLimit  int
	lastOffset int
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *domain.TicketMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	msg.ID = fmt.Sprintf("msg-%d", f.seq)
	f.msgs = append(f.msgs, *msg)
	return nil
}

func (f *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byTicket(ticketID), nil
}

func (f *fakeMessageRepo) ListByTicketPaged(_ context.Context, ticketID string, limit, offset int) ([]domain.TicketMessage, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	f.lastLimit = limit
	f.lastOffset = offset
	all := f.byTicket(ticketID)
	total := len(all)
	if offset >= total {
		return []domain.TicketMessage{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeMessageRepo) byTicket(ticketID string) []domain.TicketMessage {
	var out []domain.TicketMessage
	for _, msg := range f.msgs {
		if msg.TicketID == ticketID {
			out = append(out, msg)
		}
	}
	return out
}

type fakeEventRepo struct {
	seq     int
	entries []domain.TicketEvent

	createErr error
	listErr   error
}

func (f *fakeEventRepo) Create(_ context.Context, event *domain.TicketEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	event.ID = fmt.Sprintf("evt-%d", f.seq)
	event.CreatedAt = time.Now().UTC()
	f.entries = append(f.entries, *event)
	return nil
}

func (f *fakeEventRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.TicketEvent
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]domain.User

	getErr      error
	listRoleErr error
	searchErr   error
	findErr     error

	searchResults []domain.User
	lastTerm      string
	lastRoleLimit int
	roleCalls     int
	findCalls     int
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]domain.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := user
	return &out, nil
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role domain.UserRole, limit int) ([]domain.User, error) {
	f.roleCalls++
	f.lastRoleLimit = limit
	if f.listRoleErr != nil {
		return nil, f.listRoleErr
	}
	var out []domain.User
	for _, user := range f.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SearchByName(_ context.Context, name string, _ int) ([]domain.User, error) {
	f.lastTerm = name
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeDriverRepo struct {
	drivers map[string]domain.Driver

	searchErr error
	findErr   error

	searchResults []domain.Driver
	lastTerm      string
	findCalls     int
}

func newFakeDriverRepo(drivers ...domain.Driver) *fakeDriverRepo {
	repo := &fakeDriverRepo{drivers: map[string]domain.Driver{}}
	for _, driver := range drivers {
		repo.drivers[driver.ID] = driver
	}
	return repo
}

func (f *fakeDriverRepo) GetByID(_ context.Context, id string) (*domain.Driver, error) {
	driver, ok := f.drivers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := driver
	return &out, nil
}

func (f *fakeDriverRepo) SearchByName(_ context.Context, name string, _ int) ([]domain.Driver, error) {
	f.lastTerm = name
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeDriverRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Driver, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.Driver
	for _, id := range ids {
		if driver, ok := f.drivers[id]; ok {
			out = append(out, driver)
		}
	}
	return out, nil
}

type fakeQuoteRepo struct {
	refs map[string]domain.QuoteRef
	err  error
}

func (f *fakeQuoteRepo) GetByID(_ context.Context, id string) (*domain.QuoteRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	ref, ok := f.refs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := ref
	return &out, nil
}

type fakeReservationRepo struct {
	refs map[string]domain.ReservationRef
	err  error
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id string) (*domain.ReservationRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	ref, ok := f.refs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := ref
	return &out, nil
}

type sentNote struct {
	recipientID string
	kind        notify.Kind
	title       string
	message     string
}

type fakeSender struct {
	sent    []sentNote
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, recipientID string, kind notify.Kind, title, message string) error {
	if err, ok := f.failFor[recipientID]; ok {
		return err
	}
	f.sent = append(f.sent, sentNote{recipientID: recipientID, kind: kind, title: title, message: message})
	return nil
}

// eventRecorder captures every event a test's dispatcher publishes.
type eventRecorder struct {
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func recordAll(dispatcher events.Dispatcher, recorder *eventRecorder) {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketStatusChanged,
		events.EventTicketMessageAdded,
	} {
		dispatcher.Subscribe(eventType, recorder.record)
	}
}

func adminUser(id string) domain.User {
	return domain.User{ID: id, Name: "Admin " + id, Email: id + "@vanline.test", Role: domain.UserRoleAdmin, Status: domain.UserStatusActive}
}

func endUser(id, name string) domain.User {
	return domain.User{ID: id, Name: name, Email: id + "@vanline.test", Role: domain.UserRoleCustomer, Status: domain.UserStatusActive}
}

func driverRecord(id, name string) domain.Driver {
	return domain.Driver{ID: id, Name: name, Phone: "+15550100", Status: domain.DriverStatusActive}
}
