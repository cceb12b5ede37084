package handler_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"CourierBot/handler"
	"CourierBot/model"
	"CourierBot/repo"
	"CourierBot/transport"

	"github.com/stretchr/testify/require"
)

const userID int64 = 42

type fakeMessenger struct {
	mu    sync.Mutex
	sent  []transport.Message
	edits []string
}

func (m *fakeMessenger) Send(_ context.Context, _ int64, msg transport.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMessenger) Edit(_ context.Context, _ int64, _ int, msg transport.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, msg.Text)
	return nil
}

func (m *fakeMessenger) AnswerCallback(context.Context, string) error {
	return nil
}

func (m *fakeMessenger) last() transport.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return transport.Message{}
	}
	return m.sent[len(m.sent)-1]
}

// saw reports whether any sent message contains sub.
func (m *fakeMessenger) saw(sub string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.sent {
		if strings.Contains(msg.Text, sub) {
			return true
		}
	}
	return false
}

type fakeProvider struct {
	mu sync.Mutex

	loginPhone string
	token      string
	slots      []model.TimeSlot
	quote      model.Quote
	quoteErr   error
	balance    string
	// submitErrs are returned by successive submit calls, then nil.
	submitErrs []error
	singles    []model.SinglePayload
	groups     []model.GroupPayload

	// when set, Balance signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (p *fakeProvider) SendLoginCode(_ context.Context, phone string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginPhone = phone
	return "4321", nil
}

func (p *fakeProvider) CheckLoginCode(_ context.Context, phone, code string) (string, error) {
	if code != "4321" {
		return "", model.NewExternalServiceError("provider", "login-check-code", "Invalid code.", nil)
	}
	return "tok-" + phone, nil
}

func (p *fakeProvider) AddFunds(context.Context, string, int) error {
	return nil
}

func (p *fakeProvider) Balance(context.Context, string) (string, error) {
	if p.entered != nil {
		close(p.entered)
		<-p.release
	}
	return p.balance, nil
}

func (p *fakeProvider) QuoteSingle(context.Context, string, model.SingleQuoteRequest) (model.Quote, error) {
	return p.quote, p.quoteErr
}

func (p *fakeProvider) QuoteGroup(context.Context, string, model.GroupQuoteRequest) (model.Quote, error) {
	return p.quote, p.quoteErr
}

func (p *fakeProvider) nextSubmitErr() error {
	if len(p.submitErrs) == 0 {
		return nil
	}
	err := p.submitErrs[0]
	p.submitErrs = p.submitErrs[1:]
	return err
}

func (p *fakeProvider) SubmitSingle(_ context.Context, _ string, payload model.SinglePayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.singles = append(p.singles, payload)
	return p.nextSubmitErr()
}

func (p *fakeProvider) SubmitGroup(_ context.Context, _ string, payload model.GroupPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = append(p.groups, payload)
	return p.nextSubmitErr()
}

func (p *fakeProvider) TimeSlots(context.Context, string) ([]model.TimeSlot, error) {
	return p.slots, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[int64]model.Account
	orders   map[int64][]model.StoredOrder
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[int64]model.Account{}, orders: map[int64][]model.StoredOrder{}}
}

func (a *fakeAccounts) Account(_ context.Context, id int64) (model.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accounts[id], nil
}

func (a *fakeAccounts) SaveAccount(_ context.Context, id int64, acc model.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[id] = acc
	return nil
}

func (a *fakeAccounts) DeleteAccount(_ context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.accounts, id)
	return nil
}

func (a *fakeAccounts) SaveOrder(_ context.Context, id int64, order any) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	stored := model.StoredOrder{OrderID: fmt.Sprintf("order-%d", len(a.orders[id])+1), Order: order}
	a.orders[id] = append(a.orders[id], stored)
	return stored.OrderID, nil
}

func (a *fakeAccounts) Orders(_ context.Context, id int64) ([]model.StoredOrder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.orders[id], nil
}

type fakeExtractor struct {
	data map[string]string
	err  error
}

func (e *fakeExtractor) Extract(context.Context, []byte, string) (map[string]string, error) {
	return e.data, e.err
}

type fakeImages struct{}

func (fakeImages) Download(context.Context, string) ([]byte, error) {
	return []byte{0xff, 0xd8}, nil
}

type harness struct {
	h         *handler.Handler
	msg       *fakeMessenger
	provider  *fakeProvider
	accounts  *fakeAccounts
	sessions  *repo.SessionStore
	extractor *fakeExtractor
}

// newHarness returns a logged-in user with picture import enabled. The clock
// advances one minute per reading.
func newHarness(t *testing.T) *harness {
	t.Helper()
	x := &harness{
		msg: &fakeMessenger{},
		provider: &fakeProvider{
			quote: model.Quote{DeliveryPrice: ptr(90), Total: ptr(100)},
		},
		accounts:  newFakeAccounts(),
		sessions:  repo.NewSessionStore(100, time.Hour),
		extractor: &fakeExtractor{},
	}
	x.accounts.accounts[userID] = model.Account{Token: "tok", Phone: "05321234567"}
	clock := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	x.h = handler.NewHandler(x.msg, x.provider, x.accounts, x.sessions, x.extractor, fakeImages{}, handler.Options{Now: now})
	return x
}

func (x *harness) send(ev transport.Event) {
	ev.UserID, ev.ChatID = userID, userID
	x.h.Handle(context.Background(), ev)
}

func (x *harness) text(texts ...string) {
	for _, s := range texts {
		x.send(transport.Event{Kind: transport.KindText, Text: s})
	}
}

func (x *harness) press(data ...string) {
	for _, d := range data {
		x.send(transport.Event{Kind: transport.KindCallback, CallbackID: "cb", Data: d, MessageID: 7})
	}
}

func (x *harness) location(lat, lng float64) {
	x.send(transport.Event{Kind: transport.KindLocation, Latitude: lat, Longitude: lng})
}

func (x *harness) photo() {
	x.send(transport.Event{Kind: transport.KindPhoto, FileID: "file-1"})
}

func (x *harness) session(t *testing.T) *model.Session {
	t.Helper()
	sess, ok := x.sessions.Get(userID)
	require.True(t, ok, "no session")
	return sess
}

func (x *harness) step(t *testing.T) model.Step {
	t.Helper()
	s, ok := x.session(t).Step()
	require.True(t, ok, "empty history")
	return s
}

func ptr(v float64) *float64 {
	return &v
}
