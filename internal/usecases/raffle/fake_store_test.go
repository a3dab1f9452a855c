package raffle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
)

// memStore транзакционное хранилище в памяти: транзакции сериализуются мьютексом,
// при ошибке состояние откатывается к снимку
type memStore struct {
	mu sync.Mutex

	nextID   int64
	raffles  map[int64]domain.Raffle
	tickets  map[int64][]domain.Ticket // raffle id -> номера по value
	payments map[int64]domain.Payment
	buyers   map[int64]domain.Buyer

	failCommit bool
	failList   bool
}

func newMemStore() *memStore {
	return &memStore{
		raffles:  map[int64]domain.Raffle{},
		tickets:  map[int64][]domain.Ticket{},
		payments: map[int64]domain.Payment{},
		buyers:   map[int64]domain.Buyer{},
	}
}

type memSnapshot struct {
	nextID   int64
	raffles  map[int64]domain.Raffle
	tickets  map[int64][]domain.Ticket
	payments map[int64]domain.Payment
	buyers   map[int64]domain.Buyer
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		nextID:   m.nextID,
		raffles:  make(map[int64]domain.Raffle, len(m.raffles)),
		tickets:  make(map[int64][]domain.Ticket, len(m.tickets)),
		payments: make(map[int64]domain.Payment, len(m.payments)),
		buyers:   make(map[int64]domain.Buyer, len(m.buyers)),
	}
	for k, v := range m.raffles {
		s.raffles[k] = v
	}
	for k, v := range m.tickets {
		cp := make([]domain.Ticket, len(v))
		for i, t := range v {
			cp[i] = t
			if t.Holder != nil {
				h := *t.Holder
				cp[i].Holder = &h
			}
		}
		s.tickets[k] = cp
	}
	for k, v := range m.payments {
		s.payments[k] = v
	}
	for k, v := range m.buyers {
		s.buyers[k] = v
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.nextID = s.nextID
	m.raffles = s.raffles
	m.tickets = s.tickets
	m.payments = s.payments
	m.buyers = s.buyers
}

var errCommitFailed = errors.New("commit failed")

func (m *memStore) WithTransaction(ctx context.Context, fn persistence.TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(ctx, nil); err != nil {
		m.restore(snap)
		return err
	}
	if m.failCommit {
		m.restore(snap)
		return errCommitFailed
	}
	return nil
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) ticket(raffleID int64, value int) *domain.Ticket {
	pool := m.tickets[raffleID]
	if value < 0 || value >= len(pool) {
		return nil
	}
	return &pool[value]
}

// checkBinding проверка инварианта: reserved <=> платёж не в rechazado/expirado
func (m *memStore) checkBinding() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pool := range m.tickets {
		for _, t := range pool {
			if t.Holder == nil {
				continue
			}
			p, ok := m.payments[t.Holder.PaymentID]
			if !ok {
				return errors.New("number bound to missing payment")
			}
			if !p.State.HoldsNumbers() {
				return errors.New("number bound to released payment")
			}
		}
	}
	return nil
}

// setCreatedAt сдвигает время создания платежа (для тестов дедлайна)
func (m *memStore) setCreatedAt(paymentID int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.payments[paymentID]
	p.CreatedAt = at.Unix()
	m.payments[paymentID] = p
}

func (m *memStore) payment(paymentID int64) domain.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[paymentID]
}

// --- raffles

type memRaffles struct{ *memStore }

func (r memRaffles) CreateTx(_ context.Context, _ persistence.Transaction, raffle *domain.Raffle) error {
	raffle.ID = r.id()
	r.raffles[raffle.ID] = *raffle
	return nil
}

func (r memRaffles) GetByID(_ context.Context, id int64) (*domain.Raffle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getByID(id)
}

func (r memRaffles) getByID(id int64) (*domain.Raffle, error) {
	raffle, ok := r.raffles[id]
	if !ok {
		return nil, domain.ErrRaffleNotFound
	}
	return &raffle, nil
}

func (r memRaffles) GetByIDTx(_ context.Context, _ persistence.Transaction, id int64) (*domain.Raffle, error) {
	return r.getByID(id)
}

func (r memRaffles) List(_ context.Context) ([]*domain.Raffle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Raffle
	for _, raffle := range r.raffles {
		raffle := raffle
		out = append(out, &raffle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memRaffles) ListActive(ctx context.Context) ([]*domain.RaffleOverview, error) {
	all, _ := r.List(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RaffleOverview
	for _, raffle := range all {
		if !raffle.Active {
			continue
		}
		free := 0
		for _, t := range r.tickets[raffle.ID] {
			if !t.Reserved() {
				free++
			}
		}
		out = append(out, &domain.RaffleOverview{Raffle: *raffle, FreeNumbers: free})
	}
	return out, nil
}

func (r memRaffles) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.raffles[id]; !ok {
		return domain.ErrRaffleNotFound
	}
	delete(r.raffles, id)
	delete(r.tickets, id)
	for pid, p := range r.payments {
		if p.RaffleID == id {
			delete(r.payments, pid)
		}
	}
	return nil
}

// --- tickets

type memTickets struct{ *memStore }

func (r memTickets) CreatePoolTx(_ context.Context, _ persistence.Transaction, raffleID int64, count int) (int64, error) {
	pool := make([]domain.Ticket, count)
	for v := 0; v < count; v++ {
		pool[v] = domain.Ticket{ID: r.id(), RaffleID: raffleID, Value: v}
	}
	r.tickets[raffleID] = pool
	return int64(count), nil
}

func (r memTickets) PoolStatus(_ context.Context, raffleID int64) ([]domain.PoolEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pool := r.tickets[raffleID]
	out := make([]domain.PoolEntry, 0, len(pool))
	for _, t := range pool {
		out = append(out, domain.PoolEntry{Value: t.Value, Reserved: t.Reserved()})
	}
	return out, nil
}

func (r memTickets) LockTx(_ context.Context, _ persistence.Transaction, raffleID int64, values []int) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, v := range values {
		if t := r.ticket(raffleID, v); t != nil {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memTickets) BindTx(_ context.Context, _ persistence.Transaction, raffleID int64, values []int, paymentID, buyerID int64) (int64, error) {
	var bound int64
	for _, v := range values {
		t := r.ticket(raffleID, v)
		if t == nil || t.Reserved() {
			continue
		}
		if err := t.Bind(paymentID, buyerID); err != nil {
			return bound, err
		}
		bound++
	}
	return bound, nil
}

func (r memTickets) ReleaseTx(_ context.Context, _ persistence.Transaction, paymentID int64) (int64, error) {
	var released int64
	for raffleID := range r.tickets {
		pool := r.tickets[raffleID]
		for i := range pool {
			if pool[i].Holder != nil && pool[i].Holder.PaymentID == paymentID {
				pool[i].Release()
				released++
			}
		}
	}
	return released, nil
}

func (r memTickets) listByPayment(paymentID int64) []int {
	var values []int
	for _, pool := range r.tickets {
		for _, t := range pool {
			if t.Holder != nil && t.Holder.PaymentID == paymentID {
				values = append(values, t.Value)
			}
		}
	}
	sort.Ints(values)
	return values
}

func (r memTickets) ListByPayment(_ context.Context, paymentID int64) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listByPayment(paymentID), nil
}

func (r memTickets) ListByPaymentTx(_ context.Context, _ persistence.Transaction, paymentID int64) ([]int, error) {
	return r.listByPayment(paymentID), nil
}

func (r memTickets) ListByPayments(_ context.Context, paymentIDs []int64) (map[int64][]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64][]int, len(paymentIDs))
	for _, id := range paymentIDs {
		if values := r.listByPayment(id); len(values) > 0 {
			out[id] = values
		}
	}
	return out, nil
}

func (r memTickets) ListSold(_ context.Context, raffleID int64) ([]domain.SoldNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SoldNumber
	for _, t := range r.tickets[raffleID] {
		if t.Holder == nil || r.payments[t.Holder.PaymentID].State != domain.PaymentStateApproved {
			continue
		}
		b := r.buyers[t.Holder.BuyerID]
		out = append(out, domain.SoldNumber{
			Value:     t.Value,
			BuyerID:   b.ID,
			BuyerName: b.Name,
			Username:  b.Username,
			Phone:     b.Phone,
			PaymentID: t.Holder.PaymentID,
		})
	}
	return out, nil
}

func (r memTickets) CountByState(_ context.Context, raffleID int64) (map[domain.PaymentState]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.PaymentState]int{}
	for _, t := range r.tickets[raffleID] {
		if t.Holder != nil {
			out[r.payments[t.Holder.PaymentID].State]++
		}
	}
	return out, nil
}

// --- payments

type memPayments struct{ *memStore }

func (r memPayments) CreateTx(_ context.Context, _ persistence.Transaction, payment *domain.Payment) error {
	payment.ID = r.id()
	r.payments[payment.ID] = *payment
	return nil
}

func (r memPayments) get(id int64) (*domain.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &p, nil
}

func (r memPayments) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r memPayments) GetForUpdateTx(_ context.Context, _ persistence.Transaction, id int64) (*domain.Payment, error) {
	return r.get(id)
}

func (r memPayments) GetLatestByBuyerForUpdateTx(_ context.Context, _ persistence.Transaction, buyerID int64) (*domain.Payment, error) {
	var latest *domain.Payment
	for _, p := range r.payments {
		p := p
		if p.BuyerID != buyerID {
			continue
		}
		if latest == nil || p.CreatedAt > latest.CreatedAt || (p.CreatedAt == latest.CreatedAt && p.ID > latest.ID) {
			latest = &p
		}
	}
	if latest == nil {
		return nil, domain.ErrPaymentNotFound
	}
	return latest, nil
}

func (r memPayments) TransitionTx(_ context.Context, _ persistence.Transaction, id int64, from, to domain.PaymentState, proofRef *string) (int64, error) {
	p, ok := r.payments[id]
	if !ok || p.State != from {
		return 0, nil
	}
	p.State = to
	if proofRef != nil {
		ref := *proofRef
		p.ProofReference = &ref
	}
	r.payments[id] = p
	return 1, nil
}

func (r memPayments) ListOverdueIDs(_ context.Context, state domain.PaymentState, createdBefore int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList {
		return nil, errors.New("connection refused")
	}
	var ids []int64
	for _, p := range r.payments {
		if p.State == state && p.CreatedAt <= createdBefore {
			ids = append(ids, p.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r memPayments) details(p domain.Payment) *domain.PaymentDetails {
	raffle := r.raffles[p.RaffleID]
	return &domain.PaymentDetails{
		Payment:    p,
		RaffleName: raffle.Name,
		UnitPrice:  raffle.UnitPrice,
		BuyerName:  r.buyers[p.BuyerID].Name,
	}
}

func (r memPayments) listDetails(match func(domain.Payment) bool) []*domain.PaymentDetails {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PaymentDetails
	for _, p := range r.payments {
		if match(p) {
			out = append(out, r.details(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memPayments) ListDetailsByState(_ context.Context, state domain.PaymentState) ([]*domain.PaymentDetails, error) {
	return r.listDetails(func(p domain.Payment) bool { return p.State == state }), nil
}

func (r memPayments) ListDetailsByBuyer(_ context.Context, buyerID int64) ([]*domain.PaymentDetails, error) {
	return r.listDetails(func(p domain.Payment) bool { return p.BuyerID == buyerID }), nil
}

func (r memPayments) GetDetails(_ context.Context, id int64) (*domain.PaymentDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return r.details(p), nil
}

func (r memPayments) CountByState(_ context.Context, raffleID int64) (map[domain.PaymentState]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.PaymentState]int{}
	for _, state := range domain.PaymentStates {
		out[state] = 0
	}
	for _, p := range r.payments {
		if p.RaffleID == raffleID {
			out[p.State]++
		}
	}
	return out, nil
}

// --- buyers

type memBuyers struct{ *memStore }

func (r memBuyers) Upsert(_ context.Context, buyer *domain.Buyer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buyers[buyer.ID] = *buyer
	return nil
}

func (r memBuyers) GetByID(_ context.Context, id int64) (*domain.Buyer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buyers[id]
	if !ok {
		return nil, domain.ErrBuyerNotFound
	}
	return &b, nil
}

// --- notifier / events

type sentMessage struct {
	BuyerID int64
	Text    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, buyerID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{BuyerID: buyerID, Text: message})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.PaymentEvent
	err    error
}

func (e *fakeEvents) PublishPaymentEvent(_ context.Context, event domain.PaymentEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	return nil
}

func (e *fakeEvents) types() []domain.PaymentEventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.PaymentEventType, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

// --- fixture

type fixture struct {
	svc      *Service
	store    *memStore
	notifier *fakeNotifier
	events   *fakeEvents
	now      time.Time
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:    store,
		notifier: &fakeNotifier{},
		events:   &fakeEvents{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = New(
		memRaffles{store},
		memTickets{store},
		memPayments{store},
		memBuyers{store},
		f.notifier,
		f.events,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	f.svc.Now = func() time.Time { return f.now }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}
