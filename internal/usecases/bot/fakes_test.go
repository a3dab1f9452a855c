package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

type answered struct {
	id    string
	text  string
	alert bool
}

type fakeClient struct {
	sent     []domain.OutgoingMessage
	answered []answered
	editErr  error
}

func (f *fakeClient) Send(_ context.Context, msg domain.OutgoingMessage) error {
	if msg.EditMessageID != 0 && f.editErr != nil {
		return f.editErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeClient) AnswerCallbackQuery(_ context.Context, id, text string, alert bool) error {
	f.answered = append(f.answered, answered{id: id, text: text, alert: alert})
	return nil
}

func (f *fakeClient) FileURL(_ context.Context, fileID string) (string, error) {
	return "https://files/" + fileID, nil
}

func (f *fakeClient) DownloadFile(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (f *fakeClient) last() domain.OutgoingMessage {
	if len(f.sent) == 0 {
		return domain.OutgoingMessage{}
	}
	return f.sent[len(f.sent)-1]
}

type reserveCall struct {
	buyerID  int64
	raffleID int64
	numbers  []int
}

type decideCall struct {
	paymentID int64
	decision  domain.Decision
}

// fakeRaffles заглушка IRaffleService: возвращает подготовленные значения и запоминает вызовы
type fakeRaffles struct {
	buyers  map[int64]*domain.Buyer
	raffles map[int64]*domain.Raffle
	pool    []domain.PoolEntry

	reserveErr error
	reserves   []reserveCall

	proofErr error
	proofs   []string

	decideErr error
	decisions []decideCall

	created  []*domain.Raffle
	deleted  []int64
	details  map[int64]*domain.PaymentDetails
	payments []*domain.PaymentDetails
}

func newFakeRaffles() *fakeRaffles {
	pool := make([]domain.PoolEntry, 100)
	for i := range pool {
		pool[i] = domain.PoolEntry{Value: i}
	}
	return &fakeRaffles{
		buyers:  map[int64]*domain.Buyer{},
		raffles: map[int64]*domain.Raffle{1: {ID: 1, Name: "Moto", UnitPrice: 20000, TotalNumbers: 100, Active: true}},
		pool:    pool,
		details: map[int64]*domain.PaymentDetails{},
	}
}

func (f *fakeRaffles) CreateRaffle(_ context.Context, name string, unitPrice int64) (*domain.Raffle, error) {
	r := &domain.Raffle{ID: int64(len(f.raffles) + 1), Name: name, UnitPrice: unitPrice, TotalNumbers: 100, Active: true}
	f.raffles[r.ID] = r
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeRaffles) DeleteRaffle(_ context.Context, raffleID int64) error {
	if _, ok := f.raffles[raffleID]; !ok {
		return domain.ErrRaffleNotFound
	}
	delete(f.raffles, raffleID)
	f.deleted = append(f.deleted, raffleID)
	return nil
}

func (f *fakeRaffles) GetRaffle(_ context.Context, raffleID int64) (*domain.Raffle, error) {
	r, ok := f.raffles[raffleID]
	if !ok {
		return nil, domain.ErrRaffleNotFound
	}
	return r, nil
}

func (f *fakeRaffles) ListRaffles(context.Context) ([]*domain.Raffle, error) {
	out := make([]*domain.Raffle, 0, len(f.raffles))
	for _, r := range f.raffles {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRaffles) ListActiveRaffles(context.Context) ([]*domain.RaffleOverview, error) {
	out := make([]*domain.RaffleOverview, 0, len(f.raffles))
	for _, r := range f.raffles {
		if r.Active {
			out = append(out, &domain.RaffleOverview{Raffle: *r, FreeNumbers: len(domain.FreeValues(f.pool))})
		}
	}
	return out, nil
}

func (f *fakeRaffles) PoolStatus(context.Context, int64) ([]domain.PoolEntry, error) {
	return f.pool, nil
}

func (f *fakeRaffles) Stats(_ context.Context, raffleID int64) (*domain.RaffleStats, error) {
	return &domain.RaffleStats{Raffle: *f.raffles[raffleID], Free: 100, PaymentCounts: map[domain.PaymentState]int{}}, nil
}

func (f *fakeRaffles) SoldNumbers(context.Context, int64) ([]domain.SoldNumber, error) {
	return nil, nil
}

func (f *fakeRaffles) RegisterBuyer(_ context.Context, buyer *domain.Buyer) error {
	f.buyers[buyer.ID] = buyer
	return nil
}

func (f *fakeRaffles) GetBuyer(_ context.Context, buyerID int64) (*domain.Buyer, error) {
	b, ok := f.buyers[buyerID]
	if !ok {
		return nil, domain.ErrBuyerNotFound
	}
	return b, nil
}

func (f *fakeRaffles) Reserve(_ context.Context, buyerID, raffleID int64, numbers []int) (*domain.Reservation, error) {
	f.reserves = append(f.reserves, reserveCall{buyerID: buyerID, raffleID: raffleID, numbers: append([]int(nil), numbers...)})
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	price := f.raffles[raffleID].UnitPrice
	return &domain.Reservation{
		Payment:   domain.Payment{ID: 10, BuyerID: buyerID, RaffleID: raffleID, State: domain.PaymentStatePending},
		Numbers:   numbers,
		UnitPrice: price,
		Total:     price * int64(len(numbers)),
	}, nil
}

func (f *fakeRaffles) SubmitProof(_ context.Context, buyerID int64, proofRef string) (*domain.Payment, error) {
	f.proofs = append(f.proofs, proofRef)
	if f.proofErr != nil {
		return nil, f.proofErr
	}
	p := &domain.Payment{ID: 10, BuyerID: buyerID, RaffleID: 1, ProofReference: &proofRef, State: domain.PaymentStateInReview}
	f.details[p.ID] = &domain.PaymentDetails{Payment: *p, RaffleName: "Moto", UnitPrice: 20000, BuyerName: "Ana", Numbers: []int{3, 7, 42}}
	return p, nil
}

func (f *fakeRaffles) Decide(_ context.Context, paymentID int64, decision domain.Decision) (*domain.Payment, error) {
	f.decisions = append(f.decisions, decideCall{paymentID: paymentID, decision: decision})
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	return &domain.Payment{ID: paymentID, State: domain.PaymentStateApproved}, nil
}

func (f *fakeRaffles) PaymentDetails(_ context.Context, paymentID int64) (*domain.PaymentDetails, error) {
	d, ok := f.details[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return d, nil
}

func (f *fakeRaffles) PaymentsByState(context.Context, domain.PaymentState) ([]*domain.PaymentDetails, error) {
	return f.payments, nil
}

func (f *fakeRaffles) BuyerPayments(context.Context, int64) ([]*domain.PaymentDetails, error) {
	return f.payments, nil
}

func (f *fakeRaffles) SweepExpired(context.Context) (int, error) {
	return 0, nil
}

type fakeProofs struct {
	archived map[int64]string
}

func (f *fakeProofs) Archive(_ context.Context, paymentID int64, fileID string) (string, error) {
	f.archived[paymentID] = fileID
	return "proofs/key", nil
}

func (f *fakeProofs) URL(context.Context, int64, string, time.Duration) (string, error) {
	return "", nil
}

const (
	buyerChat    int64 = 100
	adminChat    int64 = 1
	reviewChat   int64 = -500
	poolMsgID    int64 = 77
	reviewMsgID  int64 = 88
	testDeadline       = 10 * time.Minute
)

type fixture struct {
	svc     *Service
	raffles *fakeRaffles
	client  *fakeClient
	proofs  *fakeProofs
	sess    *domain.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	raffles := newFakeRaffles()
	client := &fakeClient{}
	proofs := &fakeProofs{archived: map[int64]string{}}
	cfg := &Config{IDs: []int64{adminChat}, ReviewChatID: reviewChat}
	svc := New(raffles, client, proofs, cfg, testDeadline, 50, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.Now = func() time.Time { return time.Unix(1000, 0) }

	return &fixture{
		svc:     svc,
		raffles: raffles,
		client:  client,
		proofs:  proofs,
		sess:    domain.NewSession(buyerChat),
	}
}

func (f *fixture) register() {
	f.raffles.buyers[buyerChat] = &domain.Buyer{ID: buyerChat, Name: "Ana", Phone: "3001234567"}
}

func privateMessage(chatID int64, text string) *domain.Message {
	return &domain.Message{
		MessageID: 5,
		From:      &domain.TelegramUser{ID: chatID, FirstName: "Ana"},
		Chat:      &domain.Chat{ID: chatID, Type: "private"},
		Text:      &text,
	}
}

func photoMessage(chatID int64, fileIDs ...string) *domain.Message {
	msg := privateMessage(chatID, "")
	msg.Text = nil
	for _, id := range fileIDs {
		msg.Photo = append(msg.Photo, domain.PhotoSize{FileID: id})
	}
	return msg
}

func callback(fromID, chatID int64, chatType string, messageID int64, data string) *domain.CallbackQuery {
	return &domain.CallbackQuery{
		ID:      "cb-" + data,
		From:    &domain.TelegramUser{ID: fromID},
		Message: &domain.Message{MessageID: messageID, Chat: &domain.Chat{ID: chatID, Type: chatType}},
		Data:    &data,
	}
}
