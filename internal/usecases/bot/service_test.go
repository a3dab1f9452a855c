package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

func TestRegistrationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleCommand(ctx, f.sess, privateMessage(buyerChat, "/start"), "start"))
	assert.Equal(t, domain.StepRegisterName, f.sess.Step)
	assert.Equal(t, texts.AskName, f.client.last().Text)

	require.NoError(t, f.svc.HandleText(ctx, f.sess, privateMessage(buyerChat, "  ")))
	assert.Equal(t, texts.InvalidName, f.client.last().Text)

	require.NoError(t, f.svc.HandleText(ctx, f.sess, privateMessage(buyerChat, "Ana Gómez")))
	assert.Equal(t, domain.StepRegisterPhone, f.sess.Step)
	assert.Equal(t, fmt.Sprintf(texts.AskPhone, "Ana Gómez"), f.client.last().Text)

	require.NoError(t, f.svc.HandleText(ctx, f.sess, privateMessage(buyerChat, "12ab")))
	assert.Equal(t, texts.InvalidPhone, f.client.last().Text)
	assert.Equal(t, domain.StepRegisterPhone, f.sess.Step)

	require.NoError(t, f.svc.HandleText(ctx, f.sess, privateMessage(buyerChat, "+57 300 123-4567")))
	assert.Equal(t, texts.Registered, f.client.last().Text)
	assert.True(t, f.sess.IsEmpty())

	buyer := f.raffles.buyers[buyerChat]
	require.NotNil(t, buyer)
	assert.Equal(t, "Ana Gómez", buyer.Name)
	assert.Equal(t, "+573001234567", buyer.Phone)
}

func TestStartRegisteredBuyer(t *testing.T) {
	f := newFixture(t)
	f.register()

	require.NoError(t, f.svc.HandleCommand(context.Background(), f.sess, privateMessage(buyerChat, "/start"), "start"))

	last := f.client.last()
	assert.Equal(t, fmt.Sprintf(texts.WelcomeBack, "Ana"), last.Text)
	assert.Equal(t, mainMenu(), last.Keyboard)
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.HandleCommand(context.Background(), f.sess, privateMessage(buyerChat, "/foo"), "foo"))
	assert.Equal(t, texts.FormatUnknownCommand("foo"), f.client.last().Text)
}

func TestRafflesRequireRegistration(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.HandleCommand(context.Background(), f.sess, privateMessage(buyerChat, "/rifas"), "rifas"))
	assert.Equal(t, texts.AskName, f.client.last().Text)
	assert.Equal(t, domain.StepRegisterName, f.sess.Step)
}

func TestPoolSelection(t *testing.T) {
	f := newFixture(t)
	f.register()
	f.raffles.pool[8].Reserved = true
	ctx := context.Background()

	require.NoError(t, f.svc.HandleCallback(ctx, f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "raffle:1")))
	assert.Equal(t, int64(1), f.sess.RaffleID)

	page := f.client.last()
	assert.Equal(t, poolMsgID, page.EditMessageID)
	// 50 номеров по 5 в ряд, навигация и подтверждение
	require.Len(t, page.Keyboard, 12)
	assert.Equal(t, domain.InlineButton{Text: "00", Data: "num:0"}, page.Keyboard[0][0])
	assert.Equal(t, domain.InlineButton{Text: "❌", Data: "taken:8"}, page.Keyboard[1][3])
	assert.Equal(t, []domain.InlineButton{
		{Text: "1/2", Data: "noop"},
		{Text: texts.ButtonNext, Data: "page:1"},
	}, page.Keyboard[10])

	require.NoError(t, f.svc.HandleCallback(ctx, f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "num:7")))
	require.NoError(t, f.svc.HandleCallback(ctx, f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "num:3")))
	assert.Equal(t, []int{3, 7}, f.sess.Selected)
	assert.Equal(t, domain.InlineButton{Text: "✅07", Data: "num:7"}, f.client.last().Keyboard[1][2])
	assert.Contains(t, f.client.last().Text, "$40,000")

	require.NoError(t, f.svc.HandleCallback(ctx, f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "num:7")))
	assert.Equal(t, []int{3}, f.sess.Selected)

	require.NoError(t, f.svc.HandleCallback(ctx, f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "taken:8")))
	assert.Equal(t, answered{id: "cb-taken:8", text: texts.NumberTaken}, f.client.answered[len(f.client.answered)-1])

	require.NoError(t, f.svc.HandleCallback(ctx, f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "page:1")))
	assert.Equal(t, 1, f.sess.Page)
	assert.Equal(t, domain.InlineButton{Text: "50", Data: "num:50"}, f.client.last().Keyboard[0][0])

	// каждый callback получил ответ
	assert.Len(t, f.client.answered, 6)
}

func TestConfirmReservation(t *testing.T) {
	f := newFixture(t)
	f.register()
	ctx := context.Background()

	f.sess.StartSelection(1)
	f.sess.Toggle(42)
	f.sess.Toggle(3)
	f.sess.Toggle(7)

	require.NoError(t, f.svc.HandleCallback(ctx, f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "confirm")))

	require.Len(t, f.raffles.reserves, 1)
	assert.Equal(t, reserveCall{buyerID: buyerChat, raffleID: 1, numbers: []int{3, 7, 42}}, f.raffles.reserves[0])
	assert.True(t, f.sess.IsEmpty())

	last := f.client.last()
	assert.Equal(t, poolMsgID, last.EditMessageID)
	assert.Contains(t, last.Text, "3, 7, 42")
	assert.Contains(t, last.Text, "$60,000")
	assert.Empty(t, last.Keyboard)
}

func TestConfirmNothingSelected(t *testing.T) {
	f := newFixture(t)
	f.register()
	f.sess.StartSelection(1)

	require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "confirm")))

	assert.Empty(t, f.raffles.reserves)
	assert.Equal(t, answered{id: "cb-confirm", text: texts.NothingSelected, alert: true}, f.client.answered[0])
}

func TestConfirmConflict(t *testing.T) {
	f := newFixture(t)
	f.register()
	f.raffles.pool[7].Reserved = true
	f.raffles.reserveErr = &domain.ConflictError{RaffleID: 1, Taken: []int{7}, Pool: f.raffles.pool}

	f.sess.StartSelection(1)
	f.sess.Toggle(7)
	f.sess.Toggle(9)

	require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "confirm")))

	assert.Equal(t, []int{9}, f.sess.Selected)
	assert.Equal(t, int64(1), f.sess.RaffleID)
	assert.Equal(t, answered{id: "cb-confirm", text: texts.FormatConflict([]int{7}), alert: true}, f.client.answered[0])
	assert.Equal(t, domain.InlineButton{Text: "❌", Data: "taken:7"}, f.client.last().Keyboard[1][2])
}

func TestConfirmClosedRaffle(t *testing.T) {
	f := newFixture(t)
	f.register()
	f.raffles.reserveErr = fmt.Errorf("%w: raffle 1 is closed", domain.ErrRaffleNotFound)
	f.sess.StartSelection(1)
	f.sess.Toggle(1)

	require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(buyerChat, buyerChat, "private", poolMsgID, "confirm")))

	assert.True(t, f.sess.IsEmpty())
	assert.Equal(t, texts.RaffleUnavailable, f.client.last().Text)
}

func TestBuyerCallbacksIgnoredInGroups(t *testing.T) {
	f := newFixture(t)
	f.register()

	require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(buyerChat, reviewChat, "supergroup", poolMsgID, "raffle:1")))

	assert.Empty(t, f.client.sent)
	assert.Len(t, f.client.answered, 1)
}

func TestPhotoSubmitsProof(t *testing.T) {
	f := newFixture(t)
	f.register()

	require.NoError(t, f.svc.HandlePhoto(context.Background(), f.sess, photoMessage(buyerChat, "small", "large")))

	assert.Equal(t, []string{"large"}, f.raffles.proofs)
	require.Len(t, f.client.sent, 2)
	assert.Equal(t, texts.ProofReceived, f.client.sent[0].Text)

	review := f.client.sent[1]
	assert.Equal(t, reviewChat, review.ChatID)
	assert.Equal(t, "large", review.PhotoFileID)
	assert.Contains(t, review.Text, "Pago #10")
	assert.Contains(t, review.Text, "$60,000")
	assert.Equal(t, reviewKeyboard(10), review.Keyboard)

	assert.Equal(t, map[int64]string{10: "large"}, f.proofs.archived)
}

func TestPhotoOutcomes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "no pending payment", err: domain.ErrNoPendingPayment, want: texts.ProofNoPending},
		{name: "expired", err: domain.ErrPaymentExpired, want: texts.FormatProofExpired(testDeadline)},
		{name: "already in review", err: fmt.Errorf("%w: payment 1 is en_revision", domain.ErrInvalidTransition), want: texts.ProofAlreadySubmitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.raffles.proofErr = tt.err

			require.NoError(t, f.svc.HandlePhoto(context.Background(), f.sess, photoMessage(buyerChat, "p1")))

			require.Len(t, f.client.sent, 1)
			assert.Equal(t, tt.want, f.client.sent[0].Text)
			assert.Empty(t, f.proofs.archived)
		})
	}
}

func TestPhotoStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.raffles.proofErr = fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)

	err := f.svc.HandlePhoto(context.Background(), f.sess, photoMessage(buyerChat, "p1"))
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, texts.InternalError, f.client.last().Text)
}

func TestReviewDecision(t *testing.T) {
	t.Run("approve by admin", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(adminChat, reviewChat, "supergroup", reviewMsgID, "approve:10")))

		assert.Equal(t, []decideCall{{paymentID: 10, decision: domain.DecisionApprove}}, f.raffles.decisions)
		edit := f.client.last()
		assert.Equal(t, fmt.Sprintf(texts.ReviewApproved, 10), edit.Text)
		assert.Equal(t, reviewChat, edit.ChatID)
		assert.Equal(t, reviewMsgID, edit.EditMessageID)
		assert.False(t, edit.EditCaption)
	})

	t.Run("outcome appended to proof caption", func(t *testing.T) {
		f := newFixture(t)
		query := callback(adminChat, reviewChat, "supergroup", reviewMsgID, "reject:10")
		caption := "Pago #10"
		query.Message.Caption = &caption
		query.Message.Photo = []domain.PhotoSize{{FileID: "p1"}}

		require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, query))

		require.Len(t, f.client.sent, 1)
		edit := f.client.sent[0]
		assert.True(t, edit.EditCaption)
		assert.Equal(t, reviewMsgID, edit.EditMessageID)
		assert.Equal(t, "Pago #10\n\n"+fmt.Sprintf(texts.ReviewRejected, 10), edit.Text)
		assert.Empty(t, edit.Keyboard)
	})

	t.Run("edit failure falls back to new message", func(t *testing.T) {
		f := newFixture(t)
		f.client.editErr = errors.New("message to edit not found")

		require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(adminChat, reviewChat, "supergroup", reviewMsgID, "approve:10")))

		require.Len(t, f.client.sent, 1)
		assert.Equal(t, fmt.Sprintf(texts.ReviewApproved, 10), f.client.sent[0].Text)
		assert.Zero(t, f.client.sent[0].EditMessageID)
	})

	t.Run("reject by admin", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(adminChat, reviewChat, "supergroup", reviewMsgID, "reject:10")))

		assert.Equal(t, []decideCall{{paymentID: 10, decision: domain.DecisionReject}}, f.raffles.decisions)
	})

	t.Run("not admin", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(buyerChat, reviewChat, "supergroup", reviewMsgID, "approve:10")))

		assert.Empty(t, f.raffles.decisions)
		assert.Equal(t, answered{id: "cb-approve:10", text: texts.NotAdmin, alert: true}, f.client.answered[0])
	})

	t.Run("already decided", func(t *testing.T) {
		f := newFixture(t)
		f.raffles.decideErr = fmt.Errorf("%w: approved on aprobado", domain.ErrInvalidTransition)

		require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(adminChat, reviewChat, "supergroup", reviewMsgID, "approve:10")))

		assert.Empty(t, f.client.sent)
		assert.Equal(t, texts.ReviewAlreadyDone, f.client.answered[0].text)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)
		f.raffles.decideErr = fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable)

		err := f.svc.HandleCallback(context.Background(), f.sess, callback(adminChat, reviewChat, "supergroup", reviewMsgID, "approve:10"))
		require.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Equal(t, answered{id: "cb-approve:10", text: texts.InternalError, alert: true}, f.client.answered[0])
	})
}

func TestAdminCreateRaffle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := domain.NewSession(adminChat)

	require.NoError(t, f.svc.HandleCallback(ctx, sess, callback(adminChat, adminChat, "private", 3, "adm:new")))
	assert.Equal(t, domain.StepRaffleName, sess.Step)

	require.NoError(t, f.svc.HandleText(ctx, sess, privateMessage(adminChat, "Moto 2026")))
	assert.Equal(t, texts.AskRafflePrice, f.client.last().Text)

	require.NoError(t, f.svc.HandleText(ctx, sess, privateMessage(adminChat, "veinte")))
	assert.Equal(t, texts.InvalidPrice, f.client.last().Text)

	require.NoError(t, f.svc.HandleText(ctx, sess, privateMessage(adminChat, "$20,000")))
	require.Len(t, f.raffles.created, 1)
	assert.Equal(t, "Moto 2026", f.raffles.created[0].Name)
	assert.Equal(t, int64(20000), f.raffles.created[0].UnitPrice)
	assert.True(t, sess.IsEmpty())
	assert.Equal(t, texts.FormatRaffleCreated(f.raffles.created[0]), f.client.last().Text)
}

func TestAdminCallbacksRequireAdmin(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.HandleCallback(context.Background(), f.sess, callback(buyerChat, buyerChat, "private", 3, "delok:1")))

	assert.Empty(t, f.raffles.deleted)
	assert.Equal(t, texts.NotAdmin, f.client.answered[0].text)
}

func TestAdminDeleteRaffle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := domain.NewSession(adminChat)

	require.NoError(t, f.svc.HandleCallback(ctx, sess, callback(adminChat, adminChat, "private", 3, "del:1")))
	assert.Equal(t, confirmDeleteKeyboard(1), f.client.last().Keyboard)

	require.NoError(t, f.svc.HandleCallback(ctx, sess, callback(adminChat, adminChat, "private", 3, "delok:1")))
	assert.Equal(t, []int64{1}, f.raffles.deleted)
	assert.Equal(t, texts.RaffleDeleted, f.client.last().Text)
}

func TestAdminPendingReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := domain.NewSession(adminChat)

	require.NoError(t, f.svc.HandleCallback(ctx, sess, callback(adminChat, adminChat, "private", 3, "adm:pending")))
	assert.Equal(t, texts.NoPendingReviews, f.client.last().Text)

	ref := "proof-1"
	f.raffles.payments = []*domain.PaymentDetails{{
		Payment:    domain.Payment{ID: 4, BuyerID: buyerChat, ProofReference: &ref, State: domain.PaymentStateInReview, CreatedAt: 0},
		RaffleName: "Moto",
		UnitPrice:  20000,
		BuyerName:  "Ana",
		Numbers:    []int{1},
	}}

	require.NoError(t, f.svc.HandleCallback(ctx, sess, callback(adminChat, adminChat, "private", 3, "adm:pending")))
	last := f.client.last()
	assert.Equal(t, "proof-1", last.PhotoFileID)
	assert.Equal(t, reviewKeyboard(4), last.Keyboard)
	// создан в 0, сейчас 1000 с: больше дедлайна
	assert.Contains(t, last.Text, fmt.Sprintf(texts.ReviewLate, 10))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "3001234567", want: "3001234567", ok: true},
		{raw: "+57 (300) 123-4567", want: "+573001234567", ok: true},
		{raw: "123456", ok: false},
		{raw: "1234567890123456", ok: false},
		{raw: "300 12a 4567", ok: false},
		{raw: "30+01234567", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{raw: "20000", want: 20000, ok: true},
		{raw: "$20,000", want: 20000, ok: true},
		{raw: "20.000", want: 20000, ok: true},
		{raw: "0", ok: false},
		{raw: "-5", ok: false},
		{raw: "abc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data   string
		action string
		arg    int64
		ok     bool
	}{
		{data: "raffle:12", action: "raffle", arg: 12, ok: true},
		{data: "confirm", action: "confirm", ok: true},
		{data: "adm:raffles", action: "adm:raffles", ok: true},
		{data: "num:x", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			action, arg, ok := parseCallback(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.arg, arg)
		})
	}
}
