package texts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/pkg/money"
)

// Numbers "3, 7, 42"
func Numbers(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ", ")
}

// Number номер на кнопке пула, с ведущим нулём
func Number(v int) string {
	return fmt.Sprintf("%02d", v)
}

func FormatUnknownCommand(command string) string {
	return fmt.Sprintf(UnknownCommand, command)
}

func FormatReservation(r *domain.Reservation, raffleName string, deadline time.Duration) string {
	return fmt.Sprintf(ReservationCreated,
		raffleName,
		Numbers(r.Numbers),
		len(r.Numbers),
		money.Format(r.UnitPrice),
		money.Format(r.Total),
		int(deadline.Minutes()),
	)
}

func FormatConflict(taken []int) string {
	return fmt.Sprintf(ReservationConflict, Numbers(taken))
}

func FormatProofExpired(deadline time.Duration) string {
	return fmt.Sprintf(ProofExpired, int(deadline.Minutes()))
}

// FormatDecision уведомление покупателю о финальном состоянии платежа
func FormatDecision(d *domain.PaymentDetails) string {
	switch d.State {
	case domain.PaymentStateApproved:
		return fmt.Sprintf(PaymentApproved, d.RaffleName, Numbers(d.Numbers))
	case domain.PaymentStateRejected:
		return fmt.Sprintf(PaymentRejected, d.RaffleName, Numbers(d.Numbers))
	case domain.PaymentStateExpired:
		return fmt.Sprintf(PaymentExpired, d.RaffleName, Numbers(d.Numbers))
	}
	return ""
}

// FormatReviewRequest сообщение ревьюеру о чеке
func FormatReviewRequest(d *domain.PaymentDetails, now time.Time, deadline time.Duration) string {
	msg := fmt.Sprintf(ReviewRequest,
		d.ID,
		d.BuyerName,
		d.BuyerID,
		d.RaffleName,
		Numbers(d.Numbers),
		len(d.Numbers),
		money.Format(d.UnitPrice),
		money.Format(d.Expected()),
	)
	if d.IsOverdue(now, deadline) {
		msg += fmt.Sprintf(ReviewLate, int(deadline.Minutes()))
	}
	return msg
}

// StateLabel подпись состояния платежа для покупателя
func StateLabel(s domain.PaymentState) string {
	switch s {
	case domain.PaymentStatePending:
		return "⏳ pendiente de pago"
	case domain.PaymentStateInReview:
		return "🔎 en revisión"
	case domain.PaymentStateApproved:
		return "✅ aprobado"
	case domain.PaymentStateRejected:
		return "❌ rechazado"
	case domain.PaymentStateExpired:
		return "⏰ expirado"
	}
	return s.String()
}

func FormatMyTickets(payments []*domain.PaymentDetails) string {
	if len(payments) == 0 {
		return MyTicketsEmpty
	}

	var b strings.Builder
	b.WriteString(MyTicketsHeader)
	for _, p := range payments {
		b.WriteString(fmt.Sprintf("\n%s - %s\n", p.RaffleName, StateLabel(p.State)))
		if len(p.Numbers) > 0 {
			b.WriteString(fmt.Sprintf("Números: %s (%s)\n", Numbers(p.Numbers), money.Format(p.Expected())))
		}
	}
	return b.String()
}

// FormatPoolHeader заголовок страницы пула с текущим выбором
func FormatPoolHeader(r *domain.Raffle, selected []int, page, pages int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎟️ %s\nPrecio por número: %s\n", r.Name, money.Format(r.UnitPrice)))
	b.WriteString(fmt.Sprintf("Página %d de %d\n\n", page+1, pages))
	if len(selected) == 0 {
		b.WriteString("Toca los números que quieres reservar.")
	} else {
		b.WriteString(fmt.Sprintf("Seleccionados: %s\nTotal: %s", Numbers(selected), money.Format(r.Total(len(selected)))))
	}
	return b.String()
}

func FormatRaffleButton(r *domain.RaffleOverview) string {
	return fmt.Sprintf("%s - %s (%d libres)", r.Name, money.Format(r.UnitPrice), r.FreeNumbers)
}

func FormatRaffleCreated(r *domain.Raffle) string {
	return fmt.Sprintf(RaffleCreated, r.Name, r.TotalNumbers, money.Format(r.UnitPrice))
}

func FormatConfirmDelete(r *domain.Raffle) string {
	return fmt.Sprintf(ConfirmDelete, r.Name)
}

func FormatStats(s *domain.RaffleStats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 %s\n\n", s.Raffle.Name))
	b.WriteString(fmt.Sprintf("Total de números: %d\n", s.Raffle.TotalNumbers))
	b.WriteString(fmt.Sprintf("Vendidos: %d\n", s.Sold))
	b.WriteString(fmt.Sprintf("Reservados: %d\n", s.Reserved))
	b.WriteString(fmt.Sprintf("Libres: %d\n", s.Free))
	b.WriteString(fmt.Sprintf("Recaudado: %s\n\nPagos:\n", money.Format(s.Raffle.Total(s.Sold))))
	for _, state := range domain.PaymentStates {
		b.WriteString(fmt.Sprintf("%s: %d\n", StateLabel(state), s.PaymentCounts[state]))
	}
	return b.String()
}

// FormatSold талонарий: проданные номера с покупателями
func FormatSold(raffle *domain.Raffle, sold []domain.SoldNumber) string {
	if len(sold) == 0 {
		return SoldEmpty
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📒 Talonario - %s\n\n", raffle.Name))
	for _, n := range sold {
		username := ""
		if n.Username != nil && *n.Username != "" {
			username = " @" + *n.Username
		}
		b.WriteString(fmt.Sprintf("%s - %s%s - %s\n", Number(n.Value), n.BuyerName, username, n.Phone))
	}
	return b.String()
}
