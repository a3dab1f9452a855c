package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

const numbersPerRow = 5

// Данные callback-кнопок: "<action>" или "<action>:<arg>"
const (
	cbRaffles   = "raffles"
	cbMyTickets = "mytickets"
	cbRaffle    = "raffle"
	cbNumber    = "num"
	cbTaken     = "taken"
	cbPage      = "page"
	cbNoop      = "noop"
	cbConfirm   = "confirm"
	cbCancel    = "cancel"
	cbApprove   = "approve"
	cbReject    = "reject"

	cbAdminRaffles = "adm:raffles"
	cbAdminNew     = "adm:new"
	cbAdminPending = "adm:pending"
	cbAdminRaffle  = "admr"
	cbStats        = "stats"
	cbSold         = "sold"
	cbDelete       = "del"
	cbDeleteOK     = "delok"
)

func callbackData(action string, arg int64) string {
	return fmt.Sprintf("%s:%d", action, arg)
}

// parseCallback делит данные на действие и числовой аргумент.
// Служебные действия adm:* возвращаются целиком
func parseCallback(data string) (string, int64, bool) {
	if strings.HasPrefix(data, "adm:") {
		return data, 0, true
	}

	action, raw, found := strings.Cut(data, ":")
	if !found {
		return action, 0, true
	}

	arg, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return action, arg, true
}

func mainMenu() [][]domain.InlineButton {
	return [][]domain.InlineButton{
		{{Text: texts.ButtonRaffles, Data: cbRaffles}},
		{{Text: texts.ButtonMyTickets, Data: cbMyTickets}},
	}
}

func adminMenu() [][]domain.InlineButton {
	return [][]domain.InlineButton{
		{{Text: texts.ButtonAdminRaffs, Data: cbAdminRaffles}},
		{{Text: texts.ButtonNewRaffle, Data: cbAdminNew}},
		{{Text: texts.ButtonPending, Data: cbAdminPending}},
	}
}

func rafflesKeyboard(raffles []*domain.RaffleOverview) [][]domain.InlineButton {
	rows := make([][]domain.InlineButton, 0, len(raffles))
	for _, r := range raffles {
		rows = append(rows, []domain.InlineButton{{Text: texts.FormatRaffleButton(r), Data: callbackData(cbRaffle, r.ID)}})
	}
	return rows
}

func reviewKeyboard(paymentID int64) [][]domain.InlineButton {
	return [][]domain.InlineButton{{
		{Text: texts.ButtonApprove, Data: callbackData(cbApprove, paymentID)},
		{Text: texts.ButtonReject, Data: callbackData(cbReject, paymentID)},
	}}
}

func adminRafflesKeyboard(raffles []*domain.Raffle) [][]domain.InlineButton {
	rows := make([][]domain.InlineButton, 0, len(raffles))
	for _, r := range raffles {
		rows = append(rows, []domain.InlineButton{{Text: r.Name, Data: callbackData(cbAdminRaffle, r.ID)}})
	}
	return rows
}

func adminRaffleKeyboard(raffleID int64) [][]domain.InlineButton {
	return [][]domain.InlineButton{
		{
			{Text: texts.ButtonStats, Data: callbackData(cbStats, raffleID)},
			{Text: texts.ButtonSold, Data: callbackData(cbSold, raffleID)},
		},
		{{Text: texts.ButtonDelete, Data: callbackData(cbDelete, raffleID)}},
	}
}

func confirmDeleteKeyboard(raffleID int64) [][]domain.InlineButton {
	return [][]domain.InlineButton{{
		{Text: texts.ButtonDeleteYes, Data: callbackData(cbDeleteOK, raffleID)},
		{Text: texts.ButtonCancel, Data: cbCancel},
	}}
}

// pageCount число страниц пула, минимум одна
func pageCount(total, pageSize int) int {
	if total == 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// poolKeyboard страница пула: номера по 5 в ряд, навигация, подтверждение
func poolKeyboard(pool []domain.PoolEntry, sess *domain.Session, page, pageSize int) [][]domain.InlineButton {
	pages := pageCount(len(pool), pageSize)
	start := page * pageSize
	end := min(start+pageSize, len(pool))

	rows := make([][]domain.InlineButton, 0, pageSize/numbersPerRow+2)
	var row []domain.InlineButton
	for _, e := range pool[start:end] {
		row = append(row, numberButton(e, sess.IsSelected(e.Value)))
		if len(row) == numbersPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if pages > 1 {
		nav := make([]domain.InlineButton, 0, 3)
		if page > 0 {
			nav = append(nav, domain.InlineButton{Text: texts.ButtonPrev, Data: callbackData(cbPage, int64(page-1))})
		}
		nav = append(nav, domain.InlineButton{Text: fmt.Sprintf("%d/%d", page+1, pages), Data: cbNoop})
		if page < pages-1 {
			nav = append(nav, domain.InlineButton{Text: texts.ButtonNext, Data: callbackData(cbPage, int64(page+1))})
		}
		rows = append(rows, nav)
	}

	rows = append(rows, []domain.InlineButton{
		{Text: texts.ButtonConfirm, Data: cbConfirm},
		{Text: texts.ButtonCancel, Data: cbCancel},
	})
	return rows
}

func numberButton(e domain.PoolEntry, selected bool) domain.InlineButton {
	switch {
	case selected:
		return domain.InlineButton{Text: "✅" + texts.Number(e.Value), Data: callbackData(cbNumber, int64(e.Value))}
	case e.Reserved:
		return domain.InlineButton{Text: "❌", Data: callbackData(cbTaken, int64(e.Value))}
	default:
		return domain.InlineButton{Text: texts.Number(e.Value), Data: callbackData(cbNumber, int64(e.Value))}
	}
}
