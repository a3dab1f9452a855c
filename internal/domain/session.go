package domain

import (
	"sort"
	"time"
)

// SessionStep шаг диалога, которого ждёт бот
type SessionStep string

const (
	StepIdle          SessionStep = ""
	StepRegisterName  SessionStep = "register_name"
	StepRegisterPhone SessionStep = "register_phone"
	StepRaffleName    SessionStep = "raffle_name"
	StepRafflePrice   SessionStep = "raffle_price"
)

// Session контекст диалога одного чата. Загружается в начале обработки апдейта,
// передаётся в хендлеры явно и удаляется после завершения сценария
type Session struct {
	ChatID      int64       `json:"chat_id"`
	Step        SessionStep `json:"step,omitempty"`
	RaffleID    int64       `json:"raffle_id,omitempty"`
	Selected    []int       `json:"selected,omitempty"`
	Page        int         `json:"page,omitempty"`
	PendingName string      `json:"pending_name,omitempty"` // имя при регистрации
	DraftName   string      `json:"draft_name,omitempty"`   // название нового розыгрыша
	UpdatedAt   time.Time   `json:"updated_at"`
}

func NewSession(chatID int64) *Session {
	return &Session{ChatID: chatID}
}

// IsSelected номер выбран в текущей сессии
func (s *Session) IsSelected(value int) bool {
	for _, v := range s.Selected {
		if v == value {
			return true
		}
	}
	return false
}

// Toggle добавляет или убирает номер, возвращает true если номер теперь выбран
func (s *Session) Toggle(value int) bool {
	for i, v := range s.Selected {
		if v == value {
			s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
			return false
		}
	}
	s.Selected = append(s.Selected, value)
	sort.Ints(s.Selected)
	return true
}

// StartSelection начинает выбор номеров в розыгрыше
func (s *Session) StartSelection(raffleID int64) {
	s.RaffleID = raffleID
	s.Selected = nil
	s.Page = 0
	s.Step = StepIdle
}

// Reset завершает сценарий
func (s *Session) Reset() {
	chatID := s.ChatID
	*s = Session{ChatID: chatID}
}

// IsEmpty пустую сессию хранить не нужно
func (s *Session) IsEmpty() bool {
	return s.Step == StepIdle && s.RaffleID == 0 && len(s.Selected) == 0 &&
		s.PendingName == "" && s.DraftName == ""
}
