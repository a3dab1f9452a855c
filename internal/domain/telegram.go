package domain

// дока - https://core.telegram.org/bots/api

// Update - входящее обновление от Telegram Bot API
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// CallbackQuery - callback query от Telegram Bot API
type CallbackQuery struct {
	ID      string        `json:"id"`
	From    *TelegramUser `json:"from,omitempty"`
	Message *Message      `json:"message,omitempty"`
	Data    *string       `json:"data,omitempty"` // данные callback кнопки
}

// Message - сообщение от Telegram Bot API
type Message struct {
	MessageID int64         `json:"message_id"`
	From      *TelegramUser `json:"from,omitempty"`
	Chat      *Chat         `json:"chat"`
	Date      int64         `json:"date"`
	Text      *string       `json:"text,omitempty"`
	Caption   *string       `json:"caption,omitempty"`
	Photo     []PhotoSize   `json:"photo,omitempty"` // от меньшего к большему
}

// LargestPhoto file_id самого большого размера фото
func (m *Message) LargestPhoto() (string, bool) {
	if len(m.Photo) == 0 {
		return "", false
	}
	return m.Photo[len(m.Photo)-1].FileID, true
}

// PhotoSize - один размер фото
type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int    `json:"file_size,omitempty"`
}

// TelegramUser - пользователь Telegram (не domain.Buyer)
type TelegramUser struct {
	ID        int64   `json:"id"`
	IsBot     bool    `json:"is_bot"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name,omitempty"`
	Username  *string `json:"username,omitempty"`
}

// Chat - чат в Telegram
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"` // "private", "group", "supergroup", "channel"
}

func (c *Chat) IsPrivate() bool {
	return c != nil && c.Type == "private"
}

// InlineButton кнопка inline-клавиатуры
type InlineButton struct {
	Text string
	Data string
}

// OutgoingMessage исходящее сообщение. EditMessageID != 0 - редактируем существующее
type OutgoingMessage struct {
	ChatID        int64
	Text          string
	Markdown      bool
	Keyboard      [][]InlineButton
	EditMessageID int64
	EditCaption   bool   // при EditMessageID редактируется подпись под фото, а не текст
	PhotoFileID   string // отправить фото с Text в подписи
}
