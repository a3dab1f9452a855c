package alerter

type Config struct {
	BotToken        string `envconfig:"BOT_TOKEN"`
	ChatID          int64  `envconfig:"CHAT_ID"`
	MessageThreadID int64  `envconfig:"MESSAGE_THREAD_ID"`
	APIEndpoint     string `envconfig:"API_ENDPOINT"`
}

// Enabled алерты выключены, пока не задан токен и чат
func (c *Config) Enabled() bool {
	return c != nil && c.BotToken != "" && c.ChatID != 0
}
