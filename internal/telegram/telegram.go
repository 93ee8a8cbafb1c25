package telegram

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go

// Client delivers operator notifications. Messages are MarkdownV2.
type Client interface {
	SendMessage(chatID int64, text string) (int, error)
	// SendMessageToUser notifies the configured operator; failures are only logged.
	SendMessageToUser(text string)
}

// Nop is used when no bot token is configured.
type Nop struct{}

func (Nop) SendMessage(int64, string) (int, error) { return 0, nil }
func (Nop) SendMessageToUser(string)              {}

var _ Client = Nop{}
