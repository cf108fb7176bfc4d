package checkerspresenter

import (
	"strings"

	"github.com/park285/cheese-checkers-bot/internal/irisfast"
	"github.com/park285/cheese-checkers-bot/pkg/checkersdto"
)

// MetaFromMessage extracts who said what where from an inbound message.
func MetaFromMessage(msg *irisfast.Message) checkersdto.RequestMeta {
	if msg == nil {
		return checkersdto.RequestMeta{}
	}
	name := msg.SenderName()
	if name == "" {
		name = msg.UserID()
	}
	return checkersdto.RequestMeta{
		Room:   strings.TrimSpace(msg.Room),
		Sender: msg.UserID(),
		Name:   name,
	}
}

// SanitizeUserArg strips the mention marker from a target argument.
func SanitizeUserArg(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "@"))
}
