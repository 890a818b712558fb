package entities

import (
	"strings"

	chatserrors "github.com/Conte777/operator-service/internal/domain/chats/errors"
)

const (
	keySeparator   = "_"
	minPhoneLength = 10
)

// ComposeKey joins an account phone and a chat id into a conversation key
func ComposeKey(phone, chatID string) string {
	return phone + keySeparator + chatID
}

// SplitKey splits a conversation key on its first separator
func SplitKey(key string) (phone, chatID string, err error) {
	phone, chatID, found := strings.Cut(key, keySeparator)
	if !found || len(phone) < minPhoneLength || chatID == "" {
		return "", "", chatserrors.ErrMalformedKey
	}
	return phone, chatID, nil
}
