package generator

import (
	"errors"
	"fmt"

	"minecraft-codegen/internal/llm"
)

// Texts shown to the user by every front-end.
const (
	MsgBlankInput    = "Введите описание!"
	MsgFailed        = "Генерация не удалась"
	MsgPersistFailed = "Код сгенерирован, но сохранить историю не удалось"
	MsgInProgress    = "🛡️ AI генерирует код..."
)

// MissingCredentialMessage is the blocking error shown instead of the prompt form.
func MissingCredentialMessage(envVar string) string {
	return fmt.Sprintf("API ключ не найден! Установите переменную окружения %s.", envVar)
}

// Describe maps an error returned by Generate to user-facing text.
func Describe(err error, credentialVar string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBlankInput):
		return MsgBlankInput
	case errors.Is(err, ErrNoCredential):
		return MissingCredentialMessage(credentialVar)
	case errors.Is(err, ErrPersist):
		return MsgPersistFailed
	}
	var se *StreamError
	if errors.As(err, &se) {
		return MsgFailed + ": " + llm.Describe(se.Err)
	}
	return MsgFailed + ": " + err.Error()
}
