package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "gradwatch"

// SMTPAccount is the keychain account name for a sender address.
func SMTPAccount(from string) string {
	return "smtp:" + strings.TrimSpace(from)
}

// GetSMTPPassword reads the SMTP password for the given sender from the
// OS keychain.
func GetSMTPPassword(from string) (string, error) {
	pw, err := keyring.Get(KeyringService, SMTPAccount(from))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("SMTP password in keychain is empty")
	}
	return pw, nil
}

// SetSMTPPassword stores the SMTP password for the given sender.
func SetSMTPPassword(from, password string) error {
	if strings.TrimSpace(from) == "" {
		return errors.New("sender address is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, SMTPAccount(from), password)
}

// DeleteSMTPPassword removes the stored SMTP password for the given sender.
func DeleteSMTPPassword(from string) error {
	if strings.TrimSpace(from) == "" {
		return errors.New("sender address is empty")
	}
	return keyring.Delete(KeyringService, SMTPAccount(from))
}
