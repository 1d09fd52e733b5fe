package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the application's secrets in the OS keychain
const KeyringService = "coach-ops"

// GetSMTPPassword reads the SMTP password stored for keyringAccount
func GetSMTPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) == "" {
		return "", errors.New("keyring account name is empty")
	}
	pw, err := keyring.Get(KeyringService, keyringAccount)
	if err != nil {
		return "", fmt.Errorf("SMTP password not found in keyring for %s: %w", keyringAccount, err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", fmt.Errorf("SMTP password in keyring for %s is empty", keyringAccount)
	}
	return pw, nil
}

// SetSMTPPassword stores password for keyringAccount
func SetSMTPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

// DeleteSMTPPassword removes the password stored for keyringAccount
func DeleteSMTPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// SMTPKeyringAccount returns the default keyring account for a relay login
func SMTPKeyringAccount(username, host string) string {
	return fmt.Sprintf("coach-ops:smtp:%s@%s", username, host)
}
