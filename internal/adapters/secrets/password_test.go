package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestSMTPPasswordRoundTrip(t *testing.T) {
	keyring.MockInit()
	account := SMTPKeyringAccount("alex", "smtp.example.com")
	assert.Equal(t, "coach-ops:smtp:alex@smtp.example.com", account)

	_, err := GetSMTPPassword(account)
	require.Error(t, err)

	require.NoError(t, SetSMTPPassword(account, "s3cret"))
	pw, err := GetSMTPPassword(account)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	require.NoError(t, DeleteSMTPPassword(account))
	_, err = GetSMTPPassword(account)
	require.Error(t, err)
}

func TestSMTPPasswordValidation(t *testing.T) {
	keyring.MockInit()
	require.Error(t, SetSMTPPassword("", "pw"))
	require.Error(t, SetSMTPPassword("acct", " "))
	_, err := GetSMTPPassword(" ")
	require.Error(t, err)
	require.Error(t, DeleteSMTPPassword(""))
}
