package mailer

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type received struct {
	sender     string
	recipients []string
	data       string
	username   string
}

// testBackend implements the go-smtp Backend interface
type testBackend struct {
	mu       sync.Mutex
	messages []received
	password string
}

func (b *testBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &testSession{backend: b}, nil
}

func (b *testBackend) last() received {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.messages[len(b.messages)-1]
}

// testSession implements the go-smtp Session and AuthSession interfaces
type testSession struct {
	backend *testBackend
	current received
}

func (s *testSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *testSession) Auth(_ string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if password != s.backend.password {
			return errors.New("invalid credentials")
		}
		s.current.username = username
		return nil
	}), nil
}

func (s *testSession) Mail(from string, _ *smtp.MailOptions) error {
	s.current.sender = from
	return nil
}

func (s *testSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	if strings.HasPrefix(to, "busy@") {
		return &smtp.SMTPError{Code: 451, EnhancedCode: smtp.EnhancedCode{4, 3, 0}, Message: "Try again later"}
	}
	s.current.recipients = append(s.current.recipients, to)
	return nil
}

func (s *testSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.current.data = string(data)
	s.backend.mu.Lock()
	s.backend.messages = append(s.backend.messages, s.current)
	s.backend.mu.Unlock()
	return nil
}

func (s *testSession) Reset() {
	s.current = received{username: s.current.username}
}

func (s *testSession) Logout() error {
	return nil
}

func startTestServer(t *testing.T, backend *testBackend) (string, int) {
	t.Helper()
	server := smtp.NewServer(backend)
	server.Domain = "localhost"
	server.ReadTimeout = 5 * time.Second
	server.WriteTimeout = 5 * time.Second
	server.AllowInsecureAuth = true

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Serve(listener)
	t.Cleanup(func() { server.Close() })

	addr := listener.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func testMessage(to string) *core.Message {
	return &core.Message{
		From:     "coach@example.com",
		FromName: "Alex Coach",
		To:       to,
		Subject:  "Welcome — next steps",
		Body:     "Hi Sam,\n\nSee you soon.",
	}
}

func TestSMTPMailerSends(t *testing.T) {
	backend := &testBackend{password: "secret"}
	host, port := startTestServer(t, backend)

	m := NewSMTPMailer(SMTPOptions{Host: host, Port: port, Username: "alex", Password: "secret"}, zap.NewNop())
	result, err := m.Send(context.Background(), testMessage("sam@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "smtp", result.Provider)
	assert.NotEmpty(t, result.MessageID)

	got := backend.last()
	assert.Equal(t, "coach@example.com", got.sender)
	assert.Equal(t, []string{"sam@example.com"}, got.recipients)
	assert.Equal(t, "alex", got.username)
	assert.Contains(t, got.data, "Message-Id: <"+result.MessageID+">")
	assert.Contains(t, got.data, "Hi Sam,\r\n")
}

func TestSMTPMailerBadPassword(t *testing.T) {
	backend := &testBackend{password: "secret"}
	host, port := startTestServer(t, backend)

	m := NewSMTPMailer(SMTPOptions{Host: host, Port: port, Username: "alex", Password: "wrong"}, zap.NewNop())
	_, err := m.Send(context.Background(), testMessage("sam@example.com"))
	var authErr *core.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "smtp", authErr.Provider)
}

func TestSMTPMailerTemporaryRejection(t *testing.T) {
	backend := &testBackend{}
	host, port := startTestServer(t, backend)

	m := NewSMTPMailer(SMTPOptions{Host: host, Port: port}, zap.NewNop())
	_, err := m.Send(context.Background(), testMessage("busy@example.com"))
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSMTPMailerConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	m := NewSMTPMailer(SMTPOptions{Host: "127.0.0.1", Port: port, Timeout: time.Second}, zap.NewNop())
	_, err = m.Send(context.Background(), testMessage("sam@example.com"))
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSMTPMailerRequiresStartTLS(t *testing.T) {
	backend := &testBackend{}
	host, port := startTestServer(t, backend)

	m := NewSMTPMailer(SMTPOptions{Host: host, Port: port, StartTLS: true}, zap.NewNop())
	_, err := m.Send(context.Background(), testMessage("sam@example.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTTLS")
}
