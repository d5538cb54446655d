package emailsvc

import (
	"net/mail"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/trezcool/rota/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type logEntry struct {
	level, msg string
}

type recordLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordLogger) Debug(msg string, _ ...interface{}) { l.log("debug", msg) }
func (l *recordLogger) Info(msg string, _ ...interface{})  { l.log("info", msg) }
func (l *recordLogger) Warn(msg string, _ ...interface{})  { l.log("warn", msg) }
func (l *recordLogger) Error(msg string, _ ...interface{}) { l.log("error", msg) }
func (l *recordLogger) Fatal(msg string, _ ...interface{}) { l.log("fatal", msg) }

func (l *recordLogger) levels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	levels := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		levels = append(levels, e.level)
	}
	return levels
}

func resetMessage(to string) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Jane", Address: to}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]string{"Name": "Jane", "UID": "dWlk", "Token": "B4-sig"},
	}
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	lg := new(recordLogger)
	svc := NewConsoleServiceMock(conf, lg)

	svc.SendMessages(
		resetMessage("jane@rota.test"),
		&core.EmailMessage{Subject: "no recipient", BodyStr: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@rota.test"}}, Subject: "plain", BodyStr: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "y@rota.test"}}, TemplateName: "missing"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 2)

	reset := sent[0]
	assert.Contains(t, reset.TextContent, "Hi Jane,")
	assert.Contains(t, reset.TextContent, conf.FrontendBaseURL+"/password-reset/dWlk/B4-sig")
	assert.Contains(t, reset.TextContent, "The Rota Team")
	assert.Contains(t, reset.HTMLContent, `<a href="`+conf.FrontendBaseURL+`/password-reset/dWlk/B4-sig">`)

	plain := sent[1]
	assert.Equal(t, "hello", plain.TextContent)
	assert.Empty(t, plain.HTMLContent)

	// unknown template
	assert.Equal(t, []string{"error"}, lg.levels())
}

func TestConsoleService_SendMessages(t *testing.T) {
	lg := new(recordLogger)
	svc := newConsoleService(core.NewTestConfig(), lg)

	svc.SendMessages(resetMessage("a@rota.test"), resetMessage("b@rota.test"), resetMessage("c@rota.test"))
	svc.Wait()

	assert.Len(t, svc.SentMessages(), 3)
	assert.Equal(t, []string{"info", "info", "info"}, lg.levels())
}

func TestConsoleService_format(t *testing.T) {
	conf := core.NewTestConfig()
	svc := newConsoleService(conf, new(recordLogger))

	msg := resetMessage("jane@rota.test")
	msg.Cc = []mail.Address{{Address: "boss@rota.test"}}
	require.NoError(t, msg.Render(conf.FrontendBaseURL))

	body, err := svc.format(*msg)
	require.NoError(t, err)
	assert.Contains(t, body, "From: \"Rota\" <noreply@localhost>\r\n")
	assert.Contains(t, body, "Subject: [Rota] Password Reset\r\n")
	assert.Contains(t, body, "To: \"Jane\" <jane@rota.test>\r\n")
	assert.Contains(t, body, "CC: <boss@rota.test>\r\n")
	assert.NotContains(t, body, "BCC:")
	assert.Contains(t, body, "Content-Type: text/plain; charset=utf-8")
	assert.Contains(t, body, "Content-Type: text/html; charset=utf-8")
}

func TestSendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewSendgridService(conf, new(recordLogger)).(*sendgridService)

	msg := resetMessage("jane@rota.test")
	msg.Bcc = []mail.Address{{Name: "Audit", Address: "audit@rota.test"}}
	require.NoError(t, msg.Render(conf.FrontendBaseURL))

	m := svc.prepare(*msg)
	assert.Equal(t, "noreply@localhost", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Rota] Password Reset", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "jane@rota.test", p.To[0].Address)
	require.Len(t, p.BCC, 1)
	assert.Equal(t, "Audit", p.BCC[0].Name)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "text/html", m.Content[1].Type)
}
