package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/testutil"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(testutil.Config(), testutil.NewLogger())
	to := []mail.Address{{Name: "Jane", Address: "jane@test.cd"}}

	svc.SendMessages(
		&core.EmailMessage{To: to, Subject: "Hi", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "hello"},
		&core.EmailMessage{To: to, Subject: "no content"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Hi", sent[0].Subject)
	assert.Equal(t, "hello", sent[0].TextContent)
}

func TestNewSyncConsoleService(t *testing.T) {
	out := new(bytes.Buffer)
	svc := NewSyncConsoleService(testutil.Config(), testutil.NewLogger(), out)

	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Name: "Jane", Address: "jane@test.cd"}}, Subject: "Hi", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "ignored"},
	)

	// printed before SendMessages returned
	assert.Contains(t, out.String(), "Subject: [Bursar] Hi\r\n")
	assert.Contains(t, out.String(), "hello")
	assert.NotContains(t, out.String(), "ignored")
}

func Test_consoleService_compose(t *testing.T) {
	svc := NewConsoleService(testutil.Config(), testutil.NewLogger()).(*consoleService)
	msg := core.EmailMessage{
		To:          []mail.Address{{Name: "Jane", Address: "jane@test.cd"}},
		Cc:          []mail.Address{{Address: "cc@test.cd"}},
		Subject:     "Payment accepted",
		TextContent: "text body",
		HTMLContent: "<p>html body</p>",
	}

	body, err := svc.compose(msg)
	require.NoError(t, err)

	assert.Contains(t, body, "From: \"Bursar\" <noreply@localhost>\r\n")
	assert.Contains(t, body, "Subject: [Bursar] Payment accepted\r\n")
	assert.Contains(t, body, "To: \"Jane\" <jane@test.cd>\r\n")
	assert.Contains(t, body, "CC: <cc@test.cd>\r\n")
	assert.Contains(t, body, "text body")
	assert.Contains(t, body, "<p>html body</p>")
	assert.Equal(t, 2, strings.Count(body, "Content-Type: text/"))
}
