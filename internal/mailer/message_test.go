package mailer

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mimePart struct {
	contentType string
	body        string
}

// parseMessage splits a rendered message into its headers and decoded
// alternative parts.
func parseMessage(t *testing.T, raw []byte) (*mail.Message, []mimePart) {
	t.Helper()
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/alternative", mediaType)

	var parts []mimePart
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		// NextPart undoes quoted-printable transparently.
		body, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, mimePart{contentType: p.Header.Get("Content-Type"), body: string(body)})
	}
	return msg, parts
}

func TestMessageBytes(t *testing.T) {
	t.Parallel()

	m := newMessage("test", "Archive <do-not-reply@example.org>", "[AO3] Résumé of today", "admin@example.org")
	m.Text = "Plain body with a long line " + strings.Repeat("x", 120)
	m.HTML = `<p>HTML body = <b>bold</b></p>`

	raw, err := m.Bytes()
	require.NoError(t, err)

	msg, parts := parseMessage(t, raw)
	assert.Equal(t, "1.0", msg.Header.Get("MIME-Version"))
	assert.Equal(t, "admin@example.org", msg.Header.Get("To"))

	from, err := mail.ParseAddress(msg.Header.Get("From"))
	require.NoError(t, err)
	assert.Equal(t, "do-not-reply@example.org", from.Address)

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "[AO3] Résumé of today", subject)

	assert.Equal(t, "<"+m.ID+"@example.org>", msg.Header.Get("Message-ID"))
	_, err = msg.Header.Date()
	assert.NoError(t, err)

	require.Len(t, parts, 2)
	assert.True(t, strings.HasPrefix(parts[0].contentType, "text/plain"))
	assert.Equal(t, m.Text, parts[0].body)
	assert.True(t, strings.HasPrefix(parts[1].contentType, "text/html"))
	assert.Equal(t, m.HTML, parts[1].body)
}

func TestMessageBytesErrors(t *testing.T) {
	t.Parallel()

	_, err := newMessage("test", "do-not-reply@example.org", "No one").Bytes()
	assert.Error(t, err)

	_, err = newMessage("test", "not an address", "Bad sender", "admin@example.org").Bytes()
	assert.Error(t, err)
}

func TestEnvelopeAddress(t *testing.T) {
	t.Parallel()

	addr, err := envelopeAddress("Archive <do-not-reply@example.org>")
	require.NoError(t, err)
	assert.Equal(t, "do-not-reply@example.org", addr)

	_, err = envelopeAddress("")
	assert.Error(t, err)
}
