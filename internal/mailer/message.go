package mailer

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	Kind    string
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	Date    time.Time
	ID      string
}

func newMessage(kind, from, subject string, to ...string) *Message {
	return &Message{
		Kind:    kind,
		From:    from,
		To:      to,
		Subject: subject,
		Date:    time.Now(),
		ID:      uuid.NewString(),
	}
}

// Bytes renders m as a multipart/alternative RFC 5322 message with the text
// part first.
func (m *Message) Bytes() ([]byte, error) {
	if len(m.To) == 0 {
		return nil, fmt.Errorf("message %q has no recipients", m.Subject)
	}
	from, err := mail.ParseAddress(m.From)
	if err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.From, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", m.Text},
		{"text/html; charset=UTF-8", m.HTML},
	} {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", part.contentType)
		h.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(part.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	domain := "localhost"
	if at := strings.LastIndex(from.Address, "@"); at >= 0 {
		domain = from.Address[at+1:]
	}

	var out bytes.Buffer
	writeHeader(&out, "From", from.String())
	writeHeader(&out, "To", strings.Join(m.To, ", "))
	writeHeader(&out, "Subject", mime.QEncoding.Encode("UTF-8", m.Subject))
	writeHeader(&out, "Date", m.Date.Format(time.RFC1123Z))
	writeHeader(&out, "Message-ID", fmt.Sprintf("<%s@%s>", m.ID, domain))
	writeHeader(&out, "MIME-Version", "1.0")
	writeHeader(&out, "Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writeHeader(b *bytes.Buffer, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func envelopeAddress(from string) (string, error) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "", fmt.Errorf("invalid sender %q: %w", from, err)
	}
	return addr.Address, nil
}
