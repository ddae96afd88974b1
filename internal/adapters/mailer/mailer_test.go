package mailer

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/report-relay/internal/domain/model"
)

type smtpTranscript struct {
	from       string
	recipients []string
	data       string
}

// startFakeSMTP accepts a single session and reports what it received.
func startFakeSMTP(t *testing.T) (string, int, <-chan smtpTranscript) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan smtpTranscript, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		var tr smtpTranscript

		reply("220 localhost ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			upper := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
				reply("250-localhost")
				reply("250 OK")
			case strings.HasPrefix(upper, "MAIL FROM:"):
				tr.from = strings.Trim(line[len("MAIL FROM:"):], "<>")
				reply("250 OK")
			case strings.HasPrefix(upper, "RCPT TO:"):
				tr.recipients = append(tr.recipients, strings.Trim(line[len("RCPT TO:"):], "<>"))
				reply("250 OK")
			case upper == "DATA":
				reply("354 go ahead")
				var buf strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					buf.WriteString(l)
				}
				tr.data = buf.String()
				reply("250 queued")
			case upper == "QUIT":
				reply("221 bye")
				out <- tr
				return
			default:
				reply("502 not implemented")
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port, out
}

func TestSMTPNotifier_MultipleRecipients(t *testing.T) {
	t.Parallel()

	host, port, received := startFakeSMTP(t)
	n := NewSMTPNotifier(SMTPConfig{Host: host, Port: port, From: "Report Relay <relay@example.com>"})
	n.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }

	err := n.Notify(context.Background(), model.Notification{
		Subject:    "Daily Inv Ledger: amazonia.tsv Uploaded to AS400",
		Body:       "filename: amazonia.tsv\nhas been uploaded and is ready for processing.",
		Recipients: []string{"ops@example.com", " ", "it@example.com"},
	})
	require.NoError(t, err)

	select {
	case tr := <-received:
		assert.Equal(t, "relay@example.com", tr.from)
		assert.Equal(t, []string{"ops@example.com", "it@example.com"}, tr.recipients)
		assert.Contains(t, tr.data, "Subject: Daily Inv Ledger: amazonia.tsv Uploaded to AS400\r\n")
		assert.Contains(t, tr.data, "To: ops@example.com, it@example.com\r\n")
		assert.Contains(t, tr.data, "filename: amazonia.tsv\r\nhas been uploaded and is ready for processing.")
	case <-time.After(5 * time.Second):
		t.Fatal("smtp server did not receive a message")
	}
}

func TestSMTPNotifier_NoRecipients(t *testing.T) {
	t.Parallel()

	// No server: a dial would fail.
	n := NewSMTPNotifier(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "relay@example.com"})
	require.NoError(t, n.Notify(context.Background(), model.Notification{Subject: "x"}))
}

func TestSMTPNotifier_RequiresSTARTTLS(t *testing.T) {
	t.Parallel()

	host, port, _ := startFakeSMTP(t)
	n := NewSMTPNotifier(SMTPConfig{Host: host, Port: port, From: "relay@example.com", UseTLS: true})

	err := n.Notify(context.Background(), model.Notification{Recipients: []string{"ops@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTTLS")
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	t.Parallel()

	msg := buildMessage("relay@example.com", []string{"a@example.com"}, "hi\r\nBcc: evil@example.com", "body", time.Unix(0, 0).UTC())
	assert.Contains(t, msg, "Subject: hi  Bcc: evil@example.com\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
}

func TestLocalNotifier(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := NewLocalNotifier(logger).Notify(context.Background(), model.Notification{
		Subject:    "subject",
		Body:       "body",
		Recipients: []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"to":"a@example.com,b@example.com"`)
	assert.Contains(t, buf.String(), `"component":"mailer.local"`)
}

func TestNew(t *testing.T) {
	t.Parallel()

	n, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LocalNotifier{}, n)

	n, err = New(Config{Mode: "SMTP", SMTP: SMTPConfig{Host: "smtp.office365.com", Port: 587, From: "relay@example.com", UseTLS: true}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	tests := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{name: "missing host", cfg: Config{Mode: ModeSMTP, SMTP: SMTPConfig{Port: 587, From: "a@b.c"}}, errMsg: "SMTP_SERVER"},
		{name: "missing port", cfg: Config{Mode: ModeSMTP, SMTP: SMTPConfig{Host: "h", From: "a@b.c"}}, errMsg: "SMTP_PORT"},
		{name: "missing from", cfg: Config{Mode: ModeSMTP, SMTP: SMTPConfig{Host: "h", Port: 587}}, errMsg: "SMTP_SENDER_EMAIL"},
		{name: "bad from", cfg: Config{Mode: ModeSMTP, SMTP: SMTPConfig{Host: "h", Port: 587, From: "not-an-address"}}, errMsg: "invalid SMTP_SENDER_EMAIL"},
		{name: "unknown mode", cfg: Config{Mode: "pigeon"}, errMsg: "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
