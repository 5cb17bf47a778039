package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestCompose(t *testing.T) {
	var buf bytes.Buffer
	_, err := Compose("shop@example.com", Message{To: "a@x.com", Subject: "Hi", HTML: "<b>hello</b>"}).WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "From: shop@example.com")
	assert.Contains(t, out, "To: a@x.com")
	assert.Contains(t, out, "Subject: Hi")
	assert.Contains(t, out, "Content-Type: text/html")
	assert.Contains(t, out, "<b>hello</b>")
}

func TestSMTP_Send(t *testing.T) {
	var got []*gomail.Message
	s := &SMTP{From: "shop@example.com", send: func(ms ...*gomail.Message) error {
		got = append(got, ms...)
		return nil
	}}

	require.NoError(t, s.Send(context.Background(), Message{To: "a@x.com", Subject: "s", HTML: "<p/>"}))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a@x.com"}, got[0].GetHeader("To"))
}

func TestSMTP_SendErrors(t *testing.T) {
	t.Run("no sender", func(t *testing.T) {
		s := NewSMTP("localhost", 587, "", "")
		require.ErrorIs(t, s.Send(context.Background(), Message{To: "a@x.com"}), ErrNoSender)
	})
	t.Run("transport", func(t *testing.T) {
		boom := errors.New("dial tcp: refused")
		s := &SMTP{From: "shop@example.com", send: func(...*gomail.Message) error { return boom }}
		err := s.Send(context.Background(), Message{To: "a@x.com"})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "a@x.com")
	})
	t.Run("canceled", func(t *testing.T) {
		called := false
		s := &SMTP{From: "shop@example.com", send: func(...*gomail.Message) error { called = true; return nil }}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, s.Send(ctx, Message{To: "a@x.com"}), context.Canceled)
		assert.False(t, called)
	})
}
