package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpages/internal/retry"
)

var noRetry = retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 0)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	flushErr   error
	closed     bool
	// failures makes the first n Publish calls fail.
	failures int
	calls    int
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.calls++
	f.subject, f.data = subject, data
	if f.calls <= f.failures {
		return errors.New("transient")
	}
	return f.publishErr
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNATSPublisher_Publish(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "docpages.content.changed", noRetry, quiet())

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, p.Publish(t.Context(), ContentChanged{Fingerprint: "abc", ChangedAt: at}))

	assert.Equal(t, "docpages.content.changed", fc.subject)
	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.data, &got))
	assert.Equal(t, "abc", got["fingerprint"])
	assert.Equal(t, "2024-05-01T10:00:00Z", got["changed_at"])

	p.Close()
	assert.True(t, fc.closed)
}

func TestNATSPublisher_Errors(t *testing.T) {
	p := newPublisher(&fakeConn{publishErr: errors.New("down")}, "s", noRetry, quiet())
	assert.ErrorContains(t, p.Publish(t.Context(), ContentChanged{}), "failed to publish event")

	p = newPublisher(&fakeConn{flushErr: context.DeadlineExceeded}, "s", noRetry, quiet())
	err := p.Publish(t.Context(), ContentChanged{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "s", noRetry, quiet())
	assert.Error(t, err)
}

func TestNATSPublisher_RetriesTransientFailures(t *testing.T) {
	fc := &fakeConn{failures: 2}
	p := newPublisher(fc, "s", retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 2), quiet())

	require.NoError(t, p.Publish(t.Context(), ContentChanged{Fingerprint: "x"}))
	assert.Equal(t, 3, fc.calls)
}
