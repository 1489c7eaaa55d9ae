package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, ModeExponential, p.Mode)
	assert.Equal(t, 200*time.Millisecond, p.Initial)
	assert.Equal(t, 5*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
	assert.NoError(t, p.Validate())
}

// Initial larger than Max is clamped.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(ModeFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, ModeFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)

	p = NewPolicy("bogus", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), p)
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	cases := []struct {
		name   string
		policy Policy
		want   []time.Duration
	}{
		{"fixed", NewPolicy(ModeFixed, 100*ms, 500*ms, 3), []time.Duration{100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(ModeLinear, 100*ms, 250*ms, 5), []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(ModeExponential, 50*ms, 160*ms, 5), []time.Duration{50 * ms, 100 * ms, 160 * ms, 160 * ms}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Zero(t, tc.policy.Delay(0))
			for i, want := range tc.want {
				assert.Equal(t, want, tc.policy.Delay(i+1), "attempt %d", i+1)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeLinear, ParseMode(" Linear "))
	assert.Equal(t, ModeExponential, ParseMode("exp"))
	assert.Equal(t, ModeExponential, ParseMode(""))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	p := NewPolicy(ModeFixed, time.Millisecond, time.Millisecond, 3)
	calls := 0
	err := p.Do(t.Context(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpWithLastError(t *testing.T) {
	p := NewPolicy(ModeFixed, time.Millisecond, time.Millisecond, 1)
	calls := 0
	err := p.Do(t.Context(), func(context.Context) error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, calls)
}

func TestDo_StopsOnCancel(t *testing.T) {
	p := NewPolicy(ModeFixed, time.Hour, time.Hour, 5)
	ctx, cancel := context.WithCancel(t.Context())
	err := p.Do(ctx, func(context.Context) error {
		cancel()
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
