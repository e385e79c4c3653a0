package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMutation_WaitHonoursContext(t *testing.T) {
	m := newMutation("members", OpAdd, "m1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res, err := m.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Pending, res.Outcome)

	m.finish(Confirmed, nil)
	res, err = m.Wait(context.Background())
	assert.NoError(t, err)
	assert.True(t, res.OK())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "reverted", Reverted.String())
	assert.Equal(t, "unknown", Outcome(99).String())
	assert.False(t, Result{Outcome: Reverted}.OK())
	assert.True(t, Result{Outcome: Unchanged}.OK())
}
