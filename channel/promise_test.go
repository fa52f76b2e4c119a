package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromise_Result(t *testing.T) {
	p := NewPromise[int]()
	p.Reset()

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.SetResult(42)
	}()

	v, ok := p.Wait(time.Second)
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestPromise_Timeout(t *testing.T) {
	p := NewPromise[string]()
	p.Reset()

	start := time.Now()
	_, ok := p.Wait(20 * time.Millisecond)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.False(t, p.SetResult("late"), "result after wait must be dropped")
}

func TestPromise_SetOnce(t *testing.T) {
	p := NewPromise[int]()

	assert.False(t, p.SetResult(1), "unarmed promise accepts nothing")

	p.Reset()
	assert.True(t, p.Pending())
	assert.True(t, p.SetResult(1))
	assert.False(t, p.SetResult(2))
	assert.False(t, p.Pending())

	v, ok := p.Wait(0)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestPromise_Reset(t *testing.T) {
	p := NewPromise[int]()

	p.Reset()
	p.SetResult(1)
	p.Reset()

	assert.False(t, p.HasResult())

	_, ok := p.Wait(time.Millisecond)
	assert.False(t, ok)
}

func TestPromise_WaitWithoutReset(t *testing.T) {
	p := NewPromise[int]()

	_, ok := p.Wait(0)
	assert.False(t, ok)
}

func TestPromise_Claim(t *testing.T) {
	p := NewPromise[int]()

	assert.False(t, p.Claim(), "unarmed promise cannot be claimed")

	p.Reset()
	require.True(t, p.Claim())
	assert.False(t, p.Claim())
	assert.False(t, p.Pending())
	assert.False(t, p.SetResult(1), "claimed promise rejects other producers")

	go func() {
		time.Sleep(50 * time.Millisecond)
		p.Complete(7)
	}()

	start := time.Now()
	v, ok := p.Wait(5 * time.Millisecond)

	require.True(t, ok, "claimed promise is waited for past the timeout")
	assert.Equal(t, 7, v)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPromise_ClaimAfterTimeout(t *testing.T) {
	p := NewPromise[int]()
	p.Reset()

	_, ok := p.Wait(5 * time.Millisecond)
	require.False(t, ok)

	assert.False(t, p.Claim())

	p.Complete(1)
	assert.False(t, p.HasResult())
}
