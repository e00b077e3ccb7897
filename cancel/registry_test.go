package cancel

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateToken(t *testing.T) {
	r := NewRegistry()

	tok := r.CreateToken("s1")
	require.NotNil(t, tok)
	assert.False(t, tok.IsCancelled())
	assert.Same(t, tok, r.GetToken("s1"))

	t.Run("replaces and cancels prior token", func(t *testing.T) {
		replacement := r.CreateToken("s1")
		assert.NotSame(t, tok, replacement)
		assert.True(t, tok.IsCancelled())
		assert.Equal(t, "", tok.Reason())
		assert.False(t, replacement.IsCancelled())
		assert.Same(t, replacement, r.GetToken("s1"))
	})

	t.Run("replacement fires pending callbacks", func(t *testing.T) {
		fired := 0
		current := r.CreateToken("s2")
		r.OnCancel("s2", func(reason string) { fired++ })

		r.CreateToken("s2")
		assert.True(t, current.IsCancelled())
		assert.Equal(t, 1, fired)
	})
}

func TestRegistry_IsCancelled(t *testing.T) {
	r := NewRegistry()

	// Unknown session: never-cancelled is the safe default.
	assert.False(t, r.IsCancelled("unknown"))

	r.CreateToken("s1")
	assert.False(t, r.IsCancelled("s1"))

	r.Cancel("s1", "done")
	assert.True(t, r.IsCancelled("s1"))
}

func TestRegistry_Cancel_Idempotent(t *testing.T) {
	r := NewRegistry()
	r.CreateToken("s1")

	assert.True(t, r.Cancel("s1", "first"))
	assert.False(t, r.Cancel("s1", "second"))
	assert.True(t, r.IsCancelled("s1"))
	assert.Equal(t, "first", r.GetToken("s1").Reason())

	// Unknown session is a no-op, not an error.
	assert.False(t, r.Cancel("unknown", "whatever"))
}

func TestRegistry_OnCancel_Order(t *testing.T) {
	r := NewRegistry()
	r.CreateToken("s1")

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		r.OnCancel("s1", func(reason string) { order = append(order, i) })
	}

	require.True(t, r.Cancel("s1", "stop"))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)

	// The callback list is evicted after firing; cancelling again (no-op)
	// or registering late must not re-fire anything.
	fired := false
	r.OnCancel("s1", func(reason string) { fired = true })
	assert.False(t, r.Cancel("s1", "again"))
	assert.False(t, fired)
}

func TestRegistry_OnCancel_Unregister(t *testing.T) {
	r := NewRegistry()
	r.CreateToken("s1")

	var got []string
	r.OnCancel("s1", func(reason string) { got = append(got, "a") })
	unregister := r.OnCancel("s1", func(reason string) { got = append(got, "b") })
	r.OnCancel("s1", func(reason string) { got = append(got, "c") })

	unregister()
	unregister() // double unregister is harmless

	require.True(t, r.Cancel("s1", "stop"))
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestRegistry_OnCancel_BeforeToken(t *testing.T) {
	r := NewRegistry()

	fired := ""
	r.OnCancel("s1", func(reason string) { fired = reason })

	// No token yet: Cancel cannot transition anything.
	assert.False(t, r.Cancel("s1", "early"))
	assert.Empty(t, fired)

	// The callback attached to the session's first token.
	r.CreateToken("s1")
	require.True(t, r.Cancel("s1", "now"))
	assert.Equal(t, "now", fired)
}

func TestRegistry_CallbackPanicIsolated(t *testing.T) {
	r := NewRegistry()
	r.CreateToken("s1")

	var got []string
	r.OnCancel("s1", func(reason string) { got = append(got, "first") })
	r.OnCancel("s1", func(reason string) { panic("boom") })
	r.OnCancel("s1", func(reason string) { got = append(got, "third") })

	require.True(t, r.Cancel("s1", "stop"))
	assert.Equal(t, []string{"first", "third"}, got)
}

func TestRegistry_CancelAll(t *testing.T) {
	r := NewRegistry()

	for i := 0; i < 3; i++ {
		r.CreateToken(fmt.Sprintf("s%d", i))
	}
	r.Cancel("s0", "already")

	assert.Equal(t, 2, r.CancelAll("shutdown"))
	assert.Equal(t, 0, r.CancelAll("shutdown"))

	for i := 0; i < 3; i++ {
		assert.True(t, r.IsCancelled(fmt.Sprintf("s%d", i)))
	}
}

func TestRegistry_Cleanup(t *testing.T) {
	r := NewRegistry()
	r.CreateToken("s1")
	r.CreateToken("s2")
	require.Equal(t, 2, r.Len())

	r.Cleanup("s1")
	assert.Nil(t, r.GetToken("s1"))
	assert.False(t, r.IsCancelled("s1"))
	assert.Equal(t, 1, r.Len())

	r.CleanupAll()
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.GetToken("s2"))
}

func TestRegistry_ConcurrentCancel(t *testing.T) {
	r := NewRegistry()
	r.CreateToken("s1")

	fired := 0
	r.OnCancel("s1", func(reason string) { fired++ })

	var wg sync.WaitGroup
	wins := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins <- r.Cancel("s1", fmt.Sprintf("racer-%d", i))
		}(i)
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, fired)
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	r := NewRegistry()

	const sessions = 32
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			r.CreateToken(id)
			if i%2 == 0 {
				r.Cancel(id, "even")
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < sessions; i++ {
		id := fmt.Sprintf("s%d", i)
		assert.Equal(t, i%2 == 0, r.IsCancelled(id), id)
	}
}

func TestToken_Done(t *testing.T) {
	r := NewRegistry()
	tok := r.CreateToken("s1")

	select {
	case <-tok.Done():
		t.Fatal("done channel closed before cancellation")
	default:
	}

	go func() { r.Cancel("s1", "stop") }()

	select {
	case <-tok.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after cancellation")
	}

	assert.True(t, tok.IsCancelled())
	assert.Equal(t, "stop", tok.Reason())
}
