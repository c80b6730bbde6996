package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeNowAndAdvance(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c := Fake(start)

	assert.Equal(t, start, c.Now())
	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())
}

func TestFakeTickerFiresOnInterval(t *testing.T) {
	c := Fake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	ticker := c.NewTicker(time.Hour)
	defer ticker.Stop()

	c.Advance(59 * time.Minute)
	select {
	case <-ticker.C:
		t.Fatal("ticker fired before its interval")
	default:
	}

	c.Advance(time.Minute)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire after its interval")
	}
}

func TestFakeTickerStop(t *testing.T) {
	c := Fake(time.Now())
	ticker := c.NewTicker(time.Second)
	ticker.Stop()

	c.Advance(time.Minute)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestWaitForTickers(t *testing.T) {
	c := Fake(time.Now())
	done := make(chan struct{})

	go func() {
		c.WaitForTickers(1)
		close(done)
	}()

	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "WaitForTickers did not return")
	}
}
