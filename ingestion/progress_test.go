package ingestion

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedProgress_PrintsEveryInterval(t *testing.T) {
	var buf bytes.Buffer
	p := newSeedProgress(&buf, 100, 50)

	for i := 0; i < 49; i++ {
		p.done(true)
	}
	assert.Empty(t, buf.String(), "below the interval")

	p.done(true)
	assert.Contains(t, buf.String(), "50/100 stored, 0 failed (50.0%)")
}

func TestSeedProgress_CountsFailures(t *testing.T) {
	var buf bytes.Buffer
	p := newSeedProgress(&buf, 4, 10)

	p.done(true)
	p.done(false)
	p.done(true)
	p.finish()

	out := buf.String()
	assert.Contains(t, out, "2/4 stored, 1 failed (75.0%)", "finish reports what actually happened")
	assert.True(t, strings.HasSuffix(out, "\n"), "finish ends the line")
}

func TestSeedProgress_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	newSeedProgress(&buf, 0, 0).finish()

	assert.Contains(t, buf.String(), "0/0 stored, 0 failed (100.0%)")
}

func TestSeedProgress_NilWriter(t *testing.T) {
	p := newSeedProgress(nil, 10, 1)
	assert.Nil(t, p)

	assert.NotPanics(t, func() {
		p.done(true)
		p.finish()
	})
}

func TestSeedProgress_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	p := newSeedProgress(&buf, 100, 10)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.done(i%10 != 0)
		}(i)
	}
	wg.Wait()
	p.finish()

	assert.Contains(t, buf.String(), "90/100 stored, 10 failed (100.0%)")
}
