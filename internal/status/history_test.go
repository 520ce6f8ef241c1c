package status

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryBoundedNewestFirst(t *testing.T) {
	history := NewHistory()

	base := time.Now()
	for i := 0; i < 25; i++ {
		history.Append(ProbeResult{
			URL:       fmt.Sprintf("https://example.com/%d", i),
			CheckedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	entries := history.Snapshot()
	require.Len(t, entries, HistoryCap)

	// newest entry first, oldest five evicted
	assert.Equal(t, "https://example.com/24", entries[0].URL)
	assert.Equal(t, "https://example.com/5", entries[len(entries)-1].URL)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].CheckedAt.Before(entries[i-1].CheckedAt))
	}
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	history := NewHistory()
	history.Append(ProbeResult{URL: "https://example.com"})

	snapshot := history.Snapshot()
	snapshot[0].URL = "mutated"

	assert.Equal(t, "https://example.com", history.Snapshot()[0].URL)
}

func TestHistoryConcurrentAppends(t *testing.T) {
	history := NewHistory()

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func() {
			for i := 0; i < 50; i++ {
				history.Append(ProbeResult{URL: "https://example.com"})
			}
			done <- struct{}{}
		}()
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	assert.Equal(t, HistoryCap, history.Len())
}
