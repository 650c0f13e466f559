package gossip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImporter struct {
	imported []string
}

func (f *fakeImporter) ImportPattern(pattern string) {
	f.imported = append(f.imported, pattern)
}

func TestPublishReachesSubscriber(t *testing.T) {
	b := NewBroadcaster(nil)
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Publish("User <*> logged in")

	select {
	case got := <-ch:
		assert.Equal(t, "User <*> logged in", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster(nil)
	ch, unsubscribe := b.Subscribe()
	unsubscribe()
	b.Publish("pattern")

	select {
	case got, ok := <-ch:
		assert.False(t, ok, "unexpected delivery after unsubscribe: %q", got)
	case <-time.After(50 * time.Millisecond):
		// No delivery, as expected.
	}
}

func TestImporterDrainsChannelIntoTarget(t *testing.T) {
	ch := make(chan string, 2)
	ch <- "a <*> b"
	ch <- "c <*> d"
	close(ch)

	target := &fakeImporter{}
	Importer(ch, target, nil)

	require.Len(t, target.imported, 2)
}

func TestNewNodeIDIsNonEmptyAndVaries(t *testing.T) {
	a := NewNodeID()
	b := NewNodeID()
	assert.NotEmpty(t, a)
	assert.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
}
