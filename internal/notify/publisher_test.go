package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub/internal/notify"
	"clubhub/internal/notify/store"
)

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSink) Deliver(context.Context, notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("sink down")
}

func TestPublisherDeliversToAllSinks(t *testing.T) {
	first := store.NewInMemory()
	second := store.NewInMemory()
	p := notify.NewPublisher([]notify.Sink{first, second})
	defer p.Close()

	p.Emit(context.Background(), notify.Event{Type: notify.EventCampaignCreated})

	require.Len(t, first.Events(), 1)
	require.Len(t, second.Events(), 1)
	assert.False(t, first.Events()[0].OccurredAt.IsZero())
}

func TestPublisherSinkFailureDoesNotStopOthers(t *testing.T) {
	failing := &failingSink{}
	healthy := store.NewInMemory()
	p := notify.NewPublisher([]notify.Sink{failing, healthy})
	defer p.Close()

	p.Emit(context.Background(), notify.Event{Type: notify.EventApplicationSubmitted})

	require.Len(t, healthy.Events(), 1)
	assert.Equal(t, 1, failing.calls)
}

func TestPublisherAsyncDrainsOnClose(t *testing.T) {
	sink := store.NewInMemory()
	p := notify.NewPublisher([]notify.Sink{sink}, notify.WithAsyncBuffer(16))

	for i := 0; i < 10; i++ {
		p.Emit(context.Background(), notify.Event{
			Type:       notify.EventApplicationApproved,
			OccurredAt: time.Now(),
		})
	}
	p.Close()

	assert.Len(t, sink.Events(), 10)
}

func TestInMemorySinkFiltersByType(t *testing.T) {
	sink := store.NewInMemory()
	p := notify.NewPublisher([]notify.Sink{sink})
	defer p.Close()

	p.Emit(context.Background(), notify.Event{Type: notify.EventCampaignCreated})
	p.Emit(context.Background(), notify.Event{Type: notify.EventCampaignPublished})
	p.Emit(context.Background(), notify.Event{Type: notify.EventCampaignCreated})

	assert.Len(t, sink.OfType(notify.EventCampaignCreated), 2)
	assert.Len(t, sink.OfType(notify.EventCampaignPublished), 1)
}
