package realtime_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/realtime"
)

func recv(t *testing.T, s *realtime.Subscription) domain.Event {
	t.Helper()
	select {
	case data, ok := <-s.C():
		require.True(t, ok, "subscription closed")
		var ev domain.Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	default:
		t.Fatal("no event queued")
		return domain.Event{}
	}
}

func closed(s *realtime.Subscription) bool {
	for {
		select {
		case _, ok := <-s.C():
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}

func TestPublish_FansOutToAll(t *testing.T) {
	h := realtime.NewHub(4)
	a, b, c := h.Subscribe(), h.Subscribe(), h.Subscribe()

	n := h.Publish(domain.SOSAssignedEvent("sos-1", "team-7"))
	assert.Equal(t, 3, n)

	for _, s := range []*realtime.Subscription{a, b, c} {
		ev := recv(t, s)
		assert.Equal(t, domain.EventSOSAssigned, ev.Type)
		assert.Equal(t, "sos-1", ev.SOSID)
		assert.Equal(t, "team-7", ev.RescueTeam)
	}
}

func TestPublish_WireFormat(t *testing.T) {
	h := realtime.NewHub(1)
	s := h.Subscribe()

	h.Publish(domain.SOSRescuedEvent("sos-9"))
	data := <-s.C()

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]interface{}{"type": "SOS_RESCUED", "sos_id": "sos-9"}, raw)
}

func TestPublish_SlowSubscriberRemovedWithoutBlocking(t *testing.T) {
	h := realtime.NewHub(1)
	stuck := h.Subscribe()
	live := h.Subscribe()

	assert.Equal(t, 2, h.Publish(domain.SOSRescuedEvent("s1")))
	recv(t, live)

	// stuck never drains, so its single slot is still full.
	assert.Equal(t, 1, h.Publish(domain.SOSRescuedEvent("s2")))
	assert.Equal(t, "s2", recv(t, live).SOSID)
	assert.Equal(t, 1, h.Len())

	assert.True(t, closed(stuck))

	assert.Equal(t, 1, h.Publish(domain.SOSRescuedEvent("s3")))
	assert.Equal(t, "s3", recv(t, live).SOSID)
}

func TestDrop_RemovesFailedWriter(t *testing.T) {
	h := realtime.NewHub(2)
	a := h.Subscribe()
	b := h.Subscribe()

	h.Drop(a, errors.New("broken pipe"))
	assert.Equal(t, 1, h.Len())
	assert.True(t, closed(a))

	assert.Equal(t, 1, h.Publish(domain.SOSRescuedEvent("s1")))
	recv(t, b)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	h := realtime.NewHub(1)
	s := h.Subscribe()

	h.Unsubscribe(s)
	h.Unsubscribe(s)
	h.Drop(s, errors.New("late"))
	h.Unsubscribe(nil)

	assert.Zero(t, h.Len())
	assert.True(t, closed(s))
	assert.Zero(t, h.Publish(domain.SOSRescuedEvent("s1")))
}

func TestClose_RejectsNewSubscribers(t *testing.T) {
	h := realtime.NewHub(1)
	s := h.Subscribe()
	h.Close()

	assert.True(t, closed(s))
	late := h.Subscribe()
	assert.True(t, closed(late))
	assert.Zero(t, h.Len())
}

func TestHub_ConcurrentUse(t *testing.T) {
	h := realtime.NewHub(8)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := h.Subscribe()
			for j := 0; j < 10; j++ {
				select {
				case <-s.C():
				default:
				}
			}
			h.Unsubscribe(s)
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish(domain.SOSRescuedEvent("s"))
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, h.Len())
}
