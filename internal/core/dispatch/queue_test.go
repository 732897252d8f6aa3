package dispatch_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/minarah/internal/core/dispatch"
	"github.com/samirrijal/minarah/internal/core/domain"
)

func ids(reqs []domain.SOSRequest) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.ID
	}
	return out
}

func TestOrder_UrgencyThenID(t *testing.T) {
	reqs := []domain.SOSRequest{
		{ID: "r1", Priority: domain.UrgencyLow},
		{ID: "r2", Priority: domain.UrgencyCritical},
		{ID: "r3", Priority: domain.UrgencyMedium},
		{ID: "r4", Priority: domain.UrgencyCritical},
	}

	got := dispatch.Order(reqs)
	assert.Equal(t, []string{"r2", "r4", "r3", "r1"}, ids(got))
}

func TestOrder_DeterministicUnderShuffle(t *testing.T) {
	base := []domain.SOSRequest{
		{ID: "a", Priority: domain.UrgencyHigh},
		{ID: "b", Priority: domain.UrgencyLow},
		{ID: "c", Priority: domain.UrgencyHigh},
		{ID: "d", Priority: domain.UrgencyCritical},
		{ID: "e", Priority: domain.UrgencyMedium},
		{ID: "f", Priority: domain.UrgencyLow},
	}
	want := ids(dispatch.Order(append([]domain.SOSRequest(nil), base...)))
	require.Equal(t, []string{"d", "a", "c", "e", "b", "f"}, want)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.SOSRequest(nil), base...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, ids(dispatch.Order(shuffled)))
	}
}

func TestQueue_PushPop(t *testing.T) {
	q := dispatch.Build(nil)
	assert.Nil(t, q.Pop())

	q.Push(&domain.SOSRequest{ID: "x", Priority: domain.UrgencyMedium})
	q.Push(&domain.SOSRequest{ID: "y", Priority: domain.UrgencyHigh})
	require.Equal(t, 2, q.Len())

	assert.Equal(t, "y", q.Pop().ID)
	assert.Equal(t, "x", q.Pop().ID)
	assert.Zero(t, q.Len())
}

func TestOrder_Empty(t *testing.T) {
	assert.Empty(t, dispatch.Order(nil))
}
