package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_PlaceReleasesPrevious(t *testing.T) {
	s := NewSession()

	first := s.Place(Chart{Slot: SlotIncome, Title: "first"})
	other := s.Place(Chart{Slot: SlotBalance, Title: "balance"})
	second := s.Place(Chart{Slot: SlotIncome, Title: "second"})

	assert.True(t, first.Released())
	assert.False(t, second.Released())
	assert.False(t, other.Released())
	assert.Same(t, second, s.Handle(SlotIncome))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSession_HandlesInDisplayOrder(t *testing.T) {
	s := NewSession()
	s.Place(Chart{Slot: SlotCashFlow})
	s.Place(Chart{Slot: SlotIncome})
	s.Place(Chart{Slot: SlotBalance})

	var slots []Slot
	for _, h := range s.Handles() {
		slots = append(slots, h.Slot)
	}
	assert.Equal(t, []Slot{SlotIncome, SlotBalance, SlotCashFlow}, slots)
}

func TestSession_ResetReleasesAll(t *testing.T) {
	s := NewSession()
	a := s.Place(Chart{Slot: SlotIncome})
	b := s.Place(Chart{Slot: SlotCashFlow})
	gen := s.Generation()

	s.Reset()

	assert.True(t, a.Released())
	assert.True(t, b.Released())
	assert.Empty(t, s.Handles())
	assert.Equal(t, gen+1, s.Generation())
}

func TestSession_PlaceAfterClose(t *testing.T) {
	s := NewSession()
	live := s.Place(Chart{Slot: SlotIncome})
	s.Close()

	assert.True(t, live.Released())
	late := s.Place(Chart{Slot: SlotIncome})
	assert.True(t, late.Released())
	assert.Nil(t, s.Handle(SlotIncome))
}

func TestSessionStore_GetReusesKnownID(t *testing.T) {
	st := NewSessionStore(4, time.Minute)

	s := st.Get("")
	require.NotEmpty(t, s.ID)
	assert.Same(t, s, st.Get(s.ID))

	fresh := st.Get("not-a-session")
	assert.NotEqual(t, "not-a-session", fresh.ID)
	assert.Equal(t, 2, st.Len())
}

func TestSessionStore_EvictsLeastRecentlyUsed(t *testing.T) {
	st := NewSessionStore(2, time.Minute)

	old := st.Get("")
	h := old.Place(Chart{Slot: SlotIncome})
	time.Sleep(5 * time.Millisecond)
	recent := st.Get("")
	time.Sleep(5 * time.Millisecond)
	st.Get(recent.ID)

	st.Get("")

	assert.Equal(t, 2, st.Len())
	assert.True(t, h.Released(), "evicted session should release its charts")
	assert.Same(t, recent, st.Get(recent.ID))
}

func TestSessionStore_Sweep(t *testing.T) {
	st := NewSessionStore(10, 20*time.Millisecond)
	s := st.Get("")
	h := s.Place(Chart{Slot: SlotBalance})

	assert.Equal(t, 0, st.Sweep())
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 0, st.Len())
	assert.True(t, h.Released())
}

func TestColor(t *testing.T) {
	assert.Equal(t, "rgba(0, 123, 255, 0.6)", Color(0, 0.6))
	assert.Equal(t, "rgba(220, 53, 69, 1)", Color(1, 1))
	assert.Equal(t, Color(0, 1), Color(len(palette), 1))

	r, g, b := RGB(2)
	assert.Equal(t, [3]int{40, 167, 69}, [3]int{r, g, b})
}
