package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSlots = Slots{
	Upcoming: []string{"Monday 10 AM", "Tuesday 2 PM", "Wednesday 1 PM"},
	Later:    []string{"November 3, 11:30 AM", "November 12, 3 PM"},
}

func TestTransitionStartAsksReasonNotSlots(t *testing.T) {
	p, reply := Transition(Progress{State: StateStart}, "I need to schedule an appointment", testSlots)
	assert.Equal(t, StateReasonCollected, p.State)
	assert.Contains(t, reply, "reason for your visit")
	assert.NotContains(t, reply, "Monday")
}

func TestTransitionStartUnmatchedReasks(t *testing.T) {
	p, reply := Transition(Progress{State: StateStart}, "what's the weather", testSlots)
	assert.Equal(t, StateStart, p.State)
	assert.Contains(t, reply, "schedule an appointment")
}

func TestTransitionHappyPath(t *testing.T) {
	p := Progress{State: StateStart}
	var reply string

	p, _ = Transition(p, "please book me an appointment", testSlots)
	require.Equal(t, StateReasonCollected, p.State)

	p, reply = Transition(p, "annual checkup", testSlots)
	require.Equal(t, StateSlotsOffered, p.State)
	assert.Equal(t, "annual checkup", p.Reason)
	assert.Contains(t, reply, "Monday 10 AM")
	assert.Contains(t, reply, "Wednesday 1 PM")

	p, reply = Transition(p, "tuesday works for me", testSlots)
	require.Equal(t, StateSlotPicked, p.State)
	assert.Equal(t, "Tuesday 2 PM", p.SelectedSlot)
	assert.Contains(t, reply, "confirm")

	p, reply = Transition(p, "yes please", testSlots)
	require.Equal(t, StateConfirmed, p.State)
	assert.Contains(t, reply, "Tuesday 2 PM")
	assert.True(t, p.State.Terminal())
}

func TestTransitionRejectionPath(t *testing.T) {
	p := Progress{State: StateSlotsOffered, OfferedSlots: testSlots.Upcoming}

	p, reply := Transition(p, "none of those work", testSlots)
	require.Equal(t, StateLaterSlotsOffered, p.State)
	assert.Contains(t, reply, "November 3")
	assert.Equal(t, testSlots.Later, p.OfferedSlots)

	p, reply = Transition(p, "those don't work either, none", testSlots)
	require.Equal(t, StateEscalated, p.State)
	assert.Contains(t, reply, "call our office")
	assert.True(t, p.State.Terminal())
}

func TestTransitionLaterSlotPicked(t *testing.T) {
	p := Progress{State: StateLaterSlotsOffered, OfferedSlots: testSlots.Later}

	p, reply := Transition(p, "the 12th at 3 pm would be great", testSlots)
	require.Equal(t, StateSlotPicked, p.State)
	assert.Equal(t, "November 12, 3 PM", p.SelectedSlot)
	assert.Contains(t, reply, "confirm")
}

func TestTransitionSlotPickedRejectionOffersLater(t *testing.T) {
	p := Progress{State: StateSlotPicked, SelectedSlot: "Monday 10 AM", OfferedSlots: testSlots.Upcoming}

	p, reply := Transition(p, "actually that's not available for me, none work", testSlots)
	assert.Equal(t, StateLaterSlotsOffered, p.State)
	assert.Contains(t, reply, "later available times")
}

func TestTransitionUnmatchedReasksCurrentPrompt(t *testing.T) {
	tests := []struct {
		name  string
		p     Progress
		wants string
	}{
		{"slots offered", Progress{State: StateSlotsOffered, OfferedSlots: testSlots.Upcoming}, "works best"},
		{"slot picked", Progress{State: StateSlotPicked, SelectedSlot: "Monday 10 AM"}, "confirm"},
		{"later slots", Progress{State: StateLaterSlotsOffered, OfferedSlots: testSlots.Later}, "later times"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, reply := Transition(tt.p, "banana", testSlots)
			assert.Equal(t, tt.p.State, next.State)
			assert.Contains(t, reply, tt.wants)
		})
	}
}

func TestTransitionEmptyReasonFallsBackToGeneral(t *testing.T) {
	p, _ := Transition(Progress{State: StateStart}, "schedule me", testSlots)
	require.Equal(t, "general", p.Reason)

	p, _ = Transition(p, "   ", testSlots)
	assert.Equal(t, StateSlotsOffered, p.State)
	assert.Equal(t, "general", p.Reason)
}
