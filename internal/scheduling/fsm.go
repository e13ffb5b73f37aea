// Package scheduling implements the appointment booking dialogue as an
// explicit state machine driven by keyword matching on user input.
package scheduling

import (
	"fmt"
	"strings"
)

type State string

const (
	StateStart             State = "start"
	StateReasonCollected   State = "reason_collected"
	StateSlotsOffered      State = "slots_offered"
	StateSlotPicked        State = "slot_picked"
	StateLaterSlotsOffered State = "later_slots_offered"
	StateConfirmed         State = "confirmed"
	StateEscalated         State = "escalated"
)

// Terminal reports whether the dialogue has finished; terminal progress
// is cleared from the session so a new request starts fresh.
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateEscalated
}

// Progress is the persisted dialogue position. It round-trips through
// the session store as JSON between turns; the machine itself holds no
// state.
type Progress struct {
	State        State    `json:"state"`
	Reason       string   `json:"reason,omitempty"`
	OfferedSlots []string `json:"offered_slots,omitempty"`
	SelectedSlot string   `json:"selected_slot,omitempty"`
}

// Slots carries the schedule options a transition may offer.
type Slots struct {
	Upcoming []string
	Later    []string
}

var (
	enterKeywords  = []string{"schedule", "appointment", "book"}
	affirmKeywords = []string{"yes", "confirm", "sounds good", "ok"}
	rejectKeywords = []string{"none", "don't work", "not available"}
)

func containsAny(input string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(input, kw) {
			return true
		}
	}
	return false
}

// WantsScheduling reports whether free text asks to enter the booking
// dialogue.
func WantsScheduling(input string) bool {
	return containsAny(strings.ToLower(input), enterKeywords)
}

// pickSlot matches input against offered slots by word containment, the
// way a user naturally echoes part of an offered time back.
func pickSlot(input string, offered []string) (string, bool) {
	for _, slot := range offered {
		for _, word := range strings.Fields(strings.ToLower(slot)) {
			if strings.Contains(input, word) {
				return slot, true
			}
		}
	}
	return "", false
}

func formatSlots(slots []string) string {
	var b strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Transition advances the dialogue one user turn. Pure function of its
// inputs; unmatched input re-asks the current state's prompt rather than
// erroring.
func Transition(p Progress, input string, slots Slots) (Progress, string) {
	lower := strings.ToLower(strings.TrimSpace(input))

	switch p.State {
	case StateStart, "":
		if !WantsScheduling(lower) {
			return p, "I can help you schedule an appointment. Say something like \"I need to schedule an appointment\" to get started."
		}
		p.State = StateReasonCollected
		p.Reason = "general"
		return p, "I'd be happy to help you schedule an appointment. What is the reason for your visit?"

	case StateReasonCollected:
		if lower != "" {
			p.Reason = strings.TrimSpace(input)
		}
		p.State = StateSlotsOffered
		p.OfferedSlots = slots.Upcoming
		return p, fmt.Sprintf("Here are some available appointment times:\n%s\n\nWhich time works best for you?", formatSlots(p.OfferedSlots))

	case StateSlotsOffered:
		if slot, ok := pickSlot(lower, p.OfferedSlots); ok {
			p.State = StateSlotPicked
			p.SelectedSlot = slot
			return p, fmt.Sprintf("I have %s available. Would you like me to confirm this appointment?", slot)
		}
		if containsAny(lower, rejectKeywords) {
			p.State = StateLaterSlotsOffered
			p.OfferedSlots = slots.Later
			return p, fmt.Sprintf("I understand. Here are some later available times:\n%s\n\nDo any of these work for you?", formatSlots(p.OfferedSlots))
		}
		return p, "Which of the offered times works best for you?"

	case StateSlotPicked:
		if containsAny(lower, affirmKeywords) {
			p.State = StateConfirmed
			return p, fmt.Sprintf("Appointment scheduled for %s.", p.SelectedSlot)
		}
		if containsAny(lower, rejectKeywords) {
			p.State = StateLaterSlotsOffered
			p.OfferedSlots = slots.Later
			return p, fmt.Sprintf("I understand. Here are some later available times:\n%s\n\nDo any of these work for you?", formatSlots(p.OfferedSlots))
		}
		if slot, ok := pickSlot(lower, p.OfferedSlots); ok {
			p.SelectedSlot = slot
			return p, fmt.Sprintf("I have %s available. Would you like me to confirm this appointment?", slot)
		}
		return p, fmt.Sprintf("Would you like me to confirm %s? A yes will book it.", p.SelectedSlot)

	case StateLaterSlotsOffered:
		if slot, ok := pickSlot(lower, p.OfferedSlots); ok {
			p.State = StateSlotPicked
			p.SelectedSlot = slot
			return p, fmt.Sprintf("I have %s available. Would you like me to confirm this appointment?", slot)
		}
		if containsAny(lower, rejectKeywords) {
			p.State = StateEscalated
			return p, "I understand those times don't work either. Please call our office at +1-234-567-8900 to speak with our scheduling team, and they'll help you find a time that works."
		}
		return p, "Do any of the later times work for you?"

	default:
		// Terminal states are cleared by the caller; reaching here means
		// stale progress, so restart.
		return Progress{State: StateStart}, "Let's start over. What would you like to schedule?"
	}
}
