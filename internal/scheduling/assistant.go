package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atcdesk/radioscribe/internal/assistant"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

const progressBlob = "health.scheduling"

const officeLine = "+1-234-567-8900"

var labResultKeywords = []string{"lab results", "test results", "lab report", "results"}

// Assistant is the multi-turn health desk assistant. It owns the
// scheduling dialogue and a handful of single-turn guideline responses.
type Assistant struct {
	slots  SlotSource
	labs   LabResultSource
	logger *logging.Logger
}

func NewAssistant(slots SlotSource, labs LabResultSource, logger *logging.Logger) *Assistant {
	if slots == nil {
		panic("scheduling: slot source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Assistant{
		slots:  slots,
		labs:   labs,
		logger: logger.Component("scheduling"),
	}
}

// Descriptor returns the registry entry for this assistant.
func (a *Assistant) Descriptor() assistant.Descriptor {
	return assistant.Descriptor{
		Name:          "Health Desk",
		Command:       "health",
		Description:   "Schedules appointments and retrieves lab results.",
		HandleMessage: a.HandleMessage,
	}
}

// HandleMessage routes one turn. A scheduling dialogue in progress takes
// priority; otherwise the turn is matched against the entry keywords and
// standing guidelines.
func (a *Assistant) HandleMessage(ctx context.Context, text string, tc assistant.TurnContext) (string, error) {
	progress := a.loadProgress(ctx, tc)
	if progress.State != StateStart && progress.State != "" {
		return a.continueScheduling(ctx, tc, progress, text)
	}

	lower := strings.ToLower(strings.TrimSpace(text))

	if WantsScheduling(lower) {
		return a.continueScheduling(ctx, tc, progress, text)
	}
	if containsAny(lower, labResultKeywords) {
		return a.labResults(ctx, tc)
	}
	if strings.Contains(lower, "insurance") {
		return fmt.Sprintf("We accept most major insurance providers including Blue Cross Blue Shield, Aetna, and UnitedHealthcare. For specific coverage details, please call our office at %s during office hours (Monday to Friday, 9 AM to 5 PM).", officeLine), nil
	}
	if containsAny(lower, []string{"human", "agent", "speak to", "talk to"}) {
		return fmt.Sprintf("I understand you'd like to speak with someone. Please call our office at %s during office hours (Monday to Friday, 9 AM to 5 PM), and our staff will be happy to assist you.", officeLine), nil
	}
	if strings.Contains(lower, "urgent") || strings.Contains(lower, "emergency") {
		return fmt.Sprintf("If this is a medical emergency, please call 911 immediately. For urgent matters, please call our office at %s right away.", officeLine), nil
	}

	return "I'm here to help you with scheduling appointments or retrieving lab results. How can I assist you today? You can say things like 'I need to schedule an appointment' or 'Did my lab results come in?'", nil
}

func (a *Assistant) continueScheduling(ctx context.Context, tc assistant.TurnContext, progress Progress, text string) (string, error) {
	slots, err := a.fetchSlots(ctx)
	if err != nil {
		a.logger.Error("slot lookup failed", "error", err)
		return fmt.Sprintf("I couldn't reach the scheduling system. Please call our office at %s.", officeLine), nil
	}

	next, reply := Transition(progress, text, slots)

	if next.State == StateConfirmed {
		booked, err := a.slots.Book(ctx, next.SelectedSlot, next.Reason)
		if err != nil {
			a.logger.Error("booking failed", "slot", next.SelectedSlot, "error", err)
			// Keep the picked slot so the user can confirm again.
			next.State = StateSlotPicked
			reply = fmt.Sprintf("I couldn't book %s just now. Would you like me to try again?", next.SelectedSlot)
		} else {
			reply = booked
		}
	}

	a.saveProgress(ctx, tc, next)
	return reply, nil
}

func (a *Assistant) labResults(ctx context.Context, tc assistant.TurnContext) (string, error) {
	if a.labs == nil {
		return fmt.Sprintf("I couldn't find your lab results. Please call our office at %s for assistance.", officeLine), nil
	}
	results, ok, err := a.labs.ResultsFor(ctx, tc.UserID)
	if err != nil {
		a.logger.Error("lab result lookup failed", "user", tc.UserID, "error", err)
		return fmt.Sprintf("I couldn't find your lab results. Please call our office at %s for assistance.", officeLine), nil
	}
	if !ok {
		return fmt.Sprintf("I couldn't find your lab results. Please call our office at %s for assistance.", officeLine), nil
	}

	switch strings.ToLower(results.Prognosis) {
	case "normal", "good", "healthy":
		return fmt.Sprintf("Your lab results are in. %s Everything looks normal - nothing to worry about!", results.Report), nil
	default:
		return fmt.Sprintf("Your lab results are in. %s However, I'm not a doctor and cannot provide medical interpretations. Please call our office at %s to discuss these results with your healthcare provider.", results.Report, officeLine), nil
	}
}

func (a *Assistant) fetchSlots(ctx context.Context) (Slots, error) {
	upcoming, err := a.slots.UpcomingSlots(ctx)
	if err != nil {
		return Slots{}, err
	}
	later, err := a.slots.LaterSlots(ctx)
	if err != nil {
		return Slots{}, err
	}
	return Slots{Upcoming: upcoming, Later: later}, nil
}

func (a *Assistant) loadProgress(ctx context.Context, tc assistant.TurnContext) Progress {
	if tc.Sessions == nil {
		return Progress{State: StateStart}
	}
	data, ok, err := tc.Sessions.GetBlob(ctx, tc.SessionID, progressBlob)
	if err != nil {
		a.logger.Warn("progress load failed, starting fresh", "session", tc.SessionID, "error", err)
		return Progress{State: StateStart}
	}
	if !ok {
		return Progress{State: StateStart}
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		a.logger.Warn("progress undecodable, starting fresh", "session", tc.SessionID, "error", err)
		return Progress{State: StateStart}
	}
	return p
}

func (a *Assistant) saveProgress(ctx context.Context, tc assistant.TurnContext, p Progress) {
	if tc.Sessions == nil {
		return
	}
	if p.State.Terminal() {
		if err := tc.Sessions.DeleteBlob(ctx, tc.SessionID, progressBlob); err != nil {
			a.logger.Warn("progress cleanup failed", "session", tc.SessionID, "error", err)
		}
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		a.logger.Warn("progress marshal failed", "session", tc.SessionID, "error", err)
		return
	}
	if err := tc.Sessions.PutBlob(ctx, tc.SessionID, progressBlob, data); err != nil {
		a.logger.Warn("progress save failed", "session", tc.SessionID, "error", err)
	}
}
