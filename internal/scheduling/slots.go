package scheduling

import "context"

// SlotSource supplies schedulable times and performs the booking.
type SlotSource interface {
	UpcomingSlots(ctx context.Context) ([]string, error)
	LaterSlots(ctx context.Context) ([]string, error)
	Book(ctx context.Context, slot, reason string) (string, error)
}

// LabResults is one patient's latest report.
type LabResults struct {
	Report    string
	Prognosis string
}

// LabResultSource fetches lab results for a user.
type LabResultSource interface {
	ResultsFor(ctx context.Context, userID string) (LabResults, bool, error)
}

// StaticSlotSource serves a fixed schedule, used for demos and tests.
type StaticSlotSource struct {
	Upcoming []string
	Later    []string
}

func NewStaticSlotSource() *StaticSlotSource {
	return &StaticSlotSource{
		Upcoming: []string{"Monday 10 AM", "Tuesday 2 PM", "Wednesday 1 PM"},
		Later:    []string{"November 3, 11:30 AM", "November 12, 3 PM"},
	}
}

func (s *StaticSlotSource) UpcomingSlots(ctx context.Context) ([]string, error) {
	return s.Upcoming, nil
}

func (s *StaticSlotSource) LaterSlots(ctx context.Context) ([]string, error) {
	return s.Later, nil
}

func (s *StaticSlotSource) Book(ctx context.Context, slot, reason string) (string, error) {
	return "Appointment scheduled for " + slot + ".", nil
}

// StaticLabResultSource returns the same normal report for every user.
type StaticLabResultSource struct{}

func (StaticLabResultSource) ResultsFor(ctx context.Context, userID string) (LabResults, bool, error) {
	return LabResults{
		Report:    "Complete Blood Count (CBC) - All values within normal range",
		Prognosis: "Normal",
	}, true, nil
}
