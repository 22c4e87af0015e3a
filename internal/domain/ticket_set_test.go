package domain

import "testing"

func TestTicketSetUpsertKeepsOrder(t *testing.T) {
	set := NewTicketSet()
	set.Upsert(Ticket{ID: "1", ClinicName: "Alpha"})
	set.Upsert(Ticket{ID: "2", ClinicName: "Beta"})
	set.Upsert(Ticket{ID: "1", ClinicName: "Alpha Renamed"})

	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	list := set.List()
	if list[0].ID != "1" || list[1].ID != "2" {
		t.Fatalf("order = [%s %s], want [1 2]", list[0].ID, list[1].ID)
	}
	if list[0].ClinicName != "Alpha Renamed" {
		t.Errorf("upsert did not replace: %q", list[0].ClinicName)
	}

	if _, ok := set.Get("3"); ok {
		t.Error("Get(3) found a ticket that was never stored")
	}
	if !set.Has("2") {
		t.Error("Has(2) = false")
	}
}

func TestTicketHelpers(t *testing.T) {
	ticket := Ticket{ClinicName: "Clínica Sorriso", PlanTier: 100, Status: TicketStatusFinalized}
	if !ticket.IsVIP() {
		t.Error("plan 100 should be VIP")
	}
	if !ticket.IsFinalized() {
		t.Error("IsFinalized() = false")
	}
	if !ticket.MatchesClinic("SORRISO") {
		t.Error("search should be case-insensitive")
	}
	if ticket.MatchesClinic("dental") {
		t.Error("unexpected match")
	}
	if !ticket.MatchesClinic("  ") {
		t.Error("blank search should match")
	}
	if ValidPlanTier(75) {
		t.Error("75 is not a plan tier")
	}
	if TicketStatus("Closed").Valid() {
		t.Error("Closed is not a status")
	}
}
