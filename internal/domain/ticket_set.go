package domain

// TicketSet is an id-keyed collection of tickets that remembers the order
// in which ids were first seen. It is the in-memory form of the store;
// the flat file is only materialized from it at the serialization boundary.
type TicketSet struct {
	order []string
	byID  map[string]Ticket
}

// NewTicketSet returns an empty set.
func NewTicketSet() *TicketSet {
	return &TicketSet{byID: make(map[string]Ticket)}
}

// Upsert stores t under t.ID. An existing ticket keeps its position.
func (s *TicketSet) Upsert(t Ticket) {
	if _, exists := s.byID[t.ID]; !exists {
		s.order = append(s.order, t.ID)
	}
	s.byID[t.ID] = t
}

// Get returns the ticket with the given id.
func (s *TicketSet) Get(id string) (Ticket, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// Has reports whether id is present.
func (s *TicketSet) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of tickets.
func (s *TicketSet) Len() int {
	return len(s.order)
}

// List returns the tickets in insertion order.
func (s *TicketSet) List() []Ticket {
	out := make([]Ticket, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
