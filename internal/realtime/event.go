package realtime

import "encoding/json"

// Event is a typed payload broadcast to push-channel clients. Events are
// ephemeral: constructed, serialized once per broadcast, delivered,
// discarded. Clients must treat each received event as an independent
// "something changed, refetch if relevant" hint; no ordering is guaranteed.
type Event interface {
	// EventType is the wire discriminator, e.g. "ClinicQueueUpdated".
	EventType() string
	// EventScope selects the target connections. ScopeClinic means every
	// open connection regardless of its own scope.
	EventScope() Scope
}

// envelope is the wire shape of every pushed event. New event types must
// keep this two-field shape so clients can parse a discriminated union.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Encode serializes an event into its wire envelope.
func Encode(event Event) ([]byte, error) {
	return json.Marshal(envelope{Type: event.EventType(), Payload: event})
}

// ClinicQueueUpdated signals that the clinic-wide visit queue for a day has
// changed. It is delivered to every open connection.
type ClinicQueueUpdated struct {
	VisitDate string `json:"visitDate"`
}

func (ClinicQueueUpdated) EventType() string { return "ClinicQueueUpdated" }
func (ClinicQueueUpdated) EventScope() Scope { return ScopeClinic }

// DoctorQueueUpdated signals that a single doctor's queue for a day has
// changed. It is delivered only to connections scoped to that doctor.
type DoctorQueueUpdated struct {
	DoctorID  string `json:"doctorId"`
	VisitDate string `json:"visitDate"`
}

func (DoctorQueueUpdated) EventType() string   { return "DoctorQueueUpdated" }
func (e DoctorQueueUpdated) EventScope() Scope { return ScopeDoctor(e.DoctorID) }
