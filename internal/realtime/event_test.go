package realtime

import (
	"encoding/json"
	"testing"
)

func TestEncode_ClinicQueueUpdated(t *testing.T) {
	data, err := Encode(ClinicQueueUpdated{VisitDate: "2024-05-01"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := `{"type":"ClinicQueueUpdated","payload":{"visitDate":"2024-05-01"}}`
	if string(data) != want {
		t.Errorf("envelope mismatch:\n got %s\nwant %s", data, want)
	}
}

func TestEncode_DoctorQueueUpdated(t *testing.T) {
	data, err := Encode(DoctorQueueUpdated{DoctorID: "D1", VisitDate: "2024-05-01"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if len(env) != 2 {
		t.Errorf("envelope must have exactly the type and payload fields, got %d fields", len(env))
	}
	if _, ok := env["type"]; !ok {
		t.Error("envelope missing type field")
	}
	if _, ok := env["payload"]; !ok {
		t.Error("envelope missing payload field")
	}
}

func TestEventScopes(t *testing.T) {
	if got := (ClinicQueueUpdated{}).EventScope(); got != ScopeClinic {
		t.Errorf("clinic event must be clinic-scoped, got %q", got)
	}
	if got := (DoctorQueueUpdated{DoctorID: "D9"}).EventScope(); got != ScopeDoctor("D9") {
		t.Errorf("doctor event must carry the doctor scope, got %q", got)
	}
	if ScopeDoctor("D9") != Scope("doctor:D9") {
		t.Errorf("unexpected doctor scope encoding: %q", ScopeDoctor("D9"))
	}
}
