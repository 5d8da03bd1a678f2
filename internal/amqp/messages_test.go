package amqp

import "testing"

func TestLedgerMutationMessageJSON(t *testing.T) {
	msg := NewLedgerMutationMessage("KRW", OpDelete, []string{"r1", "r2"})
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerMutationMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Currency != "KRW" || got.Op != OpDelete || len(got.RowIDs) != 2 {
		t.Fatalf("unexpected message: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected timestamp to survive the round trip")
	}
}

func TestLedgerMutationMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := LedgerMutationMessageFromJSON([]byte(`{"currency":`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
