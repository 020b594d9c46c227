package types

import (
	"encoding/json"
	"testing"
)

func TestOptionalAbsentVsNull(t *testing.T) {
	type patch struct {
		Note Optional[*string] `json:"catatan_medis"`
	}

	var absent patch
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.Note.Valid {
		t.Fatal("expected absent field to stay invalid")
	}

	var null patch
	if err := json.Unmarshal([]byte(`{"catatan_medis":null}`), &null); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !null.Note.Valid {
		t.Fatal("expected explicit null to be marked valid")
	}
	if null.Note.Value != nil {
		t.Fatalf("expected nil value, got %v", *null.Note.Value)
	}

	var set patch
	if err := json.Unmarshal([]byte(`{"catatan_medis":"kontrol ulang"}`), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !set.Note.Valid || set.Note.Value == nil || *set.Note.Value != "kontrol ulang" {
		t.Fatalf("unexpected decode result: %+v", set.Note)
	}
}
