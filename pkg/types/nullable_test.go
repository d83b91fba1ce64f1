package types

import (
	"encoding/json"
	"testing"
)

func TestNullableStringUnmarshal(t *testing.T) {
	type payload struct {
		Photo NullableString `json:"photo"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"photo": " /uploads/a.jpg "}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.Photo.Set || got.Photo.Value == nil || *got.Photo.Value != "/uploads/a.jpg" {
		t.Fatalf("expected trimmed value, got %+v", got.Photo)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"photo": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.Photo.Set || got.Photo.Value != nil {
		t.Fatalf("expected explicit null, got %+v", got.Photo)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"photo": ""}`), &got); err != nil {
		t.Fatalf("unmarshal blank: %v", err)
	}
	if !got.Photo.Set || got.Photo.Value != nil {
		t.Fatalf("expected blank to clear, got %+v", got.Photo)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.Photo.Set {
		t.Fatalf("expected unset for missing field, got %+v", got.Photo)
	}

	if err := json.Unmarshal([]byte(`{"photo": 12}`), &got); err == nil {
		t.Fatalf("expected error for non-string")
	}
}

func TestNullableStringApply(t *testing.T) {
	existing := "/uploads/old.jpg"
	dst := &existing

	NullableString{}.Apply(&dst)
	if dst == nil || *dst != "/uploads/old.jpg" {
		t.Fatalf("unset field must not change destination")
	}

	next := "/uploads/new.jpg"
	NullableString{Set: true, Value: &next}.Apply(&dst)
	if dst == nil || *dst != "/uploads/new.jpg" {
		t.Fatalf("expected new value, got %v", dst)
	}

	NullableString{Set: true}.Apply(&dst)
	if dst != nil {
		t.Fatalf("expected cleared destination")
	}
}
