package session

import (
	"testing"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

func TestAlertContextRoundTrip(t *testing.T) {
	s := NewMemStore()

	SaveAlertContext(s, model.AlertContext{SearchName: "juyo katana under 2M", TotalMatches: 17})
	got, ok := LoadAlertContext(s)
	if !ok {
		t.Fatal("expected stored context to load")
	}
	if got.SearchName != "juyo katana under 2M" {
		t.Errorf("expected search name preserved, got %q", got.SearchName)
	}
	if got.TotalMatches != 17 {
		t.Errorf("expected 17 matches, got %d", got.TotalMatches)
	}

	ClearAlertContext(s)
	if _, ok := LoadAlertContext(s); ok {
		t.Error("expected load to fail after clear")
	}
}

func TestAlertContextNilStoreNoOps(t *testing.T) {
	// Absent storage disables the feature, it never fails.
	SaveAlertContext(nil, model.AlertContext{SearchName: "x"})
	if _, ok := LoadAlertContext(nil); ok {
		t.Error("expected no context from nil store")
	}
	ClearAlertContext(nil)
}

func TestAlertContextGarbagePayload(t *testing.T) {
	s := NewMemStore()
	s.Set(KeyAlertContext, "{not json")
	if _, ok := LoadAlertContext(s); ok {
		t.Error("expected load to fail on garbage payload")
	}
}

func TestMemStoreMissingKey(t *testing.T) {
	s := NewMemStore()
	if _, ok := s.Get("absent"); ok {
		t.Error("expected miss on absent key")
	}
	s.Set("k", "v")
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Errorf("expected v, got %q ok=%v", v, ok)
	}
	s.Delete("k")
	if _, ok := s.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}
