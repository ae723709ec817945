package model

import (
	"testing"
	"time"
)

func TestRebalanceModeTag(t *testing.T) {
	if Rebalanced.Tag() != "rebalanced" {
		t.Fatalf("unexpected tag %s", Rebalanced.Tag())
	}
	if NotRebalanced.Tag() != "notrebalanced" {
		t.Fatalf("unexpected tag %s", NotRebalanced.Tag())
	}
	if ModeFromBool(true) != Rebalanced || ModeFromBool(false) != NotRebalanced {
		t.Fatalf("ModeFromBool mismatch")
	}
}

func TestParseRebalanceMode(t *testing.T) {
	for _, m := range []RebalanceMode{Rebalanced, NotRebalanced} {
		got, err := ParseRebalanceMode(m.Tag())
		if err != nil || got != m {
			t.Fatalf("round trip %v: got %v err %v", m, got, err)
		}
	}
	if _, err := ParseRebalanceMode("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestIsWeekday(t *testing.T) {
	mon := time.Date(2019, 6, 3, 12, 0, 0, 0, time.UTC)
	if !IsWeekday(mon) {
		t.Fatalf("monday should be a weekday")
	}
	if !IsWeekday(mon.AddDate(0, 0, 4)) {
		t.Fatalf("friday should be a weekday")
	}
	if IsWeekday(mon.AddDate(0, 0, 5)) || IsWeekday(mon.AddDate(0, 0, 6)) {
		t.Fatalf("weekend detected as weekday")
	}
}
