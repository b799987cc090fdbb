package model

import (
	"testing"
	"time"
)

func TestUnknownStatusView(t *testing.T) {
	v := UnknownStatusView()
	if v.CrowdLevel != LabelUnknown || v.Party2 != LabelUnknown || v.Party3 != LabelUnknown || v.Party4 != LabelUnknown {
		t.Fatalf("expected all labels UNKNOWN, got %+v", v)
	}
	if !v.Stale {
		t.Fatal("unknown view must be stale")
	}
	if v.AgeMinutes != -1 {
		t.Fatalf("age = %d, want -1", v.AgeMinutes)
	}
	if v.UpdatedAt != nil || v.ExpiresAt != nil {
		t.Fatal("unknown view must have nil timestamps")
	}
}

func TestNewStatusViewFresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &VenueStatus{
		VenueID:    7,
		CrowdLevel: CrowdBusy,
		Party2:     AvailabilityYes,
		Party3:     AvailabilityMaybe,
		Party4:     AvailabilityNo,
		UpdatedAt:  now.Add(-5 * time.Minute),
		ExpiresAt:  now.Add(25 * time.Minute),
	}
	v := NewStatusView(s, now)
	if v.Stale {
		t.Fatal("5-minute-old status must not be stale")
	}
	if v.AgeMinutes != 5 {
		t.Fatalf("age = %d, want 5", v.AgeMinutes)
	}
	if v.CrowdLevel != CrowdBusy || v.Party3 != AvailabilityMaybe {
		t.Fatalf("labels not carried over: %+v", v)
	}
	if v.UpdatedAt == nil || !v.UpdatedAt.Equal(s.UpdatedAt) {
		t.Fatalf("updated_at = %v, want %v", v.UpdatedAt, s.UpdatedAt)
	}
}

func TestNewStatusViewStalenessBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		age   time.Duration
		stale bool
	}{
		{"just written", 0, false},
		{"29 minutes", 29 * time.Minute, false},
		{"29m59s", 29*time.Minute + 59*time.Second, false},
		{"exactly 30 minutes", 30 * time.Minute, true},
		{"hours old", 3 * time.Hour, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &VenueStatus{UpdatedAt: now.Add(-tc.age), ExpiresAt: now.Add(StatusTTL - tc.age)}
			v := NewStatusView(s, now)
			if v.Stale != tc.stale {
				t.Fatalf("stale = %v, want %v (age %v)", v.Stale, tc.stale, tc.age)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &VenueStatus{ExpiresAt: now}
	if s.Expired(now) {
		t.Fatal("status must not be expired at the exact expiry instant")
	}
	if !s.Expired(now.Add(time.Second)) {
		t.Fatal("status must be expired after expires_at")
	}
}

func TestValidLabels(t *testing.T) {
	for _, l := range []string{CrowdRelaxed, CrowdNormal, CrowdBusy, CrowdFull} {
		if !ValidCrowdLevel(l) {
			t.Errorf("ValidCrowdLevel(%q) = false", l)
		}
	}
	for _, l := range []string{"", "busy", LabelUnknown, "VERY_BUSY"} {
		if ValidCrowdLevel(l) {
			t.Errorf("ValidCrowdLevel(%q) = true", l)
		}
	}
	for _, l := range []string{AvailabilityYes, AvailabilityMaybe, AvailabilityNo} {
		if !ValidAvailability(l) {
			t.Errorf("ValidAvailability(%q) = false", l)
		}
	}
	for _, l := range []string{"", "yes", LabelUnknown} {
		if ValidAvailability(l) {
			t.Errorf("ValidAvailability(%q) = true", l)
		}
	}
}
