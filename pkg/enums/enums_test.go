package enums

import "testing"

func TestParseAccountRole(t *testing.T) {
	role, err := ParseAccountRole(" Store ")
	if err != nil || role != AccountRoleStore {
		t.Fatalf("expected store role, got %q err=%v", role, err)
	}
	if _, err := ParseAccountRole("owner"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
	if AccountRoleAdmin.SelfRegistrable() {
		t.Fatalf("admin must not be self registrable")
	}
	if !AccountRoleCustomer.SelfRegistrable() || !AccountRoleStore.SelfRegistrable() {
		t.Fatalf("customer and store roles should be self registrable")
	}
}

func TestSubscriptionTier(t *testing.T) {
	if !SubscriptionTierPremium.IsValid() || SubscriptionTier("gold").IsValid() {
		t.Fatalf("unexpected tier validity")
	}
	if _, err := ParseSubscriptionTier("basic"); err != nil {
		t.Fatalf("expected basic tier to parse: %v", err)
	}
}

func TestWeekdays(t *testing.T) {
	if len(Weekdays) != 7 || Weekdays[0] != WeekdayMonday || Weekdays[6] != WeekdaySunday {
		t.Fatalf("unexpected weekday order %v", Weekdays)
	}
	if _, err := ParseWeekday("Monday"); err == nil {
		t.Fatalf("weekday keys are lowercase")
	}
}

func TestParseMediaKind(t *testing.T) {
	kind, err := ParseMediaKind(" Products ")
	if err != nil || kind != MediaKindProduct {
		t.Fatalf("expected products kind, got %q err=%v", kind, err)
	}
	if _, err := ParseMediaKind("avatars"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
