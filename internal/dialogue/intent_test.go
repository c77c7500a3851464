package dialogue

import "testing"

func TestParseIntentRoundTrips(t *testing.T) {
	known := []Intent{
		IntentWelcome, IntentFallback, IntentGetUserInfo, IntentGetUserName,
		IntentGetUserAge, IntentGetUserCity, IntentGetClinical,
		IntentGetCounseling, IntentGetScholar, IntentBookSession,
		IntentSuggestAnother,
	}
	for _, in := range known {
		if got := ParseIntent(in.String()); got != in {
			t.Fatalf("ParseIntent(%q) = %v, want %v", in.String(), got, in)
		}
	}
}

func TestParseIntentUnknownFallsBack(t *testing.T) {
	for _, name := range []string{"", "orderPizza", "getuserinfo", "GetUserInfo "} {
		if got := ParseIntent(name); got != IntentFallback {
			t.Fatalf("ParseIntent(%q) = %v, want fallback", name, got)
		}
	}
}
