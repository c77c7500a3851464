package dialogue

// Intent is the closed set of recognized conversational intents. Dispatch is
// an exhaustive switch over this type; a display name outside the set parses
// to IntentFallback so the webhook always produces a response.
type Intent int

const (
	IntentFallback Intent = iota
	IntentWelcome
	IntentGetUserInfo
	IntentGetUserName
	IntentGetUserAge
	IntentGetUserCity
	IntentGetClinical
	IntentGetCounseling
	IntentGetScholar
	IntentBookSession
	IntentSuggestAnother
)

// Display names configured on the conversational platform.
const (
	displayWelcome        = "Default Welcome Intent"
	displayFallback       = "Default Fallback Intent"
	displayGetUserInfo    = "getUserInfo"
	displayGetUserName    = "getUserName"
	displayGetUserAge     = "getUserAge"
	displayGetUserCity    = "getUserCity"
	displayGetClinical    = "getClinicalProfessional"
	displayGetCounseling  = "getCounselingProfessional"
	displayGetScholar     = "getScholarProfessional"
	displayBookSession    = "bookPsychologistSession"
	displaySuggestAnother = "suggestAnotherProfessional"
)

// ParseIntent maps a platform display name onto the intent enum. Unknown
// names fall back rather than erroring.
func ParseIntent(displayName string) Intent {
	switch displayName {
	case displayWelcome:
		return IntentWelcome
	case displayFallback:
		return IntentFallback
	case displayGetUserInfo:
		return IntentGetUserInfo
	case displayGetUserName:
		return IntentGetUserName
	case displayGetUserAge:
		return IntentGetUserAge
	case displayGetUserCity:
		return IntentGetUserCity
	case displayGetClinical:
		return IntentGetClinical
	case displayGetCounseling:
		return IntentGetCounseling
	case displayGetScholar:
		return IntentGetScholar
	case displayBookSession:
		return IntentBookSession
	case displaySuggestAnother:
		return IntentSuggestAnother
	default:
		return IntentFallback
	}
}

// String returns the platform display name for the intent.
func (i Intent) String() string {
	switch i {
	case IntentWelcome:
		return displayWelcome
	case IntentGetUserInfo:
		return displayGetUserInfo
	case IntentGetUserName:
		return displayGetUserName
	case IntentGetUserAge:
		return displayGetUserAge
	case IntentGetUserCity:
		return displayGetUserCity
	case IntentGetClinical:
		return displayGetClinical
	case IntentGetCounseling:
		return displayGetCounseling
	case IntentGetScholar:
		return displayGetScholar
	case IntentBookSession:
		return displayBookSession
	case IntentSuggestAnother:
		return displaySuggestAnother
	default:
		return displayFallback
	}
}
