package professionals

import (
	"encoding/json"
	"strings"
	"time"
)

// Expertise tags understood by the matcher. The tag stored on a professional
// row must be exactly one of these strings.
const (
	ExpertiseClinical      = "Clinical Psychologist"
	ExpertiseCounseling    = "Counseling Psychologist"
	ExpertiseWellnessBuddy = "Wellness Buddy"
)

// Professional represents a service provider. Read-only from the dialogue
// flows; mutated only through the CRUD handler.
type Professional struct {
	ID              int64           `json:"id"`
	FullName        string          `json:"full_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	PhotoURL        string          `json:"photo_url"`
	AreaOfExpertise string          `json:"area_of_expertise"`
	AboutMe         string          `json:"about_me"`
	City            string          `json:"city"`
	Languages       []string        `json:"languages"`
	Services        json.RawMessage `json:"services,omitempty"`
	RazorpayAccount string          `json:"razorpay_account,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateRequest is the payload for registering a professional.
type CreateRequest struct {
	FullName        string          `json:"full_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	PhotoURL        string          `json:"photo_url"`
	AreaOfExpertise string          `json:"area_of_expertise"`
	AboutMe         string          `json:"about_me"`
	City            string          `json:"city"`
	Languages       []string        `json:"languages"`
	Services        json.RawMessage `json:"services"`
	RazorpayAccount string          `json:"razorpay_account"`
}

// Validate checks the required registration fields.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return ErrMissingFullName
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrMissingEmail
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrMissingPhone
	}
	return nil
}

// defaultWellnessService is injected when a Wellness Buddy registers without
// declaring any services, matching the product's standard listing.
var defaultWellnessService = json.RawMessage(`[{"serviceTitle":"Wellness Buddy Chat","serviceDescription":"Your personal, secret buddy to talk to anytime. Share what's on your mind, feel heard, and get kind support from someone who cares. No Judgment, Full Privacy.","price":149,"currency":"INR","duration":"30 minutes"}]`)
