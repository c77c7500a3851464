package clients

import (
	"strings"
	"time"
)

// Client represents a therapy seeker. Identified by phone number or email;
// the phone is stored digit-only with the country calling code prefixed.
type Client struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PhoneNo      string            `json:"phone_no"`
	Age          *int              `json:"age,omitempty"`
	Sex          string            `json:"sex,omitempty"`
	City         string            `json:"city,omitempty"`
	Zipcode      string            `json:"zipcode,omitempty"`
	Diagnosis    string            `json:"diagnosis,omitempty"`
	PhotoURL     string            `json:"photo_url,omitempty"`
	QAndA        map[string]string `json:"q_and_a,omitempty"`
	SessionCount int               `json:"session_count"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// CreateRequest is the payload for registering a client through the API.
type CreateRequest struct {
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	PhoneNo   string            `json:"phone_no"`
	Age       *int              `json:"age"`
	Sex       string            `json:"sex"`
	City      string            `json:"city"`
	Zipcode   string            `json:"zipcode"`
	Diagnosis string            `json:"diagnosis"`
	PhotoURL  string            `json:"photo_url"`
	QAndA     map[string]string `json:"q_and_a"`
}

// Validate checks the required registration fields.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" {
		return ErrNameEmailRequired
	}
	return nil
}

// UpsertFields carries the fields merged into a client row on upsert. Nil
// pointers mean "not supplied": the stored value is preserved.
type UpsertFields struct {
	Name  *string
	Age   *int
	City  *string
	Email *string
	QAndA map[string]string
}
