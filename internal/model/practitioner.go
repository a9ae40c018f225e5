package model

import (
	"time"

	"github.com/google/uuid"
)

type Practitioner struct {
	ID                        uuid.UUID `db:"id" json:"id"`
	UserID                    uuid.UUID `db:"user_id" json:"user_id"`
	SpecialtyID               uuid.UUID `db:"specialty_id" json:"specialty_id"`
	FirstName                 string    `db:"first_name" json:"first_name"`
	LastName                  string    `db:"last_name" json:"last_name"`
	SpecialtyName             string    `db:"specialty_name" json:"specialty"`
	LicenseNumber             string    `db:"license_number" json:"license_number,omitempty"`
	Bio                       string    `db:"bio" json:"bio,omitempty"`
	ConsultationDuration      int       `db:"consultation_duration" json:"consultation_duration"`
	ConsultationPrice         float64   `db:"consultation_price" json:"consultation_price"`
	AcceptsNewPatients        bool      `db:"accepts_new_patients" json:"accepts_new_patients"`
	TeleconsultationAvailable bool      `db:"teleconsultation_available" json:"teleconsultation_available"`
	OfficeAddress             string    `db:"office_address" json:"office_address,omitempty"`
	OfficeCity                string    `db:"office_city" json:"office_city,omitempty"`
	OfficePostalCode          string    `db:"office_postal_code" json:"office_postal_code,omitempty"`
	AverageRating             float64   `db:"average_rating" json:"average_rating"`
	TotalReviews              int       `db:"total_reviews" json:"total_reviews"`
	CreatedAt                 time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time `db:"updated_at" json:"updated_at"`
}

// FullName renders the display name used in notifications and emails.
func (p *Practitioner) FullName() string {
	return "Dr. " + p.FirstName + " " + p.LastName
}

type PractitionerFilters struct {
	Specialty        string
	City             string
	Name             string
	Teleconsultation bool
	AcceptsNew       bool
	Page             int
	Limit            int
}

// PractitionerDetail bundles a profile with its weekly availability.
type PractitionerDetail struct {
	Practitioner *Practitioner         `json:"practitioner"`
	Availability []*AvailabilityWindow `json:"availability"`
}
