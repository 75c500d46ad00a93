package domain

import "time"

type Review struct {
	ID            int64      `json:"id"`
	BookingID     int64      `json:"booking_id"`
	Rating        int        `json:"rating"`
	Comment       string     `json:"comment,omitempty"`
	Approved      bool       `json:"approved"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	AdminResponse string     `json:"admin_response,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
