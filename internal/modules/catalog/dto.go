package catalog

import "github.com/shopspring/decimal"

type ServiceRequest struct {
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=4000"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,gt=0,lte=720"`
	Active          *bool           `json:"active,omitempty"`
	ImageURL        string          `json:"image_url" validate:"omitempty,url"`
	CategoryIDs     []int64         `json:"category_ids" validate:"dive,gt=0"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type SpecialistRequest struct {
	UserID         *int64  `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	Name           string  `json:"name" validate:"required,max=200"`
	Specialization string  `json:"specialization" validate:"max=200"`
	Bio            string  `json:"bio" validate:"max=4000"`
	ServiceIDs     []int64 `json:"service_ids" validate:"dive,gt=0"`
}

type SpecialistServicesRequest struct {
	ServiceIDs []int64 `json:"service_ids" validate:"dive,gt=0"`
}
