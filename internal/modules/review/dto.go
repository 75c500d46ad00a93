package review

type CreateReviewRequest struct {
	BookingID int64  `json:"booking_id" validate:"required,gt=0"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment,omitempty" validate:"max=4000"`
}

type AdminResponseRequest struct {
	Response string `json:"response" validate:"required,max=4000"`
}
