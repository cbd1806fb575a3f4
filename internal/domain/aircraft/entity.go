package aircraft

import "time"

// Aircraft は予約可能なクラブ機体を表す
type Aircraft struct {
	ID                 string
	RegistrationNumber string
	Model              string
	HourlyCost         float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewAircraft(registrationNumber, model string, hourlyCost float64) *Aircraft {
	now := time.Now()
	return &Aircraft{
		RegistrationNumber: registrationNumber,
		Model:              model,
		HourlyCost:         hourlyCost,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func (a *Aircraft) Validate() error {
	if a.RegistrationNumber == "" {
		return ErrRegistrationRequired
	}
	if a.HourlyCost < 0 {
		return ErrInvalidHourlyCost
	}
	return nil
}
