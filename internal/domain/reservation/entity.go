package reservation

import "time"

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Reservation は予約エンティティを表す
type Reservation struct {
	ID                   string
	AircraftID           string
	UserID               string
	StartTime            time.Time
	EndTime              time.Time
	ReservationDate      time.Time
	EstimatedFlightHours *float64
	Purpose              string
	Notes                string
	FlightCategory       string
	Status               Status
	// PaymentID はこの予約を支払った引き落とし（精算成功までは空）
	PaymentID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReservation は確定済みの新しい予約を作成する
func NewReservation(aircraftID, userID string, startTime, endTime time.Time) *Reservation {
	now := time.Now()
	return &Reservation{
		AircraftID:      aircraftID,
		UserID:          userID,
		StartTime:       startTime,
		EndTime:         endTime,
		ReservationDate: now,
		Status:          StatusConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Window は予約された時間帯を返す
func (r *Reservation) Window() Window {
	return Window{Start: r.StartTime, End: r.EndTime}
}

// Hours は予約時間を時間単位で返す
func (r *Reservation) Hours() float64 {
	return r.Window().Hours()
}

// IsSettled は引き落としが紐付いているかを返す
func (r *Reservation) IsSettled() bool {
	return r.PaymentID != ""
}

// IsLive は予約がまだ機体を占有しているかを返す
func (r *Reservation) IsLive() bool {
	return r.Status == StatusConfirmed || r.Status == StatusPending
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.AircraftID == "" {
		return ErrAircraftIDRequired
	}
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	return r.Window().Validate()
}
