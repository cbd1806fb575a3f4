package mail

import "context"

// Message はテンプレート付きのメール送信ジョブ（描画はメーラー側で行う）
type Message struct {
	To        string         `json:"to"`
	Subject   string         `json:"subject"`
	Text      string         `json:"text"`
	Template  string         `json:"template"`
	Variables map[string]any `json:"variables"`
}

const (
	TemplateReservationConfirmed = "reservation-confirmation"
	TemplateReservationModified  = "reservation-modification"
	TemplateReservationCancelled = "reservation-cancellation"
)

// Dispatcher はメールジョブを配信システムに渡す
type Dispatcher interface {
	SendMail(ctx context.Context, msg Message) error
}
