package reservation

import "time"

// Window は半開区間 [Start, End) を表す
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return ErrInvalidTimeWindow
	}
	if !w.End.After(w.Start) {
		return ErrInvalidTimeWindow
	}
	return nil
}

// Overlaps は両端とも厳密な不等号で判定する
// 接しているだけの時間帯（一方の終了が他方の開始と同時）は重ならない
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Hours はミリ秒から計算した時間数を返す
func (w Window) Hours() float64 {
	return float64(w.End.Sub(w.Start).Milliseconds()) / float64(time.Hour.Milliseconds())
}
