package reservation

import "time"

// Cost は時間帯と時間単価から金額を計算する
// 丸めは行わない。負の時間はここでは弾かないので呼び出し側で先に検証すること
func Cost(hourlyCost float64, start, end time.Time) float64 {
	return Window{Start: start, End: end}.Hours() * hourlyCost
}
