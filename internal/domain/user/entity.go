package user

// License はユーザーが保有するパイロットライセンスを表す
type License struct {
	ID          string
	LicenseType string
}

// User は予約と精算に関係するクラブ会員の情報を表す
type User struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	AccountBalance   float64
	TotalFlightHours float64
	Licenses         []License
}

// LicenseTypes はユーザーが保有するライセンス種別を返す
func (u *User) LicenseTypes() []string {
	types := make([]string, 0, len(u.Licenses))
	for _, l := range u.Licenses {
		types = append(types, l.LicenseType)
	}
	return types
}
