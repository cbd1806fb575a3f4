package administration

// Settings はクラブ全体の管理設定を表す
type Settings struct {
	ID            string
	PilotLicenses []string
}

// LicensePolicy は許可されたライセンス種別の不変スナップショット
type LicensePolicy struct {
	authorized map[string]struct{}
}

func NewLicensePolicy(types []string) LicensePolicy {
	p := LicensePolicy{authorized: make(map[string]struct{}, len(types))}
	for _, t := range types {
		p.authorized[t] = struct{}{}
	}
	return p
}

// Policy は設定のスナップショットを返す
func (s *Settings) Policy() LicensePolicy {
	return NewLicensePolicy(s.PilotLicenses)
}

// Authorizes は指定された種別のいずれかが許可されているかを返す
func (p LicensePolicy) Authorizes(types []string) bool {
	for _, t := range types {
		if _, ok := p.authorized[t]; ok {
			return true
		}
	}
	return false
}

// Types は許可されたライセンス種別を返す
func (p LicensePolicy) Types() []string {
	types := make([]string, 0, len(p.authorized))
	for t := range p.authorized {
		types = append(types, t)
	}
	return types
}
