package domain

import "strings"

// CancellationPolicy тариф отмены бронирования
type CancellationPolicy string

const (
	PolicyFlexible CancellationPolicy = "FLEXIBLE"
	PolicyModerate CancellationPolicy = "MODERATE"
	PolicyStrict   CancellationPolicy = "STRICT"
)

// ParseCancellationPolicy конвертирует строку в тариф без учёта регистра
func ParseCancellationPolicy(s string) (CancellationPolicy, bool) {
	p := CancellationPolicy(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", false
	}
	return p, true
}

// IsValid returns true for known policy tiers
func (p CancellationPolicy) IsValid() bool {
	switch p {
	case PolicyFlexible, PolicyModerate, PolicyStrict:
		return true
	default:
		return false
	}
}
