package enums

import "fmt"

// ServicePricing distinguishes flat-priced services from hourly ones.
type ServicePricing string

const (
	ServicePricingFlat    ServicePricing = "flat"
	ServicePricingPerHour ServicePricing = "per_hour"
)

var validServicePricings = []ServicePricing{
	ServicePricingFlat,
	ServicePricingPerHour,
}

// String implements fmt.Stringer.
func (s ServicePricing) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServicePricing.
func (s ServicePricing) IsValid() bool {
	for _, candidate := range validServicePricings {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServicePricing converts raw input into a ServicePricing.
func ParseServicePricing(value string) (ServicePricing, error) {
	for _, candidate := range validServicePricings {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service pricing %q", value)
}
