package dataset

import (
	"encoding/json"
)

// Platform identifies a push delivery platform.
type Platform string

const (
	PlatformAndroid Platform = "Android"
	PlatformIOS     Platform = "iOS"
)

// AllPlatforms is the default platform selection, in report order.
var AllPlatforms = []Platform{PlatformAndroid, PlatformIOS}

// IsValid reports whether p is a known platform.
func (p Platform) IsValid() bool {
	return p == PlatformAndroid || p == PlatformIOS
}

// Variant is the experimental arm a message was sent under.
// Raw report values VAR1/VAR2 are normalized to PR/Social at load time.
type Variant string

const (
	VariantPR     Variant = "PR"
	VariantSocial Variant = "Social"
)

// Float is a nullable float64. The zero value is null. It marshals to
// JSON null when not valid, so "no valid data" is a first-class state
// rather than a NaN leaking into responses.
type Float struct {
	Value float64
	Valid bool
}

// FloatFrom returns a valid Float holding v.
func FloatFrom(v float64) Float {
	return Float{Value: v, Valid: true}
}

// MarshalJSON renders null Floats as JSON null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts a number or null.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FloatFrom(v)
	return nil
}

// Counts holds the raw delivery counters for one platform.
type Counts struct {
	DirectOpens float64 `json:"direct_opens" validate:"gte=0"`
	TotalOpens  float64 `json:"total_opens" validate:"gte=0"`
	Sends       float64 `json:"sends" validate:"gte=0"`
}

// Record is one row of a delivery report, validated once at load time.
type Record struct {
	Day     string  `json:"day" validate:"required"`
	Entity  string  `json:"entity" validate:"required"`
	Slot    string  `json:"slot" validate:"required"`
	Variant Variant `json:"variant" validate:"required"`
	Android Counts  `json:"android"`
	IOS     Counts  `json:"ios"`
}

// Counts returns the counters for the given platform.
func (r Record) Counts(p Platform) Counts {
	if p == PlatformIOS {
		return r.IOS
	}
	return r.Android
}

// RateRecord extends a Record with its derived open rates. Rates are
// computed once by ComputeRates and read-only thereafter.
type RateRecord struct {
	Record
	AndroidDirectOpenRate Float `json:"android_direct_open_rate"`
	AndroidTotalOpenRate  Float `json:"android_total_open_rate"`
	IOSDirectOpenRate     Float `json:"ios_direct_open_rate"`
	IOSTotalOpenRate      Float `json:"ios_total_open_rate"`
}

// DirectOpenRate returns the direct open rate for the given platform.
func (r RateRecord) DirectOpenRate(p Platform) Float {
	if p == PlatformIOS {
		return r.IOSDirectOpenRate
	}
	return r.AndroidDirectOpenRate
}

// TotalOpenRate returns the total open rate for the given platform.
func (r RateRecord) TotalOpenRate(p Platform) Float {
	if p == PlatformIOS {
		return r.IOSTotalOpenRate
	}
	return r.AndroidTotalOpenRate
}
