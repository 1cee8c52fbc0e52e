package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// YieldPoint is one observation of the 2-year and 10-year government bond yields, in percent.
type YieldPoint struct {
	Date    time.Time       `json:"date"`
	TwoYear decimal.Decimal `json:"two_year"`
	TenYear decimal.Decimal `json:"ten_year"`
}

// Spread is the 10-2 spread.
func (p YieldPoint) Spread() decimal.Decimal {
	return p.TenYear.Sub(p.TwoYear)
}

// YieldSeries is an ordered run of yield observations.
type YieldSeries struct {
	Name   string       `json:"name"`
	Points []YieldPoint `json:"points"`
}

// Latest returns the most recent point, if any.
func (s YieldSeries) Latest() (YieldPoint, bool) {
	if len(s.Points) == 0 {
		return YieldPoint{}, false
	}
	latest := s.Points[0]
	for _, p := range s.Points[1:] {
		if p.Date.After(latest.Date) {
			latest = p
		}
	}
	return latest, true
}

// Inverted counts the observations with a negative spread.
func (s YieldSeries) Inverted() int {
	n := 0
	for _, p := range s.Points {
		if p.Spread().IsNegative() {
			n++
		}
	}
	return n
}
