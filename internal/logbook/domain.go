// Package logbook aggregates flight hours from logbook entries.
package logbook

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrValidation indicates a malformed query.
var ErrValidation = errors.New("logbook: validation failed")

// Entry is one logbook_entries row.
type Entry struct {
	ID                   uuid.UUID       `json:"id"`
	Date                 time.Time       `json:"date"`
	AircraftRegistration string          `json:"aircraft_registration"`
	PICCanac             string          `json:"pic_canac"`
	SICCanac             string          `json:"sic_canac"`
	TotalTime            decimal.Decimal `json:"total_time"`
	NightTime            decimal.Decimal `json:"night_time"`
	IFRApproaches        int             `json:"ifr_approaches"`
	Landings             int             `json:"landings"`
}

// RoleTotals sums the legs flown in one seat.
type RoleTotals struct {
	Legs          int             `json:"legs"`
	TotalTime     decimal.Decimal `json:"total_time"`
	NightTime     decimal.Decimal `json:"night_time"`
	IFRApproaches int             `json:"ifr_approaches"`
	Landings      int             `json:"landings"`
}

func (t *RoleTotals) add(e Entry) {
	t.Legs++
	t.TotalTime = t.TotalTime.Add(e.TotalTime)
	t.NightTime = t.NightTime.Add(e.NightTime)
	t.IFRApproaches += e.IFRApproaches
	t.Landings += e.Landings
}

// AircraftHours are the PIC hours flown on one aircraft.
type AircraftHours struct {
	Registration string          `json:"registration"`
	Hours        decimal.Decimal `json:"hours"`
	Days         int             `json:"days"`
	DailyRate    bool            `json:"daily_rate"`
}

// FlightHours is the monthly summary of one crew member.
type FlightHours struct {
	Canac     string          `json:"canac"`
	Month     string          `json:"month"`
	PIC       RoleTotals      `json:"pic"`
	SIC       RoleTotals      `json:"sic"`
	TotalTime decimal.Decimal `json:"total_time"`
	Aircraft  []AircraftHours `json:"aircraft"`
}
