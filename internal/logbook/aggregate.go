package logbook

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Aggregate partitions entries by the seat canac filled. A leg where canac
// fills both seats counts as PIC. Entries naming canac in neither seat are ignored.
func Aggregate(canac, month string, entries []Entry) FlightHours {
	out := FlightHours{Canac: canac, Month: month, Aircraft: []AircraftHours{}}
	type acc struct {
		hours decimal.Decimal
		days  map[string]struct{}
	}
	perAircraft := map[string]*acc{}
	for _, e := range entries {
		switch {
		case sameCanac(e.PICCanac, canac):
			out.PIC.add(e)
			reg := strings.ToUpper(strings.TrimSpace(e.AircraftRegistration))
			a, ok := perAircraft[reg]
			if !ok {
				a = &acc{days: map[string]struct{}{}}
				perAircraft[reg] = a
			}
			a.hours = a.hours.Add(e.TotalTime)
			a.days[e.Date.Format("2006-01-02")] = struct{}{}
		case sameCanac(e.SICCanac, canac):
			out.SIC.add(e)
		}
	}
	out.TotalTime = out.PIC.TotalTime.Add(out.SIC.TotalTime)
	for reg, a := range perAircraft {
		out.Aircraft = append(out.Aircraft, AircraftHours{Registration: reg, Hours: a.hours, Days: len(a.days), DailyRate: true})
	}
	sort.Slice(out.Aircraft, func(i, j int) bool { return out.Aircraft[i].Registration < out.Aircraft[j].Registration })
	return out
}

func sameCanac(a, b string) bool {
	a = strings.TrimSpace(a)
	return a != "" && strings.EqualFold(a, strings.TrimSpace(b))
}
