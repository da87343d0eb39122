package travel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reportSeqPattern = regexp.MustCompile(`REL\s*(\d+)`)

// FormatReportNumber renders "REL 007/24 - PT-ABC - Acme Ltda".
func FormatReportNumber(seq int, at time.Time, aircraft, client string) string {
	return fmt.Sprintf("REL %03d/%02d - %s - %s", seq, at.Year()%100, strings.TrimSpace(aircraft), strings.TrimSpace(client))
}

// ParseReportSequence extracts NNN from a "REL NNN..." number.
func ParseReportSequence(number string) (int, bool) {
	m := reportSeqPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextReportNumber formats the number that follows previous. It starts at 1 when
// previous carries no sequence.
func NextReportNumber(previous string, at time.Time, aircraft, client string) string {
	seq, _ := ParseReportSequence(previous)
	return FormatReportNumber(seq+1, at, aircraft, client)
}

// BelongsToClient reports whether a legacy number names the client. The match
// is literal and case-insensitive, mirroring the counter seed query.
func BelongsToClient(number, client string) bool {
	client = strings.TrimSpace(client)
	return client != "" && strings.Contains(strings.ToLower(number), strings.ToLower(client))
}
