package models

import (
	"fmt"
	"time"
)

// BaseUnitsPerToken converts base units to display units (1 token = 1e6
// base units).
const BaseUnitsPerToken = 1_000_000

// FormatDisplay renders a base-unit amount in whole tokens with six
// fractional digits, trimming is left to the caller.
func FormatDisplay(a Amount) string {
	whole := int64(a) / BaseUnitsPerToken
	frac := int64(a) % BaseUnitsPerToken
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%06d", whole, frac)
}

// ShortAddress abbreviates a ledger address for display: first 6 and last
// 4 characters.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// TimeAgo renders the elapsed time since a Unix timestamp in the coarsest
// sensible unit.
func TimeAgo(ts int64, now time.Time) string {
	if ts == 0 {
		return ""
	}
	seconds := now.Unix() - ts
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	case seconds < 604800:
		return fmt.Sprintf("%dd ago", seconds/86400)
	case seconds < 2592000:
		return fmt.Sprintf("%dw ago", seconds/604800)
	}
	return time.Unix(ts, 0).UTC().Format("Jan 2, 2006")
}
