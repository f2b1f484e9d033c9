package utils

import "time"

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: fixed zone if tz database is not available.
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// MarketOpenTime returns the NSE market opening time (9:15 AM IST) for a date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(IST)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 15, 0, 0, IST)
}

// MarketCloseTime returns the NSE market closing time (3:30 PM IST) for a date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(IST)
	return time.Date(d.Year(), d.Month(), d.Day(), 15, 30, 0, 0, IST)
}

// IsMarketOpenAt checks if the NSE market would be open at the given time.
// Weekends and out-of-session hours only; trading holidays are not tracked.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(IST)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !t.Before(MarketOpenTime(t)) && !t.After(MarketCloseTime(t))
}

// MarketStatus returns a human-readable NSE session label for the current time.
func MarketStatus() string {
	now := NowIST()
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	if IsMarketOpenAt(now) {
		return "OPEN"
	}
	if now.Before(MarketOpenTime(now)) {
		return "PRE-MARKET"
	}
	return "CLOSED"
}

// FormatDateTimeIST formats a time in IST for display.
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("02 Jan 2006 15:04:05 IST")
}
