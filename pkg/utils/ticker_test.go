package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"reliance", "RELIANCE"},
		{"  TCS  ", "TCS"},
		{"$INFY", "INFY"},
		{"SBIN.NS", "SBIN"},
		{"TATASTEEL.BO", "TATASTEEL"},
	}
	for _, tt := range tests {
		if got := NormalizeTicker(tt.input); got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToYahooTicker(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"RELIANCE", "RELIANCE.NS"},
		{"reliance", "RELIANCE.NS"},
		{"SBIN.NS", "SBIN.NS"},
		{"TATASTEEL.BO", "TATASTEEL.BO"},
		{"^NSEI", "^NSEI"},
	}
	for _, tt := range tests {
		if got := ToYahooTicker(tt.input); got != tt.want {
			t.Errorf("ToYahooTicker(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFromYahooTicker(t *testing.T) {
	if got := FromYahooTicker("HDFCBANK.NS"); got != "HDFCBANK" {
		t.Errorf("FromYahooTicker(HDFCBANK.NS) = %q, want HDFCBANK", got)
	}
	if got := FromYahooTicker("HDFCBANK"); got != "HDFCBANK" {
		t.Errorf("FromYahooTicker(HDFCBANK) = %q, want HDFCBANK", got)
	}
}
