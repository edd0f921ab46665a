package format

import (
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "now"},
		{"59 seconds", 59 * time.Second, "now"},
		{"1 minute", time.Minute, "1m"},
		{"59 minutes", 59 * time.Minute, "59m"},
		{"1 hour", time.Hour, "1h"},
		{"23 hours", 23 * time.Hour, "23h"},
		{"1 day", 24 * time.Hour, "1d"},
		{"6 days", 6 * 24 * time.Hour, "6d"},
		{"7 days", 7 * 24 * time.Hour, "1w"},
		{"29 days", 29 * 24 * time.Hour, "4w"},
		{"30 days", 30 * 24 * time.Hour, "1mo"},
		{"182 days", 182 * 24 * time.Hour, "6mo"},
		{"364 days", 364 * 24 * time.Hour, "12mo"},
		{"365 days", 365 * 24 * time.Hour, "1y"},
		{"800 days", 800 * 24 * time.Hour, "2y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAge(tt.duration)
			if got != tt.expected {
				t.Errorf("FormatAge(%v) = %q, want %q", tt.duration, got, tt.expected)
			}
		})
	}
}

func TestNextThreshold(t *testing.T) {
	tests := []struct {
		days     int
		expected string
	}{
		{0, "warn in 182d"},
		{181, "warn in 1d"},
		{182, "second notice in 153d"},
		{334, "second notice in 1d"},
		{335, "close in 30d"},
		{364, "close in 1d"},
		{365, "due"},
		{1000, "due"},
	}

	for _, tt := range tests {
		if got := NextThreshold(tt.days); got != tt.expected {
			t.Errorf("NextThreshold(%d) = %q, want %q", tt.days, got, tt.expected)
		}
	}
}
