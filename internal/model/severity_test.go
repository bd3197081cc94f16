package model

import "testing"

func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Severity
		ok       bool
	}{
		{"info", SeverityInfo, true},
		{"Low", SeverityLow, true},
		{" MEDIUM ", SeverityMedium, true},
		{"high", SeverityHigh, true},
		{"critical", SeverityCritical, true},
		{"severe", SeverityInfo, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseSeverity(tc.input)
			if got != tc.expected || ok != tc.ok {
				t.Errorf("ParseSeverity(%q) = (%v, %v), expected (%v, %v)", tc.input, got, ok, tc.expected, tc.ok)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		findingType string
		expected    Severity
	}{
		{FindingNoIndex, SeverityCritical},
		{FindingStatusError, SeverityHigh},
		{FindingHreflangInvalidTag, SeverityHigh},
		{FindingSitemapUnreachable, SeverityHigh},
		{FindingExifGPS, SeverityHigh},
		{FindingCanonicalMissing, SeverityMedium},
		{FindingHreflangReciprocal, SeverityMedium},
		{FindingTitleDuplicate, SeverityMedium},
		{FindingStatusRedirect, SeverityLow},
		{FindingHreflangNoXDefault, SeverityLow},
		{FindingExifCamera, SeverityLow},
		{FindingExifSoftware, SeverityInfo},
		{FindingSitemapURLNotChecked, SeverityInfo},
		{"unknown_type", SeverityInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.findingType, func(t *testing.T) {
			t.Parallel()
			if got := GetSeverity(tc.findingType); got != tc.expected {
				t.Errorf("GetSeverity(%q) = %v, expected %v", tc.findingType, got, tc.expected)
			}
		})
	}
}

// Info < Low < Medium < High < Critical
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityInfo < SeverityLow && SeverityLow < SeverityMedium &&
		SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severity levels are not ordered")
	}
}

func TestGetFindingInfo(t *testing.T) {
	t.Parallel()

	t.Run("every mapped type has impact and recommendation", func(t *testing.T) {
		t.Parallel()
		for findingType, info := range findingInfoMapping {
			if info.Impact == "" {
				t.Errorf("%s: empty impact", findingType)
			}
			if info.Recommendation == "" {
				t.Errorf("%s: empty recommendation", findingType)
			}
		}
	})

	t.Run("unknown type gets defaults", func(t *testing.T) {
		t.Parallel()
		info := GetFindingInfo("does_not_exist")
		if info.Severity != SeverityInfo {
			t.Errorf("expected SeverityInfo, got %v", info.Severity)
		}
		if info.Impact == "" || info.Recommendation == "" {
			t.Error("expected default impact and recommendation")
		}
	})
}

func TestNewFinding(t *testing.T) {
	t.Parallel()

	f := NewFinding(FindingCanonicalCrossHost, "Cross-host canonical", "desc", "https://other.example/", "https://example.com/")
	if f.Severity != SeverityHigh {
		t.Errorf("expected HIGH, got %v", f.Severity)
	}
	if f.SeverityText != "HIGH" {
		t.Errorf("expected severity text HIGH, got %q", f.SeverityText)
	}
	if f.Impact == "" || f.Recommendation == "" {
		t.Error("expected impact and recommendation from mapping")
	}
	if f.Location != "https://example.com/" {
		t.Errorf("unexpected location %q", f.Location)
	}
}
