package model

import "testing"

func summaryWith(findings ...Finding) *Summary {
	s := NewSummary("https://example.com")
	for _, f := range findings {
		s.add(f)
	}
	return s
}

func TestCompare(t *testing.T) {
	t.Parallel()

	missingTitle := NewFinding(FindingTitleMissing, "Title Missing", "", "", "https://example.com/a")
	broken := NewFinding(FindingStatusError, "Page Returns Error Status", "", "HTTP 500", "https://example.com/b")
	noXDefault := NewFinding(FindingHreflangNoXDefault, "x-default", "", "", "https://example.com/")

	t.Run("improved", func(t *testing.T) {
		t.Parallel()

		c := Compare(summaryWith(missingTitle, broken), summaryWith(missingTitle, noXDefault))
		if c.Unchanged != 1 {
			t.Errorf("expected 1 unchanged, got %d", c.Unchanged)
		}
		if len(c.New) != 1 || c.New[0].Type != FindingHreflangNoXDefault {
			t.Errorf("unexpected new findings %+v", c.New)
		}
		if len(c.Resolved) != 1 || c.Resolved[0].Type != FindingStatusError {
			t.Errorf("unexpected resolved findings %+v", c.Resolved)
		}
		if c.Direction != DirectionImproved || c.DirectionText != "improved" {
			t.Errorf("expected improved, got %s (%d -> %d)", c.Direction, c.PreviousScore, c.CurrentScore)
		}
	})

	t.Run("worsened", func(t *testing.T) {
		t.Parallel()

		c := Compare(summaryWith(), summaryWith(broken))
		if c.Direction != DirectionWorsened {
			t.Errorf("expected worsened, got %s", c.Direction)
		}
	})

	t.Run("reworded finding is not new", func(t *testing.T) {
		t.Parallel()

		reworded := missingTitle
		reworded.Title = "No <title>"
		c := Compare(summaryWith(missingTitle), summaryWith(reworded))
		if len(c.New) != 0 || len(c.Resolved) != 0 || c.Direction != DirectionUnchanged {
			t.Errorf("unexpected comparison %+v", c)
		}
	})
}
