package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthAbbreviations = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Competency is the year-month accounting period a set of entries belongs to.
type Competency struct {
	Year  int
	Month time.Month
}

// ParseCompetency parses a competency in YYYY-MM format.
func ParseCompetency(s string) (Competency, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return Competency{}, fmt.Errorf("invalid competency format: %q. Expected YYYY-MM", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Competency{}, fmt.Errorf("invalid competency year: %q", parts[0])
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return Competency{}, fmt.Errorf("invalid competency month: %q", parts[1])
	}

	return Competency{Year: year, Month: time.Month(month)}, nil
}

// CurrentCompetency returns the competency containing t.
func CurrentCompetency(t time.Time) Competency {
	return Competency{Year: t.Year(), Month: t.Month()}
}

// String returns the YYYY-MM form used as persistence key.
func (c Competency) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}

// Abbreviation returns the three-letter month abbreviation.
func (c Competency) Abbreviation() string {
	if c.Month < time.January || c.Month > time.December {
		return "???"
	}
	return monthAbbreviations[c.Month-1]
}

// Tag returns the file-name tag, e.g. "Mar2024".
func (c Competency) Tag() string {
	return fmt.Sprintf("%s%04d", c.Abbreviation(), c.Year)
}

// Label returns the human-readable form, e.g. "Mar / 2024".
func (c Competency) Label() string {
	return fmt.Sprintf("%s / %04d", c.Abbreviation(), c.Year)
}

// IsZero reports whether the competency is unset.
func (c Competency) IsZero() bool {
	return c.Year == 0 && c.Month == 0
}
