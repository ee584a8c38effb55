// Package schema turns the raw extract into typed incident records and
// filters them down to the analyzable subset.
package schema

import (
	"sort"
	"time"
)

// AgeGroup is the closed ordered set of age brackets the extract uses.
// The zero value means missing/unmapped; any source token outside the set
// normalizes to AgeUnknown rather than producing a new category.
type AgeGroup int

const (
	AgeUnknown AgeGroup = iota
	AgeUnder18
	Age18To24
	Age25To44
	Age45To64
	Age65Plus
)

var ageGroupTokens = map[string]AgeGroup{
	"<18":   AgeUnder18,
	"18-24": Age18To24,
	"25-44": Age25To44,
	"45-64": Age45To64,
	"65+":   Age65Plus,
}

// ParseAgeGroup maps a source token onto the closed set. ok is false for any
// token outside the set, including the empty string.
func ParseAgeGroup(s string) (AgeGroup, bool) {
	g, ok := ageGroupTokens[s]
	return g, ok
}

// AgeGroups lists the set in display order, excluding AgeUnknown.
func AgeGroups() []AgeGroup {
	return []AgeGroup{AgeUnder18, Age18To24, Age25To44, Age45To64, Age65Plus}
}

func (g AgeGroup) String() string {
	switch g {
	case AgeUnder18:
		return "<18"
	case Age18To24:
		return "18-24"
	case Age25To44:
		return "25-44"
	case Age45To64:
		return "45-64"
	case Age65Plus:
		return "65+"
	default:
		return ""
	}
}

// NullBool is a bool that may be missing.
type NullBool struct {
	Bool  bool
	Valid bool
}

// NullFloat64 is a float64 that may be missing.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// NullTime is a time that may be missing.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Record is one normalized incident.
//
// Open categorical fields are verbatim source strings with "" meaning
// missing. After FilterComplete, Latitude and JurisdictionCode are always
// present; OccurredAt may still be null (see the normalizer contract).
type Record struct {
	OccurredAt NullTime
	IsMurder   NullBool

	Borough          string
	Precinct         string
	JurisdictionCode string

	PerpAgeGroup AgeGroup
	PerpSex      string
	PerpRace     string
	VicAgeGroup  AgeGroup
	VicSex       string
	VicRace      string

	Latitude  NullFloat64
	Longitude NullFloat64
}

// Levels returns the sorted distinct non-missing values of an open
// categorical field across records, for display ordering in the
// presentation layer.
func Levels(recs []Record, field func(Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range recs {
		v := field(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
