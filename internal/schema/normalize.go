package schema

import (
	"strconv"
	"strings"
	"time"

	"shootings/internal/rawtable"
)

// Column keys the normalizer reads from the raw table. Anything else in the
// raw extract, including the location-description, classification, and
// projected-coordinate columns, is dropped here and never reaches a Record.
const (
	colOccurDate    = "occur_date"
	colOccurTime    = "occur_time"
	colBorough      = "boro"
	colPrecinct     = "precinct"
	colJurisdiction = "jurisdiction_code"
	colMurderFlag   = "statistical_murder_flag"
	colPerpAge      = "perp_age_group"
	colPerpSex      = "perp_sex"
	colPerpRace     = "perp_race"
	colVicAge       = "vic_age_group"
	colVicSex       = "vic_sex"
	colVicRace      = "vic_race"
	colLatitude     = "latitude"
	colLongitude    = "longitude"
)

// occurLayout matches the extract's date+time pair once joined with a space,
// e.g. "01/05/2021 23:15:00".
const occurLayout = "01/02/2006 15:04:05"

// Stats counts per-field coercion outcomes for one Normalize call. These are
// observations, not errors: bad tokens become nulls by contract.
type Stats struct {
	Rows           int
	NullOccurredAt int
	BadAgeTokens   int
	BadBoolTokens  int
	BadNumbers     int
}

// Normalizer converts a raw table into typed records.
type Normalizer struct {
	// Location is the zone attached to parsed occurrence times. Nil means
	// time.UTC; the extract carries local wall-clock values with no offset.
	Location *time.Location
}

// Normalize builds one Record per raw row. The raw table is not mutated and
// repeated calls on the same input yield identical output.
//
// A row whose date/time pair is null or unparseable keeps a null OccurredAt
// and is retained; completeness is the row filter's concern and it does not
// check this field. The count of such rows is reported in Stats so a caller
// can surface it.
func (n *Normalizer) Normalize(raw *rawtable.Table) ([]Record, Stats) {
	loc := n.Location
	if loc == nil {
		loc = time.UTC
	}

	recs := make([]Record, 0, raw.Len())
	var st Stats
	st.Rows = raw.Len()

	for i := 0; i < raw.Len(); i++ {
		var r Record

		r.OccurredAt = n.combineOccurredAt(raw, i, loc, &st)

		if s, ok := raw.Cell(i, colMurderFlag); ok {
			switch {
			case strings.EqualFold(s, "true"):
				r.IsMurder = NullBool{Bool: true, Valid: true}
			case strings.EqualFold(s, "false"):
				r.IsMurder = NullBool{Bool: false, Valid: true}
			default:
				st.BadBoolTokens++
			}
		}

		r.Borough, _ = raw.Cell(i, colBorough)
		r.Precinct, _ = raw.Cell(i, colPrecinct)
		r.JurisdictionCode, _ = raw.Cell(i, colJurisdiction)
		r.PerpSex, _ = raw.Cell(i, colPerpSex)
		r.PerpRace, _ = raw.Cell(i, colPerpRace)
		r.VicSex, _ = raw.Cell(i, colVicSex)
		r.VicRace, _ = raw.Cell(i, colVicRace)

		r.PerpAgeGroup = coerceAgeGroup(raw, i, colPerpAge, &st)
		r.VicAgeGroup = coerceAgeGroup(raw, i, colVicAge, &st)

		r.Latitude = coerceFloat(raw, i, colLatitude, &st)
		r.Longitude = coerceFloat(raw, i, colLongitude, &st)

		recs = append(recs, r)
	}
	return recs, st
}

func (n *Normalizer) combineOccurredAt(raw *rawtable.Table, row int, loc *time.Location, st *Stats) NullTime {
	d, okD := raw.Cell(row, colOccurDate)
	t, okT := raw.Cell(row, colOccurTime)
	if !okD || !okT {
		st.NullOccurredAt++
		return NullTime{}
	}
	ts, err := time.ParseInLocation(occurLayout, d+" "+t, loc)
	if err != nil {
		st.NullOccurredAt++
		return NullTime{}
	}
	return NullTime{Time: ts, Valid: true}
}

func coerceAgeGroup(raw *rawtable.Table, row int, col string, st *Stats) AgeGroup {
	s, ok := raw.Cell(row, col)
	if !ok {
		return AgeUnknown
	}
	g, ok := ParseAgeGroup(s)
	if !ok {
		// Out-of-set token (e.g. a data-entry artifact like "1020"):
		// missing, never a new category.
		st.BadAgeTokens++
		return AgeUnknown
	}
	return g
}

func coerceFloat(raw *rawtable.Table, row int, col string, st *Stats) NullFloat64 {
	s, ok := raw.Cell(row, col)
	if !ok {
		return NullFloat64{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		st.BadNumbers++
		return NullFloat64{}
	}
	return NullFloat64{Float64: f, Valid: true}
}

// FilterComplete returns the records with a present latitude AND a present
// jurisdiction code. No other field is checked.
func FilterComplete(recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if r.Latitude.Valid && r.JurisdictionCode != "" {
			out = append(out, r)
		}
	}
	return out
}
