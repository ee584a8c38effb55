// Package aggregate builds the grouped views over the filtered record set:
// per-borough counts, per-hour counts, per-borough counts split by victim
// race, and the per-precinct summary the trend fit consumes.
//
// Group keys with no matching records are simply absent (no zero-fill).
// Output is sorted by key ascending so chart output is deterministic;
// consumers must not read any other meaning into the order.
package aggregate

import (
	"sort"
	"strconv"

	"shootings/internal/schema"
)

// KeyCount is one group in a single-key count.
type KeyCount struct {
	Key   string
	Count int
}

// CountBy groups records by the given key. Records for which ok is false are
// excluded from every group.
func CountBy(recs []schema.Record, key func(schema.Record) (string, bool)) []KeyCount {
	counts := make(map[string]int)
	for _, r := range recs {
		k, ok := key(r)
		if !ok {
			continue
		}
		counts[k]++
	}

	out := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, KeyCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Key, out[j].Key) })
	return out
}

// ByBorough counts incidents per borough. Records with a missing borough
// group under their own empty key only if present; the extract has none.
func ByBorough(recs []schema.Record) []KeyCount {
	return CountBy(recs, func(r schema.Record) (string, bool) {
		return r.Borough, r.Borough != ""
	})
}

// HourCount is one hour-of-day group.
type HourCount struct {
	Hour  int
	Count int
}

// ByHour counts incidents per hour of day. Records with a null occurrence
// time cannot be bucketed and are skipped.
func ByHour(recs []schema.Record) []HourCount {
	counts := make(map[int]int)
	for _, r := range recs {
		if !r.OccurredAt.Valid {
			continue
		}
		counts[r.OccurredAt.Time.Hour()]++
	}

	out := make([]HourCount, 0, len(counts))
	for h, c := range counts {
		out = append(out, HourCount{Hour: h, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// BoroughRace is a per-borough count split by victim race, shaped for the
// stacked bar chart: Counts is aligned to the Races level order.
type BoroughRace struct {
	Borough string
	Counts  []int
}

// ByBoroughVictimRace groups by borough then victim race. Races lists the
// observed race levels in display order; each borough's Counts aligns to it.
func ByBoroughVictimRace(recs []schema.Record) (groups []BoroughRace, races []string) {
	races = schema.Levels(recs, func(r schema.Record) string { return r.VicRace })
	raceIx := make(map[string]int, len(races))
	for i, v := range races {
		raceIx[v] = i
	}

	byBorough := make(map[string][]int)
	for _, r := range recs {
		if r.Borough == "" || r.VicRace == "" {
			continue
		}
		counts, ok := byBorough[r.Borough]
		if !ok {
			counts = make([]int, len(races))
			byBorough[r.Borough] = counts
		}
		counts[raceIx[r.VicRace]]++
	}

	for b, counts := range byBorough {
		groups = append(groups, BoroughRace{Borough: b, Counts: counts})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Borough < groups[j].Borough })
	return groups, races
}

// PrecinctRow is the per-precinct aggregate feeding the trend fit.
// Predicted is filled by the fitter, not here.
type PrecinctRow struct {
	Precinct      string
	IncidentCount int
	DeathCount    int
	Predicted     float64
}

// ByPrecinct builds one row per observed precinct: the incident count and
// the murder count (null murder flags contribute 0 to the sum). Records with
// no precinct code carry nothing analyzable and are excluded.
func ByPrecinct(recs []schema.Record) []PrecinctRow {
	type agg struct {
		count  int
		deaths int
	}
	byKey := make(map[string]*agg)
	for _, r := range recs {
		if r.Precinct == "" {
			continue
		}
		a, ok := byKey[r.Precinct]
		if !ok {
			a = &agg{}
			byKey[r.Precinct] = a
		}
		a.count++
		if r.IsMurder.Valid && r.IsMurder.Bool {
			a.deaths++
		}
	}

	out := make([]PrecinctRow, 0, len(byKey))
	for k, a := range byKey {
		out = append(out, PrecinctRow{Precinct: k, IncidentCount: a.count, DeathCount: a.deaths})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Precinct, out[j].Precinct) })
	return out
}

// less orders keys numerically when both parse as integers (precinct codes),
// lexically otherwise.
func less(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
