// Package regress fits the ordinary least-squares line the report uses:
// incident count as the response, murder count as the single explanatory
// variable, intercept included.
package regress

import (
	"fmt"
	"strings"

	"shootings/internal/aggregate"

	"gonum.org/v1/gonum/stat"
)

// ModelError reports regression input that cannot support a fit.
type ModelError struct {
	Reason string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model: %s", e.Reason)
}

// Model is a fitted simple linear regression.
type Model struct {
	Intercept float64
	Slope     float64
	R2        float64
	N         int
}

// Fit computes the least-squares line y = Intercept + Slope*x.
//
// It fails with *ModelError rather than returning NaN coefficients when
// fewer than 2 observations exist or when x carries fewer than 2 distinct
// values (rank-deficient design).
func Fit(x, y []float64) (Model, error) {
	if len(x) != len(y) {
		return Model{}, &ModelError{Reason: fmt.Sprintf("mismatched input lengths %d and %d", len(x), len(y))}
	}
	if len(x) < 2 {
		return Model{}, &ModelError{Reason: fmt.Sprintf("need at least 2 observations, have %d", len(x))}
	}
	if !hasTwoDistinct(x) {
		return Model{}, &ModelError{Reason: "explanatory variable has fewer than 2 distinct values"}
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	m := Model{Intercept: alpha, Slope: beta, N: len(x)}

	fitted := make([]float64, len(x))
	for i, xv := range x {
		fitted[i] = m.Predict(xv)
	}
	m.R2 = stat.RSquaredFrom(fitted, y, nil)
	return m, nil
}

// Predict evaluates the fitted line. No extrapolation guardrails: any x is
// accepted, including values outside the fitted range.
func (m Model) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// Summary renders the coefficients and fit statistics for the report text.
func (m Model) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Linear model: incident_count ~ death_count\n")
	fmt.Fprintf(&b, "  intercept: %.6f\n", m.Intercept)
	fmt.Fprintf(&b, "  slope:     %.6f\n", m.Slope)
	fmt.Fprintf(&b, "  r-squared: %.6f\n", m.R2)
	fmt.Fprintf(&b, "  n:         %d\n", m.N)
	return b.String()
}

// FitPrecincts fits incident count against death count over the precinct
// aggregate and returns a copy of the rows with Predicted filled, aligned to
// the input's precinct order.
func FitPrecincts(rows []aggregate.PrecinctRow) ([]aggregate.PrecinctRow, Model, error) {
	x := make([]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = float64(r.DeathCount)
		y[i] = float64(r.IncidentCount)
	}

	m, err := Fit(x, y)
	if err != nil {
		return nil, Model{}, err
	}

	out := make([]aggregate.PrecinctRow, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].Predicted = m.Predict(x[i])
	}
	return out, m, nil
}

func hasTwoDistinct(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return true
		}
	}
	return false
}
