// Package forecast fits an additive trend + seasonality model to a
// historical series and extrapolates it over a horizon of days.
//
// Every call to Forecast builds and fits its own model, so concurrent calls
// for different series never share state.
package forecast

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"gonum.org/v1/gonum/mat"
)

const day = 24 * time.Hour

// Forecaster produces horizonDays daily predictions following the last
// observation of series.
type Forecaster interface {
	Forecast(ctx context.Context, series []domain.Observation, horizonDays int) ([]domain.Prediction, error)
}

// Seasonality selects whether a periodic component is fitted.
type Seasonality int

const (
	// SeasonalityAuto fits the component when the history is long enough.
	SeasonalityAuto Seasonality = iota
	SeasonalityOn
	SeasonalityOff
)

// Options configures the additive model.
type Options struct {
	Yearly Seasonality
	Weekly Seasonality
	Daily  Seasonality

	// Ridge is the L2 penalty applied to every coefficient except the intercept.
	Ridge float64
}

// DefaultOptions mirrors the usual additive forecasting defaults: yearly and
// weekly terms when the history supports them, daily terms only for sub-daily data.
func DefaultOptions() Options {
	return Options{Ridge: 1e-2}
}

// Additive is the gonum-backed Forecaster.
type Additive struct {
	opts Options
}

// New creates an additive forecaster.
func New(opts Options) *Additive {
	if opts.Ridge < 0 {
		opts.Ridge = 0
	}
	return &Additive{opts: opts}
}

// Forecast fits the model on series and predicts horizonDays values. It
// returns domain.ErrInsufficientData when series holds fewer than two
// finite observations with distinct timestamps.
func (a *Additive) Forecast(ctx context.Context, series []domain.Observation, horizonDays int) ([]domain.Prediction, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("forecast: horizon must be positive, got %d", horizonDays)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obs := clean(series)
	if len(obs) < 2 || obs[0].Timestamp.Equal(obs[len(obs)-1].Timestamp) {
		return nil, domain.ErrInsufficientData
	}

	type result struct {
		preds []domain.Prediction
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("forecast: model fit panicked: %v", r)}
			}
		}()
		m, err := fit(obs, a.opts)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{preds: m.predict(obs[len(obs)-1].Timestamp, horizonDays)}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.preds, r.err
	}
}

// clean drops non-finite values and sorts by timestamp. Duplicate timestamps are kept.
func clean(series []domain.Observation) []domain.Observation {
	obs := make([]domain.Observation, 0, len(series))
	for _, o := range series {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) || o.Timestamp.IsZero() {
			continue
		}
		obs = append(obs, o)
	}
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Timestamp.Before(obs[j].Timestamp)
	})
	return obs
}

type component struct {
	periodDays float64
	order      int
}

type model struct {
	start   time.Time
	span    float64 // seconds
	trend   bool
	seasons []component
	scale   float64
	beta    []float64
}

func fit(obs []domain.Observation, opts Options) (*model, error) {
	start := obs[0].Timestamp
	span := obs[len(obs)-1].Timestamp.Sub(start)

	m := &model{
		start: start,
		span:  span.Seconds(),
		scale: 1,
	}

	// Sub-day histories carry no usable trend or period; fit the mean.
	if span >= day {
		m.trend = true
		m.seasons = seasonalities(obs, span, opts)
	}

	for _, o := range obs {
		if v := math.Abs(o.Value); v > m.scale {
			m.scale = v
		}
	}

	cols := m.width()
	X := mat.NewDense(len(obs), cols, nil)
	y := mat.NewVecDense(len(obs), nil)
	for i, o := range obs {
		X.SetRow(i, m.features(o.Timestamp))
		y.SetVec(i, o.Value/m.scale)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, X.T())
	for j := 1; j < cols; j++ {
		gram.SetSym(j, j, gram.At(j, j)+opts.Ridge)
	}

	var rhs mat.VecDense
	rhs.MulVec(X.T(), y)

	beta := mat.NewVecDense(cols, nil)
	var chol mat.Cholesky
	if chol.Factorize(&gram) {
		if err := chol.SolveVecTo(beta, &rhs); err != nil {
			return nil, fmt.Errorf("forecast: cholesky solve: %w", err)
		}
	} else if err := beta.SolveVec(&gram, &rhs); err != nil {
		return nil, fmt.Errorf("forecast: least squares solve: %w", err)
	}

	m.beta = make([]float64, cols)
	for j := range m.beta {
		m.beta[j] = beta.AtVec(j)
	}
	return m, nil
}

func seasonalities(obs []domain.Observation, span time.Duration, opts Options) []component {
	var out []component
	if enabled(opts.Yearly, span >= 730*day) {
		out = append(out, component{periodDays: 365.25, order: 10})
	}
	if enabled(opts.Weekly, span >= 14*day) {
		out = append(out, component{periodDays: 7, order: 3})
	}
	if enabled(opts.Daily, subDaily(obs)) {
		out = append(out, component{periodDays: 1, order: 4})
	}
	return out
}

func enabled(s Seasonality, auto bool) bool {
	switch s {
	case SeasonalityOn:
		return true
	case SeasonalityOff:
		return false
	default:
		return auto
	}
}

// subDaily reports whether two consecutive distinct observations are less than a day apart.
func subDaily(obs []domain.Observation) bool {
	for i := 1; i < len(obs); i++ {
		gap := obs[i].Timestamp.Sub(obs[i-1].Timestamp)
		if gap > 0 && gap < day {
			return true
		}
	}
	return false
}

func (m *model) width() int {
	w := 1
	if m.trend {
		w++
	}
	for _, c := range m.seasons {
		w += 2 * c.order
	}
	return w
}

func (m *model) features(ts time.Time) []float64 {
	row := make([]float64, 0, m.width())
	row = append(row, 1)
	if m.trend {
		row = append(row, ts.Sub(m.start).Seconds()/m.span)
	}

	// Phase is taken from the Unix epoch so that it does not depend on the fit window.
	days := float64(ts.Unix()) / 86400
	for _, c := range m.seasons {
		for k := 1; k <= c.order; k++ {
			x := 2 * math.Pi * float64(k) * days / c.periodDays
			row = append(row, math.Sin(x), math.Cos(x))
		}
	}
	return row
}

func (m *model) predict(last time.Time, horizonDays int) []domain.Prediction {
	preds := make([]domain.Prediction, horizonDays)
	for i := range preds {
		ts := last.Add(time.Duration(i+1) * day)
		var yhat float64
		for j, f := range m.features(ts) {
			yhat += m.beta[j] * f
		}
		preds[i] = domain.Prediction{Timestamp: ts, Value: yhat * m.scale}
	}
	return preds
}
