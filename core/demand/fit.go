package demand

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/dockflow/core/logger"
	"github.com/kilianp07/dockflow/core/model"
)

const (
	defaultMaxIterations = 100
	defaultTolerance     = 1e-8
	rankTolerance        = 1e-10
	maxEta               = 700
	maxHalvings          = 30
)

// Fitter estimates Poisson regression coefficients by Newton-Raphson on the
// log-likelihood. It has no hidden randomness: the same records always
// produce the same coefficients.
type Fitter struct {
	Basis         BasisKind
	MaxIterations int
	Tolerance     float64
	Logger        logger.Logger
}

// Fit builds the design matrix for recs and fits the arrival and departure
// models on the shared basis.
func (f Fitter) Fit(stationID int64, mode model.RebalanceMode, interval time.Duration, recs []model.IntervalRecord) (*Model, error) {
	log := logger.OrNop(f.Logger)
	if len(recs) == 0 {
		return nil, fmt.Errorf("station %d: %w", stationID, ErrEmptyRecords)
	}
	tick := time.Now()
	basis, err := NewBasis(f.Basis, recs)
	if err != nil {
		return nil, err
	}
	x, err := basis.Design(recs)
	if err != nil {
		return nil, fmt.Errorf("station %d: %w", stationID, err)
	}
	if err := checkRank(stationID, x); err != nil {
		return nil, err
	}

	yArr := make([]float64, len(recs))
	yDep := make([]float64, len(recs))
	for i, r := range recs {
		yArr[i] = float64(r.Arrivals)
		yDep[i] = float64(r.Departures)
	}

	arr, err := f.poisson(x, yArr)
	if err != nil {
		return nil, fmt.Errorf("station %d arrivals: %w", stationID, err)
	}
	dep, err := f.poisson(x, yDep)
	if err != nil {
		return nil, fmt.Errorf("station %d departures: %w", stationID, err)
	}
	log.Debugw("poisson fit", map[string]any{
		"station_id": stationID,
		"mode":       mode.Tag(),
		"rows":       len(recs),
		"columns":    basis.Width(),
		"duration":   time.Since(tick).Seconds(),
	})
	return &Model{
		StationID:  stationID,
		Mode:       mode,
		Interval:   interval.String(),
		Basis:      basis,
		Arrivals:   arr,
		Departures: dep,
	}, nil
}

func checkRank(stationID int64, x *mat.Dense) error {
	_, c := x.Dims()
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDNone); !ok {
		return &DegenerateError{StationID: stationID, Rank: 0, Columns: c}
	}
	if rank := svd.Rank(rankTolerance); rank < c {
		return &DegenerateError{StationID: stationID, Rank: rank, Columns: c}
	}
	return nil
}

// poisson maximises sum(y*eta - exp(eta)) over beta with eta = X*beta.
func (f Fitter) poisson(x *mat.Dense, y []float64) ([]float64, error) {
	n, p := x.Dims()
	var total float64
	for _, v := range y {
		total += v
	}
	if total == 0 {
		return nil, ErrZeroResponse
	}
	maxIter := f.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	tol := f.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}

	beta := mat.NewVecDense(p, nil)
	beta.SetVec(0, math.Log(total/float64(n)))
	yv := mat.NewVecDense(n, y)
	mu := mat.NewVecDense(n, nil)
	resid := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(p, nil)
	step := mat.NewVecDense(p, nil)
	trial := mat.NewVecDense(p, nil)
	hess := mat.NewSymDense(p, nil)

	obj := negLogLik(x, yv, beta, mu)
	for iter := 0; iter < maxIter; iter++ {
		// gradient X'(mu - y), Hessian X' diag(mu) X
		resid.SubVec(mu, yv)
		grad.MulVec(x.T(), resid)
		weightedGram(hess, x, mu)

		var chol mat.Cholesky
		if ok := chol.Factorize(hess); !ok {
			return nil, fmt.Errorf("%w: hessian not positive definite", ErrDegenerateDesign)
		}
		if err := chol.SolveVecTo(step, grad); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDegenerateDesign, err)
		}

		scale := 1.0
		next := math.Inf(1)
		for h := 0; h < maxHalvings; h++ {
			trial.AddScaledVec(beta, -scale, step)
			next = negLogLik(x, yv, trial, mu)
			if next <= obj {
				break
			}
			scale /= 2
		}
		if next > obj {
			// no descent along the Newton direction: at the optimum
			return beta.RawVector().Data, nil
		}
		beta.CopyVec(trial)
		delta := obj - next
		obj = next
		if delta <= tol*(math.Abs(obj)+tol) || mat.Norm(step, math.Inf(1))*scale < tol {
			return beta.RawVector().Data, nil
		}
	}
	return nil, fmt.Errorf("%w after %d iterations", ErrNotConverged, maxIter)
}

// negLogLik evaluates the Poisson negative log-likelihood without the
// log(y!) constant and leaves the fitted means in mu.
func negLogLik(x *mat.Dense, y, beta, mu *mat.VecDense) float64 {
	mu.MulVec(x, beta)
	var nll float64
	for i := 0; i < mu.Len(); i++ {
		eta := math.Min(mu.AtVec(i), maxEta)
		m := math.Exp(eta)
		mu.SetVec(i, m)
		nll += m - y.AtVec(i)*eta
	}
	return nll
}

func weightedGram(dst *mat.SymDense, x *mat.Dense, w *mat.VecDense) {
	n, p := x.Dims()
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			dst.SetSym(a, b, 0)
		}
	}
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		wi := w.AtVec(i)
		for a := 0; a < p; a++ {
			if row[a] == 0 {
				continue
			}
			for b := a; b < p; b++ {
				if row[b] != 0 {
					dst.SetSym(a, b, dst.At(a, b)+wi*row[a]*row[b])
				}
			}
		}
	}
}
