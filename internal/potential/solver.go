package potential

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"runtime"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/slabpot/internal/analysis"
	"github.com/san-kum/slabpot/internal/charge"
	"github.com/san-kum/slabpot/internal/epsilon"
	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
)

// Coulomb is e²/(4πε₀) in eV·Å.
const Coulomb = 14.399645

type Options struct {
	// Workers bounds the number of concurrent column solves; <= 0 uses GOMAXPROCS.
	Workers int
	// InPlaneCutoff drops in-plane modes with |k| above it (Å⁻¹); 0 keeps all.
	// The k = 0 column is always solved.
	InPlaneCutoff float64
	Logger        *zap.Logger
}

type column struct{ i, j int }

type solver struct {
	nx, ny, nz int
	nyquist    int
	kx, ky, gz []float64
	ex, ey, ez []complex128
	rho        []complex128
	phi        []complex128
}

// Solve computes the potential of model inside the dielectric eps. The
// in-plane profiles come from the charge model and the z profile from eps.
// On cancellation the partial result is discarded and ctx.Err() returned.
func Solve(ctx context.Context, eps *epsilon.Distribution, model *charge.Model, opts Options) (*Potential, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.InPlaneCutoff < 0 {
		return nil, errs.Config("potential.Solve", "in_plane_cutoff", opts.InPlaneCutoff, "must not be negative")
	}
	s, err := newSolver(eps, model)
	if err != nil {
		return nil, err
	}
	grids := model.Grids()
	dims := grids.Dims()

	cols := s.columns(opts.InPlaneCutoff)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log.Debug("solving in-plane columns",
		zap.Ints("dims", dims[:]),
		zap.Int("columns", len(cols)),
		zap.Int("workers", workers),
	)
	start := time.Now()

	err = ParallelFor(ctx, len(cols), workers, func(_ context.Context, idx int) error {
		return s.solveColumn(cols[idx])
	})
	if err != nil {
		return nil, err
	}

	values := &grid.Field3D{Nx: s.nx, Ny: s.ny, Nz: s.nz, Data: analysis.IFFT3Real(s.phi, dims)}
	if !values.IsFinite() {
		return nil, errs.Degenerate("potential.Solve", "potential", "non-finite", "solution diverged")
	}
	log.Debug("potential solved", zap.Duration("elapsed", time.Since(start)))

	return &Potential{
		kind:      KindCalcSingleCharge,
		grids:     grids,
		potential: values,
		solver: &SolverInfo{
			Workers:       workers,
			InPlaneCutoff: opts.InPlaneCutoff,
			SolvedModes:   len(cols),
			ZeroMode:      ZeroModeAverage,
		},
	}, nil
}

func newSolver(eps *epsilon.Distribution, model *charge.Model) (*solver, error) {
	if eps == nil || model == nil {
		return nil, errors.New("potential.Solve: nil input")
	}
	grids := model.Grids()
	zg := grids[grid.Z]
	if !eps.Grid().SameSampling(zg) {
		return nil, errs.Shape("potential.Solve", "epsilon grid has %d points over %g Å, charge z grid has %d points over %g Å",
			eps.NumGrid(), eps.Grid().Length(), zg.NumGrid(), zg.Length())
	}

	epsX, epsY, epsZ := model.EpsilonX(), model.EpsilonY(), eps.Static()[grid.Z]
	for a, prof := range [3][]float64{epsX, epsY, epsZ} {
		for k, v := range prof {
			if !(v > 0) {
				return nil, errs.Config("potential.Solve", fmt.Sprintf("epsilon_%s[%d]", "xyz"[a:a+1], k), v, "dielectric response must be positive")
			}
		}
	}

	dims := grids.Dims()
	nyquist := -1
	if dims[2]%2 == 0 {
		nyquist = dims[2] / 2
	}
	return &solver{
		nx: dims[0], ny: dims[1], nz: dims[2],
		nyquist: nyquist,
		kx:      analysis.Freq(dims[0], grids[grid.X].Length()),
		ky:      analysis.Freq(dims[1], grids[grid.Y].Length()),
		gz:      analysis.Freq(dims[2], zg.Length()),
		ex:      analysis.FFT(epsX),
		ey:      analysis.FFT(epsY),
		ez:      eps.ReciprocalStatic()[grid.Z],
		rho:     model.ReciprocalCharges(),
		phi:     make([]complex128, grids.NumPoints()),
	}, nil
}

// gzz is the g_z·g_z' factor of the z-gradient term. On even grids the
// Nyquist wavenumber is its own partner, so its coupling to other modes is
// dropped and only its diagonal g² is kept; this keeps the operator of
// column -k the conjugate of column k.
func (s *solver) gzz(mp, mq int) float64 {
	if mp == s.nyquist || mq == s.nyquist {
		if mp != mq {
			return 0
		}
	}
	return s.gz[mp] * s.gz[mq]
}

// columns lists one representative per (k, -k) pair, dropping modes above
// the cutoff.
func (s *solver) columns(cutoff float64) []column {
	var cols []column
	for i := 0; i < s.nx; i++ {
		for j := 0; j < s.ny; j++ {
			pi, pj := analysis.Conj(i, s.nx), analysis.Conj(j, s.ny)
			if pi*s.ny+pj < i*s.ny+j {
				continue
			}
			if cutoff > 0 && (i != 0 || j != 0) && math.Hypot(s.kx[i], s.ky[j]) > cutoff {
				continue
			}
			cols = append(cols, column{i, j})
		}
	}
	return cols
}

// solveColumn writes φ̂ for column c and its conjugate partner. Columns own
// disjoint slices of s.phi, so no locking is needed.
func (s *solver) solveColumn(c column) error {
	active := make([]int, 0, s.nz)
	for m := 0; m < s.nz; m++ {
		if c.i == 0 && c.j == 0 && m == 0 {
			continue
		}
		active = append(active, m)
	}
	n := len(active)
	if n == 0 {
		return nil
	}

	kx2, ky2 := s.kx[c.i]*s.kx[c.i], s.ky[c.j]*s.ky[c.j]
	scale := 1 / float64(s.nz)

	// Real embedding [[Re A, -Im A], [Im A, Re A]] of the Hermitian operator.
	a := mat.NewSymDense(2*n, nil)
	for p, mp := range active {
		for q := p; q < n; q++ {
			mq := active[q]
			d := (mp - mq + s.nz) % s.nz
			v := (complex(kx2, 0)*s.ex[d] + complex(ky2, 0)*s.ey[d] + complex(s.gzz(mp, mq), 0)*s.ez[d]) * complex(scale, 0)
			re, im := real(v), imag(v)
			if p == q {
				im = 0
			}
			a.SetSym(p, q, re)
			a.SetSym(n+p, n+q, re)
			a.SetSym(p, n+q, -im)
			a.SetSym(q, n+p, im)
		}
	}

	base := (c.i*s.ny + c.j) * s.nz
	rhs := make([]float64, 2*n)
	for p, m := range active {
		r := s.rho[base+m] * complex(4*math.Pi*Coulomb, 0)
		rhs[p], rhs[n+p] = real(r), imag(r)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return errs.Degenerate("potential.Solve", "column", fmt.Sprintf("(%d,%d)", c.i, c.j), "operator is not positive definite")
	}
	x := mat.NewVecDense(2*n, nil)
	if err := chol.SolveVecTo(x, mat.NewVecDense(2*n, rhs)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("potential.Solve: column (%d,%d): %w", c.i, c.j, err)
		}
	}

	pi, pj := analysis.Conj(c.i, s.nx), analysis.Conj(c.j, s.ny)
	pbase := (pi*s.ny + pj) * s.nz
	mirror := pbase != base
	for p, m := range active {
		v := complex(x.AtVec(p), x.AtVec(n+p))
		s.phi[base+m] = v
		if mirror {
			s.phi[pbase+analysis.Conj(m, s.nz)] = cmplx.Conj(v)
		}
	}
	return nil
}
