package slab_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/slabpot/internal/charge"
	"github.com/san-kum/slabpot/internal/epsilon"
	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
	"github.com/san-kum/slabpot/internal/potential"
	"github.com/san-kum/slabpot/internal/slab"
)

var (
	zGrid  = grid.MustNew(10.0, 10, 1)
	xyGrid = grid.MustNew(1.0, 2, 1)
	grids  = grid.NewGrids(xyGrid, xyGrid, zGrid)

	electronic = epsilon.Tensor{
		{1.0, 1.0, 1.0, 1.5, 2.0, 2.0, 2.0, 1.5, 1.0, 1.0},
		{1.0, 1.0, 1.0, 2.5, 4.0, 4.0, 4.0, 2.5, 1.0, 1.0},
		{1.0, 1.0, 1.0, 3.5, 6.0, 6.0, 6.0, 3.5, 1.0, 1.0},
	}
	ionic = epsilon.Tensor{
		{0.0, 0.0, 0.0, 0.5, 1.0, 1.0, 1.0, 0.5, 0.0, 0.0},
		{0.0, 0.0, 0.0, 1.5, 3.0, 3.0, 3.0, 1.5, 0.0, 0.0},
		{0.0, 0.0, 0.0, 2.5, 5.0, 5.0, 5.0, 2.5, 0.0, 0.0},
	}
)

func columns(profile []float64) *grid.Field3D {
	f := grid.NewField3D(grids.Dims())
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			for k, v := range profile {
				f.Set(i, j, k, v)
			}
		}
	}
	return f
}

func gaussianEpsilon() *epsilon.Distribution {
	eps, err := epsilon.NewGaussian(zGrid, [3]float64{2, 2, 2}, [3]float64{3, 3, 3}, 5.0, 1.0)
	Expect(err).NotTo(HaveOccurred())
	return eps
}

var _ = Describe("Model", func() {
	Context("with tabulated reference profiles", func() {
		var model *slab.Model

		BeforeEach(func() {
			eps := gaussianEpsilon()
			static := eps.Static()
			cm, err := charge.New(grids, 1.0, 0.0, static[0], static[1],
				columns([]float64{0.0, 1.0, 2.0, 4.0, 2.0, 1.0, 0.0, 0.0, 0.0, 0.0}))
			Expect(err).NotTo(HaveOccurred())
			pot, err := potential.New(grids,
				columns([]float64{-1.0, 1.0, 2.0, 4.0, 2.0, 1.0, -1.0, -2.0, -3.0, -2.0}))
			Expect(err).NotTo(HaveOccurred())
			fp, err := potential.NewFP1d(zGrid,
				[]float64{-1.5, 1.5, 2.5, 4.5, 2.5, 1.5, -1.5, -2.5, -3.5, -1.5})
			Expect(err).NotTo(HaveOccurred())

			model, err = slab.New(1, eps, cm, pot, fp)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns a finite energy", func() {
			e, err := model.ElectrostaticEnergy()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Electrostatic).To(BeNumerically("~", 13.0, 1e-12))
			Expect(e.FarZ).To(BeNumerically("~", 5.0, 1e-12))
			Expect(e.AlignmentPotential).To(BeNumerically("~", 1.0/6, 1e-12))
			Expect(e.Alignment).To(BeNumerically("~", -1.0/6, 1e-12))
			Expect(e.Flatness).To(BeNumerically("~", math.Sqrt(8.0/36), 1e-12))
		})

		It("narrows the far window when asked", func() {
			model.Window = 0.4
			e, err := model.ElectrostaticEnergy()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.AlignmentPotential).To(BeNumerically("~", 0.5, 1e-12))
			Expect(e.Flatness).To(BeNumerically("~", 0.0, 1e-12))
		})

		It("exposes the difference profile", func() {
			d, err := model.DiffProfile()
			Expect(err).NotTo(HaveOccurred())
			want := []float64{-0.5, 0.5, 0.5, 0.5, 0.5, 0.5, -0.5, -0.5, -0.5, 0.5}
			Expect(floats.EqualApprox(d.Y, want, 1e-12)).To(BeTrue())
			Expect(d.X).To(Equal(zGrid.Points()))
		})

		It("lists every plot profile", func() {
			profiles, err := model.Profiles()
			Expect(err).NotTo(HaveOccurred())
			Expect(profiles).To(HaveLen(13))
			Expect(profiles[9].Name).To(Equal("charge"))
			Expect(profiles[12].Name).To(Equal("fp - model"))
		})

		It("survives a JSON round trip", func() {
			data, err := json.Marshal(model)
			Expect(err).NotTo(HaveOccurred())
			var back slab.Model
			Expect(json.Unmarshal(data, &back)).To(Succeed())
			Expect(back.Charge).To(Equal(model.Charge))
			Expect(back.Epsilon.Equal(model.Epsilon)).To(BeTrue())
			Expect(back.ChargeModel.Equal(model.ChargeModel, 1e-12)).To(BeTrue())
			Expect(back.Potential.Equal(model.Potential, 1e-12)).To(BeTrue())
			Expect(back.FP.Equal(model.FP, 1e-12)).To(BeTrue())
		})

		It("rejects an fp potential of another cell", func() {
			fp, err := potential.NewFP1d(grid.MustNew(12.0, 10, 1), make([]float64, 10))
			Expect(err).NotTo(HaveOccurred())
			model.FP = fp
			_, err = model.ElectrostaticEnergy()
			Expect(errors.Is(err, errs.ErrShape)).To(BeTrue())
		})

		It("rejects a potential on other grids", func() {
			other := grid.NewGrids(xyGrid, grid.MustNew(1.0, 4, 1), zGrid)
			pot, err := potential.New(other, grid.NewField3D(other.Dims()))
			Expect(err).NotTo(HaveOccurred())
			model.Potential = pot
			Expect(errors.Is(model.Validate(), errs.ErrShape)).To(BeTrue())
		})
	})

	Context("with a solved unit charge at z = 0", func() {
		const q = 2.0
		const offset = 0.3
		var (
			model *slab.Model
			avg   []float64
		)

		BeforeEach(func() {
			eps, err := epsilon.New(zGrid, electronic, ionic)
			Expect(err).NotTo(HaveOccurred())
			static := eps.Static()
			cm, err := charge.NewSingle(grids, 1.0, 0.0, static[0], static[1])
			Expect(err).NotTo(HaveOccurred())
			pot, err := potential.Solve(context.Background(), eps, cm, potential.Options{Workers: 2})
			Expect(err).NotTo(HaveOccurred())

			avg = pot.PlaneAverage()
			values := make([]float64, len(avg))
			for k, v := range avg {
				values[k] = offset + q*v
			}
			fp, err := potential.NewFP1d(zGrid, values)
			Expect(err).NotTo(HaveOccurred())

			model, err = slab.New(q, eps, cm, pot, fp)
			Expect(err).NotTo(HaveOccurred())
		})

		It("aligns to a flat difference far from the charge", func() {
			e, err := model.ElectrostaticEnergy()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Electrostatic).To(BeNumerically(">", 0))
			Expect(e.AlignmentPotential).To(BeNumerically("~", offset, 1e-10))
			Expect(e.Alignment).To(BeNumerically("~", -q*offset, 1e-10))
			Expect(e.Flatness).To(BeNumerically("<", 1e-10))
			Expect(e.Correction(1.0)).To(BeNumerically("~", 1.0-e.Electrostatic-q*offset, 1e-10))
		})

		It("resamples the model onto a finer fp grid", func() {
			fine := grid.MustNew(10.0, 20, 1)
			values := make([]float64, 20)
			n := len(avg)
			for k := 0; k < n; k++ {
				values[2*k] = offset + q*avg[k]
				values[2*k+1] = offset + q*(avg[k]+avg[(k+1)%n])/2
			}
			fp, err := potential.NewFP1d(fine, values)
			Expect(err).NotTo(HaveOccurred())
			model.FP = fp

			d, err := model.DiffProfile()
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Y).To(HaveLen(20))
			for _, v := range d.Y {
				Expect(v).To(BeNumerically("~", offset, 1e-10))
			}
		})
	})
})
