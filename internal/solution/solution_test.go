package solution_test

import (
	"encoding/json"
	"errors"
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/database"
	"github.com/san-kum/ionize/internal/equilibrium"
	"github.com/san-kum/ionize/internal/ion"
	"github.com/san-kum/ionize/internal/solution"
)

var db = database.Default()

// mustSolution is also used while the spec tree is built, so it panics
// rather than asserting.
func mustSolution(names []string, conc []float64, opts ...solution.Option) *solution.Solution {
	s, err := solution.FromNames(db, names, conc, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

type convergedCounter struct{ n int }

func (c *convergedCounter) OnIteration(equilibrium.Stage, int, float64, float64, float64) {}
func (c *convergedCounter) OnConverged(equilibrium.State)                                 { c.n++ }
func (c *convergedCounter) OnFailure(error)                                               {}

func must(v float64, err error) float64 {
	GinkgoHelper()
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Solution", func() {
	Describe("pure water", func() {
		water := solution.Water()

		It("is neutral at 25 degC", func() {
			Expect(must(water.PH())).To(BeNumerically("~", 7.0, 0.01))
			Expect(must(water.IonicStrength())).To(BeNumerically("~", 0, 1e-4))
		})

		It("conducts through its own ions only", func() {
			Expect(must(water.Conductivity())).To(BeNumerically("~", 5.5e-6, 0.2e-6))
			Expect(must(water.WaterTransference())).To(BeNumerically("~", 1, 1e-12))
		})

		It("becomes more acidic when warm", func() {
			warm := solution.Water(solution.WithTemperature(37))
			Expect(must(warm.PH())).To(BeNumerically("<", must(water.PH())))
		})
	})

	Describe("construction", func() {
		tris := db.Get("tris")

		It("rejects malformed composition", func() {
			_, err := solution.New([]*ion.Ion{tris}, []float64{0.1, 0.2})
			Expect(errors.Is(err, chem.ErrDomain)).To(BeTrue())

			_, err = solution.New([]*ion.Ion{tris}, []float64{-0.1})
			Expect(errors.Is(err, chem.ErrDomain)).To(BeTrue())

			_, err = solution.New([]*ion.Ion{tris, tris}, []float64{0.1, 0.1})
			Expect(errors.Is(err, chem.ErrDomain)).To(BeTrue())

			_, err = solution.New([]*ion.Ion{nil}, []float64{0.1})
			Expect(errors.Is(err, chem.ErrDomain)).To(BeTrue())

			_, err = solution.New([]*ion.Ion{tris}, []float64{0.1}, solution.WithTemperature(105))
			Expect(errors.Is(err, chem.ErrDomain)).To(BeTrue())
		})

		It("fails lookup of unknown names", func() {
			_, err := solution.FromNames(db, []string{"tris", "unobtainium"}, []float64{0.1, 0.1})
			Expect(errors.Is(err, chem.ErrLookup)).To(BeTrue())
		})

		It("copies its inputs", func() {
			ions := []*ion.Ion{tris}
			conc := []float64{0.1}
			s, err := solution.New(ions, conc)
			Expect(err).NotTo(HaveOccurred())
			conc[0] = 5
			Expect(s.Concentrations()).To(Equal([]float64{0.1}))
		})

		It("gives each default Solution its own solver", func() {
			a := mustSolution([]string{"tris"}, []float64{0.1})
			b := mustSolution([]string{"tris"}, []float64{0.1})
			Expect(a.Solver()).NotTo(BeIdenticalTo(b.Solver()))

			seen := &convergedCounter{}
			a.Solver().AddObserver(seen)
			Expect(b.PH()).To(BeNumerically(">", 7))
			Expect(seen.n).To(BeZero())
			Expect(a.PH()).To(BeNumerically(">", 7))
			Expect(seen.n).To(Equal(1))
		})
	})

	Describe("equilibrium", func() {
		It("is computed once and shared", func() {
			s := mustSolution([]string{"tris", "hydrochloric acid"}, []float64{0.1, 0.05})
			var wg sync.WaitGroup
			results := make([]float64, 8)
			for k := range results {
				wg.Add(1)
				go func(k int) {
					defer wg.Done()
					pH, _ := s.PH()
					results[k] = pH
				}(k)
			}
			wg.Wait()
			for _, pH := range results {
				Expect(pH).To(Equal(results[0]))
			}
		})

		It("keeps charge balance", func() {
			s := mustSolution([]string{"histidine", "acetic acid", "sodium"}, []float64{0.02, 0.03, 0.01})
			state, err := s.Equilibrium()
			Expect(err).NotTo(HaveOccurred())
			residual := state.Hydronium - state.Hydroxide
			for k, i := range s.Ions() {
				z, err := i.At(state.Context()).Charge()
				Expect(err).NotTo(HaveOccurred())
				residual += s.Concentrations()[k] * z
			}
			Expect(residual).To(BeNumerically("~", 0, 1e-7))
		})

		It("reports solver failure", func() {
			cfg := equilibrium.DefaultConfig()
			cfg.MaxIonicStrengthIterations = 1
			s := mustSolution([]string{"tris", "hydrochloric acid"}, []float64{0.3, 0.1},
				solution.WithSolver(equilibrium.New(cfg, nil)))
			_, err := s.Conductivity()
			Expect(errors.Is(err, chem.ErrConvergence)).To(BeTrue())
		})
	})

	Describe("titration", func() {
		hcl := db.Get("hydrochloric acid")

		It("lowers pH monotonically with added acid", func() {
			prev := math.Inf(1)
			for _, c := range []float64{0, 0.02, 0.1, 0.2, 0.29, 0.31, 0.4, 0.8} {
				pH := must(mustSolution([]string{"tris", "hydrochloric acid"}, []float64{0.3, c}).PH())
				Expect(pH).To(BeNumerically("<", prev))
				prev = pH
			}
		})

		for _, target := range []float64{1, 3, 5, 7} {
			It("reaches the target pH", func() {
				base := mustSolution([]string{"tris"}, []float64{0.1})
				titrated, err := base.Titrate(hcl, target)
				Expect(err).NotTo(HaveOccurred())
				Expect(must(titrated.PH())).To(BeNumerically("~", target, 0.01))
				Expect(titrated.Contains(hcl)).To(BeTrue())
				Expect(base.Contains(hcl)).To(BeFalse())

				// A fresh solve of the new composition agrees with the cached state.
				fresh, err := solution.FromRecord(titrated.Record())
				Expect(err).NotTo(HaveOccurred())
				Expect(must(fresh.PH())).To(BeNumerically("~", target, 0.01))
			})
		}

		It("refuses a titrant that moves pH the wrong way", func() {
			base := mustSolution([]string{"tris"}, []float64{0.1})
			_, err := base.Titrate(db.Get("sodium"), 4)
			Expect(errors.Is(err, chem.ErrDomain)).To(BeTrue())
		})
	})

	Describe("transport", func() {
		mixtures := []*solution.Solution{
			mustSolution([]string{"hydrochloric acid"}, []float64{0.01}),
			mustSolution([]string{"tris", "hydrochloric acid"}, []float64{0.1, 0.05}),
			mustSolution([]string{"histidine", "mes", "sodium"}, []float64{0.02, 0.02, 0.005}),
			mustSolution([]string{"phosphoric acid", "potassium"}, []float64{0.01, 0.015}),
		}

		It("has transference numbers summing to one", func() {
			for _, s := range mixtures {
				sum := must(s.WaterTransference())
				for _, i := range s.Ions() {
					sum += must(s.Transference(i))
				}
				Expect(sum).To(BeNumerically("~", 1, 1e-9))
			}
		})

		It("gives exactly zero for absent ions", func() {
			s := mixtures[1]
			Expect(must(s.Transference(db.Get("sodium")))).To(BeZero())
			Expect(must(s.TransferenceOf("sodium"))).To(BeZero())
			Expect(must(s.ZoneTransfer(db.Get("sodium")))).To(BeZero())
			Expect(must(s.ZoneTransferOf("sodium"))).To(BeZero())
		})

		It("resolves by name and by identity alike", func() {
			s := mixtures[1]
			Expect(must(s.TransferenceOf("Tris"))).To(Equal(must(s.Transference(db.Get("tris")))))
		})

		It("matches the conductivity of dilute HCl", func() {
			Expect(must(mixtures[0].Conductivity())).To(BeNumerically("~", 0.412, 0.01))
		})

		It("signs zone transfer by direction of migration", func() {
			s := mixtures[1]
			Expect(must(s.ZoneTransferOf("tris"))).To(BeNumerically(">", 0))
			Expect(must(s.ZoneTransferOf("hydrochloric acid"))).To(BeNumerically("<", 0))
		})

		It("summarizes every ion", func() {
			rows, err := mixtures[2].Properties()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0].Name).To(Equal("histidine"))
		})
	})

	Describe("conservation functions", func() {
		s := mustSolution([]string{"tris", "hydrochloric acid", "histidine"}, []float64{0.1, 0.05, 0.01})

		It("counts Jovin signs with ampholytes neutral", func() {
			Expect(must(s.Jovin())).To(BeNumerically("~", 0.05, 1e-15))
		})

		It("evaluates Alberty at the lowest charge state", func() {
			plain := mustSolution([]string{"tris"}, []float64{0.1})
			Expect(must(plain.Alberty())).To(BeNumerically("~", 0.1/29.5e-9, 1))
		})

		It("extends Kohlrausch with water in Gas", func() {
			k := must(s.Kohlrausch())
			Expect(k).To(BeNumerically(">", 0))
			Expect(must(s.Gas())).To(BeNumerically(">", k))
		})

		It("buffers best near the pKa", func() {
			atPKa := mustSolution([]string{"tris", "hydrochloric acid"}, []float64{0.1, 0.05})
			offPKa := mustSolution([]string{"tris", "hydrochloric acid"}, []float64{0.1, 0.099})
			Expect(must(atPKa.BufferingCapacity())).To(BeNumerically(">", must(offPKa.BufferingCapacity())))
			Expect(must(offPKa.BufferingCapacity())).To(BeNumerically(">", 0))
		})

		It("has a Debye length near 1 nm at 0.1 M", func() {
			salt := mustSolution([]string{"sodium", "hydrochloric acid"}, []float64{0.1, 0.1})
			Expect(must(salt.Debye())).To(BeNumerically("~", 0.96e-9, 0.02e-9))
		})
	})

	Describe("derived solutions", func() {
		base := mustSolution([]string{"tris", "hydrochloric acid"}, []float64{0.1, 0.05})

		It("dilutes every component", func() {
			d, err := base.Dilute(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Concentrations()).To(Equal([]float64{0.05, 0.025}))
			Expect(base.Concentrations()).To(Equal([]float64{0.1, 0.05}))

			_, err = base.Dilute(0)
			Expect(errors.Is(err, chem.ErrDomain)).To(BeTrue())
		})

		It("adds to an existing ion or appends a new one", func() {
			more, err := base.Add(db.Get("tris"), 0.05)
			Expect(err).NotTo(HaveOccurred())
			Expect(must(more.ConcentrationOf("tris"))).To(BeNumerically("~", 0.15, 1e-15))

			salted, err := base.Add(db.Get("sodium"), 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(salted.Len()).To(Equal(3))
		})

		It("mixes by volume", func() {
			other := mustSolution([]string{"sodium"}, []float64{0.2}, solution.WithTemperature(35))
			mixed, err := base.Mix(other, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(must(mixed.ConcentrationOf("tris"))).To(BeNumerically("~", 0.05, 1e-15))
			Expect(must(mixed.ConcentrationOf("sodium"))).To(BeNumerically("~", 0.1, 1e-15))
			Expect(mixed.Temperature()).To(BeNumerically("~", 30, 1e-12))

			_, err = base.Mix(other, 1.5)
			Expect(errors.Is(err, chem.ErrDomain)).To(BeTrue())
		})

		It("dissolves atmospheric CO2 into water", func() {
			rain, err := solution.Water().EquilibrateCO2(4e-4)
			Expect(err).NotTo(HaveOccurred())
			Expect(must(rain.PH())).To(BeNumerically("~", 5.65, 0.1))
			Expect(rain.Contains(equilibrium.CarbonicAcid)).To(BeTrue())
		})

		It("reports missing concentrations", func() {
			_, err := base.ConcentrationOf("sodium")
			Expect(errors.Is(err, chem.ErrLookup)).To(BeTrue())
			_, err = base.Concentration(db.Get("sodium"))
			Expect(errors.Is(err, chem.ErrLookup)).To(BeTrue())
		})
	})

	Describe("serialization", func() {
		It("round-trips through JSON", func() {
			s := mustSolution([]string{"histidine", "phosphoric acid", "tris"}, []float64{0.01, 0.02, 0.03},
				solution.WithTemperature(30))
			data, err := json.Marshal(s)
			Expect(err).NotTo(HaveOccurred())

			var back solution.Solution
			Expect(json.Unmarshal(data, &back)).To(Succeed())
			Expect(back.Equal(s)).To(BeTrue())
			Expect(must(back.PH())).To(Equal(must(s.PH())))
		})

		It("distinguishes different compositions", func() {
			a := mustSolution([]string{"tris"}, []float64{0.1})
			b := mustSolution([]string{"tris"}, []float64{0.2})
			Expect(a.Equal(b)).To(BeFalse())
			Expect(a.Equal(a)).To(BeTrue())
		})
	})
})
