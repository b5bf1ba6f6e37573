package main

import (
	"fmt"
	"math"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/ionize/internal/analysis"
	"github.com/san-kum/ionize/internal/config"
	"github.com/san-kum/ionize/internal/equilibrium"
	"github.com/san-kum/ionize/internal/metrics"
	"github.com/san-kum/ionize/internal/optim"
	"github.com/san-kum/ionize/internal/solution"
	"github.com/san-kum/ionize/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) curveCmd() *cobra.Command {
	var (
		titrant string
		amount  float64
		steps   int
	)
	cmd := &cobra.Command{
		Use:   "curve [ion=conc ...]",
		Short: "compute a titration curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.composition(cmd, args)
			if err != nil {
				return err
			}
			t, err := a.db.Load(titrant)
			if err != nil {
				return err
			}
			base, ms, err := a.build(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			sw, err := analysis.TitrationCurve(cmd.Context(), base, t, amount, steps)
			if err != nil {
				return err
			}
			a.log.Debug().Int("points", len(sw.Points)).Dur("elapsed", time.Since(start)).Msg("titration curve")

			plotSweep(cmd, sw, fmt.Sprintf("pH vs %s added (M)", t.Name()))
			x, pH := sw.Steepest()
			if !math.IsNaN(x) {
				fmt.Fprintf(cmd.OutOrStdout(), "steepest rise at %.4g M %s (pH %.2f)\n", x, t.Name(), pH)
			}
			return a.recordSweep(cmd, cfg, storage.KindCurve, label(cfg, a.preset)+" + "+t.Name(), base, ms, sw)
		},
	}
	a.compositionFlags(cmd)
	cmd.Flags().StringVar(&titrant, "titrant", "sodium", "titrant ion")
	cmd.Flags().Float64Var(&amount, "max", 0.1, "largest titrant concentration (M)")
	cmd.Flags().IntVar(&steps, "steps", 50, "number of points")
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	var (
		from, to float64
		steps    int
		cation   string
		anion    string
	)
	cmd := &cobra.Command{
		Use:       "sweep [temperature|salt|dilution] [ion=conc ...]",
		Short:     "solve a buffer across temperature, added salt or dilution",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"temperature", "salt", "dilution"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.composition(cmd, args[1:])
			if err != nil {
				return err
			}
			base, ms, err := a.build(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var (
				sw      *analysis.Sweep
				caption string
			)
			switch args[0] {
			case "temperature":
				lo, hi := rangeOr(cmd, from, to, 0, 50)
				sw, err = analysis.TemperatureSweep(ctx, base, lo, hi, steps)
				caption = "pH vs temperature (degC)"
			case "salt":
				c, cerr := a.db.Load(cation)
				if cerr != nil {
					return cerr
				}
				an, aerr := a.db.Load(anion)
				if aerr != nil {
					return aerr
				}
				_, hi := rangeOr(cmd, from, to, 0, 0.1)
				sw, err = analysis.IonicStrengthSweep(ctx, base, c, an, hi, steps)
				caption = fmt.Sprintf("pH vs %s %s added (M)", c.Name(), an.Name())
			case "dilution":
				lo, hi := rangeOr(cmd, from, to, 1, 1000)
				sw, err = analysis.DilutionSweep(ctx, base, lo, hi, steps)
				caption = "pH vs dilution factor"
			default:
				return fmt.Errorf("unknown sweep %q (temperature, salt, dilution)", args[0])
			}
			if err != nil {
				return err
			}

			plotSweep(cmd, sw, caption)
			if err := printSweep(cmd, sw); err != nil {
				return err
			}
			return a.recordSweep(cmd, cfg, storage.KindSweep, label(cfg, a.preset)+" "+args[0], base, ms, sw)
		},
	}
	a.compositionFlags(cmd)
	cmd.Flags().Float64Var(&from, "from", 0, "sweep start")
	cmd.Flags().Float64Var(&to, "to", 0, "sweep end")
	cmd.Flags().IntVar(&steps, "steps", 21, "number of points")
	cmd.Flags().StringVar(&cation, "cation", "sodium", "salt cation")
	cmd.Flags().StringVar(&anion, "anion", "hydrochloric acid", "salt anion")
	return cmd
}

// rangeOr returns --from and --to, falling back to lo and hi for the flags
// that were not given.
func rangeOr(cmd *cobra.Command, from, to, lo, hi float64) (float64, float64) {
	if cmd.Flags().Changed("from") {
		lo = from
	}
	if cmd.Flags().Changed("to") {
		hi = to
	}
	return lo, hi
}

func plotSweep(cmd *cobra.Command, sw *analysis.Sweep, caption string) {
	if len(sw.Points) < 2 {
		return
	}
	graph := asciigraph.Plot(sw.PH(),
		asciigraph.Height(15),
		asciigraph.Width(70),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	fmt.Fprintln(cmd.OutOrStdout())
}

func printSweep(cmd *cobra.Command, sw *analysis.Sweep) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "X\tPH\tI (M)\tSIGMA (S/m)\tBETA (M/pH)")
	for _, p := range sw.Points {
		fmt.Fprintf(w, "%.4g\t%.3f\t%.4g\t%.4g\t%.4g\n", p.X, p.PH, p.IonicStrength, p.Conductivity, p.BufferingCapacity)
	}
	return w.Flush()
}

func (a *app) recordSweep(cmd *cobra.Command, cfg *config.Config, kind, name string, base *solution.Solution, ms []metrics.Metric, sw *analysis.Sweep) error {
	run, err := storage.NewRun(kind, name, base, metrics.Values(ms...))
	if err != nil {
		return err
	}
	return a.record(cmd, cfg, run, &storage.Curve{Columns: sw.Columns(), Rows: sw.Rows()})
}

func (a *app) optimizeCmd() *cobra.Command {
	var (
		vary         []string
		ranges       []string
		targetPH     float64
		conductivity float64
	)
	cmd := &cobra.Command{
		Use:   "optimize [ion=conc ...]",
		Short: "grid search concentrations for a target pH, conductivity or buffering",
		Long: `Varies the concentration of each --vary ion over its --range (lo:hi:n)
while the rest of the composition stays fixed. With --ph and/or
--conductivity the search minimizes the distance to the targets, otherwise
it maximizes buffering capacity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(vary) == 0 || len(vary) != len(ranges) {
				return fmt.Errorf("need one --range per --vary, got %d and %d", len(ranges), len(vary))
			}
			cfg, err := a.composition(cmd, args)
			if err != nil {
				return err
			}

			grid := make([][]float64, len(vary))
			for k, r := range ranges {
				lo, hi, n, err := parseRange(r)
				if err != nil {
					return fmt.Errorf("--range %s: %w", vary[k], err)
				}
				grid[k] = optim.Range(lo, hi, n)
			}
			fixed := make(map[string]float64)
			for _, ic := range cfg.Buffer.Ions {
				fixed[ic.Name] = ic.Concentration
			}
			for _, name := range vary {
				delete(fixed, name)
			}

			var (
				objectives []optim.Objective
				weights    []float64
			)
			if cmd.Flags().Changed("ph") {
				objectives = append(objectives, optim.TargetPH(targetPH))
				weights = append(weights, 1)
			}
			if cmd.Flags().Changed("conductivity") {
				objectives = append(objectives, optim.TargetConductivity(conductivity))
				weights = append(weights, 1)
			}
			objective := optim.MaxBuffering()
			if len(objectives) > 0 {
				objective = optim.Weighted(objectives, weights)
			}

			s, ms := a.solver(cfg)
			build := optim.Composition(a.db, fixed, solution.WithTemperature(cfg.Temperature), solution.WithSolver(s))
			res, err := optim.NewGridSearch(vary, grid).Search(cmd.Context(), build, objective)
			if err != nil {
				return err
			}
			best, err := build(res.Params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			names := make([]string, 0, len(res.Params))
			for name := range res.Params {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintf(out, "best of %d points (%d failed), score %.4g\n", res.Evaluated, res.Failed, res.Score)
			for _, name := range names {
				fmt.Fprintf(out, "  %s = %.4g M\n", name, res.Params[name])
			}
			fmt.Fprintln(out)
			if err := printSolution(cmd, best); err != nil {
				return err
			}

			values := metrics.Values(ms...)
			values["score"] = res.Score
			values["evaluated"] = float64(res.Evaluated)
			values["failed"] = float64(res.Failed)
			run, err := storage.NewRun(storage.KindOptimize, "optimize "+label(cfg, a.preset), best, values)
			if err != nil {
				return err
			}
			return a.record(cmd, cfg, run, nil)
		},
	}
	a.compositionFlags(cmd)
	cmd.Flags().StringArrayVar(&vary, "vary", nil, "ion whose concentration is searched (repeatable)")
	cmd.Flags().StringArrayVar(&ranges, "range", nil, "lo:hi:n for the matching --vary (repeatable)")
	cmd.Flags().Float64Var(&targetPH, "ph", 7, "target pH")
	cmd.Flags().Float64Var(&conductivity, "conductivity", 0.1, "target conductivity (S/m)")
	return cmd
}

func (a *app) benchCmd() *cobra.Command {
	var reps int
	cmd := &cobra.Command{
		Use:   "bench [preset ...]",
		Short: "time the equilibrium solver on buffer presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = config.ListPresets()
			}
			if reps < 1 {
				return fmt.Errorf("--reps must be positive, got %d", reps)
			}

			reg := prometheus.NewRegistry()
			collector, err := metrics.NewCollector(reg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tPH\tI (M)\tITER\tBISECT\tTIME/SOLVE")
			for _, name := range names {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				p := config.GetPreset(name)
				if p == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
				}
				sol, err := p.Build(a.db)
				if err != nil {
					return err
				}

				s := equilibrium.New(p.Solver, nil)
				ms := metrics.Standard()
				metrics.Attach(s, ms...)
				s.AddObserver(collector)

				species := sol.Species()
				var state equilibrium.State
				start := time.Now()
				for k := 0; k < reps; k++ {
					if state, err = s.Solve(species, sol.Temperature()); err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
				}
				per := time.Since(start) / time.Duration(reps)
				values := metrics.Values(ms...)
				fmt.Fprintf(w, "%s\t%.3f\t%.4g\t%.1f\t%.1f\t%s\n",
					name, state.PH, state.IonicStrength, values["ionic_strength_iterations"], values["ph_bisections"], per)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			families, err := reg.Gather()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			for _, mf := range families {
				total := 0.0
				for _, m := range mf.GetMetric() {
					switch {
					case m.GetCounter() != nil:
						total += m.GetCounter().GetValue()
					case m.GetHistogram() != nil:
						total += float64(m.GetHistogram().GetSampleCount())
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %g\n", mf.GetName(), total)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&reps, "reps", 200, "solves per preset")
	return cmd
}
