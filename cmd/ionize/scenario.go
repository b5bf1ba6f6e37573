package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/san-kum/ionize/internal/automation"
	"github.com/san-kum/ionize/internal/metrics"
	"github.com/san-kum/ionize/internal/solution"
	"github.com/san-kum/ionize/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "prepare every buffer of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			s, ms := a.solver(a.cfg)
			ctx := a.log.WithContext(cmd.Context())
			results, err := automation.RunScenario(ctx, sc, a.cfg, a.db, solution.WithSolver(s))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d steps\n\n", sc.Name, len(results))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tPH\tI (M)\tSIGMA (S/m)\tBETA (M/pH)\tCURVE")
			for _, r := range results {
				state, err := r.Solution.Equilibrium()
				if err != nil {
					return err
				}
				sigma, err := r.Solution.Conductivity()
				if err != nil {
					return err
				}
				beta, err := r.Solution.BufferingCapacity()
				if err != nil {
					return err
				}
				curve := "-"
				if r.Curve != nil {
					curve = fmt.Sprintf("%d points", len(r.Curve.Points))
				}
				fmt.Fprintf(w, "%s\t%.3f\t%.4g\t%.4g\t%.4g\t%s\n", r.Step, state.PH, state.IonicStrength, sigma, beta, curve)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			values := metrics.Values(ms...)
			for _, r := range results {
				run, err := storage.NewRun(storage.KindScenario, sc.Name+": "+r.Step, r.Solution, values)
				if err != nil {
					return err
				}
				var curve *storage.Curve
				if r.Curve != nil {
					curve = &storage.Curve{Columns: r.Curve.Columns(), Rows: r.Curve.Rows()}
				}
				if err := a.record(cmd, r.Config, run, curve); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.save, "save", true, "store the runs")
	return cmd
}

func (a *app) toleranceCmd() *cobra.Command {
	var mc automation.MonteCarloConfig
	cmd := &cobra.Command{
		Use:   "tolerance [ion=conc ...]",
		Short: "Monte Carlo pH spread of a buffer under concentration errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.composition(cmd, args)
			if err != nil {
				return err
			}
			base, ms, err := a.build(cfg)
			if err != nil {
				return err
			}
			results, err := automation.RunMonteCarlo(cmd.Context(), base, mc)
			if err != nil {
				return err
			}
			st := automation.MonteCarloStats(results)

			pH, _ := base.PH()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "nominal pH\t%.4f\n", pH)
			fmt.Fprintf(w, "trials\t%d (%d failed)\n", st.Trials, st.Failed)
			fmt.Fprintf(w, "mean pH\t%.4f\n", st.MeanPH)
			fmt.Fprintf(w, "std dev\t%.4f\n", st.StdDevPH)
			fmt.Fprintf(w, "range\t%.4f .. %.4f\n", st.MinPH, st.MaxPH)
			if err := w.Flush(); err != nil {
				return err
			}

			values := metrics.Values(ms...)
			values["mean_ph"] = st.MeanPH
			values["stddev_ph"] = st.StdDevPH
			values["min_ph"] = st.MinPH
			values["max_ph"] = st.MaxPH
			values["failed"] = float64(st.Failed)
			run, err := storage.NewRun(storage.KindTolerance, label(cfg, a.preset), base, values)
			if err != nil {
				return err
			}
			return a.record(cmd, cfg, run, nil)
		},
	}
	a.compositionFlags(cmd)
	cmd.Flags().IntVar(&mc.Trials, "trials", 200, "number of perturbed preparations")
	cmd.Flags().Float64Var(&mc.Perturbation, "perturb", 0.02, "largest relative concentration error")
	cmd.Flags().Int64Var(&mc.Seed, "seed", 0, "random seed (0 draws one from the clock)")
	return cmd
}
