package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/config"
	"github.com/san-kum/ionize/internal/ion"
	"github.com/san-kum/ionize/internal/metrics"
	"github.com/san-kum/ionize/internal/solution"
	"github.com/san-kum/ionize/internal/storage"
	"github.com/san-kum/ionize/internal/viz"
	"github.com/spf13/cobra"
)

func (a *app) solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve [ion=conc ...]",
		Short: "solve the equilibrium of a buffer",
		RunE:  a.runSolve,
	}
	a.compositionFlags(cmd)
	return cmd
}

func (a *app) runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := a.composition(cmd, args)
	if err != nil {
		return err
	}
	sol, ms, err := a.build(cfg)
	if err != nil {
		return err
	}
	if err := printSolution(cmd, sol); err != nil {
		return err
	}

	run, err := storage.NewRun(storage.KindSolve, label(cfg, a.preset), sol, metrics.Values(ms...))
	if err != nil {
		return err
	}
	return a.record(cmd, cfg, run, nil)
}

func printSolution(cmd *cobra.Command, s *solution.Solution) error {
	out := cmd.OutOrStdout()
	state, err := s.Equilibrium()
	if err != nil {
		return err
	}
	sigma, err := s.Conductivity()
	if err != nil {
		return err
	}
	beta, err := s.BufferingCapacity()
	if err != nil {
		return err
	}
	debye, err := s.Debye()
	if err != nil {
		return err
	}
	waterShare, err := s.WaterTransference()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, viz.Title.Render(describe(s)))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "pH\t%.4f\n", state.PH)
	fmt.Fprintf(w, "ionic strength\t%.4g M\n", state.IonicStrength)
	fmt.Fprintf(w, "[H+] / [OH-]\t%.3g / %.3g M\n", state.Hydronium, state.Hydroxide)
	fmt.Fprintf(w, "conductivity\t%.4g S/m\n", sigma)
	fmt.Fprintf(w, "buffering capacity\t%.4g M/pH\n", beta)
	fmt.Fprintf(w, "debye length\t%.3g nm\n", debye*1e9)
	fmt.Fprintf(w, "water transference\t%.4f\n", waterShare)
	fmt.Fprintf(w, "iterations\t%d (%d bisections)\n", state.Iterations, state.PHIterations)
	if err := w.Flush(); err != nil {
		return err
	}

	props, err := s.Properties()
	if err != nil {
		return err
	}
	if len(props) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ION\tC (M)\tCHARGE\tMOBILITY (m2/Vs)\tTRANSFERENCE\tZONE TRANSFER")
		for _, p := range props {
			fmt.Fprintf(w, "%s\t%.4g\t%.4f\t%.4g\t%.4f\t%.4g\n",
				p.Name, p.Concentration, p.Charge, p.Mobility, p.Transference, p.ZoneTransfer)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	kohlrausch, err := s.Kohlrausch()
	if err != nil {
		return err
	}
	alberty, _ := s.Alberty()
	jovin, _ := s.Jovin()
	gas, err := s.Gas()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KOHLRAUSCH\tALBERTY\tJOVIN\tGAS")
	fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4g\n", kohlrausch, alberty, jovin, gas)
	return w.Flush()
}

func (a *app) titrateCmd() *cobra.Command {
	var (
		titrant string
		target  float64
	)
	cmd := &cobra.Command{
		Use:   "titrate [ion=conc ...]",
		Short: "find how much titrant brings a buffer to a pH",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.composition(cmd, args)
			if err != nil {
				return err
			}
			cfg.Titration = &config.TitrationConfig{Titrant: titrant, TargetPH: target}
			if err := cfg.Validate(); err != nil {
				return err
			}

			before, err := a.db.Load(titrant)
			if err != nil {
				return err
			}
			base := cfg.Clone()
			base.Titration = nil
			start, _, err := a.build(base)
			if err != nil {
				return err
			}
			sol, ms, err := a.build(cfg)
			if err != nil {
				return err
			}

			added, err := sol.Concentration(before)
			if err != nil {
				return err
			}
			if had, _ := start.Concentration(before); had > 0 {
				added -= had
			}
			startPH, _ := start.PH()
			fmt.Fprintf(cmd.OutOrStdout(), "add %.6g M %s (pH %.3f -> %.3f)\n\n", added, before.Name(), startPH, target)
			if err := printSolution(cmd, sol); err != nil {
				return err
			}

			run, err := storage.NewRun(storage.KindTitrate, label(cfg, a.preset)+" -> pH "+fmt.Sprint(target), sol, metrics.Values(ms...))
			if err != nil {
				return err
			}
			run.Metrics["titrant_added"] = added
			return a.record(cmd, cfg, run, nil)
		},
	}
	a.compositionFlags(cmd)
	cmd.Flags().StringVar(&titrant, "titrant", "sodium", "titrant ion")
	cmd.Flags().Float64Var(&target, "ph", 7, "target pH")
	return cmd
}

func (a *app) ionCmd() *cobra.Command {
	var ctx ion.Context
	cmd := &cobra.Command{
		Use:   "ion [name]",
		Short: "show an ion's properties at a pH, ionic strength and temperature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := a.db.Load(args[0])
			if err != nil {
				return err
			}
			return printIon(cmd, i, ctx)
		},
	}
	cmd.Flags().Float64Var(&ctx.PH, "ph", 7, "pH")
	cmd.Flags().Float64Var(&ctx.IonicStrength, "ionic-strength", 0, "ionic strength (M)")
	cmd.Flags().Float64Var(&ctx.Temperature, "temp", chem.ReferenceT, "temperature (degC)")
	return cmd
}

func printIon(cmd *cobra.Command, i *ion.Ion, ctx ion.Context) error {
	out := cmd.OutOrStdout()
	snap := i.At(ctx)
	pKa, err := snap.PKa()
	if err != nil {
		return err
	}
	fractions, err := snap.IonizationFraction()
	if err != nil {
		return err
	}
	z, err := snap.Charge()
	if err != nil {
		return err
	}
	mu, err := snap.Mobility()
	if err != nil {
		return err
	}
	d, err := snap.Diffusivity()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, viz.Title.Render(i.Name()))
	fmt.Fprintf(out, "at pH %.2f, I %.4g M, %.1f degC\n\n", ctx.PH, ctx.IonicStrength, ctx.Temperature)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Z\tPKA (REF)\tPKA\tMOBILITY (REF)\tFRACTION")
	valence := i.Valence()
	ref := i.ReferencePKa()
	mobility := i.ReferenceMobility()
	for k := range valence {
		fmt.Fprintf(w, "%+d\t%.3f\t%.3f\t%.4g\t%.4f\n", valence[k], ref[k], pKa[k], mobility[k], fractions[k])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "charge\t%.4f\n", z)
	fmt.Fprintf(w, "effective mobility\t%.4g m2/(V s)\n", mu)
	fmt.Fprintf(w, "diffusivity\t%.4g m2/s\n", d)
	if i.Ampholyte() {
		pI, err := i.IsoelectricPoint(ctx.IonicStrength, ctx.Temperature)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "isoelectric point\t%.3f\n", pI)
	}
	if i.ExtrapolationWarning(ctx.Temperature) {
		fmt.Fprintf(w, "warning\t%s\n", viz.Warning.Render("pKa extrapolated without heat capacity data"))
	}
	for _, c := range i.Corrections() {
		fmt.Fprintf(w, "corrected\t%s\n", c)
	}
	return w.Flush()
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [fragment]",
		Short: "search the ion database; no fragment lists every ion",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ""
			if len(args) > 0 {
				q = args[0]
			}
			names := a.db.Search(q)
			if len(names) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no ions match %q\n", q)
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVALENCE\tPKA")
			for _, name := range names {
				i := a.db.Get(name)
				fmt.Fprintf(w, "%s\t%v\t%s\n", i.Name(), i.Valence(), formatFloats(i.ReferencePKa(), "%.2f"))
			}
			return w.Flush()
		},
	}
}

func formatFloats(vs []float64, format string) string {
	parts := make([]string, len(vs))
	for k, v := range vs {
		parts[k] = fmt.Sprintf(format, v)
	}
	return strings.Join(parts, " ")
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list buffer presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tCOMPOSITION\tADJUST")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				parts := make([]string, len(p.Buffer.Ions))
				for k, ic := range p.Buffer.Ions {
					parts[k] = fmt.Sprintf("%s %.4g M", ic.Name, ic.Concentration)
				}
				adjust := "-"
				switch {
				case p.Titration != nil:
					adjust = fmt.Sprintf("%s to pH %.2f", p.Titration.Titrant, p.Titration.TargetPH)
				case p.CO2 > 0:
					adjust = fmt.Sprintf("CO2 at %.3g atm", p.CO2)
				}
				composition := strings.Join(parts, ", ")
				if composition == "" {
					composition = "water"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, composition, adjust)
			}
			return w.Flush()
		},
	}
}
