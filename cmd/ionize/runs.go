package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ionize/internal/metrics"
	"github.com/san-kum/ionize/internal/storage"
	"github.com/san-kum/ionize/internal/tui"
	"github.com/san-kum/ionize/internal/viz"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(a.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs stored")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tLABEL\tPH\tI (M)\tTIMESTAMP")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.4g\t%s\n",
					shortID(r.ID), r.Kind, r.Label, r.State.PH, r.State.IonicStrength, r.Timestamp.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveRun accepts a full id or a unique prefix as printed by list.
func resolveRun(st storage.Store, ref string) (string, error) {
	if _, err := st.Load(ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	runs, err := st.List()
	if err != nil {
		return "", err
	}
	var match []string
	for _, r := range runs {
		if len(ref) <= len(r.ID) && r.ID[:len(ref)] == ref {
			match = append(match, r.ID)
		}
	}
	switch len(match) {
	case 0:
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, ref)
	case 1:
		return match[0], nil
	default:
		return "", fmt.Errorf("run id %s is ambiguous (%d matches)", ref, len(match))
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(a.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := resolveRun(st, args[0])
			if err != nil {
				return err
			}
			run, err := st.Load(id)
			if err != nil {
				return err
			}
			curve, err := st.LoadCurve(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, viz.Title.Render(run.Label))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "id\t%s\n", run.ID)
			fmt.Fprintf(w, "kind\t%s\n", run.Kind)
			fmt.Fprintf(w, "timestamp\t%s\n", run.Timestamp.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(w, "temperature\t%.1f degC\n", run.Solution.Temperature)
			for k, name := range run.Solution.Ions {
				fmt.Fprintf(w, "%s\t%.4g M\n", name.Name, run.Solution.Concentrations[k])
			}
			fmt.Fprintf(w, "pH\t%.4f\n", run.State.PH)
			fmt.Fprintf(w, "ionic strength\t%.4g M\n", run.State.IonicStrength)
			for _, name := range metrics.Names(run.Metrics) {
				fmt.Fprintf(w, "%s\t%.4g\n", name, run.Metrics[name])
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if pH := curve.Column("pH"); len(pH) > 1 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, asciigraph.Plot(pH,
					asciigraph.Height(12),
					asciigraph.Width(70),
					asciigraph.Caption(fmt.Sprintf("pH vs %s (%d points)", curve.Columns[0], len(pH))),
				))
			}
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(a.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := resolveRun(st, args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				return storage.ExportStored(cmd.OutOrStdout(), st, id)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := storage.ExportStored(f, st, id); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", shortID(id), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

func (a *app) exploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "interactive buffer explorer",
		RunE:  a.explore,
	}
}

func (a *app) explore(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(tui.NewExplorer(a.db), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
