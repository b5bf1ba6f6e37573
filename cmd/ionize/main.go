package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/san-kum/ionize/internal/config"
	"github.com/san-kum/ionize/internal/database"
	"github.com/san-kum/ionize/internal/equilibrium"
	"github.com/san-kum/ionize/internal/logging"
	"github.com/san-kum/ionize/internal/metrics"
	"github.com/san-kum/ionize/internal/solution"
	"github.com/san-kum/ionize/internal/storage"
	"github.com/spf13/cobra"
)

// app carries the state every command shares once the root pre-run has
// resolved flags, configuration and the ion database.
type app struct {
	dataDir    string
	configFile string
	logLevel   string
	storeKind  string
	ionTable   string

	preset      string
	temperature float64
	co2         float64
	save        bool

	cfg *config.Config
	db  *database.Database
	log zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "ionize",
		Short:         "aqueous ionic equilibrium and electrophoresis calculator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.explore(cmd, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.dataDir, "data", ".ionize", "data directory")
	pf.StringVar(&a.configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&a.storeKind, "store", "", "run store: dir or sqlite")
	pf.StringVar(&a.ionTable, "ions", "", "yaml ion table overlaid on the built-in one")

	rootCmd.AddCommand(
		a.solveCmd(),
		a.titrateCmd(),
		a.curveCmd(),
		a.sweepCmd(),
		a.optimizeCmd(),
		a.ionCmd(),
		a.searchCmd(),
		a.presetsCmd(),
		a.listCmd(),
		a.showCmd(),
		a.exportCmd(),
		a.benchCmd(),
		a.scenarioCmd(),
		a.toleranceCmd(),
		a.exploreCmd(),
	)
	return rootCmd
}

// compositionFlags registers the flags of commands that build a buffer.
func (a *app) compositionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.preset, "preset", "", "start from a buffer preset")
	cmd.Flags().Float64Var(&a.temperature, "temp", 25, "temperature (degC)")
	cmd.Flags().Float64Var(&a.co2, "co2", 0, "equilibrate with CO2 at this partial pressure (atm)")
	cmd.Flags().BoolVar(&a.save, "save", true, "store the run")
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, err := logging.New(cmd.ErrOrStderr(), a.logLevel)
	if err != nil {
		return err
	}
	a.log = logger

	if a.configFile != "" {
		if a.cfg, err = config.Load(a.configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		a.cfg = config.DefaultConfig()
	}
	if cmd.Flags().Changed("data") || a.configFile == "" {
		a.cfg.DataDir = a.dataDir
	}
	if a.storeKind != "" {
		a.cfg.Store = a.storeKind
	}
	if a.ionTable != "" {
		a.cfg.IonTable = a.ionTable
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	opts := []database.Option{database.WithLogger(a.log)}
	if a.cfg.IonTable != "" {
		a.db, err = database.Open(a.cfg.IonTable, opts...)
	} else {
		a.db, err = database.New(opts...)
	}
	if err != nil {
		return err
	}
	a.log.Debug().Str("source", a.db.Source()).Int("ions", a.db.Len()).Msg("ion database ready")
	return nil
}

// composition resolves the buffer a command works on: the config file,
// replaced by a preset, replaced by name=concentration arguments.
func (a *app) composition(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := a.cfg.Clone()
	if a.preset != "" {
		p := config.GetPreset(a.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", a.preset, config.ListPresets())
		}
		cfg.Buffer = p.Buffer
		cfg.Titration = p.Titration
		cfg.CO2 = p.CO2
	}
	if len(args) > 0 {
		ions, err := parseIons(args)
		if err != nil {
			return nil, err
		}
		cfg.Buffer.Ions = ions
		cfg.Titration = nil
	}
	if cmd.Flags().Changed("temp") {
		cfg.Temperature = a.temperature
	}
	if cmd.Flags().Changed("co2") {
		cfg.CO2 = a.co2
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseIons reads name=concentration pairs. Names may contain spaces or
// '=' as long as the value follows the last '='.
func parseIons(args []string) ([]config.IonConfig, error) {
	out := make([]config.IonConfig, 0, len(args))
	for _, arg := range args {
		k := strings.LastIndex(arg, "=")
		if k <= 0 {
			return nil, fmt.Errorf("expected name=concentration, got %q", arg)
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(arg[k+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("concentration of %s: %w", arg[:k], err)
		}
		out = append(out, config.IonConfig{Name: strings.TrimSpace(arg[:k]), Concentration: c})
	}
	return out, nil
}

// parseRange reads lo:hi:n.
func parseRange(s string) (lo, hi float64, n int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected lo:hi:n, got %q", s)
	}
	if lo, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return 0, 0, 0, err
	}
	if hi, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return 0, 0, 0, err
	}
	if n, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, err
	}
	return lo, hi, n, nil
}

// solver returns a solver for cfg with the standard metrics attached.
func (a *app) solver(cfg *config.Config) (*equilibrium.Solver, []metrics.Metric) {
	s := equilibrium.New(cfg.Solver, nil)
	ms := metrics.Standard()
	metrics.Attach(s, ms...)
	return s, ms
}

func (a *app) build(cfg *config.Config) (*solution.Solution, []metrics.Metric, error) {
	s, ms := a.solver(cfg)
	sol, err := cfg.Build(a.db, solution.WithSolver(s))
	if err != nil {
		return nil, nil, err
	}
	if _, err := sol.Equilibrium(); err != nil {
		return nil, nil, err
	}
	return sol, ms, nil
}

func (a *app) openStore(cfg *config.Config) (storage.Store, error) {
	return storage.Open(cfg.Store, cfg.DataDir, storage.WithLogger(a.log))
}

// record stores a run when saving is enabled and prints its id.
func (a *app) record(cmd *cobra.Command, cfg *config.Config, run *storage.Run, curve *storage.Curve) error {
	if !a.save {
		return nil
	}
	st, err := a.openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Save(run, curve)
	if err != nil {
		return err
	}
	a.log.Info().Str("id", id).Str("kind", run.Kind).Msg("run stored")
	fmt.Fprintf(cmd.OutOrStdout(), "\nrun id: %s\n", id)
	return nil
}

func describe(s *solution.Solution) string {
	parts := make([]string, s.Len())
	conc := s.Concentrations()
	for k, i := range s.Ions() {
		parts[k] = fmt.Sprintf("%s %.4g M", i.Name(), conc[k])
	}
	if len(parts) == 0 {
		return fmt.Sprintf("water at %.1f degC", s.Temperature())
	}
	return fmt.Sprintf("%s at %.1f degC", strings.Join(parts, ", "), s.Temperature())
}

func label(cfg *config.Config, preset string) string {
	if preset != "" {
		return preset
	}
	return strings.Join(cfg.Names(), "+")
}
