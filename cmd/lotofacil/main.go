package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kydenul/lotofacil"
	"github.com/kydenul/lotofacil/server"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "lotofacil",
		Short:         "Loto Fácil combination suggester",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: search ./config.yaml, ./config, /etc/lotofacil, $HOME/.lotofacil)")

	root.AddCommand(
		newServeCmd(&configFile),
		newGenerateCmd(),
		newCodesCmd(&configFile),
	)
	return root
}

func loadConfig(path string) (*lotofacil.ConfigManager, *lotofacil.Config, error) {
	cm := lotofacil.NewConfigManager()
	cm.SetConfigFile(path)
	cfg, err := cm.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cm, cfg, nil
}

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cm, cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cm, cfg)
		},
	}
}

func serve(ctx context.Context, cm *lotofacil.ConfigManager, cfg *lotofacil.Config) error {
	logger, err := lotofacil.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	accessLog, err := lotofacil.NewZapProduction(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = accessLog.Sync() }()

	if used := cm.ConfigFileUsed(); used != "" {
		logger.Info("Loaded configuration from %s", used)
	} else {
		logger.Info("No configuration file found, using defaults")
	}

	store, err := lotofacil.NewStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close store: %v", err)
		}
	}()

	svc := lotofacil.NewServiceFromConfig(cfg, store, lotofacil.WithLogger(logger))
	cm.WatchConfig(
		func(next *lotofacil.Config) {
			if err := svc.ApplyConfig(next); err != nil {
				logger.Error("apply config: %v", err)
			}
		},
		func(err error) { logger.Error("reload config: %v", err) },
	)

	opts := server.Options{Logger: accessLog}
	if p, ok := store.(lotofacil.Pinger); ok {
		opts.HealthCheck = p.Ping
	}
	if b, ok := store.(*lotofacil.BreakerStore); ok {
		opts.BreakerState = b.StateNumeric
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting server on %s (store=%s)", cfg.Server.Addr, cfg.Store.Driver)
	return server.New(cfg, svc, opts).Run(ctx)
}

type generateFlags struct {
	draws    []string
	current  string
	mode     string
	quantity int
	exclude  []int
	include  []int
	seed     uint64
	asJSON   bool
}

func newGenerateCmd() *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate games from three past draws, without quota",
		Example: `  lotofacil generate \
    --draw 1,2,3,4,5,6,7,8,9,10,11,12,13,14,15 \
    --draw 2,3,5,7,9,11,12,13,14,16,18,20,22,24,25 \
    --draw 1,4,6,8,10,11,13,15,17,19,20,21,23,24,25 \
    --current 11,12,13,14,15,16,17,18,19,20,21,22,23,24,25 --quantity 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.OutOrStdout(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringArrayVar(&f.draws, "draw", nil, "a past draw, 15 comma-separated numbers (repeat 3 times)")
	fl.StringVar(&f.current, "current", "", "the current result, 15 comma-separated numbers")
	fl.StringVarP(&f.mode, "mode", "m", string(lotofacil.ModeBalanced), "balanced | conservative | aggressive")
	fl.IntVarP(&f.quantity, "quantity", "n", 1, "games to generate (1-3)")
	fl.IntSliceVar(&f.exclude, "exclude", nil, "numbers never selected")
	fl.IntSliceVar(&f.include, "include", nil, "numbers favoured")
	fl.Uint64Var(&f.seed, "seed", 0, "seed for reproducible output (0 uses a secure source)")
	fl.BoolVar(&f.asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("current")
	return cmd
}

func runGenerate(out io.Writer, f *generateFlags) error {
	if len(f.draws) != lotofacil.HistoryDraws {
		return lotofacil.ErrInvalidParameters.WithField("draw").
			WithDetails(fmt.Sprintf("exactly %d draws are required, got %d", lotofacil.HistoryDraws, len(f.draws)))
	}

	var req lotofacil.GenerateRequest
	for i, text := range f.draws {
		d, err := lotofacil.ParseDraw(fmt.Sprintf("draw%d", i+1), text)
		if err != nil {
			return err
		}
		req.Draws[i] = d
	}
	current, err := lotofacil.ParseDraw("current", f.current)
	if err != nil {
		return err
	}
	mode, err := lotofacil.ParseMode(f.mode)
	if err != nil {
		return err
	}
	req.Current = current
	req.Mode = mode
	req.Quantity = f.quantity
	req.Exclude = lotofacil.NewNumberSet(f.exclude...)
	req.Include = lotofacil.NewNumberSet(f.include...)

	var random lotofacil.RandomGenerator = lotofacil.NewSecureRandomGenerator()
	if f.seed != 0 {
		random = lotofacil.NewSeededRandomGenerator(f.seed)
	}

	result, err := lotofacil.GenerateGames(req, lotofacil.NewGenerator(random))
	if err != nil {
		return err
	}

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(out, mode, result)
	return nil
}

func printResult(out io.Writer, mode lotofacil.Mode, result *lotofacil.GenerateResult) {
	fmt.Fprintf(out, "Mode: %s\n\n", mode)
	for i, g := range result.Games {
		fmt.Fprintf(out, "Game %d: %s\n", i+1, g)
	}

	st := result.Statistics
	fmt.Fprintf(out, "\nMean frequency: %.1f\n", st.MeanFrequency)
	fmt.Fprintf(out, "Even/odd per draw: %.1f / %.1f\n", st.Even, st.Odd)
	fmt.Fprintf(out, "Consecutive runs: %d (mean length %.1f)\n\n", st.TotalSequences, st.MeanSequenceLength)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tHOT\tFREQ\tCOLD\tFREQ")
	for i := range st.TopTen {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\n",
			i+1, st.TopTen[i].Number, st.TopTen[i].Frequency, st.BottomTen[i].Number, st.BottomTen[i].Frequency)
	}
	_ = tw.Flush()

	fmt.Fprintln(out)
	for _, d := range st.Decades {
		fmt.Fprintf(out, "%-6s %.2f\n", d.Label, d.Mean)
	}
}

func newCodesCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List the activation code catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tVALIDITY")
			for _, info := range lotofacil.NewActivationCatalog(cfg.ActivationCodes).List() {
				validity := fmt.Sprintf("%d days", info.Days)
				if info.Unlimited {
					validity = "unlimited"
				}
				fmt.Fprintf(tw, "%s\t%s\n", info.Code, validity)
			}
			return tw.Flush()
		},
	}
}
