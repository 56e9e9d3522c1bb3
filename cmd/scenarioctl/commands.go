package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"
	"throttlelab/internal/core/services"
	"throttlelab/internal/infrastructure/api"
	"throttlelab/internal/infrastructure/navigation"
	"throttlelab/internal/infrastructure/repositories"
	"throttlelab/pkg/config"
	"throttlelab/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the permutation table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := services.GeneratePermutations(domain.BaseBitrates)
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), table)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tP0\tP1\tP2")
			for i, p := range table {
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", i, p[0], p[1], p[2])
			}
			return w.Flush()
		},
	}
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <experiment-id>",
		Short: "Show the scenario an experiment id is assigned",
		Long: `Show the scenario an experiment id is assigned. Any integer is accepted,
negative ids included (scenarioctl scenario -1). The command reads its own
flags: --json and --help.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, asJSON, help, err := parseScenarioArgs(args)
			if err != nil {
				return err
			}
			if help {
				return cmd.Help()
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("experiment id must be an integer: %w", err)
			}

			experimentID := domain.ExperimentID(id)
			cfg := domain.NewExperimentConfig(services.BuildScenario(experimentID))
			index := services.PermutationIndex(experimentID)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"experimentID":     experimentID,
					"permutationIndex": index,
					"config":           cfg,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "experiment %d -> permutation %d\n", experimentID, index)
			printConfig(out, cfg)
			return nil
		},
	}
}

// parseScenarioArgs reads the scenario command line by hand so that "-1" is
// taken as an id rather than a shorthand flag.
func parseScenarioArgs(args []string) (id string, asJSON, help bool, err error) {
	var ids []string
	literal := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if literal {
			ids = append(ids, arg)
			continue
		}
		switch {
		case arg == "--":
			literal = true
		case arg == "--config":
			// the scenario table does not read the config file
			i++
		case strings.HasPrefix(arg, "--config="):
		case arg == "-h" || arg == "--help":
			help = true
		case arg == "--json":
			asJSON = true
		case strings.HasPrefix(arg, "--json="):
			asJSON, err = strconv.ParseBool(strings.TrimPrefix(arg, "--json="))
			if err != nil {
				return "", false, false, fmt.Errorf("invalid --json value: %w", err)
			}
		case strings.HasPrefix(arg, "--"):
			return "", false, false, fmt.Errorf("unknown flag: %s", arg)
		default:
			ids = append(ids, arg)
		}
	}

	if help {
		return "", false, true, nil
	}
	if len(ids) != 1 {
		return "", false, false, fmt.Errorf("accepts 1 arg(s), received %d", len(ids))
	}
	return ids[0], asJSON, false, nil
}

func newStartCmd() *cobra.Command {
	var age, sex string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Create an experiment record and arm it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			client := api.NewExperimentClient(env.cfg.API.BaseURL, env.cfg.API.Timeout)
			activator := services.NewActivationService(env.settings(), env.variables(), nil, env.log)
			setup := services.NewSetupService(client, activator, nil, env.log)

			submission, err := setup.Submit(cmd.Context(), domain.SubjectForm{
				SubjectAge: age,
				SubjectSex: sex,
			}, navigation.NewWriterNavigator(cmd.OutOrStdout()))
			if err != nil {
				return fmt.Errorf("%s: %w", submission.Outcome, err)
			}

			a := submission.Activation
			fmt.Fprintf(cmd.ErrOrStderr(), "experiment %d armed with permutation %d\n", a.Record.ID, a.PermutationIndex)
			return nil
		},
	}

	cmd.Flags().StringVar(&age, "age", "", "Subject age")
	cmd.Flags().StringVar(&sex, "sex", "", "Subject sex (male, female, undisclosed)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the armed experiment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			state := services.NewStateService(env.settings(), env.variables(), env.log)
			flags, cfg, err := state.Active(cmd.Context())
			if errors.Is(err, domain.ErrNoActiveExperiment) {
				fmt.Fprintln(cmd.OutOrStdout(), "no experiment running")
				return nil
			}
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"variables": flags,
					"settings":  cfg,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "experiment %d running\n", flags.ExperimentID)
			printConfig(out, *cfg)
			return nil
		},
	}
}

func newFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Clear the running flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			state := services.NewStateService(env.settings(), env.variables(), env.log)
			if err := state.Finish(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "experiment finished")
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg domain.ExperimentConfig) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "bitrateScenario\t%v\n", cfg.BitrateScenario)
	fmt.Fprintf(tw, "bitrateIntervalMs\t%d\n", cfg.BitrateIntervalMs)
	fmt.Fprintf(tw, "experimentDurationMs\t%d\n", cfg.ExperimentDurationMs)
	fmt.Fprintf(tw, "assessmentJitterRangeMs\t%v\n", cfg.AssessmentJitterRangeMs)
	fmt.Fprintf(tw, "assessmentTimeoutMs\t%d\n", cfg.AssessmentTimeoutMs)
	tw.Flush()
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// env holds what the store-backed commands share.
type env struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	factory *repositories.RepositoryFactory
}

func openEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.New(cfg.Logging.Level, "console")
	if err != nil {
		return nil, err
	}
	log := zapLogger.Sugar()

	factory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, log: log, factory: factory}, nil
}

func (e *env) settings() ports.KVStore  { return e.factory.CreateSettingsStore() }
func (e *env) variables() ports.KVStore { return e.factory.CreateVariablesStore() }

func (e *env) close() {
	if err := e.factory.Close(); err != nil {
		e.log.Warnw("failed to close stores", "error", err)
	}
	_ = e.log.Sync()
}
