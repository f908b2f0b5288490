package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apppurchasing "github.com/erp/purchasing/internal/application/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/config"
	"github.com/erp/purchasing/internal/infrastructure/gateway"
	"github.com/erp/purchasing/internal/infrastructure/logger"
)

var (
	version = "dev"
	commit  = "none"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	baseURL    string
	verbose    bool
	jsonOut    bool
}

// session is the per-invocation wiring built from config and flags
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	gateway *gateway.HTTPGateway
	refs    *apppurchasing.ReferenceService
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "poctl",
		Short:         "Manage purchase orders",
		Long:          "poctl lists, inspects, creates, edits and deletes purchase orders on a json-server style backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./config.toml)")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "backend base URL, overrides gateway.base_url")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of tables")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newGetCmd(opts))
	cmd.AddCommand(newCreateCmd(opts))
	cmd.AddCommand(newEditCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))
	cmd.AddCommand(newRefCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs poctl and prints any failure to stderr
func Execute() error {
	// .env is optional
	_ = godotenv.Load()

	cmd := newRootCmd()
	err := cmd.Execute()
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "poctl %s (%s)\n", version, commit)
		},
	}
}

// openSession loads configuration and wires the gateway for one command
func openSession(opts *globalOptions) (*session, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.baseURL != "" {
		cfg.Gateway.BaseURL = opts.baseURL
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     cfg.Log.Format,
		Output:     "stderr",
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL:   cfg.Gateway.BaseURL,
		Timeout:   cfg.Gateway.Timeout,
		UserAgent: cfg.Gateway.UserAgent,
		RateLimit: cfg.Gateway.RateLimit,
		RateBurst: cfg.Gateway.RateBurst,
	}, gateway.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	gw := gateway.NewHTTPGateway(client, nil, log)

	return &session{
		cfg:     cfg,
		log:     log,
		gateway: gw,
		refs:    apppurchasing.NewReferenceService(gw, log),
	}, nil
}

func (s *session) close() {
	_ = logger.Sync(s.log)
}

// names loads reference data for display. Without it rows fall back to ids.
func (s *session) names(ctx context.Context) *nameResolver {
	data, err := s.refs.Load(ctx)
	if err != nil {
		s.log.Warn("reference data unavailable, showing ids", zap.Error(err))
		return &nameResolver{}
	}
	return &nameResolver{data: data}
}

func printError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	var validation *shared.ValidationError
	if errors.As(err, &validation) && len(validation.Violations) > 0 {
		fmt.Fprintln(w, failStyle.Render("Validation failed:"))
		for _, v := range validation.Violations {
			fmt.Fprintf(w, "  %s %s\n", fieldStyle.Render(v.Field), v.Message)
		}
		return
	}
	fmt.Fprintf(w, "%s %v\n", failStyle.Render("Error:"), err)
}
