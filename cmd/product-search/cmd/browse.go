package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/product-search/internal/config"
	"github.com/donaldgifford/product-search/internal/launch"
	"github.com/donaldgifford/product-search/internal/tui"
	"github.com/donaldgifford/product-search/pkg/logger"
)

func browseCommand() *cobra.Command {
	var (
		resume     bool
		snapshotID string
		logFile    string
	)

	browseCmd := &cobra.Command{
		Use:   "browse [query]",
		Short: "Browse search results in the terminal",
		Long: "Opens a scrolling result list in the terminal. More results load as you\n" +
			"scroll. With a SQLite snapshot store configured, the list is saved on exit\n" +
			"and --resume reopens it where you left off.",
		Example: `  product-search browse "running shoes"
  product-search browse --resume`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := launch.Intent{Action: launch.ActionSearch, BackNav: resume}
			if len(args) == 1 {
				in.SearchQuery = args[0]
			}
			return runBrowse(cmd, in, snapshotID, logFile)
		},
	}
	browseCmd.Flags().BoolVar(&resume, "resume", false, "restore the last saved results")
	browseCmd.Flags().StringVar(&snapshotID, "snapshot", tui.DefaultSnapshotID, "snapshot ID to save to and restore from")
	browseCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (default: discard)")

	return browseCmd
}

func runBrowse(cmd *cobra.Command, in launch.Intent, snapshotID, logFile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.Discard()
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path from CLI flag
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log = logger.NewWithWriter(f, cfg.Logging.Level, cfg.Logging.Format)
	}

	ctx := cmd.Context()

	// The terminal keeps its snapshots locally whatever the server uses.
	if cfg.Snapshots.Backend == config.BackendPostgres {
		cfg.Snapshots.Backend = config.BackendSQLite
	}
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	client := newCatalogClient(&cfg.Catalog)
	opts := []tui.Option{
		tui.WithLogger(log),
		tui.WithRunnerOptions(runnerOptions(&cfg.Session)...),
		tui.WithQuery(launch.QueryFrom(in)),
	}
	if st != nil {
		opts = append(opts, tui.WithStore(st, snapshotID))
		if in.BackNav {
			snap, err := tui.LoadSnapshot(ctx, st, snapshotID)
			if err != nil {
				return err
			}
			if snap != nil && (in.SearchQuery == "" || strings.EqualFold(snap.Query, strings.TrimSpace(in.SearchQuery))) {
				opts = append(opts, tui.WithSnapshot(snap))
			}
		}
	} else if in.BackNav {
		return errors.New("--resume needs a snapshot store")
	}

	m := tui.New(ctx, newFetcher(client, &cfg.Catalog), opts...)
	_, runErr := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err := m.Close(ctx); err != nil {
		log.Error("saving snapshot", "err", err)
	}
	if runErr != nil {
		return fmt.Errorf("running terminal screen: %w", runErr)
	}
	return nil
}
