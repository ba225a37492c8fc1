package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/product-search/internal/api/client"
	"github.com/donaldgifford/product-search/internal/session"
)

const pollInterval = 200 * time.Millisecond

func sessionCmd() *cobra.Command {
	sessionRoot := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Manage search sessions",
		Long: "Manage server-side search sessions. A session holds one query and the\n" +
			"results loaded so far; scrolling near the end of them loads the next page.",
	}

	sessionRoot.AddCommand(
		sessionListCmd(),
		sessionStartCmd(),
		sessionShowCmd(),
		sessionQueryCmd(),
		sessionScrollCmd(),
		sessionNoticesCmd(),
		sessionSnapshotCmd(),
		sessionSaveCmd(),
		sessionRestoreCmd(),
		sessionCloseCmd(),
	)

	return sessionRoot
}

func sessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List running sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := newClient().ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(ids)
			}
			if len(ids) == 0 {
				fmt.Println("No running sessions.")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func sessionStartCmd() *cobra.Command {
	var (
		action string
		wait   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "start [query]",
		Short: "Start a session",
		Example: `  psc session start "running shoes"
  psc session start "running shoes" --wait 10s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := apiclient.LaunchRequest{Action: action}
			if len(args) == 1 {
				if action == "search" {
					req.SearchQuery = args[0]
				} else {
					req.Query = args[0]
				}
			}

			c := newClient()
			s, err := c.CreateSession(cmd.Context(), req)
			if err != nil {
				return err
			}
			return showSession(cmd.Context(), c, s, wait)
		},
	}
	cmd.Flags().StringVar(&action, "action", "search", "launch action (search, view)")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for the first page")

	return cmd
}

func sessionShowCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session and a window of its results",
		Example: `  psc session show 0b6f...
  psc session show 0b6f... --offset 20 --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().GetSession(cmd.Context(), args[0], offset, limit)
			if err != nil {
				return err
			}
			return render(s)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "index of the first result to show")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of results to show")

	return cmd
}

func sessionQueryCmd() *cobra.Command {
	var (
		back bool
		wait time.Duration
	)

	cmd := &cobra.Command{
		Use:   "query <id> <query>",
		Short: "Search for a new query in a session",
		Long: "Starts a new search in the session, replacing its results. With --back the\n" +
			"session is re-entered as if by back navigation and keeps its results.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			s, err := c.Query(cmd.Context(), args[0], apiclient.LaunchRequest{
				Query:   args[1],
				BackNav: back,
			})
			if err != nil {
				return err
			}
			return showSession(cmd.Context(), c, s, wait)
		},
	}
	cmd.Flags().BoolVar(&back, "back", false, "re-enter through back navigation")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for the page to load")

	return cmd
}

func sessionScrollCmd() *cobra.Command {
	var (
		to      int
		visible int
		wait    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scroll <id>",
		Short: "Report a list position to a session",
		Long: "Tells the session that rows --to through --to+--visible are on screen. When\n" +
			"that is close to the end of the loaded results the next page is requested.",
		Example: `  psc session scroll 0b6f... --to 15 --visible 10 --wait 5s`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := newClient()

			current, err := c.GetSession(ctx, args[0], 0, 0)
			if err != nil {
				return err
			}
			s, err := c.Scroll(ctx, args[0], to, visible, current.Total)
			if err != nil {
				return err
			}
			return showSession(ctx, c, s, wait)
		},
	}
	cmd.Flags().IntVar(&to, "to", 0, "index of the first visible result")
	cmd.Flags().IntVar(&visible, "visible", 20, "number of visible results")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for a triggered page")

	return cmd
}

func sessionNoticesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notices <id>",
		Short: "Drain the pending notices of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notices, err := newClient().Notices(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(notices)
			}
			if len(notices) == 0 {
				fmt.Println("No pending notices.")
				return nil
			}
			return printNotices(os.Stdout, notices)
		},
	}
}

func sessionSnapshotCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "snapshot <id>",
		Short: "Print or write the snapshot of a session",
		Long: "Prints the session snapshot as JSON, or writes it to --file. The file can\n" +
			"be passed to 'psc session restore --file' later, even on another server.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := newClient().Snapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if file == "" {
				return outputJSON(snap)
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding snapshot: %w", err)
			}
			if err := os.WriteFile(file, data, 0o600); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			fmt.Printf("Wrote %d results for %q to %s\n", len(snap.Results), snap.Query, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "write the snapshot to this file")

	return cmd
}

func sessionSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <id>",
		Short: "Persist the snapshot of a session on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newClient().Save(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(rec)
			}
			return printSnapshotRecord(os.Stdout, rec)
		},
	}
}

func sessionRestoreCmd() *cobra.Command {
	var (
		snapshotID string
		file       string
	)

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Start a session from a snapshot",
		Example: `  psc session restore --id 0b6f...
  psc session restore --file shoes.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			var (
				s   *apiclient.Session
				err error
			)
			switch {
			case snapshotID != "":
				s, err = c.RestoreStored(cmd.Context(), snapshotID)
			case file != "":
				var snap *session.Snapshot
				snap, err = readSnapshotFile(file)
				if err != nil {
					return err
				}
				s, err = c.RestoreSnapshot(cmd.Context(), snap)
			default:
				return errors.New("one of --id or --file is required")
			}
			if err != nil {
				return err
			}
			return render(s)
		},
	}
	cmd.Flags().StringVar(&snapshotID, "id", "", "ID of a snapshot stored on the server")
	cmd.Flags().StringVar(&file, "file", "", "snapshot file written by 'psc session snapshot --file'")
	cmd.MarkFlagsMutuallyExclusive("id", "file")

	return cmd
}

func sessionCloseCmd() *cobra.Command {
	var noPersist bool

	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close a session",
		Long:  "Stops a session. Its snapshot is saved first unless --no-persist is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().CloseSession(cmd.Context(), args[0], !noPersist); err != nil {
				return err
			}
			fmt.Printf("Session %s closed.\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "do not save the snapshot before closing")

	return cmd
}

func readSnapshotFile(path string) (*session.Snapshot, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot file: %w", err)
	}
	return &snap, nil
}

// showSession renders s, first polling until it has settled when wait is
// positive.
func showSession(ctx context.Context, c *apiclient.Client, s *apiclient.Session, wait time.Duration) error {
	if wait > 0 && !s.State.Settled() {
		var err error
		s, err = waitSettled(ctx, c, s.ID, wait)
		if err != nil {
			return err
		}
	}
	return render(s)
}

func waitSettled(ctx context.Context, c *apiclient.Client, id string, wait time.Duration) (*apiclient.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		s, err := c.GetSession(ctx, id, 0, 0)
		if err != nil {
			return nil, err
		}
		if s.State.Settled() {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return s, nil
		case <-ticker.C:
		}
	}
}

func render(s *apiclient.Session) error {
	if jsonOutput() {
		return outputJSON(s)
	}
	return printSession(os.Stdout, s)
}
