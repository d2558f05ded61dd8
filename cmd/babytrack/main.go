// Command babytrack records baby-care events against the tracking
// service from the command line, using the same building and posting
// path as the voice front-end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"babytrack/internal/builder"
	"babytrack/internal/config"
	"babytrack/internal/credential"
	"babytrack/internal/dispatch"
	"babytrack/internal/journal"
	"babytrack/internal/logging"
	"babytrack/internal/model"
	"babytrack/internal/tracker"
)

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "babytrack",
		Short: "Record diaper, formula, and nursing events to Baby Tracker",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(false, logging.ParseLevel(logLevel))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(babiesCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func recordCmd() *cobra.Command {
	var slotArgs []string

	cmd := &cobra.Command{
		Use:   "record [intent]",
		Short: "Record one event (Pee, Poo, Mixed, Diaper, Formula, Nursing)",
		Long: `Record one event using an intent name and its slots.

Examples:
  babytrack record Pee
  babytrack record Diaper --slot DiaperType=mixed
  babytrack record Formula --slot Amount=4 --slot Unit=ounces
  babytrack record Nursing --slot Duration=PT15M --slot Side=left`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cfg.HasStaticCredentials() {
				return fmt.Errorf("email and password must be configured to record from the command line")
			}

			slots, err := parseSlots(slotArgs)
			if err != nil {
				return err
			}

			recorder, closeJournal, err := newRecorder(cfg)
			if err != nil {
				return err
			}
			defer closeJournal()

			d := dispatch.New(builder.New(cfg.Babies), recorder)
			resp := d.Dispatch(context.Background(), args[0], slots, credential.StaticResolver{
				Email:    cfg.Email,
				Password: cfg.Password,
				DeviceID: cfg.DeviceID,
			})

			fmt.Println(resp.Speech)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&slotArgs, "slot", nil, "slot value as name=value (repeatable)")

	return cmd
}

func babiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "babies",
		Short: "List the configured babies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if len(cfg.Babies) == 0 {
				fmt.Println("no babies configured")
				return nil
			}
			for _, b := range cfg.Babies {
				fmt.Printf("%s  dob=%s  gender=%s\n", b.Name, b.DOB, b.Gender)
			}
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded events from the local journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.JournalPath == "" {
				return fmt.Errorf("journal_path is not configured")
			}

			j, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no events recorded yet")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  sync=%d  %s  %s\n",
					e.RecordedAt.Format("2006-01-02 15:04"), e.SyncID, e.ObjectType, e.Baby)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show")

	return cmd
}

// newRecorder builds the sync client, wrapped with the local journal when
// one is configured. The returned func closes the journal; it is a no-op
// otherwise.
func newRecorder(cfg config.Config) (dispatch.Recorder, func(), error) {
	client := tracker.New(cfg.BaseURL, tracker.WithTimeout(cfg.RequestTimeout()))
	if cfg.JournalPath == "" {
		return client, func() {}, nil
	}
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return nil, nil, err
	}
	return &journaledRecorder{client: client, journal: j}, func() { j.Close() }, nil
}

// journaledRecorder appends each successfully posted transaction to the
// local journal. Journal failures are logged, never surfaced: the event
// already reached the service.
type journaledRecorder struct {
	client  *tracker.Client
	journal *journal.Journal
}

func (r *journaledRecorder) Record(ctx context.Context, event model.Event, creds credential.Credentials) (tracker.Receipt, error) {
	receipt, err := r.client.Record(ctx, event, creds)
	if err != nil {
		return receipt, err
	}
	if jerr := r.journal.Append(event, receipt.SyncID, receipt.Payload); jerr != nil {
		slog.Warn("journal append failed", "object_id", event.Head().ObjectID, "error", jerr)
	}
	return receipt, nil
}

func parseSlots(args []string) (map[string]string, error) {
	slots := make(map[string]string, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid slot %q, want name=value", a)
		}
		slots[name] = value
	}
	return slots, nil
}
