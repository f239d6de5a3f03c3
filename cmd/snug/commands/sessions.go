package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/chris/snug/config"
	"github.com/chris/snug/internal/session"
)

func newSessionsCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, f, func(ctx context.Context, cfg *config.Config, store session.Store) error {
				infos, err := store.List(ctx)
				if err != nil {
					return err
				}
				if cfg.Output == "json" {
					return writeSessionsJSON(cmd, infos, f.pretty)
				}
				if len(infos) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTURNS\tUPDATED\tSIZE")
				for _, info := range infos {
					size := "-"
					if info.Size > 0 {
						size = humanize.Bytes(uint64(info.Size))
					}
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", info.ID, info.Turns, humanize.Time(info.ModTime), size)
				}
				return tw.Flush()
			})
		},
	}
	cmd.AddCommand(newSessionsShowCmd(f), newSessionsRmCmd(f))
	return cmd
}

func newSessionsShowCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved session's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, f, func(ctx context.Context, _ *config.Config, store session.Store) error {
				turns, err := store.Load(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for i, t := range turns {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "User: %s\n\nAssistant: %s\n", t.User, t.Assistant)
				}
				return nil
			})
		},
	}
}

func newSessionsRmCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete saved sessions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, f, func(ctx context.Context, _ *config.Config, store session.Store) error {
				for _, id := range args {
					if err := store.Delete(ctx, id); err != nil {
						return fmt.Errorf("deleting session %s: %w", id, err)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "deleted %s\n", id)
				}
				return nil
			})
		},
	}
}

// withStore loads the configuration, opens the session store and calls fn.
func withStore(cmd *cobra.Command, f *flags, fn func(context.Context, *config.Config, session.Store) error) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, cfg, store)
}

func writeSessionsJSON(cmd *cobra.Command, infos []session.Info, prettyPrint bool) error {
	doc := []byte(`{"sessions":[]}`)
	for i, info := range infos {
		prefix := fmt.Sprintf("sessions.%d.", i)
		var err error
		if doc, err = sjson.SetBytes(doc, prefix+"id", info.ID); err != nil {
			return err
		}
		doc, _ = sjson.SetBytes(doc, prefix+"turns", info.Turns)
		doc, _ = sjson.SetBytes(doc, prefix+"updated", info.ModTime.Format(time.RFC3339))
		if info.Size > 0 {
			doc, _ = sjson.SetBytes(doc, prefix+"size", info.Size)
		}
	}
	if prettyPrint {
		doc = pretty.Pretty(doc)
	} else {
		doc = append(doc, '\n')
	}
	_, err := cmd.OutOrStdout().Write(doc)
	return err
}
