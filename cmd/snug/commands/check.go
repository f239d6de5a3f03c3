package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chris/snug/internal/llm"
)

const checkTimeout = 10 * time.Second

func newCheckCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			client, err := llm.NewClient(cfg.ProviderConfig())
			if err != nil {
				return &llm.ConfigError{Field: "provider", Reason: err.Error()}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			start := time.Now()
			if err := client.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s backend is reachable (%s)\n",
				cfg.Provider, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
