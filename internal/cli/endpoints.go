package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/pipeline"
)

var probeTimeout time.Duration

// endpointsCmd represents the endpoints command
var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List configured endpoints and probe their health",
	Long: `Endpoints lists every configured query endpoint, marks the
default, and runs a lightweight text search against each to check
reachability.

Example:
  sciencelive endpoints
  sciencelive endpoints --probe-timeout 5s`,
	RunE: runEndpoints,
}

func init() {
	rootCmd.AddCommand(endpointsCmd)
	endpointsCmd.Flags().DurationVar(&probeTimeout, "probe-timeout", 10*time.Second, "per-endpoint probe timeout")
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	manager := p.Manager()
	defaultName := manager.DefaultName()

	for _, name := range manager.Names() {
		ep, err := manager.Get(name)
		if err != nil {
			return err
		}

		marker := " "
		if name == defaultName {
			marker = "*"
		}

		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		_, probeErr := ep.SearchText(ctx, "nanopublication", 1)
		cancel()

		status := "ok"
		if probeErr != nil {
			status = "unreachable"
			if verbose {
				fmt.Fprintf(os.Stderr, "probe %s: %v\n", name, probeErr)
			}
		}
		fmt.Printf("%s %-24s %s\n", marker, name, status)
	}
	return nil
}
