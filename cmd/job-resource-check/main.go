package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bindery/internal/resource"
)

func main() {
	root := &cobra.Command{
		Use:   "job-resource-check",
		Short: "Report job ids newer than the orchestrator's cursor",
		Long: `Reads the resource source (and optional version cursor) as JSON on
stdin, asks the job service for matching jobs, and writes the ordered
list of new job ids as JSON on stdout.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req resource.CheckRequest
			if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
				return fmt.Errorf("decode stdin: %w", err)
			}

			versions, err := resource.Check(cmd.Context(), req)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(versions)
		},
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
