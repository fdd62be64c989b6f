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
		Use:   "job-resource-out <src-dir>",
		Short: "Post the executor's outputs back to the job service",
		Long: `Reads {"source": ..., "params": ...} as JSON on stdin, resolves the
file slots named in params against src-dir, and issues the resulting
status update to the job service. The service's terminal-state lock
decides whether the status change takes effect.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req resource.OutRequest
			if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
				return fmt.Errorf("decode stdin: %w", err)
			}

			resp, err := resource.Out(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(resp)
		},
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
