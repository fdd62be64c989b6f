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
		Use:   "job-resource-in <dest-dir>",
		Short: "Materialize a job's parameters as files for the executor",
		Long: `Reads {"source": ..., "version": {"id": ...}} as JSON on stdin,
fetches that job from the service, and writes its parameters as typed
file slots (id, collection_id, version, collection_style,
content_server, job.json) into dest-dir.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req resource.InRequest
			if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
				return fmt.Errorf("decode stdin: %w", err)
			}

			resp, err := resource.In(cmd.Context(), args[0], req)
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
