package cli

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/retail-inventory/jobs"
)

func newJobsCommand(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage background jobs",
	}

	var top int
	flags := map[string]cobraflags.Flag{redisFlag: redisFlagDef()}
	trigger := &cobra.Command{
		Use:       "trigger <name>",
		Short:     "Enqueue a background job with its default payload",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{jobs.TaskAnalyticsWarmup, jobs.TaskLowStockScan},
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, closeFn := env.OpenQueue(flags[redisFlag].GetString())
			if closeFn != nil {
				defer func() { _ = closeFn() }()
			}
			info, err := queue.Trigger(cmd.Context(), args[0], top)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(env.Stdout, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return err
		},
	}
	cobraflags.RegisterMap(trigger, flags)
	trigger.Flags().IntVar(&top, "top", 0, "Top-sellers limit for the analytics warmup (0 uses the worker default)")

	cmd.AddCommand(trigger)
	return cmd
}
