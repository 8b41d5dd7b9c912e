package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"zimage/internal/app/api"
	"zimage/internal/app/pages"
)

func workerRows(workers []api.Worker) Rows {
	c := pages.CountWorkers(workers)
	r := Rows{
		Headers: []string{"ID", "Name", "Status", "Busy", "GPU", "Last seen"},
		Footer:  fmt.Sprintf("%d workers · %d online · %d busy · %d idle", c.Total, c.Online, c.Busy, c.Idle),
	}
	for _, w := range workers {
		gpu := "-"
		if w.GPUInfo != nil {
			gpu = fmt.Sprintf("%s (%.0f GB)", w.GPUInfo.Name, w.GPUInfo.MemoryGB)
		}
		r.Rows = append(r.Rows, []string{w.ID, w.Name, w.Status, yesNo(w.IsBusy), gpu, w.LastSeenAt})
	}
	return r
}

func (a *app) workersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "workers", Short: "Monitor the GPU workers"}

	var watch bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List registered workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := pages.NewWorkers(a.deps.API.Workers, a.deps.Confirm)
			workers, err := w.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.printer.Print(workers, func() Rows { return workerRows(workers) }); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			// Runs until interrupted.
			w.Watch(cmd.Context(), a.deps.Config.Poll.Workers, func(workers []api.Worker) {
				_ = a.printer.Print(workers, func() Rows { return workerRows(workers) })
			})
			return nil
		},
	}
	list.Flags().BoolVar(&watch, "watch", false, "keep refreshing until interrupted")

	del := &cobra.Command{
		Use:   "delete <worker-id>",
		Short: "Unregister a worker (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := pages.NewWorkers(a.deps.API.Workers, a.deps.Confirm)
			if err := w.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printer.Message("Deleted worker %s.", args[0])
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}
