package main

import (
	"context"
	"fmt"

	"github.com/desertmoss/linkhive/internal/formatter"
	"github.com/desertmoss/linkhive/internal/shared"
	"github.com/desertmoss/linkhive/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Progress prints the completion percentage for an import job.
func (r *Runner) Progress(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("job")
	if jobID == "" {
		return fmt.Errorf("%w: import job ID", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd.String("config"))
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	tracker := r.buildTracker(db, config)
	pct, err := tracker.Percentage(jobID)
	if err != nil {
		return err
	}

	status := tasks.StatusProcessing
	if pct >= 100 {
		status = tasks.StatusCompleted
	}

	return r.writePlainln("%s", formatter.RenderProgress(jobID, pct, status))
}
