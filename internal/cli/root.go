package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flame/cli/internal/apperr"
)

var Version = "dev"

// NewRootCommand builds the flame command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "flame",
		Short:         "Read, write, copy, move and delete Firestore documents",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&app.Dir, "dir", app.Dir, "directory to discover the flame/firebase config from")

	root.AddCommand(
		newInitCommand(app),
		newStatusCommand(app),
		newUseCommand(app),
		newUpCommand(app),
		newDownCommand(app),
		newDeleteCommand(app),
		newCopyCommand(app),
		newMoveCommand(app),
		newCollectionsCommand(app),
	)
	return root
}

// report turns an engine error into a log line. Only configuration errors
// are returned, so that they end the process with a non-zero status.
func (a *App) report(action string, err error) error {
	if err == nil {
		return nil
	}
	log := a.Logger()
	var batch *apperr.PartialBatchError
	switch {
	case apperr.IsConfig(err):
		return err
	case errors.As(err, &batch):
		log.Warn(printer.Sprintf("%d of %d document(s) failed", batch.Failed(), batch.Total))
		for _, f := range batch.Failures {
			log.Warn(f.Error())
		}
	case apperr.IsNotFound(err):
		log.Warn(err.Error())
	case apperr.IsPartialMove(err):
		log.Error(fmt.Sprintf("Failed to %s, document left at both paths", action), zap.Error(err))
	default:
		log.Error(fmt.Sprintf("Failed to %s: %v", action, err))
	}
	return nil
}
