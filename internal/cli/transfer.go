package cli

import (
	"context"

	"github.com/spf13/cobra"

	"flame/cli/internal/domain/deletion"
	"flame/cli/internal/domain/transfer"
)

func newCopyCommand(app *App) *cobra.Command {
	var req transfer.Request
	cmd := &cobra.Command{
		Use:     "copy <source> <destination>",
		Aliases: []string{"cp"},
		Short:   "Copy a document to another document path",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Source, req.Destination = args[0], args[1]
			return app.copy(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&req.IDField, "id-field", "", "field to receive the destination document id")
	return cmd
}

func (a *App) copy(ctx context.Context, req transfer.Request) error {
	st, err := a.Store()
	if err != nil {
		return err
	}
	out, err := transfer.NewService(st, a.Logger()).Copy(ctx, req)
	if err != nil {
		return a.report("copy", err)
	}
	a.Logger().Info("Copied document " + out.Source + " to " + out.Destination + "!")
	return nil
}

func newMoveCommand(app *App) *cobra.Command {
	var req transfer.Request
	cmd := &cobra.Command{
		Use:     "move <source> <destination>",
		Aliases: []string{"mv"},
		Short:   "Move a document to another document path atomically",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Source, req.Destination = args[0], args[1]
			return app.move(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&req.IDField, "id-field", "", "field to receive the destination document id")
	return cmd
}

func (a *App) move(ctx context.Context, req transfer.Request) error {
	st, err := a.Store()
	if err != nil {
		return err
	}
	out, err := transfer.NewService(st, a.Logger()).Move(ctx, req)
	if err != nil {
		return a.report("move", err)
	}
	a.Logger().Info("Moved document " + out.Source + " to " + out.Destination + "!")
	return nil
}

func newDeleteCommand(app *App) *cobra.Command {
	var opts deletion.Options
	cmd := &cobra.Command{
		Use:     "delete <path>",
		Aliases: []string{"rm"},
		Short:   "Delete a document or every document in a collection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.delete(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.StopOnError, "stop-on-error", false, "stop deleting a collection at the first failure")
	return cmd
}

func (a *App) delete(ctx context.Context, path string, opts deletion.Options) error {
	st, err := a.Store()
	if err != nil {
		return err
	}
	l, err := a.Config()
	if err != nil {
		return err
	}
	log := a.Logger()
	res, err := deletion.NewService(st, a.prompter(), l.Config.Environment(), log).Delete(ctx, path, opts)
	if res == nil {
		return a.report("delete", err)
	}

	switch {
	case res.Cancelled:
		log.Info("Deletion cancelled.")
	case res.Empty:
		log.Warn("No documents found in collection: " + res.Path)
	case res.Kind == "document":
		log.Info("Document " + res.Path + " deleted successfully.")
	default:
		log.Info(printer.Sprintf("Deleted %d document(s) from collection %s.", res.Deleted, res.Path))
	}
	return a.report("delete", err)
}
