package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"flame/cli/internal/apperr"
	"flame/cli/internal/domain/download"
	"flame/cli/internal/domain/upload"
	"flame/cli/internal/formatter"
	"flame/cli/internal/output"
)

func newUpCommand(app *App) *cobra.Command {
	var (
		data string
		opts upload.Options
	)
	cmd := &cobra.Command{
		Use:   "up <path>",
		Short: "Upload a JSON document or array of documents",
		Long: "Upload a JSON object to a document path, or a JSON array to a collection path.\n" +
			"Data comes from --data or stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := data
			if !cmd.Flags().Changed("data") {
				b, err := io.ReadAll(app.In)
				if err != nil {
					return err
				}
				raw = string(b)
			}
			return app.up(cmd.Context(), args[0], raw, opts)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "document JSON (default: read stdin)")
	cmd.Flags().BoolVarP(&opts.Merge, "merge", "m", false, "merge into existing documents instead of overwriting")
	cmd.Flags().StringVar(&opts.IDField, "id-field", "", "field holding each document's id")
	return cmd
}

func (a *App) up(ctx context.Context, path, raw string, opts upload.Options) error {
	st, err := a.Store()
	if err != nil {
		return err
	}
	log := a.Logger()
	res, err := upload.NewService(st, log).Upload(ctx, path, raw, opts)
	if res == nil {
		return a.report("upload document", err)
	}

	if res.Multi {
		log.Info(printer.Sprintf("Upload complete! %d of %d document(s) written to %s", res.Succeeded(), len(res.Items), res.Target))
		return a.report("upload document", err)
	}
	item := res.Items[0]
	log.Info("Document " + item.Path + " written at " + item.WriteTime.Local().Format("3:04:05 PM MST"))
	return a.report("upload document", err)
}

func newDownCommand(app *App) *cobra.Command {
	var (
		opts   download.Options
		format string
		out    string
		sign   signOptions
	)
	cmd := &cobra.Command{
		Use:   "down <path>",
		Short: "Download a document or a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatter.ParseFormat(format)
			if err != nil {
				return err
			}
			loc, err := output.ParseLocation(out)
			if err != nil {
				return err
			}
			if sign.As != "" && loc.Bucket == "" {
				return fmt.Errorf("%w: --sign-as needs a gs:// --out", apperr.ErrValidation)
			}
			return app.down(cmd.Context(), args[0], opts, f, loc, sign)
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "maximum number of documents to fetch from a collection")
	cmd.Flags().BoolVar(&opts.IncludeID, "doc-id", false, "include the document id as _id")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file or gs://bucket/object instead of stdout")
	cmd.Flags().StringVar(&sign.As, "sign-as", "", "service account email to sign a download URL for a gs:// export")
	cmd.Flags().DurationVar(&sign.TTL, "url-ttl", output.DefaultURLTTL, "lifetime of the signed URL (max 1h)")
	return cmd
}

type signOptions struct {
	As  string
	TTL time.Duration
}

func (a *App) down(ctx context.Context, path string, opts download.Options, f formatter.Format, loc output.Location, sign signOptions) error {
	st, err := a.Store()
	if err != nil {
		return err
	}
	log := a.Logger()
	res, err := download.NewService(st, log).Download(ctx, path, opts)
	if err != nil {
		return a.report("fetch", err)
	}

	if res.Empty {
		log.Warn("No documents found in collection: " + res.Path)
	} else if !res.Single {
		log.Info(printer.Sprintf("Found %d document(s) in %s", res.Count(), res.Path))
	}

	b, err := formatter.Render(res.Rendered, f)
	if err != nil {
		return a.report("fetch", err)
	}
	if f == formatter.FormatJSON {
		b = append(b, '\n')
	}
	contentType := "application/json"
	if f == formatter.FormatYAML {
		contentType = "application/yaml"
	}
	if err := output.Write(ctx, loc, a.Out, a.storage(), b, contentType); err != nil {
		return a.report("write output", err)
	}
	if loc != (output.Location{}) {
		log.Info("Wrote output to " + loc.String())
	}
	if sign.As == "" {
		return nil
	}
	url, exp, err := output.SignedURL(ctx, a.signer(), loc, sign.As, sign.TTL)
	if err != nil {
		return a.report("sign URL", err)
	}
	fmt.Fprintln(a.Out, url)
	log.Info("Signed URL valid until " + exp.Local().Format("3:04:05 PM MST"))
	return nil
}
