package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/export"
)

// exportCommand copies the normalized collections into MongoDB.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		uri      string
		database string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export normalized collections to MongoDB",
		Long: `Export upserts every enabled collection into MongoDB, one collection per
kind, keyed by ATT&CK id. Running it again replaces the stored documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if uri == "" {
				uri = c.cfg.Mongo.URI
			}
			if database == "" {
				database = c.cfg.Mongo.Database
			}
			if uri == "" {
				return apperrors.New(apperrors.ErrCodeInvalidConfig, "no MongoDB URI; set mongo.uri or pass --mongo-uri")
			}

			snap, err := c.loadSnapshot(ctx)
			if err != nil {
				return err
			}

			sink, err := export.NewMongoSink(ctx, uri, database)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = sink.Close(closeCtx)
			}()

			logger := loggerFromContext(ctx)
			sw := startStopwatch(logger)
			res, err := export.Export(ctx, sink, snap, c.cfg.Kinds(), logger)
			if err != nil {
				return err
			}
			sw.done("exported dataset", "version", snap.Version, "database", database)

			printSuccess("Exported ATT&CK %s to %s", StyleHighlight.Render(snap.Version), database)
			for _, k := range attack.Kinds {
				if n, ok := res[k.Plural()]; ok {
					printDetail("%-12s %d", k.Plural(), n)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "mongo-uri", "", "MongoDB connection URI (default from config)")
	cmd.Flags().StringVar(&database, "database", "", "database name (default attack)")
	return cmd
}
