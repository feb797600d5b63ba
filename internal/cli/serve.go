package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	"github.com/redcanaryco/vscode-attack/pkg/dataset"
	"github.com/redcanaryco/vscode-attack/pkg/observability"
	"github.com/redcanaryco/vscode-attack/pkg/server"
)

// serveCommand exposes the lookups over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookups over HTTP",
		Long: `Serve loads the dataset once and answers search, item and sub-technique
requests as JSON. POST /api/reload reruns the freshness check and swaps in
the new dataset without interrupting requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			snap, err := c.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			store := &attack.Store{}
			store.Swap(snap)

			dir, err := c.datasetDir()
			if err != nil {
				return err
			}
			svc, err := c.newServices(ctx, dataset.LogNotifier{Logger: loggerFromContext(ctx)})
			if err != nil {
				return err
			}
			defer svc.Close()

			srv := server.New(server.Options{
				Store: store,
				Reload: func(ctx context.Context) (*attack.Dataset, error) {
					return svc.orchestrator.CacheData(ctx, dir)
				},
				Search:         c.cfg.SearchOptions(),
				Kinds:          c.cfg.Kinds(),
				Description:    c.cfg.DescriptionLength(),
				Insert:         c.cfg.Insert(),
				AllowedOrigins: c.cfg.Server.AllowedOrigins,
				ReloadInterval: c.cfg.Server.ReloadInterval,
				Logger:         c.Logger,
			})

			restore := observability.Install(observability.NewMetrics(srv.Registry()))
			defer restore()

			printSuccess("Serving ATT&CK %s on %s", StyleHighlight.Render(snap.Version), StyleLink.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}
