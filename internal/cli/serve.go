package cli

import (
	"github.com/spf13/cobra"

	"github.com/fkolbe/jigsaw/internal/server"
)

// serveCommand creates the serve command running the HTTP splitting service.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP splitting service",
		Long: `Serve runs an HTTP service exposing the splitter. POST an image with
grid parameters to /v1/split and receive a zip archive of the pieces
plus a manifest.json locating each piece in the source image.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if addr == "" {
				addr = c.Config.Serve.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Serving on %s", addr)
			return server.New(addr, runner, c.Logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the piece cache")

	return cmd
}
