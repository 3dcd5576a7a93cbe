package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/lcs/internal/transport/httpapi"
	"github.com/example/lcs/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	Long:  "Expose the governance engine over HTTP with session-cookie authentication",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = wire.Cfg().Listen()
		}

		srv := httpapi.New(wire.Default())
		fmt.Printf("Listening on http://%s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (defaults to config listen_addr)")
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return serveCmd
}
