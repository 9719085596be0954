package cli

import (
	"fmt"

	"github.com/mobile-next/qrscan/daemon"
	"github.com/mobile-next/qrscan/server"
	"github.com/mobile-next/qrscan/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the qrscan server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the qrscan server",
	Long:  `Starts the JSON-RPC server on /rpc and /ws. WebSocket clients also receive selection and scan events.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("listen") {
			cfg.Server.Listen, _ = cmd.Flags().GetString("listen")
		}
		if cmd.Flags().Changed("cors") {
			cfg.Server.CORS, _ = cmd.Flags().GetBool("cors")
		}

		listenAddr, err := server.NormalizeAddr(cfg.Server.Listen)
		if err != nil {
			return err
		}

		// GetBool cannot fail for defined flags
		isDaemon, _ := cmd.Flags().GetBool("daemon")

		if isDaemon && !daemon.IsChild() {
			if err := utils.CheckListenAddr(listenAddr); err != nil {
				return fmt.Errorf("cannot listen on %s: %w", listenAddr, err)
			}

			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		hub := server.NewHub(cfg.Events.Retries, cfg.Events.RetryBackoff)
		svc, err := newService(cfg, hub)
		if err != nil {
			return err
		}

		return server.New(svc, hub, cfg.Server.CORS).ListenAndServe(cmd.Context(), listenAddr)
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized qrscan server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			addr = cfg.Server.Listen
		}

		err := daemon.KillServer(addr)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12100' or '0.0.0.0:13000')")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", "Address of server to kill (default from config)")
}
