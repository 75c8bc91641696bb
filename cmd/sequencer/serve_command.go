package main

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"artwork-sequencer/internal/server"
	"artwork-sequencer/internal/share"
	"artwork-sequencer/internal/version"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the sharing server",
		Long: `Serve runs the HTTP transfer layer: shareable live viewers, saved results
with downloads, and stateless render and report endpoints. Shared entries
expire after [server] retention_days and are capped at max_items.`,
		Example: `  # Listen on the configured address
  sequencer serve

  # Listen on a custom port
  sequencer serve --bind :3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			addr := cfg.Server.Bind
			if strings.TrimSpace(bind) != "" {
				addr = bind
			}
			style, err := cfg.Style()
			if err != nil {
				return err
			}

			policy := share.Policy{MaxAge: cfg.Retention(), MaxItems: cfg.Server.MaxItems}
			store, err := share.Open(cfg.Server.DataDir, policy)
			if err != nil {
				return err
			}
			defer store.Close()

			janitor := share.NewJanitor(store, cfg.CleanupInterval())
			janitor.OnSweep(func(rep share.SweepReport) {
				slog.Info("scheduled cleanup", "removed", rep.Removed(),
					"expired_viewers", rep.ExpiredViewers, "expired_results", rep.ExpiredResults)
			})
			janitor.Start()
			defer janitor.Stop()

			if cfg.Server.MDNS {
				port, err := portOf(addr)
				if err != nil {
					return err
				}
				adv, err := server.Advertise(cfg.Server.MDNSService, port, "Artwork Sequencer "+version.Version)
				if err != nil {
					return err
				}
				defer adv.Shutdown()
				slog.Info("advertising on local network", "service", cfg.Server.MDNSService, "port", port)
			}

			srv := server.New(store, server.Options{
				Style:           style,
				ExportTimeout:   cfg.ExportTimeout(),
				MaxUploadBytes:  cfg.MaxUploadBytes(),
				PublicBaseURL:   cfg.Server.PublicBaseURL,
				CleanupInterval: cfg.CleanupInterval(),
				NextCleanup:     janitor.NextRun,
				Version:         version.Version,
			})
			slog.Info("sequencer server starting", "addr", addr, "data_dir", cfg.Server.DataDir,
				"retention_days", cfg.Server.RetentionDays, "max_items", cfg.Server.MaxItems)
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&bind, "bind", "b", "", "Listen address (default from [server] bind)")
	return cmd
}

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find sequencer servers on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			peers, err := server.Browse(cfg.Server.MDNSService, timeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(peers) == 0 {
				fmt.Fprintln(out, "No servers found")
				return nil
			}
			rows := make([][]string, 0, len(peers))
			for _, p := range peers {
				rows = append(rows, []string{p.Name, p.Addr, strings.Join(p.Info, " ")})
			}
			fmt.Fprintln(out, renderTable([]string{"Name", "Address", "Info"}, rows))
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 2*time.Second, "How long to listen for answers")
	return cmd
}

func portOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("parse bind address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("bind address %q has no fixed port", addr)
	}
	return port, nil
}
