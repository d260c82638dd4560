package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/mscrnt/vdisplay/pkg/db"
	"github.com/mscrnt/vdisplay/pkg/drm"
	"github.com/mscrnt/vdisplay/pkg/session"
	"github.com/spf13/cobra"
)

var (
	connectWidth     int
	connectHeight    int
	connectRefreshHz int
)

func connectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect a virtual display",
		Long: `Generate an EDID for the requested mode, override an unused connector
with it, turn every other display off and the virtual display on.
Requires root and a mounted debugfs.

Example:
  # Connect with resolution from Sunshine
  sudo vdisplay connect --width 1920 --height 1080 --refresh-rate 60`,
		RunE: runConnect,
	}

	cmd.Flags().IntVar(&connectWidth, "width", 0, "Display width in pixels")
	cmd.Flags().IntVar(&connectHeight, "height", 0, "Display height in pixels")
	cmd.Flags().IntVar(&connectRefreshHz, "refresh-rate", 60, "Refresh rate in Hz")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

func runConnect(cmd *cobra.Command, _ []string) error {
	if err := drm.RequireRoot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr, closeFn := newSessionManager(cmd.OutOrStdout())
	defer closeFn()

	_, err := mgr.Connect(ctx, connectWidth, connectHeight, connectRefreshHz)
	return err
}

func disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the virtual display",
		Long: `Turn the virtual display off and restore the displays that were
connected before "vdisplay connect". Requires root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := drm.RequireRoot(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mgr, closeFn := newSessionManager(cmd.OutOrStdout())
			defer closeFn()

			_, err := mgr.Disconnect(ctx)
			return err
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the connected virtual display",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			state, err := session.LoadState(cfg.StatePath())
			if errors.Is(err, session.ErrNoState) {
				fmt.Fprintln(out, "No virtual display connected")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Virtual display: %s\n", state.Connector())
			fmt.Fprintf(out, "Previous displays: %s\n", formatPorts(state.Previous))

			database, err := openHistory()
			if err != nil {
				log.Printf("History disabled: %v", err)
				return nil
			}
			defer func() { _ = database.Close() }()

			sess, err := database.ActiveSession(state.Card, state.Port)
			if errors.Is(err, db.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Connected since: %s\n", sess.ConnectedAt.Local().Format(timeFormat))
			if sess.EDIDUID != "" {
				fmt.Fprintf(out, "EDID: %s\n", sess.EDIDUID)
			}
			return nil
		},
	}
}
