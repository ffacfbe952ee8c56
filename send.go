package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/ipc"
	"github.com/sadopc/zenfocus/internal/notify"
)

var sendCmd = &cobra.Command{
	Use:   "send <command>",
	Short: "Send a command to the running timer",
	Long: `Send a command to the running zenfocus instance.

Commands: ` + strings.Join(control.CommandNames(), ", ") + `

The command is posted to the host API. When the API cannot be reached the
command is dropped into the signals directory instead, where the running
instance picks it up.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: control.CommandNames(),
	RunE:      runSend,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer's state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, logger, err := cliContext()
	if err != nil {
		return err
	}
	name := args[0]
	if _, err := control.ParseCommand(name); err != nil {
		return fmt.Errorf("%w: %q (want one of %s)", err, name, strings.Join(control.CommandNames(), ", "))
	}

	addr := cfg.IPC.Address
	if addr == "" {
		addr = ipc.DefaultAddress()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
	defer cancel()

	err = ipc.Send(ctx, addr, name)
	if err == nil {
		printStatus("✓", fmt.Sprintf("%s sent", name), color.FgGreen)
		return nil
	}
	logger.Debug().Err(err).Str("addr", addr).Msg("host api unreachable")

	if err := ipc.DropSignal(cfg.IPC.SignalsDir, name); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	printStatus("⚠", fmt.Sprintf("%s queued in %s", name, cfg.IPC.SignalsDir), color.FgYellow)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := cliContext()
	if err != nil {
		return err
	}
	addr := cfg.IPC.Address
	if addr == "" {
		addr = ipc.DefaultAddress()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
	defer cancel()

	st, err := ipc.State(ctx, addr)
	if err != nil {
		printStatus("✗", "zenfocus is not running", color.FgRed)
		return nil
	}
	displayStatus(st)
	return nil
}

func displayStatus(st notify.Status) {
	bold := color.New(color.Bold)
	if !st.Active {
		fmt.Println("No session. Press space in zenfocus or run 'zenfocus send new-session'.")
		return
	}
	if st.Complete {
		printStatus("✓", fmt.Sprintf("Session complete (%d rounds)", st.TotalRounds), color.FgGreen)
		return
	}

	state := color.GreenString("playing")
	if !st.Playing {
		state = color.YellowString("paused")
	}
	phaseColor := color.New(color.FgCyan)
	if st.Rest {
		phaseColor = color.New(color.FgGreen)
	}

	remaining := time.Duration(st.RemainingSeconds) * time.Second
	fmt.Printf("%s  %s  %s\n",
		phaseColor.Sprint(st.Phase),
		bold.Sprintf("%02d:%02d", int(remaining.Minutes()), int(remaining.Seconds())%60),
		state,
	)
	round := fmt.Sprintf("Round %d of %d", st.Round, st.TotalRounds)
	if st.LastRound {
		round += " (last)"
	}
	fmt.Printf("%s  %s\n", round, color.HiBlackString("%.0f%%", st.Progress*100))
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
