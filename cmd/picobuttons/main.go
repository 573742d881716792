// picobuttons - client-side buttons for chat messages
// License: MIT
//
// Copyright (c) 2026 picobuttons contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal"
	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal/configcmd"
	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal/demo"
	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal/gateway"
	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal/version"
)

func NewPicobuttonsCommand() *cobra.Command {
	short := fmt.Sprintf("%s picobuttons - client-side message buttons v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "picobuttons",
		Short:   short,
		Example: "picobuttons demo",
	}

	cmd.AddCommand(
		demo.NewDemoCommand(),
		gateway.NewGatewayCommand(),
		configcmd.NewConfigCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewPicobuttonsCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
