// Package main is the entry point for the complexprof CLI application.
package main

import (
	"context"
	"fmt"
	"os"

	pcli "github.com/NikitaCOEUR/complexprof/internal/cli"
	"github.com/NikitaCOEUR/complexprof/pkg/version"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "complexprof",
		Usage:                 "In-process complexity and latency profiler",
		Version:               version.String(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error), overrides the config file",
				Sources: cli.EnvVars("COMPLEXPROF_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (defaults to .complexprof.* in the current directory)",
				Sources: cli.EnvVars("COMPLEXPROF_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "demo",
				Usage: "Measure sample spans and append the result to a report log",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "label",
						Usage: "Report label (writes complexity_<label>.log)",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory for the report log",
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: 0,
						Usage: "Number of goroutines measuring a shared prove point",
					},
					&cli.IntFlag{
						Name:  "iterations",
						Value: 100,
						Usage: "Samples taken by each worker",
					},
					&cli.DurationFlag{
						Name:  "work",
						Value: 0,
						Usage: "Time spent inside each worker sample",
					},
					&cli.BoolFlag{
						Name:  "short",
						Usage: "Skip the one second sample",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return pcli.Demo(pcli.DemoParams{
						ConfigPath: cmd.String("config"),
						LogLevel:   cmd.String("log-level"),
						Label:      cmd.String("label"),
						Dir:        cmd.String("dir"),
						Workers:    int(cmd.Int("workers")),
						Iterations: int(cmd.Int("iterations")),
						Work:       cmd.Duration("work"),
						Short:      cmd.Bool("short"),
					})
				},
			},
			{
				Name:      "view",
				Usage:     "Render a report log",
				ArgsUsage: "[label|path]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory holding the report log",
					},
					&cli.BoolFlag{
						Name:  "last",
						Usage: "Show only the most recent flush",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return pcli.View(pcli.ViewParams{
						ConfigPath: cmd.String("config"),
						Target:     cmd.Args().Get(0),
						Dir:        cmd.String("dir"),
						Last:       cmd.Bool("last"),
					})
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a complexprof configuration file",
				ArgsUsage: "[config-file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					configPath := cmd.String("config")
					if cmd.Args().Len() > 0 {
						configPath = cmd.Args().Get(0)
					}
					return pcli.Validate(configPath, nil)
				},
			},
			{
				Name:      "schema",
				Usage:     "Display or export the JSON Schema for complexprof configuration files",
				ArgsUsage: "[output-file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (prints to stdout if not specified)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					outputPath := cmd.String("output")
					if outputPath == "" && cmd.Args().Len() > 0 {
						outputPath = cmd.Args().Get(0)
					}
					return pcli.Schema(outputPath, nil)
				},
			},
			{
				Name:  "init",
				Usage: "Create a sample .complexprof.yml in the current folder",
				Action: func(_ context.Context, _ *cli.Command) error {
					return pcli.Init("", nil)
				},
			},
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Println(version.String())
					return nil
				},
			},
		},
	}
}
