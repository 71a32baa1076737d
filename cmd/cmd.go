// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// runCommand drives the main backfill pass
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Process job ids from the watermark up to the newest visible job",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "from",
				Usage: "Override the starting job id (default: persisted watermark)",
			},
			&cli.IntFlag{
				Name:  "to",
				Usage: "Cap the job id range (default: newest job in the list)",
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "Run the browser headless",
				Value: true,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: r.Run,
	}
}

// trackerCommand inspects and resets the watermark
func trackerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracker",
		Usage: "Watermark operations",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the current watermark",
				Flags:  []cli.Flag{configFlag()},
				Action: r.TrackerShow,
			},
			{
				Name:  "reset",
				Usage: "Overwrite the watermark",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:     "to",
						Usage:    "Job id to resume from",
						Required: true,
					},
				},
				Action: r.TrackerReset,
			},
		},
	}
}

// historyCommand lists recent run outcomes
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent processing outcomes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand initializes config and the history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the history database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}
