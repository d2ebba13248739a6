package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/sunweg-integration/cmd"
)

func main() {
	app := &cli.App{
		Name:  "sunweg",
		Usage: "poll and publish SunWEG solar plant data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "poll SunWEG on a schedule, store and publish the readings and serve the HTTP API",
				Action: cmd.SunwegCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen-addr",
						EnvVars: []string{"LISTEN_ADDR"},
						Value:   "0.0.0.0:8000",
					},
					&cli.StringFlag{
						Name:    "poll-schedule",
						EnvVars: []string{"POLL_SCHEDULE"},
						Value:   "*/5 * * * *",
					},
				},
			},
			{
				Name:   "plants",
				Usage:  "print every plant with its inverters as JSON",
				Action: cmd.PlantsCommand,
			},
			{
				Name:   "stats",
				Usage:  "print the daily production of a month as JSON",
				Action: cmd.StatsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "plant",
						Required: true,
					},
					&cli.IntFlag{
						Name: "inverter",
					},
					&cli.IntFlag{
						Name: "year",
					},
					&cli.IntFlag{
						Name: "month",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
