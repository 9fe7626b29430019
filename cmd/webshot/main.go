// Package main provides the webshot command line tool: a task runner
// that drives a headless browser through user-scripted tasks and
// collects the screenshots they take.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/entrhq/webshot/pkg/browser"
	"github.com/entrhq/webshot/pkg/config"
	"github.com/entrhq/webshot/pkg/jsengine"
	"github.com/entrhq/webshot/pkg/logging"
	"github.com/entrhq/webshot/pkg/runner"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "webshot",
		Usage:   "drive a headless browser through scripted tasks and collect screenshots",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultFileName,
				Usage:   "path to the project config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level (trace, debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			profilesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "webshot: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a profile's tasks",
		ArgsUsage: "[glob...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "profile",
				Aliases:  []string{"p"},
				Usage:    "profile to run",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   "maximum number of tasks running at once",
			},
			&cli.BoolFlag{
				Name:  "headful",
				Usage: "show the browser window while tasks run",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	profile, err := cfg.Profile(c.String("profile"))
	if err != nil {
		return err
	}

	factory, err := logging.NewFactory(logging.Config{Level: c.String("log-level")})
	if err != nil {
		return err
	}

	headful := c.Bool("headful")
	summary, err := runner.Run(c.Context, runner.Options{
		Profile: profile,
		Logging: factory,
		Loader:  jsengine.NewLoader(),
		Launch: func() (browser.Browser, error) {
			return browser.Launch(browser.LaunchOptions{Headless: !headful})
		},
		Patterns:       c.Args().Slice(),
		MaxConcurrency: c.Int("concurrency"),
	})
	if err != nil {
		return err
	}

	fmt.Println(renderSummary(profile.Name(), summary))
	return nil
}

func profilesCommand() *cli.Command {
	return &cli.Command{
		Name:  "profiles",
		Usage: "list the profiles defined in the config file",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			for _, name := range cfg.ProfileNames() {
				profile, err := cfg.Profile(name)
				if err != nil {
					return err
				}
				fmt.Println(renderProfile(profile))
			}
			return nil
		},
	}
}
