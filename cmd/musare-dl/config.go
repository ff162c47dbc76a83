package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/musare/musare-dl/internal/config"
	"github.com/urfave/cli/v3"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a configuration file with the default settings",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:  "path",
				Usage: "Print the default configuration file location",
				Action: func(context.Context, *cli.Command) error {
					fmt.Println(config.DefaultPath())
					return nil
				},
			},
		},
	}
}

func runConfigInit(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return errors.New("no user config directory, pass --config")
	}

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := config.DefaultSettings().Save(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Println("Wrote", path)
	return nil
}
