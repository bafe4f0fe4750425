package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export a game as a score sheet or a progression chart",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "game-id", Required: true, Usage: "game to export"},
			&cli.StringFlag{Name: "format", Value: "xlsx", Usage: "xlsx or png"},
			&cli.StringFlag{Name: "out", Value: "-", Usage: "output file, - for stdout"},
		},
		Action: func(c *cli.Context) error {
			gameID, err := uuid.Parse(c.String("game-id"))
			if err != nil {
				return fmt.Errorf("invalid game id %q: %w", c.String("game-id"), err)
			}
			format := c.String("format")
			if format != "xlsx" && format != "png" {
				return fmt.Errorf("unknown format %q, want xlsx or png", format)
			}

			a, release, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer release()

			var data []byte
			if format == "xlsx" {
				data, err = a.Export.ScoreSheet(c.Context, gameID)
			} else {
				data, err = a.Export.ProgressionChart(c.Context, gameID)
			}
			if err != nil {
				return err
			}
			return writeOutput(c.String("out"), c.App.Writer, data)
		},
	}
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
