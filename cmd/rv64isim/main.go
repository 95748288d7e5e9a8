package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/rv64isim/rv64i-sim/internal/cpu"
	"github.com/rv64isim/rv64i-sim/internal/report"
)

func main() {
	app := &cli.App{
		Name:      "rv64isim",
		Usage:     "run a flat RV64I + Zicsr binary image to completion",
		ArgsUsage: "<binary-path>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "max-steps",
				Usage: "stop after this many cycles (0 = unbounded)",
			},
			&cli.BoolFlag{
				Name:  "dump-registers",
				Usage: "print the register file before and after the run",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "dump-memory",
				Usage: "include a hex dump of the loaded memory region before the run",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "emit the final snapshot as JSON instead of text",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "log each executed cycle at debug level",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("expected exactly one argument: the path to a binary image", 2)
	}
	path := ctx.Args().Get(0)

	image, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	level := slog.LevelInfo
	if ctx.Bool("trace") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c := cpu.New(image, logger)

	if ctx.Bool("dump-registers") {
		fmt.Println("-- initial state --")
		printSnapshot(c, 0, false)
	}
	if ctx.Bool("dump-memory") {
		fmt.Println("-- initial memory --")
		if err := c.Mem.Dump(os.Stdout, uint64(len(image))); err != nil {
			return errors.Wrap(err, "dumping memory")
		}
	}

	steps := c.Run(ctx.Uint64("max-steps"))

	fmt.Println("-- final state --")
	printSnapshot(c, steps, ctx.Bool("json"))

	if err := c.Err(); err != nil {
		return cli.Exit(fmt.Sprintf("run halted on fault: %v", err), 1)
	}
	return nil
}

func printSnapshot(c *cpu.CPU, steps uint64, asJSON bool) {
	snap := report.Capture(c, steps)
	if asJSON {
		_ = report.WriteJSON(os.Stdout, snap)
		return
	}
	_ = report.WriteText(os.Stdout, snap)
}
