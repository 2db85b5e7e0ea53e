package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/obsidian-level/wad"
	"github.com/obsidian-level/wad/internal/config"
	"github.com/obsidian-level/wad/mapdata"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		logrus.Fatalln(err)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	var (
		cfg config.Config
		log *logrus.Logger
	)

	openWAD := func(c *cli.Context) (*wad.WAD, error) {
		filename := c.Args().First()
		if filename == "" {
			return nil, errors.New("missing WAD file argument")
		}
		return wad.Open(filename, cfg.WADOptions(log)...)
	}

	return &cli.App{
		Name:      "wadinfo",
		Usage:     "Inspect the directory and levels of a WAD archive",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "TOML config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: trace, debug, info, warning, error",
			},
			&cli.StringSliceFlag{
				Name:  "level-lump",
				Usage: "Extra lump name grouped under level markers, repeatable",
			},
		},
		Before: func(c *cli.Context) error {
			cfg = config.Default()
			if path := c.String("config"); path != "" {
				var err error
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}
			if level := c.String("log-level"); level != "" {
				cfg.LogLevel = level
			}
			cfg.LevelLumps = append(cfg.LevelLumps, c.StringSlice("level-lump")...)

			var err error
			log, err = cfg.Logger(c.App.ErrWriter)
			if err != nil {
				return err
			}
			mapdata.SetLogger(log)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "dir",
				Usage:     "List the directory",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					w, err := openWAD(c)
					if err != nil {
						return err
					}
					defer w.Close()
					return printDirectory(c.App.Writer, w)
				},
			},
			{
				Name:      "levels",
				Usage:     "List the levels and their lumps",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					w, err := openWAD(c)
					if err != nil {
						return err
					}
					defer w.Close()
					return printLevels(c.App.Writer, w)
				},
			},
			{
				Name:      "dump",
				Usage:     "Write the bytes of one lump",
				ArgsUsage: "FILE LUMP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "level",
						Usage: "Only search the lumps of this level",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, default stdout",
					},
				},
				Action: func(c *cli.Context) error {
					lump := c.Args().Get(1)
					if lump == "" {
						return errors.New("missing lump name argument")
					}
					w, err := openWAD(c)
					if err != nil {
						return err
					}
					defer w.Close()

					data, err := readLump(w, c.String("level"), lump)
					if err != nil {
						return err
					}
					if path := c.String("output"); path != "" {
						return errors.Wrap(os.WriteFile(path, data, 0o644), "write lump")
					}
					_, err = c.App.Writer.Write(data)
					return err
				},
			},
			{
				Name:      "stats",
				Usage:     "Decode a level and print record counts",
				ArgsUsage: "FILE [LEVEL]",
				Action: func(c *cli.Context) error {
					w, err := openWAD(c)
					if err != nil {
						return err
					}
					defer w.Close()

					name := c.Args().Get(1)
					if name == "" {
						name = wad.AnyLevel
					}
					return printStats(c.App.Writer, w, name)
				},
			},
		},
	}
}

func lumpFlags(li wad.LumpInfo) string {
	switch {
	case li.IsLevel():
		return "level"
	case li.Flags&wad.FlagLevelData != 0:
		return "data"
	}
	return "-"
}

func printDirectory(out io.Writer, w *wad.WAD) error {
	h := w.Header()
	fmt.Fprintf(out, "%v, %v lumps, directory at %v\n", h.Variant, h.NumLumps, h.InfoTableOfs)

	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPOS\tSIZE\tFLAGS\tCHILDREN")
	for i, li := range w.Lumps() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%d\n", i, li.Name, li.Filepos, li.Size, lumpFlags(li), li.Children)
	}
	return tw.Flush()
}

func printLevels(out io.Writer, w *wad.WAD) error {
	for _, idx := range w.Levels() {
		lumps, err := w.LevelLumps(idx)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(lumps)-1)
		for _, li := range lumps[1:] {
			names = append(names, li.Name)
		}
		fmt.Fprintf(out, "%s\t%d\t%s\n", lumps[0].Name, idx, strings.Join(names, " "))
	}
	return nil
}

func readLump(w *wad.WAD, level, name string) ([]byte, error) {
	if level == "" {
		return w.ReadLump(name)
	}
	idx, ok := w.FindLevel(level)
	if !ok {
		return nil, errors.Errorf("level %s not found", level)
	}
	return w.ReadLevelLump(idx, name)
}

func printStats(out io.Writer, w *wad.WAD, name string) error {
	idx, ok := w.FindLevel(name)
	if !ok {
		return errors.Errorf("level %s not found", name)
	}
	level, err := mapdata.Load(w, idx)
	if err != nil {
		return err
	}
	marker, _ := w.Lump(idx)
	s := level.Stats()
	fmt.Fprintf(out, "%s: %d things, %d lines, %d sides, %d vertexes, %d sectors (%d secret)\n",
		marker.Name, s.Things, s.Lines, s.Sides, s.Vertexes, s.Sectors, s.Secrets)
	if box, ok := level.Bounds(); ok {
		fmt.Fprintf(out, "bounds: x %v..%v, y %v..%v\n", box.Left, box.Right, box.Bottom, box.Top)
	}
	return nil
}
