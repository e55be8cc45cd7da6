package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/dargueta/bilevel/utilities/compression"
	"github.com/urfave/cli/v2"
)

func main() {
	cli := cli.App{
		Name:  "bilevel",
		Usage: "Compress and inspect 1-bit raster images in RLE1 format",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log codec diagnostics to stderr",
			},
		},
		Before: configureLogging,
		Commands: []*cli.Command{
			{
				Name:      "compress",
				Usage:     "Compress a packed bitmap",
				Action:    compressImage,
				ArgsUsage: "BITMAP_FILE  RLE_FILE",
				Flags: append(
					imageFlags(),
					&cli.PathFlag{
						Name:  "index",
						Usage: "write the line index to this CSV file",
					},
				),
			},
			{
				Name:      "decompress",
				Usage:     "Expand a compressed image to a packed bitmap",
				Action:    decompressImage,
				ArgsUsage: "RLE_FILE  BITMAP_FILE",
				Flags:     imageFlags(),
			},
			{
				Name:      "reframe",
				Usage:     "Add or strip line headers without decoding the image",
				Action:    reframeImage,
				ArgsUsage: "RLE_FILE  OUTPUT_FILE",
				Flags: append(
					imageFlags(),
					&cli.BoolFlag{
						Name:  "to-headers",
						Usage: "write line headers to the output",
					},
				),
			},
			{
				Name:      "probe",
				Usage:     "Print the size of the first rows of a header-less stream",
				Action:    probeImage,
				ArgsUsage: "RLE_FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Usage: "image width in pixels", Required: true},
					&cli.IntFlag{Name: "rows", Usage: "number of rows to measure", Required: true},
				},
			},
			{
				Name:      "row",
				Usage:     "Draw a single row of a compressed image using its line index",
				Action:    showRow,
				ArgsUsage: "RLE_FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Usage: "image width in pixels", Required: true},
					&cli.IntFlag{Name: "height", Usage: "image height in pixels", Required: true},
					&cli.IntFlag{Name: "row", Usage: "0-based row to draw", Required: true},
					&cli.PathFlag{Name: "index", Usage: "line index CSV file", Required: true},
					&cli.BoolFlag{Name: "headers", Usage: "rows have line headers"},
				},
			},
		},
	}

	err := cli.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func configureLogging(context *cli.Context) error {
	if context.Bool("verbose") {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		compression.SetLogger(slog.New(handler))
	}
	return nil
}

// imageFlags returns the flags describing the image geometry and stream
// framing shared by every command that processes a whole image.
func imageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "width", Usage: "image width in pixels", Required: true},
		&cli.IntFlag{Name: "height", Usage: "image height in pixels", Required: true},
		&cli.IntFlag{Name: "subset-rows", Usage: "rows processed per codec call", Value: 64},
		&cli.IntFlag{
			Name:  "padding",
			Usage: "padding bits at the end of each row (default: pad to a byte)",
			Value: -1,
		},
		&cli.BoolFlag{Name: "headers", Usage: "rows have line headers"},
		&cli.BoolFlag{Name: "one-line", Usage: "each subset is encoded as a single row"},
	}
}
