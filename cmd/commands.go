package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dargueta/bilevel"
	"github.com/dargueta/bilevel/utilities/compression"
	"github.com/urfave/cli/v2"
)

func rasterFromFlags(context *cli.Context) (*bilevel.Raster, error) {
	raster, err := bilevel.NewRaster(
		context.Int("width"), context.Int("height"), context.Int("subset-rows"))
	if err != nil {
		return nil, err
	}
	if padding := context.Int("padding"); padding >= 0 {
		err = raster.SetPadding(padding)
	}
	return raster, err
}

func optionsFromFlags(context *cli.Context) bilevel.Options {
	return bilevel.NoOptions.
		With(bilevel.LineHeaders, context.Bool("headers")).
		With(bilevel.OneLine, context.Bool("one-line"))
}

// openFiles opens the input and output files named by the command's two
// positional arguments.
func openFiles(context *cli.Context) (*os.File, *os.File, error) {
	if context.NArg() != 2 {
		return nil, nil, cli.Exit(
			fmt.Sprintf("expected 2 arguments, got %d", context.NArg()), 1)
	}

	sourceFilePath := context.Args().Get(0)
	outputFilePath := context.Args().Get(1)

	sourceFile, err := os.Open(sourceFilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open `%s` for reading: %w", sourceFilePath, err)
	}

	outFile, err := os.Create(outputFilePath)
	if err != nil {
		sourceFile.Close()
		return nil, nil, fmt.Errorf("failed to open `%s` for writing: %w", outputFilePath, err)
	}
	return sourceFile, outFile, nil
}

func compressImage(context *cli.Context) error {
	raster, err := rasterFromFlags(context)
	if err != nil {
		return err
	}
	options := optionsFromFlags(context)
	indexPath := context.Path("index")
	if indexPath != "" {
		options |= bilevel.LineIndexing
	}

	sourceFile, outFile, err := openFiles(context)
	if err != nil {
		return err
	}
	defer sourceFile.Close()
	defer outFile.Close()

	nWritten, index, err := compression.CompressImage(sourceFile, outFile, raster, options)
	if err != nil {
		return fmt.Errorf("error compressing file: %w", err)
	}
	fmt.Printf("Compressed input file to %d bytes.\n", nWritten)

	if index == nil {
		return nil
	}
	indexFile, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("failed to open `%s` for writing: %w", indexPath, err)
	}
	defer indexFile.Close()
	return index.WriteCSV(indexFile)
}

func decompressImage(context *cli.Context) error {
	raster, err := rasterFromFlags(context)
	if err != nil {
		return err
	}

	sourceFile, outFile, err := openFiles(context)
	if err != nil {
		return err
	}
	defer sourceFile.Close()
	defer outFile.Close()

	nWritten, err := compression.DecompressImage(
		sourceFile, outFile, raster, optionsFromFlags(context))
	if err != nil {
		return fmt.Errorf("error expanding file: %w", err)
	}
	fmt.Printf("Expanded input file to %d bytes.\n", nWritten)
	return nil
}

func reframeImage(context *cli.Context) error {
	raster, err := rasterFromFlags(context)
	if err != nil {
		return err
	}
	from := optionsFromFlags(context)
	to := from.With(bilevel.LineHeaders, context.Bool("to-headers"))

	sourceFile, outFile, err := openFiles(context)
	if err != nil {
		return err
	}
	defer sourceFile.Close()
	defer outFile.Close()

	nWritten, err := compression.ReframeImage(sourceFile, outFile, raster, from, to)
	if err != nil {
		return fmt.Errorf("error reframing file: %w", err)
	}
	fmt.Printf("Wrote %d bytes.\n", nWritten)
	return nil
}

func probeImage(context *cli.Context) error {
	if context.NArg() != 1 {
		return cli.Exit(fmt.Sprintf("expected 1 argument, got %d", context.NArg()), 1)
	}

	data, err := os.ReadFile(context.Args().First())
	if err != nil {
		return err
	}

	size, err := compression.GetSizeOf(data, context.Int("width"), context.Int("rows"))
	if err != nil {
		return err
	}
	fmt.Printf("%d rows occupy %d of %d bytes.\n", context.Int("rows"), size, len(data))
	return nil
}

func showRow(context *cli.Context) error {
	if context.NArg() != 1 {
		return cli.Exit(fmt.Sprintf("expected 1 argument, got %d", context.NArg()), 1)
	}

	index := compression.NewLineIndex(context.Int("height"))
	indexFile, err := os.Open(context.Path("index"))
	if err != nil {
		return err
	}
	defer indexFile.Close()
	err = index.ReadCSV(indexFile)
	if err != nil {
		return fmt.Errorf("error loading line index: %w", err)
	}

	sourceFile, err := os.Open(context.Args().First())
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	width := context.Int("width")
	stream := compression.NewRowStream(sourceFile, index, width, context.Bool("headers"), 0)
	row := make([]byte, (width+7)/8)
	err = stream.ReadRow(context.Int("row"), row)
	if err != nil {
		return err
	}

	text := bytes.Buffer{}
	for x := 0; x < width; x++ {
		if row[x/8]&(0x80>>uint(x%8)) != 0 {
			text.WriteByte('#')
		} else {
			text.WriteByte('.')
		}
	}
	fmt.Println(text.String())
	return nil
}
