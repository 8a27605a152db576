// The qfg5-dump command displays the content of a resource file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/img"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: qfg5-dump [FLAGS] INPUT [OUTPUT]

Decodes the resource file INPUT, and writes to OUTPUT a JSON summary of its
content. The format is chosen from the extension of INPUT unless -format is
given. Background images (ZZZ) carry no dimensions; they require -companion,
the path to the raster image (IMG) whose dimensions they share.

If OUTPUT is "-" or unspecified, then stdout is used. Warnings and errors are
written to stderr.

Flags:
`

func main() {
	var (
		verbose   = flag.Bool("v", false, "log debug messages")
		format    = flag.String("format", "", "format of INPUT, overriding its extension")
		full      = flag.Bool("full", false, "write the complete decoded value instead of a summary")
		companion = flag.String("companion", "", "raster image providing the dimensions of a background image")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		fmt.Fprintf(flag.CommandLine.Output(), "\nFormats: %s, zzz\n", strings.Join(qfg5.Formats(), ", "))
		flag.PrintDefaults()
	}
	flag.Parse()
	setupLog(*verbose)

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}
	name := *format
	if name == "" {
		name = filepath.Ext(args[0])
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("read input")
	}
	v, warn, err := decode(name, b, *companion)
	if warn != nil {
		log.Warn().Err(warn).Msg("decoded with warnings")
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("decode %s", args[0])
	}

	var output io.Writer = os.Stdout
	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("create output")
		}
		defer out.Close()
		output = out
	}
	if !*full {
		v = summarize(v)
	}
	je := json.NewEncoder(output)
	je.SetIndent("", "\t")
	if err := je.Encode(v); err != nil {
		log.Error().Err(err).Msg("write output")
	}
}

func setupLog(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// decode decodes b with the format registered for name. Background images are
// handled separately, since they depend on a companion file.
func decode(name string, b []byte, companion string) (v interface{}, warn, err error) {
	if strings.EqualFold(strings.TrimPrefix(name, "."), "zzz") {
		if companion == "" {
			return nil, nil, fmt.Errorf("background image requires -companion")
		}
		cb, err := os.ReadFile(companion)
		if err != nil {
			return nil, nil, err
		}
		c, err := img.Decode(cb)
		if err != nil {
			return nil, nil, fmt.Errorf("companion: %w", err)
		}
		log.Debug().Msgf("background dimensions %dx%d from %s", c.Width, c.Height, companion)
		m, err := img.DecodeBackground(b, c)
		return m, nil, err
	}
	f, ok := qfg5.LookupFormat(name)
	if !ok {
		return nil, nil, fmt.Errorf("unknown format %q", name)
	}
	log.Debug().Msgf("decoding %d bytes as %s", len(b), f.Name())
	return f.Decode(b)
}
