// The qfg5-spk command lists and extracts the entries of an SPK archive.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/qfg5tools/qfg5/spk"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

const usage = `usage: qfg5-spk [FLAGS] list ARCHIVE
       qfg5-spk [FLAGS] extract ARCHIVE DIR [NAME...]

The list command writes to stdout the name, offset and length of each entry of
ARCHIVE. With -sum, a BLAKE2b-256 digest of the content of each entry is
included.

The extract command writes entries of ARCHIVE as files under DIR. If any NAME
is given, only the entries with those names are extracted. Names are matched
without regard to case.

Warnings and errors are written to stderr.

Flags:
`

func main() {
	var (
		verbose = flag.Bool("v", false, "log debug messages")
		sum     = flag.Bool("sum", false, "include a digest of each entry when listing")
		jobs    = flag.Int("j", runtime.NumCPU(), "number of entries to extract concurrently")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	setupLog(*verbose)

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		os.Exit(2)
	}

	a, warn, err := spk.OpenFile(args[1])
	if warn != nil {
		log.Warn().Err(warn).Msg("archive has warnings")
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("open archive %s", args[1])
	}
	defer a.Close()
	log.Debug().Msgf("opened %s with %d entries", args[1], len(a.Entries()))

	switch args[0] {
	case "list":
		err = list(os.Stdout, a, *sum)
	case "extract":
		if len(args) < 3 {
			flag.Usage()
			os.Exit(2)
		}
		err = extract(a, args[2], args[3:], *jobs)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg(args[0])
	}
}

func setupLog(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func digest(b []byte) string {
	h := blake2b.Sum256(b)
	return hex.EncodeToString(h[:])
}

func list(w io.Writer, a *spk.Archive, sum bool) error {
	for _, e := range a.Entries() {
		if !sum {
			fmt.Fprintf(w, "%-32s %10d %10d\n", e.Name, e.Offset, e.Length)
			continue
		}
		b, err := a.ReadEntry(e)
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name, err)
		}
		fmt.Fprintf(w, "%-32s %10d %10d %s\n", e.Name, e.Offset, e.Length, digest(b))
	}
	return nil
}

// selectEntries returns the entries named by names, or every entry when names
// is empty.
func selectEntries(a *spk.Archive, names []string) ([]spk.Entry, error) {
	if len(names) == 0 {
		return a.Entries(), nil
	}
	entries := make([]spk.Entry, 0, len(names))
	for _, name := range names {
		e, ok := a.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("no entry named %q", name)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// entryPath returns the path under dir where e is written. Names that would
// escape dir are rejected.
func entryPath(dir string, e spk.Entry) (string, error) {
	name := filepath.FromSlash(strings.ReplaceAll(e.Name, "\\", "/"))
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("entry name %q is not a local path", e.Name)
	}
	return filepath.Join(dir, name), nil
}

func extract(a *spk.Archive, dir string, names []string, jobs int) error {
	entries, err := selectEntries(a, names)
	if err != nil {
		return err
	}
	if jobs < 1 {
		jobs = 1
	}
	var g errgroup.Group
	g.SetLimit(jobs)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			path, err := entryPath(dir, e)
			if err != nil {
				return err
			}
			b, err := a.ReadEntry(e)
			if err != nil {
				return fmt.Errorf("read %s: %w", e.Name, err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return err
			}
			log.Debug().Msgf("extracted %s (%d bytes, %s)", path, len(b), digest(b))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msgf("extracted %d entries to %s", len(entries), dir)
	return nil
}
