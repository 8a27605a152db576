// The qfg5-scan command decodes every resource found in a set of files and
// directories, and reports which ones fail.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/qfg5tools/qfg5"
	_ "github.com/qfg5tools/qfg5/anm"
	_ "github.com/qfg5tools/qfg5/gra"
	_ "github.com/qfg5tools/qfg5/img"
	_ "github.com/qfg5tools/qfg5/mdl"
	_ "github.com/qfg5tools/qfg5/nod"
	_ "github.com/qfg5tools/qfg5/qgf"
	_ "github.com/qfg5tools/qfg5/qgm"
	_ "github.com/qfg5tools/qfg5/rgd"
	"github.com/qfg5tools/qfg5/spk"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const usage = `usage: qfg5-scan [FLAGS] PATH...

Decodes every resource under each PATH, and writes to stdout a JSON report with
one result per resource. Directories are walked recursively. Archives (SPK) are
opened, and each of their entries is decoded as well. Files with an extension
that is not a known format are skipped.

A resource that fails to decode does not stop the scan. The exit status is 1 if
any resource failed.

Flags:
`

// Result is the outcome of decoding one resource.
type Result struct {
	// Path locates the resource. Entries of an archive are named
	// ARCHIVE:ENTRY.
	Path    string
	Format  string
	Warning string `json:",omitempty"`
	Error   string `json:",omitempty"`
}

// Scanner decodes resources concurrently and collects the results.
type Scanner struct {
	g       errgroup.Group
	mu      sync.Mutex
	results []Result
}

// NewScanner returns a Scanner that decodes at most jobs resources at once.
func NewScanner(jobs int) *Scanner {
	if jobs < 1 {
		jobs = 1
	}
	s := &Scanner{}
	s.g.SetLimit(jobs)
	return s
}

func (s *Scanner) add(r Result) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
}

func formatOf(name string) (qfg5.Format, bool) {
	return qfg5.LookupFormat(filepath.Ext(name))
}

// decode queues the resource returned by read for decoding with f.
func (s *Scanner) decode(path string, f qfg5.Format, read func() ([]byte, error)) {
	s.g.Go(func() error {
		r := Result{Path: path, Format: f.Name()}
		b, err := read()
		if err == nil {
			var warn error
			_, warn, err = f.Decode(b)
			if warn != nil {
				r.Warning = warn.Error()
			}
		}
		if err != nil {
			r.Error = err.Error()
			log.Debug().Err(err).Msgf("%s", path)
		}
		s.add(r)
		return nil
	})
}

// scanArchive queues every entry of the archive at path.
func (s *Scanner) scanArchive(path string) (closer io.Closer) {
	a, warn, err := spk.OpenFile(path)
	r := Result{Path: path, Format: "spk"}
	if warn != nil {
		r.Warning = warn.Error()
	}
	if err != nil {
		r.Error = err.Error()
		s.add(r)
		return nil
	}
	s.add(r)
	for _, e := range a.Entries() {
		f, ok := formatOf(e.Name)
		if !ok {
			continue
		}
		e := e
		s.decode(path+":"+e.Name, f, func() ([]byte, error) {
			return a.ReadEntry(e)
		})
	}
	return a
}

// Scan walks root and queues every resource found.
func (s *Scanner) Scan(root string) (closers []io.Closer, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".spk") {
			if c := s.scanArchive(path); c != nil {
				closers = append(closers, c)
			}
			return nil
		}
		f, ok := formatOf(path)
		if !ok {
			return nil
		}
		s.decode(path, f, func() ([]byte, error) {
			return os.ReadFile(path)
		})
		return nil
	})
	return closers, err
}

// Wait waits for every queued resource and returns the results sorted by path.
func (s *Scanner) Wait() []Result {
	s.g.Wait()
	sort.Slice(s.results, func(i, j int) bool {
		return s.results[i].Path < s.results[j].Path
	})
	return s.results
}

func main() {
	verbose := flag.Bool("v", false, "log debug messages")
	jobs := flag.Int("j", runtime.NumCPU(), "number of resources to decode concurrently")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	s := NewScanner(*jobs)
	var closers []io.Closer
	for _, root := range flag.Args() {
		c, err := s.Scan(root)
		closers = append(closers, c...)
		if err != nil {
			log.Error().Err(err).Msgf("scan %s", root)
		}
	}
	results := s.Wait()
	for _, c := range closers {
		c.Close()
	}

	var failed int
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	je := json.NewEncoder(os.Stdout)
	je.SetIndent("", "\t")
	if err := je.Encode(results); err != nil {
		log.Error().Err(err).Msg("write report")
	}
	log.Info().Msgf("decoded %d resources, %d failed", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
