// The qfg5-export command converts resources into common file formats.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/anm"
	"github.com/qfg5tools/qfg5/export"
	"github.com/qfg5tools/qfg5/gra"
	"github.com/qfg5tools/qfg5/img"
	"github.com/qfg5tools/qfg5/mdl"
	"github.com/qfg5tools/qfg5/nod"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: qfg5-export [FLAGS] INPUT OUTPUT

Converts the resource file INPUT, chosen by its extension:

    img, zzz  written to the BMP file OUTPUT. Pixels are coloured with the
              palette table given by -palette, or in grey. A background image
              (zzz) requires -companion.
    gra       every frame written as a BMP file in the directory OUTPUT,
              coloured with the palette of the atlas.
    mdl       written to the binary glTF file OUTPUT. With -anm, submeshes are
              posed with frame -frame of the animation. Texture atlases are
              written next to OUTPUT as BMP files.

Warnings and errors are written to stderr.

Flags:
`

type options struct {
	palette   string
	companion string
	anim      string
	frame     int
}

func main() {
	var opt options
	verbose := flag.Bool("v", false, "log debug messages")
	flag.StringVar(&opt.palette, "palette", "", "palette table (NOD) used to colour images")
	flag.StringVar(&opt.companion, "companion", "", "raster image providing the dimensions of a background image")
	flag.StringVar(&opt.anim, "anm", "", "animation (ANM) used to pose a model")
	flag.IntVar(&opt.frame, "frame", 0, "keyframe of the animation")
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

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(args[0], args[1], opt); err != nil {
		log.Fatal().Err(err).Msgf("export %s", args[0])
	}
}

func run(input, output string, opt options) error {
	b, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input), ".")); ext {
	case "img", "zzz":
		return exportImage(ext, b, output, opt)
	case "gra":
		return exportAtlas(b, output)
	case "mdl":
		return exportModel(b, output, opt)
	default:
		return fmt.Errorf("cannot export format %q", ext)
	}
}

func readFile(path string, decode func([]byte) error) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := decode(b); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeBitmap(path string, width, height int, pixels []byte, pal *qfg5.Palette) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteBitmap(f, width, height, pixels, pal); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Msgf("wrote %s (%dx%d)", path, width, height)
	return f.Close()
}

func exportImage(ext string, b []byte, output string, opt options) error {
	var pal *qfg5.Palette
	if opt.palette != "" {
		err := readFile(opt.palette, func(b []byte) error {
			t, err := nod.Decode(b)
			if err == nil {
				pal = &t.Palette
			}
			return err
		})
		if err != nil {
			return err
		}
	}

	var m *img.Image
	var err error
	if ext == "zzz" {
		if opt.companion == "" {
			return fmt.Errorf("background image requires -companion")
		}
		var c *img.Image
		err = readFile(opt.companion, func(b []byte) (err error) {
			c, err = img.Decode(b)
			return err
		})
		if err != nil {
			return err
		}
		m, err = img.DecodeBackground(b, c)
	} else {
		m, err = img.Decode(b)
	}
	if err != nil {
		return err
	}
	return writeBitmap(output, m.Width, m.Height, m.Pixels, pal)
}

func exportAtlas(b []byte, dir string) error {
	a, err := gra.Decode(b)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, c := range a.Collections {
		for j, s := range c.Sprites {
			path := filepath.Join(dir, fmt.Sprintf("collection-%03d-frame-%03d.bmp", i, j))
			if err := writeBitmap(path, int(c.Width), int(c.Height), s.Pixels, &a.Palette); err != nil {
				return err
			}
		}
	}
	return nil
}

func exportModel(b []byte, output string, opt options) error {
	m, warn, err := mdl.Decode(b)
	if warn != nil {
		log.Warn().Err(warn).Msg("model has warnings")
	}
	if err != nil {
		return err
	}

	var pose *export.Pose
	if opt.anim != "" {
		pose = &export.Pose{Frame: opt.frame}
		err := readFile(opt.anim, func(b []byte) (err error) {
			pose.Track, err = anm.Decode(b)
			return err
		})
		if err != nil {
			return err
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := export.WriteModel(f, m, pose); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	base := strings.TrimSuffix(output, filepath.Ext(output))
	for i, sb := range m.SubBitmaps {
		path := fmt.Sprintf("%s-subbitmap-%d.bmp", base, i)
		if err := writeBitmap(path, sb.Width, sb.Height, sb.Pixels, nil); err != nil {
			return err
		}
	}
	log.Info().Msgf("wrote %s with %d submeshes", output, len(m.SubMeshes))
	return nil
}
