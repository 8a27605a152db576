package main

import (
	"fmt"

	"github.com/qfg5tools/qfg5/anm"
	"github.com/qfg5tools/qfg5/gra"
	"github.com/qfg5tools/qfg5/img"
	"github.com/qfg5tools/qfg5/mdl"
	"github.com/qfg5tools/qfg5/nod"
	"github.com/qfg5tools/qfg5/qgf"
	"github.com/qfg5tools/qfg5/qgm"
	"github.com/qfg5tools/qfg5/rgd"
)

type ImageSummary struct {
	Width, Height int
}

type PaletteSummary struct {
	Version uint8
	Colors  []string
}

type CollectionSummary struct {
	X, Y, Width, Height uint32
	Frames              int
	FrameDelay          uint32
	Flags               uint32
}

type AtlasSummary struct {
	Mode        gra.ColorMode
	Collections []CollectionSummary
}

type FontSummary struct {
	MaxWidth, Height, Spacing int
	Is3D                      bool
	// Glyphs is the number of glyphs with a non-zero width.
	Glyphs int
}

type SubMeshSummary struct {
	Name                       string
	Vertices, TexCoords, Faces int
}

type ModelSummary struct {
	Name       string
	SubMeshes  []SubMeshSummary
	SubBitmaps []ImageSummary
}

type TrackSummary struct {
	Magic  string
	Name   string
	Delay  uint32
	Anims  int
	Blocks int
}

type MessageSummary struct {
	Encoded   string
	ID        [4]uint16
	SpeakerID uint16
	MessageID uint16
	Mangled   bool     `json:",omitempty"`
	Label     string   `json:",omitempty"`
	Options   []string `json:",omitempty"`
	Text      string
}

type DialogueSummary struct {
	ID       uint16
	Version  uint32
	Messages []MessageSummary
}

type GraphSummary struct {
	Points, Vectors, Segments, RegionIDs, Regions int
	Unvalidated                                   rgd.Unvalidated
}

// summarize returns a compact representation of a decoded value, omitting
// pixel and vertex data. Values of unknown types are returned unchanged.
func summarize(v interface{}) interface{} {
	switch v := v.(type) {
	case *img.Image:
		return ImageSummary{Width: v.Width, Height: v.Height}

	case *nod.Table:
		s := PaletteSummary{Version: v.Version, Colors: make([]string, len(v.Palette))}
		for i, c := range v.Palette {
			s.Colors[i] = c.String()
		}
		return s

	case *gra.Atlas:
		s := AtlasSummary{Mode: v.Mode}
		for _, c := range v.Collections {
			s.Collections = append(s.Collections, CollectionSummary{
				X: c.X, Y: c.Y, Width: c.Width, Height: c.Height,
				Frames:     len(c.Sprites),
				FrameDelay: c.FrameDelay,
				Flags:      c.Flags,
			})
		}
		return s

	case *qgf.Font:
		s := FontSummary{MaxWidth: v.MaxWidth, Height: v.Height, Spacing: v.Spacing, Is3D: v.Is3D}
		for _, g := range v.Glyphs {
			if g.Width > 0 {
				s.Glyphs++
			}
		}
		return s

	case *mdl.Model:
		s := ModelSummary{Name: v.Name}
		for _, sm := range v.SubMeshes {
			s.SubMeshes = append(s.SubMeshes, SubMeshSummary{
				Name:      sm.Name,
				Vertices:  len(sm.Vertices),
				TexCoords: len(sm.TexCoords),
				Faces:     len(sm.Faces),
			})
		}
		for _, sb := range v.SubBitmaps {
			s.SubBitmaps = append(s.SubBitmaps, ImageSummary{Width: sb.Width, Height: sb.Height})
		}
		return s

	case *anm.Track:
		s := TrackSummary{
			Magic: fmt.Sprintf("0x%08x", v.Magic),
			Name:  v.Name,
			Delay: v.Delay,
			Anims: len(v.Anims),
		}
		if len(v.Anims) > 0 {
			s.Blocks = len(v.Anims[0].Blocks)
		}
		return s

	case *qgm.File:
		s := DialogueSummary{ID: v.ID, Version: v.Version}
		for i := range v.Messages {
			m := &v.Messages[i]
			ms := MessageSummary{
				ID:        m.ID,
				SpeakerID: m.SpeakerID,
				MessageID: m.MessageID,
				Mangled:   m.Mangled(),
				Text:      m.Text,
			}
			if enc, err := v.Encode(m); err == nil {
				ms.Encoded = enc
			} else {
				ms.Encoded = err.Error()
			}
			if m.Label != nil {
				ms.Label = m.Label.String()
			}
			for _, o := range m.Options {
				ms.Options = append(ms.Options, o.String())
			}
			s.Messages = append(s.Messages, ms)
		}
		return s

	case *rgd.Graph:
		return GraphSummary{
			Points:      len(v.Points),
			Vectors:     len(v.Vectors),
			Segments:    len(v.Segments),
			RegionIDs:   len(v.RegionIDs),
			Regions:     len(v.Regions),
			Unvalidated: v.Unvalidated,
		}
	}
	return v
}
