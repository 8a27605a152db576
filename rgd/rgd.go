// Package rgd decodes RGD navigation region graphs.
//
// A graph is made of 2D points, 3D vectors, segments joining two points, and
// regions anchored on a vector. Its header is a block of counts and absolute
// offsets; the sections are read at those offsets. Only the placement of the
// sections is validated. Fields whose meaning is not yet understood are kept
// in Graph.Unvalidated.
package rgd

import (
	"fmt"
	"math"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/internal/cursor"
)

// Expected values of the header's version pair and data start offset.
const (
	VersionA  = 0
	VersionB  = 2
	DataStart = 0x5c
)

const (
	pointSize   = 2 * 8
	vectorSize  = 3 * 8
	segmentSize = 2*4 + 8
	regionSize  = 2 * 4
	idSize      = 4
)

type Point struct {
	X, Y float64
}

type Vector struct {
	X, Y, Z float64
}

// Segment joins two points.
type Segment struct {
	Point1, Point2 uint32
	// RegionIDOffset locates the list of regions bordering the segment. It is
	// stored as a float64; a negative, NaN or out-of-range value is rejected
	// with ErrCrossCheck rather than saturated to 0.
	RegionIDOffset uint64
}

// Region is an area anchored on a vector.
type Region struct {
	VectorIndex uint32
	// SegmentIDOffset locates the list of segments bounding the region.
	SegmentIDOffset uint32
}

// Unvalidated holds header fields that are read but neither interpreted nor
// checked.
type Unvalidated struct {
	OffsetList       uint32
	IgnoredOffset    uint32
	RegionPosInfo    uint32
	RegionIDTotal    uint32
	Flag             uint32
	SpecialRegions   uint32
	Connectivity     [2]uint32
	SpecialRegionIDs uint32
}

// Graph is a decoded RGD file.
type Graph struct {
	Points      []Point
	Vectors     []Vector
	Segments    []Segment
	RegionIDs   []uint32
	Regions     []Region
	Unvalidated Unvalidated
}

type header struct {
	VersionA         uint32
	VersionB         uint32
	NumRegions       uint32
	RegionData       uint32
	OffsetList       uint32
	IgnoredOffset    uint32
	RegionPosInfo    uint32
	NumRegionIDs     uint32
	RegionIDData     uint32
	RegionIDTotal    uint32
	DataStart        uint32
	NumSegments      uint32
	SegmentData      uint32
	NumPoints        uint32
	PointData        uint32
	NumVectors       uint32
	VectorData       uint32
	Flag             uint32
	SpecialRegions   uint32
	Connectivity     [2]uint32
	SpecialRegionIDs uint32
}

// section positions the reader at off and verifies that count records of size
// bytes follow.
func section(r *cursor.Reader, off, count uint32, size int64) (failed bool) {
	return r.Seek(int64(off)) || r.Need(int64(count)*size)
}

// Decode decodes an RGD file.
func Decode(b []byte) (*Graph, error) {
	r := cursor.New(b)
	var h header
	if r.Number(&h) {
		return nil, r.Err()
	}
	if h.VersionA != VersionA {
		r.Check(errors.FieldError{Kind: errors.ErrMagic, Field: "version a", Expected: int64(VersionA), Actual: h.VersionA})
	}
	if h.VersionB != VersionB {
		r.Check(errors.FieldError{Kind: errors.ErrMagic, Field: "version b", Expected: int64(VersionB), Actual: h.VersionB})
	}
	if r.Expect("data start", DataStart, int64(h.DataStart)) {
		return nil, r.Err()
	}

	g := &Graph{
		Unvalidated: Unvalidated{
			OffsetList:       h.OffsetList,
			IgnoredOffset:    h.IgnoredOffset,
			RegionPosInfo:    h.RegionPosInfo,
			RegionIDTotal:    h.RegionIDTotal,
			Flag:             h.Flag,
			SpecialRegions:   h.SpecialRegions,
			Connectivity:     h.Connectivity,
			SpecialRegionIDs: h.SpecialRegionIDs,
		},
	}

	if section(r, h.PointData, h.NumPoints, pointSize) {
		return nil, fmt.Errorf("points: %w", r.Err())
	}
	g.Points = make([]Point, h.NumPoints)
	r.Number(g.Points)

	if section(r, h.VectorData, h.NumVectors, vectorSize) {
		return nil, fmt.Errorf("vectors: %w", r.Err())
	}
	g.Vectors = make([]Vector, h.NumVectors)
	r.Number(g.Vectors)

	if section(r, h.SegmentData, h.NumSegments, segmentSize) {
		return nil, fmt.Errorf("segments: %w", r.Err())
	}
	g.Segments = make([]Segment, h.NumSegments)
	for i := range g.Segments {
		var rec struct {
			Point1, Point2 uint32
			Offset         float64
		}
		r.Number(&rec)
		if math.IsNaN(rec.Offset) || rec.Offset < 0 || rec.Offset >= 1<<63 {
			r.Check(errors.FieldError{
				Kind:   errors.ErrCrossCheck,
				Field:  fmt.Sprintf("segment %d region id offset", i),
				Actual: rec.Offset,
			})
			return nil, r.Err()
		}
		g.Segments[i] = Segment{
			Point1:         rec.Point1,
			Point2:         rec.Point2,
			RegionIDOffset: uint64(rec.Offset),
		}
	}

	if section(r, h.RegionIDData, h.NumRegionIDs, idSize) {
		return nil, fmt.Errorf("region ids: %w", r.Err())
	}
	g.RegionIDs = make([]uint32, h.NumRegionIDs)
	r.Number(g.RegionIDs)

	if section(r, h.RegionData, h.NumRegions, regionSize) {
		return nil, fmt.Errorf("regions: %w", r.Err())
	}
	g.Regions = make([]Region, h.NumRegions)
	if r.Number(g.Regions) {
		return nil, r.Err()
	}
	return g, nil
}

// Format implements qfg5.Format for RGD files.
type Format struct{}

func (Format) Name() string {
	return "rgd"
}

func (Format) Decode(b []byte) (v interface{}, warn, err error) {
	g, err := Decode(b)
	if err != nil {
		return nil, nil, err
	}
	return g, nil, nil
}

func init() {
	qfg5.RegisterFormat(Format{})
}
