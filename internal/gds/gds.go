// Package gds writes device geometry as a GDSII stream. The writer
// covers the record subset needed for polygon layout export: one library,
// flat cells, BOUNDARY elements. Database units are 1nm, user units 1um.
package gds

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// GDSII record types used by the writer.
const (
	recHeader   = 0x00
	recBgnLib   = 0x01
	recLibName  = 0x02
	recUnits    = 0x03
	recEndLib   = 0x04
	recBgnStr   = 0x05
	recStrName  = 0x06
	recEndStr   = 0x07
	recBoundary = 0x08
	recLayer    = 0x0D
	recDatatype = 0x0E
	recXY       = 0x10
	recEndEl    = 0x11
)

// GDSII record data types.
const (
	dtNone  = 0x00
	dtInt16 = 0x02
	dtInt32 = 0x03
	dtReal8 = 0x05
	dtASCII = 0x06
)

const streamVersion = 600

// Boundary is a closed polygon on a layer. XY holds coordinate pairs in
// database units (1nm); the first point is not repeated, the writer
// closes the ring.
type Boundary struct {
	Layer    int16
	Datatype int16
	XY       []int32
}

// Cell is a named structure holding boundary elements.
type Cell struct {
	Name       string
	Boundaries []Boundary
}

// Library is a GDSII stream library.
type Library struct {
	Name  string
	Cells []*Cell
}

// Write serializes the library to w as a GDSII stream.
func (l *Library) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	now := timestamp(time.Now())

	if err := writeRecord(bw, recHeader, dtInt16, i16(streamVersion)); err != nil {
		return err
	}
	if err := writeRecord(bw, recBgnLib, dtInt16, append(now, now...)); err != nil {
		return err
	}
	name := l.Name
	if name == "" {
		name = "PREFAB"
	}
	if err := writeRecord(bw, recLibName, dtASCII, ascii(name)); err != nil {
		return err
	}
	// 1 database unit = 1e-3 user units = 1e-9 meters (1nm).
	units := append(real8bytes(1e-3), real8bytes(1e-9)...)
	if err := writeRecord(bw, recUnits, dtReal8, units); err != nil {
		return err
	}

	for _, c := range l.Cells {
		if err := writeCell(bw, c, now); err != nil {
			return err
		}
	}

	if err := writeRecord(bw, recEndLib, dtNone, nil); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile serializes the library to a file at path.
func (l *Library) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := l.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write gds: %w", err)
	}
	return f.Close()
}

func writeCell(w io.Writer, c *Cell, ts []byte) error {
	if err := writeRecord(w, recBgnStr, dtInt16, append(append([]byte(nil), ts...), ts...)); err != nil {
		return err
	}
	if err := writeRecord(w, recStrName, dtASCII, ascii(c.Name)); err != nil {
		return err
	}
	for _, b := range c.Boundaries {
		if err := writeBoundary(w, b); err != nil {
			return err
		}
	}
	return writeRecord(w, recEndStr, dtNone, nil)
}

func writeBoundary(w io.Writer, b Boundary) error {
	if len(b.XY) < 6 || len(b.XY)%2 != 0 {
		return fmt.Errorf("boundary needs at least 3 coordinate pairs, got %d values", len(b.XY))
	}
	if err := writeRecord(w, recBoundary, dtNone, nil); err != nil {
		return err
	}
	if err := writeRecord(w, recLayer, dtInt16, i16(b.Layer)); err != nil {
		return err
	}
	if err := writeRecord(w, recDatatype, dtInt16, i16(b.Datatype)); err != nil {
		return err
	}
	// XY closes the ring by repeating the first pair.
	xy := make([]byte, 0, (len(b.XY)+2)*4)
	for _, v := range b.XY {
		xy = binary.BigEndian.AppendUint32(xy, uint32(v))
	}
	xy = binary.BigEndian.AppendUint32(xy, uint32(b.XY[0]))
	xy = binary.BigEndian.AppendUint32(xy, uint32(b.XY[1]))
	if err := writeRecord(w, recXY, dtInt32, xy); err != nil {
		return err
	}
	return writeRecord(w, recEndEl, dtNone, nil)
}

// writeRecord emits one record: big-endian length (including the 4-byte
// header), record type, data type, payload. Payloads must be even-sized;
// ascii() guarantees that for strings.
func writeRecord(w io.Writer, rec, dt byte, payload []byte) error {
	total := len(payload) + 4
	if total > 0xFFFF {
		return fmt.Errorf("record 0x%02x payload too large: %d bytes", rec, len(payload))
	}
	hdr := []byte{byte(total >> 8), byte(total), rec, dt}
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func i16(v int16) []byte {
	return []byte{byte(uint16(v) >> 8), byte(uint16(v))}
}

// ascii pads a string to even length with a NUL, per the stream format.
func ascii(s string) []byte {
	b := []byte(s)
	if len(b)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

// timestamp encodes a time as six int16 values (year, month, day, hour,
// minute, second).
func timestamp(t time.Time) []byte {
	vals := []int16{int16(t.Year()), int16(t.Month()), int16(t.Day()),
		int16(t.Hour()), int16(t.Minute()), int16(t.Second())}
	out := make([]byte, 0, 12)
	for _, v := range vals {
		out = append(out, i16(v)...)
	}
	return out
}

// real8bytes encodes a float as the 8-byte excess-64 base-16 real used by
// GDSII: sign bit, 7-bit exponent, 56-bit mantissa in [1/16, 1).
func real8bytes(f float64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, real8(f))
	return out
}

func real8(f float64) uint64 {
	if f == 0 {
		return 0
	}
	var sign uint64
	if f < 0 {
		sign = 1 << 63
		f = -f
	}
	exp := 64
	for f >= 1 {
		f /= 16
		exp++
	}
	for f < 1.0/16 {
		f *= 16
		exp--
	}
	if exp < 0 {
		return sign // underflow to signed zero
	}
	if exp > 127 {
		exp = 127
		f = 1 - 1e-15
	}
	mant := uint64(f * (1 << 56))
	return sign | uint64(exp)<<56 | mant
}
