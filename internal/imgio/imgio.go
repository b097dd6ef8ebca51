// Package imgio converts between raster layout images and geom.Grid.
// Images are interpreted as grayscale material-fraction maps normalized
// to [0,1] at a fixed physical resolution in nm/pixel.
package imgio

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/disintegration/imaging"

	"prefab/internal/geom"
)

// DimensionMismatchError reports a device image whose pixel width does not
// match the declared device length at the declared resolution.
type DimensionMismatchError struct {
	WantPx int
	GotPx  int
}

func (e DimensionMismatchError) Error() string {
	return fmt.Sprintf("device image width %dpx does not match device_length/resolution (%dpx)", e.GotPx, e.WantPx)
}

// IsDimensionMismatch reports whether err is a DimensionMismatchError.
func IsDimensionMismatch(err error) bool {
	var dm DimensionMismatchError
	return errors.As(err, &dm)
}

// LoadDeviceImage reads an image file, converts it to a normalized
// grayscale grid, and validates that deviceLength/res is consistent with
// the image's native width. Both lengths are in nanometers.
func LoadDeviceImage(path string, deviceLength, res float64) (geom.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return geom.Grid{}, fmt.Errorf("open device image: %w", err)
	}
	defer f.Close()
	return DecodeDeviceImage(f, deviceLength, res)
}

// DecodeDeviceImage is LoadDeviceImage over an already-open stream.
func DecodeDeviceImage(r io.Reader, deviceLength, res float64) (geom.Grid, error) {
	if res <= 0 {
		return geom.Grid{}, fmt.Errorf("resolution must be positive, got %v", res)
	}
	if deviceLength <= 0 {
		return geom.Grid{}, fmt.Errorf("device length must be positive, got %v", deviceLength)
	}
	img, err := imaging.Decode(r)
	if err != nil {
		return geom.Grid{}, fmt.Errorf("decode device image: %w", err)
	}
	g := FromImage(img)
	want := int(math.Round(deviceLength / res))
	if want != g.W {
		return geom.Grid{}, DimensionMismatchError{WantPx: want, GotPx: g.W}
	}
	return g, nil
}

// FromImage converts any decoded image to a grayscale grid in [0,1].
func FromImage(img image.Image) geom.Grid {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	g := geom.New(b.Dx(), b.Dy())
	for y := 0; y < g.H; y++ {
		row := y * gray.Stride
		for x := 0; x < g.W; x++ {
			// Grayscale output is NRGBA with equal channels; red carries the value.
			g.Set(x, y, float32(gray.Pix[row+x*4])/255)
		}
	}
	return g
}

// ToImage quantizes a grid to an 8-bit grayscale image.
func ToImage(g geom.Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := g.At(x, y)
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			img.Pix[y*img.Stride+x] = uint8(math.Round(float64(v) * 255))
		}
	}
	return img
}

// EncodePNG writes a grid to w as an 8-bit grayscale PNG.
func EncodePNG(g geom.Grid, w io.Writer) error {
	if err := imaging.Encode(w, ToImage(g), imaging.PNG); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SaveGrayPNG writes a grid to path as an 8-bit grayscale PNG.
func SaveGrayPNG(g geom.Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodePNG(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
