package geom

import (
	"math"
	"strconv"
	"strings"

	cerrors "github.com/matzehuels/copper/pkg/errors"
)

// Length is a distance in nanometres.
type Length int64

// Unit sizes in nanometres.
const (
	Nanometer  Length = 1
	Micrometer Length = 1_000
	Millimeter Length = 1_000_000
	Thou       Length = 25_400 // one mil, 0.0254mm
	Inch       Length = 25_400_000
)

// MM converts millimetres to a Length, rounding to the nearest nanometre.
func MM(v float64) Length { return fromFloat(v, Millimeter) }

// Mils converts thousandths of an inch to a Length.
func Mils(v float64) Length { return fromFloat(v, Thou) }

// Inches converts inches to a Length.
func Inches(v float64) Length { return fromFloat(v, Inch) }

// Microns converts micrometres to a Length.
func Microns(v float64) Length { return fromFloat(v, Micrometer) }

func fromFloat(v float64, unit Length) Length {
	return Length(math.Round(v * float64(unit)))
}

// MM returns the length in millimetres.
func (l Length) MM() float64 { return float64(l) / float64(Millimeter) }

// Mils returns the length in mils.
func (l Length) Mils() float64 { return float64(l) / float64(Thou) }

// Abs returns the absolute value of l.
func (l Length) Abs() Length {
	if l < 0 {
		return -l
	}
	return l
}

// String formats the length in millimetres, e.g. "0.15mm".
func (l Length) String() string {
	return strconv.FormatFloat(l.MM(), 'f', -1, 64) + "mm"
}

// MarshalText encodes the length in millimetres so design files stay readable.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts any format understood by [ParseLength].
func (l *Length) UnmarshalText(b []byte) error {
	v, err := ParseLength(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// unitSuffixes is ordered so that longer suffixes are tried first.
var unitSuffixes = []struct {
	suffix string
	unit   Length
}{
	{"mil", Thou},
	{"mm", Millimeter},
	{"um", Micrometer},
	{"µm", Micrometer},
	{"nm", Nanometer},
	{"in", Inch},
}

// ParseLength parses a length with an optional unit suffix: mm, mil, in, um
// (or µm) and nm. A bare number is read as millimetres.
func ParseLength(s string) (Length, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	if str == "" {
		return 0, cerrors.New(cerrors.ErrCodeInvalidInput, "empty length")
	}

	unit := Millimeter
	for _, u := range unitSuffixes {
		if strings.HasSuffix(str, u.suffix) {
			unit = u.unit
			str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))
			break
		}
	}

	v, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, cerrors.New(cerrors.ErrCodeInvalidInput, "invalid length %q", s)
	}
	return fromFloat(v, unit), nil
}

// MaxLength returns the largest of the given lengths, or zero.
func MaxLength(ls ...Length) Length {
	var m Length
	for i, l := range ls {
		if i == 0 || l > m {
			m = l
		}
	}
	return m
}
