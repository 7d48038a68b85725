package enrich

import (
	"math"
	"regexp"
	"strconv"
)

// Field is one requested enrichment value. A field the remote page does not
// expose is not an error; it arrives with Present set to false.
type Field struct {
	Text    string
	Present bool
}

// Absent is the zero Field.
var Absent = Field{}

var (
	nonAmount  = regexp.MustCompile(`[^\d.]`)
	hoursPart  = regexp.MustCompile(`(\d+)\s*h`)
	minutesPat = regexp.MustCompile(`(\d+)\s*m`)
)

// Amount reads the field as a money value, ignoring currency symbols,
// thousands separators and trailing notes such as "(estimated)". It is NaN
// when the field is absent or holds no number.
func (f Field) Amount() float64 {
	if !f.Present {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(nonAmount.ReplaceAllString(f.Text, ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Minutes reads a runtime such as "2 hours 42 minutes", "1 hour" or
// "98 min" as a number of minutes. It is NaN when the field is absent or
// holds neither hours nor minutes.
func (f Field) Minutes() float64 {
	if !f.Present {
		return math.NaN()
	}
	h := hoursPart.FindStringSubmatch(f.Text)
	m := minutesPat.FindStringSubmatch(f.Text)
	if h == nil && m == nil {
		return math.NaN()
	}
	var total float64
	if h != nil {
		n, _ := strconv.Atoi(h[1])
		total += float64(n) * 60
	}
	if m != nil {
		n, _ := strconv.Atoi(m[1])
		total += float64(n)
	}
	return total
}

// Fields maps requested names to their values.
type Fields map[string]Field

// Get returns the field stored under name, or Absent.
func (fs Fields) Get(name string) Field { return fs[name] }

func project(all map[string]string, names []string) Fields {
	out := make(Fields, len(names))
	for _, name := range names {
		if v, ok := all[name]; ok {
			out[name] = Field{Text: v, Present: true}
		} else {
			out[name] = Absent
		}
	}
	return out
}
