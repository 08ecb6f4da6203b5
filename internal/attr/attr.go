// Package attr resolves the heterogeneous field names used across the
// source datasets into canonical attribute names. Every join reads raw
// record fields through this package; the embedded alias table is the only
// place field-name drift is handled.
package attr

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/shuyaguan/dc-dashboard/internal/geodata"
)

//go:embed aliases.yaml
var aliasYAML []byte

type aliasEntry struct {
	Aliases []string `yaml:"aliases"`
}

var aliasTable map[string]aliasEntry

func init() {
	if err := yaml.Unmarshal(aliasYAML, &aliasTable); err != nil {
		panic(eris.Wrap(err, "attr: parse embedded alias table").Error())
	}
}

// Aliases returns the ordered alias list for a logical attribute name.
// Unknown names resolve to the name itself.
func Aliases(logical string) []string {
	if e, ok := aliasTable[logical]; ok {
		return e.Aliases
	}
	return []string{logical}
}

// String returns the canonical string value of a logical attribute: the
// first present, non-empty alias in the record, else "".
func String(rec map[string]any, logical string) string {
	for _, name := range Aliases(logical) {
		v, ok := rec[name]
		if !ok {
			continue
		}
		s := strings.TrimSpace(Str(v))
		if s != "" {
			return s
		}
	}
	return ""
}

// Float returns the canonical numeric value of a logical attribute. The
// second return is false when no alias holds a parseable number.
func Float(rec map[string]any, logical string) (float64, bool) {
	for _, name := range Aliases(logical) {
		v, ok := rec[name]
		if !ok {
			continue
		}
		if f, ok := Num(v); ok {
			return f, true
		}
	}
	return 0, false
}

// FloatOr returns the canonical numeric value or the given default when no
// alias holds a parseable number.
func FloatOr(rec map[string]any, logical string, def float64) float64 {
	if f, ok := Float(rec, logical); ok {
		return f
	}
	return def
}

// Num coerces an arbitrary record value to a float64. Empty strings, "NA"
// and unparseable values report false.
func Num(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "null") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Str coerces an arbitrary record value to its string form.
func Str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return ""
	}
}

// Facility normalizes free-text bike facility values to the enum.
func Facility(raw string) geodata.FacilityType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "protected", "protected bike lane", "cycle track", "cycletrack":
		return geodata.FacilityProtected
	case "buffered", "buffered bike lane":
		return geodata.FacilityBuffered
	case "conventional", "bike lane", "conventional bike lane", "climbing":
		return geodata.FacilityConventional
	case "sharrow", "sharrows", "shared lane", "shared":
		return geodata.FacilitySharrow
	case "none", "no facility", "0":
		return geodata.FacilityNone
	case "":
		return geodata.FacilityUnknown
	default:
		return geodata.FacilityUnknown
	}
}

// Counter normalizes free-text counter type values to the enum.
func Counter(raw string) geodata.CounterType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "AUTO", "AUTOMATED", "CONTINUOUS":
		return geodata.CounterAuto
	case "MANUAL", "SHORT", "SHORT-TERM":
		return geodata.CounterManual
	default:
		return geodata.CounterUnknown
	}
}
