package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrConfiguration marks invalid construction input: grid sizes, gauss point
// counts, material tables and law tags.
var ErrConfiguration = errors.New("configuration error")

type LawType uint8

const (
	LawElastic LawType = iota
	LawPlastic
)

var LawNameMap = map[string]LawType{
	"elastic":        LawElastic,
	"linear-elastic": LawElastic,
	"linear_elastic": LawElastic,
	"plastic":        LawPlastic,
	"elasto-plastic": LawPlastic,
	"elastoplastic":  LawPlastic,
	"j2":             LawPlastic,
}

var lawNames = []string{"Elastic", "Plastic"}

func (lt LawType) String() string {
	if int(lt) < len(lawNames) {
		return lawNames[lt]
	}
	return fmt.Sprintf("LawType(%d)", lt)
}

// NewLawType parses a law tag like "Elastic" or "elasto-plastic"
func NewLawType(token string) (lt LawType, err error) {
	var ok bool
	if lt, ok = LawNameMap[strings.ToLower(strings.TrimSpace(token))]; !ok {
		err = fmt.Errorf("%w: unknown material law %q", ErrConfiguration, token)
	}
	return
}

// UnmarshalJSON allows law tags to be given by name in YAML/JSON input
func (lt *LawType) UnmarshalJSON(data []byte) (err error) {
	s := strings.Trim(string(data), `"`)
	if n, perr := strconv.Atoi(s); perr == nil {
		if n < 0 || n >= len(lawNames) {
			return fmt.Errorf("%w: unknown material law number %d", ErrConfiguration, n)
		}
		*lt = LawType(n)
		return
	}
	*lt, err = NewLawType(s)
	return
}

func (lt LawType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + lt.String() + `"`), nil
}
