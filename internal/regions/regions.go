// internal/regions/regions.go
//
// Region catalog for the game engine.
//
// Responsibilities:
//   - Load region definitions from a YAML file or fall back to the embedded default.
//   - Validate them (locale tags, positive unique denominations, exactly two regions).
//   - Serve lookups by region ID and the denomination set offered per mode.
//
// Initialization behavior (LoadFile):
//  1. A non-empty path (config REGIONS_FILE) is read from disk.
//  2. An empty path uses assets/regions.yaml embedded in the binary.
//
// Lookups of unset or unknown regions fail with ErrConfiguration. The state machine
// guards against that, so seeing it at runtime means a programming error.
package regions

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/duoshao/assets"
)

// ID identifies a configured region.
type ID string

const (
	China  ID = "china"
	Taiwan ID = "taiwan"
)

// MoneyType is how the smaller denominations look on screen.
type MoneyType string

const (
	MoneyBill MoneyType = "bill"
	MoneyCoin MoneyType = "coin"
)

// requiredRegions is the number of regions a catalog must define.
const requiredRegions = 2

// ErrConfiguration marks an unknown/unset region or an invalid catalog.
var ErrConfiguration = errors.New("regions: configuration error")

// Config describes one locale/currency pairing.
type Config struct {
	ID            ID           `yaml:"id" json:"id"`
	Name          string       `yaml:"name" json:"name"`
	Sub           string       `yaml:"sub" json:"sub"`
	Currency      string       `yaml:"currency" json:"currency"`
	Unit          string       `yaml:"unit" json:"unit"`
	SpokenUnit    string       `yaml:"spokenUnit" json:"spokenUnit"`
	Locale        string       `yaml:"locale" json:"locale"`
	MoneyType     MoneyType    `yaml:"moneyType" json:"moneyType"`
	Denominations []int        `yaml:"denominations" json:"denominations"`
	SurvivalExtra []int        `yaml:"survivalExtra" json:"survivalExtra"`
	Feedback      FeedbackText `yaml:"feedback" json:"feedback"`

	tag language.Tag
}

// FeedbackText is the per-region verdict shown after a submit.
type FeedbackText struct {
	Correct string `yaml:"correct" json:"correct"`
	Wrong   string `yaml:"wrong" json:"wrong"`
}

// Tag returns the parsed locale tag.
func (c Config) Tag() language.Tag { return c.tag }

// Catalog is an immutable, validated set of regions.
type Catalog struct {
	order []ID
	byID  map[ID]Config
}

type catalogFile struct {
	Regions []Config `yaml:"regions"`
}

// LoadFile reads the catalog from path; an empty path selects the embedded default.
func LoadFile(path string) (*Catalog, error) {
	var (
		raw []byte
		err error
	)
	if path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = assets.RegionsYAML()
	}
	if err != nil {
		return nil, fmt.Errorf("regions: read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrConfiguration, err)
	}
	if len(f.Regions) != requiredRegions {
		return nil, fmt.Errorf("%w: want %d regions, got %d", ErrConfiguration, requiredRegions, len(f.Regions))
	}

	c := &Catalog{byID: make(map[ID]Config, len(f.Regions))}
	for _, r := range f.Regions {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: region without id", ErrConfiguration)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate region %q", ErrConfiguration, r.ID)
		}
		tag, err := language.Parse(r.Locale)
		if err != nil {
			return nil, fmt.Errorf("%w: region %q locale %q: %v", ErrConfiguration, r.ID, r.Locale, err)
		}
		r.tag = tag
		if len(r.Denominations) == 0 {
			return nil, fmt.Errorf("%w: region %q has no denominations", ErrConfiguration, r.ID)
		}
		if err := checkValues(r.Denominations); err != nil {
			return nil, fmt.Errorf("%w: region %q denominations: %v", ErrConfiguration, r.ID, err)
		}
		if err := checkValues(r.SurvivalExtra); err != nil {
			return nil, fmt.Errorf("%w: region %q survivalExtra: %v", ErrConfiguration, r.ID, err)
		}
		c.byID[r.ID] = r
		c.order = append(c.order, r.ID)
	}
	return c, nil
}

// checkValues enforces strictly positive, unique values.
func checkValues(vs []int) error {
	seen := make(map[int]struct{}, len(vs))
	for _, v := range vs {
		if v <= 0 {
			return fmt.Errorf("value %d is not positive", v)
		}
		if _, ok := seen[v]; ok {
			return fmt.Errorf("value %d repeated", v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// ConfigFor returns the region's configuration.
func (c *Catalog) ConfigFor(id ID) (Config, error) {
	if id == "" {
		return Config{}, fmt.Errorf("%w: region unset", ErrConfiguration)
	}
	r, ok := c.byID[id]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown region %q", ErrConfiguration, id)
	}
	return r, nil
}

// Has reports whether id names a configured region.
func (c *Catalog) Has(id ID) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns the regions in catalog order.
func (c *Catalog) All() []Config {
	out := make([]Config, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Denominations returns the ascending, deduplicated values offered for a region.
// withExtra adds the survival extras (survival and oni modes).
func (c *Catalog) Denominations(id ID, withExtra bool) ([]int, error) {
	r, err := c.ConfigFor(id)
	if err != nil {
		return nil, err
	}
	set := make(map[int]struct{}, len(r.Denominations)+len(r.SurvivalExtra))
	for _, v := range r.Denominations {
		set[v] = struct{}{}
	}
	if withExtra {
		for _, v := range r.SurvivalExtra {
			set[v] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out, nil
}

// Match picks the region whose locale best fits the client's Accept-Language header.
// It falls back to the first region in the catalog.
func (c *Catalog) Match(acceptLanguage string) ID {
	tags := make([]language.Tag, 0, len(c.order))
	for _, id := range c.order {
		tags = append(tags, c.byID[id].tag)
	}
	if len(tags) == 0 {
		return ""
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return c.order[0]
	}
	_, idx, conf := language.NewMatcher(tags).Match(prefs...)
	if conf == language.No {
		return c.order[0]
	}
	return c.order[idx]
}
