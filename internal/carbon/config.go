package carbon

import (
	"fmt"

	"github.com/spf13/viper"
)

// Tiers holds one value per delivery route tier.
type Tiers struct {
	SameCity   float64 `mapstructure:"same_city"`
	SameState  float64 `mapstructure:"same_state"`
	Interstate float64 `mapstructure:"interstate"`
}

// Config is the versioned data set the Engine computes with. Emission
// factors are kg CO2e per kg of input; baselines are kg CO2e per unit.
type Config struct {
	Version         string             `mapstructure:"version"`
	Materials       map[string]float64 `mapstructure:"materials"`
	Manufacturing   map[string]float64 `mapstructure:"manufacturing"`
	Packaging       map[string]float64 `mapstructure:"packaging"`
	Baselines       map[string]float64 `mapstructure:"baselines"`
	DefaultBaseline float64            `mapstructure:"default_baseline"`
	Transport       Tiers              `mapstructure:"transport"`
	Shipping        Tiers              `mapstructure:"shipping"`
}

// DefaultConfig returns the built-in tables.
func DefaultConfig() Config {
	return Config{
		Version: "2024.1",
		Materials: map[string]float64{
			"Raw Cotton":                 5.92,
			"Polyester":                  5.5,
			"Organic Cotton":             3.8,
			"Recycled Polyester":         2.1,
			"Nylon":                      7.3,
			"Wool":                       20.0,
			"Silk":                       25.0,
			"Leather":                    30.0,
			"Denim":                      6.0,
			"Linen":                      4.5,
			"Hemp":                       3.5,
			"Bamboo":                     3.0,
			"Viscose":                    4.2,
			"Tencel":                     3.8,
			"Other – Textile":            6.5,
			"Other – Plastic":            7.0,
			"Other – Natural Material":   4.5,
			"Other – Synthetic Material": 6.8,
		},
		Manufacturing: map[string]float64{
			"Yarn Spinning":                 3.0,
			"Weaving":                       4.0,
			"Knitting":                      3.5,
			"Dyeing":                        4.0,
			"Printing":                      2.5,
			"Cut & Sew":                     1.0,
			"Finishing":                     1.5,
			"Washing":                       0.8,
			"Embroidery":                    1.2,
			"Assembly":                      0.5,
			"Other – Generic Manufacturing": 3.0,
		},
		Packaging: map[string]float64{
			"Plastic Bag":               2.0,
			"Cardboard Box":             0.9,
			"Paper Wrap":                0.5,
			"Jute Bag":                  0.3,
			"Biodegradable Plastic":     1.2,
			"Recycled Paper":            0.6,
			"Bubble Wrap":               2.5,
			"Other – Generic Packaging": 1.5,
		},
		Baselines: map[string]float64{
			"Eco-Friendly Groceries":       3.0,
			"Personal Care (Eco-Friendly)": 2.0,
			"Eco Kitchenware":              4.0,
			"Green Electronics":            8.0,
			"Eco-Home & Living":            6.0,
			"Sustainable Fashion":          5.0,
		},
		DefaultBaseline: 5.0,
		Transport:       Tiers{SameCity: 0.2, SameState: 0.5, Interstate: 1.0},
		Shipping:        Tiers{SameCity: 10, SameState: 25, Interstate: 50},
	}
}

// LoadConfig overlays the "carbon" section of v on the defaults. Table
// entries present in v replace or extend the built-in ones.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if v == nil || !v.IsSet("carbon") {
		return cfg, nil
	}
	if err := v.UnmarshalKey("carbon", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode carbon config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative factors and tiers that are not ordered
// same city <= same state <= interstate.
func (c Config) Validate() error {
	for phase, table := range map[string]map[string]float64{
		"materials":     c.Materials,
		"manufacturing": c.Manufacturing,
		"packaging":     c.Packaging,
		"baselines":     c.Baselines,
	} {
		for name, v := range table {
			if v < 0 {
				return fmt.Errorf("carbon %s factor %q is negative", phase, name)
			}
		}
	}
	if c.DefaultBaseline < 0 {
		return fmt.Errorf("carbon default baseline is negative")
	}
	for name, t := range map[string]Tiers{"transport": c.Transport, "shipping": c.Shipping} {
		if t.SameCity < 0 || t.SameCity > t.SameState || t.SameState > t.Interstate {
			return fmt.Errorf("carbon %s tiers must satisfy 0 <= same_city <= same_state <= interstate", name)
		}
	}
	return nil
}
