package carbon

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Input is one named material or process with its weight in kg.
type Input struct {
	Name   string  `json:"name" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

// EcoInputs groups inputs by lifecycle phase.
type EcoInputs struct {
	Materials     []Input `json:"materials" validate:"dive"`
	Manufacturing []Input `json:"manufacturing" validate:"dive"`
	Packaging     []Input `json:"packaging" validate:"dive"`
}

// Location is a city/state pair. Empty fields mean unknown.
type Location struct {
	City  string
	State string
}

// Route is the delivery tier between a seller and a buyer.
type Route int

const (
	RouteSameCity Route = iota
	RouteSameState
	RouteInterstate
)

func (r Route) String() string {
	switch r {
	case RouteSameCity:
		return "same_city"
	case RouteSameState:
		return "same_state"
	default:
		return "interstate"
	}
}

// LineQuote is the per-line result of pricing a delivery.
type LineQuote struct {
	Route                Route
	TransportEmission    float64
	AdjustedSavedPerItem float64
	ShippingFee          decimal.Decimal
}

// Engine computes footprints, savings and delivery adjustments. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	version         string
	materials       map[string]float64
	manufacturing   map[string]float64
	packaging       map[string]float64
	baselines       map[string]float64
	defaultBaseline float64
	transport       Tiers
	shipping        [3]decimal.Decimal
}

// NewEngine copies cfg into a new Engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		version:         cfg.Version,
		materials:       normalize(cfg.Materials),
		manufacturing:   normalize(cfg.Manufacturing),
		packaging:       normalize(cfg.Packaging),
		baselines:       normalize(cfg.Baselines),
		defaultBaseline: cfg.DefaultBaseline,
		transport:       cfg.Transport,
		shipping: [3]decimal.Decimal{
			decimal.NewFromFloat(cfg.Shipping.SameCity),
			decimal.NewFromFloat(cfg.Shipping.SameState),
			decimal.NewFromFloat(cfg.Shipping.Interstate),
		},
	}
}

func normalize(table map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(table))
	for k, v := range table {
		out[key(k)] = v
	}
	return out
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Version identifies the table set in use.
func (e *Engine) Version() string {
	return e.version
}

// Footprint sums weight times factor over all phases. Unknown names count
// as zero.
func (e *Engine) Footprint(in EcoInputs) float64 {
	return phaseTotal(e.materials, in.Materials) +
		phaseTotal(e.manufacturing, in.Manufacturing) +
		phaseTotal(e.packaging, in.Packaging)
}

func phaseTotal(factors map[string]float64, inputs []Input) float64 {
	var total float64
	for _, in := range inputs {
		total += in.Weight * factors[key(in.Name)]
	}
	return total
}

// Baseline returns the category baseline, or the default for unknown
// categories.
func (e *Engine) Baseline(category string) float64 {
	if v, ok := e.baselines[key(category)]; ok {
		return v
	}
	return e.defaultBaseline
}

// SavedPerItem is max(0, baseline(category) - footprint).
func (e *Engine) SavedPerItem(category string, footprint float64) float64 {
	return math.Max(0, e.Baseline(category)-footprint)
}

// ClassifyRoute picks the delivery tier. Same city requires matching state
// as well; any missing field maps to interstate.
func ClassifyRoute(seller, buyer Location) Route {
	sCity, sState := key(seller.City), key(seller.State)
	bCity, bState := key(buyer.City), key(buyer.State)
	if sState == "" || bState == "" || sCity == "" || bCity == "" {
		return RouteInterstate
	}
	if sState != bState {
		return RouteInterstate
	}
	if sCity == bCity {
		return RouteSameCity
	}
	return RouteSameState
}

// TransportEmission is the per-item delivery emission in kg CO2e.
func (e *Engine) TransportEmission(seller, buyer Location) float64 {
	switch ClassifyRoute(seller, buyer) {
	case RouteSameCity:
		return e.transport.SameCity
	case RouteSameState:
		return e.transport.SameState
	default:
		return e.transport.Interstate
	}
}

// ShippingFee is the per-line shipping charge.
func (e *Engine) ShippingFee(seller, buyer Location) decimal.Decimal {
	return e.shipping[ClassifyRoute(seller, buyer)]
}

// AdjustedSaved reduces savedPerItem by the transport emission, floored at 0.
func (e *Engine) AdjustedSaved(savedPerItem float64, seller, buyer Location) float64 {
	return math.Max(0, savedPerItem-e.TransportEmission(seller, buyer))
}

// Quote prices one line's delivery and its carbon adjustment.
func (e *Engine) Quote(savedPerItem float64, seller, buyer Location) LineQuote {
	route := ClassifyRoute(seller, buyer)
	transport := e.TransportEmission(seller, buyer)
	return LineQuote{
		Route:                route,
		TransportEmission:    transport,
		AdjustedSavedPerItem: math.Max(0, savedPerItem-transport),
		ShippingFee:          e.shipping[route],
	}
}
