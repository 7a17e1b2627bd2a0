package iss

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// NumericPolicy decides what happens to derived values that are not finite,
// such as the log of a non-positive intensity ratio.
type NumericPolicy string

// Numeric policies.
const (
	// PolicySafe replaces non-finite values with 0.
	PolicySafe NumericPolicy = "safe"

	// PolicyPropagate keeps non-finite values as NaN.
	PolicyPropagate NumericPolicy = "propagate"

	// PolicyStrict fails derivation on any non-finite value.
	PolicyStrict NumericPolicy = "strict"
)

// IsValid returns true if the policy is recognised.
func (p NumericPolicy) IsValid() bool {
	switch p {
	case PolicySafe, PolicyPropagate, PolicyStrict:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p NumericPolicy) String() string {
	return string(p)
}

// FluorescenceSign selects the sign convention of the fluorescence channel.
type FluorescenceSign string

// Fluorescence sign conventions.
const (
	SignPositive FluorescenceSign = "positive"
	SignNegative FluorescenceSign = "negative"
)

// IsValid returns true if the sign is recognised.
func (s FluorescenceSign) IsValid() bool {
	return s == SignPositive || s == SignNegative
}

// String returns the string representation.
func (s FluorescenceSign) String() string {
	return string(s)
}

// identifierKeys are tried in order when resolving the scan identifier.
var identifierKeys = []string{domain.IdentifierKey, "Scan.uid", "Scan-id", "Scan.id"}

// DeriveOptions controls channel derivation.
type DeriveOptions struct {
	Policy           NumericPolicy
	FluorescenceSign FluorescenceSign

	// NewID generates the suffix of a synthetic identifier.
	NewID func() string
}

// DefaultDeriveOptions returns the safe policy with a positive fluorescence sign.
func DefaultDeriveOptions() DeriveOptions {
	return DeriveOptions{
		Policy:           PolicySafe,
		FluorescenceSign: SignPositive,
		NewID:            uuid.NewString,
	}
}

// Derive turns raw detector columns into one record per channel:
//
//	transmission  mu = -ln(it / i0)
//	fluorescence  mu = iff / i0
//	reference     mu = -ln(ir / i0)
//
// All three records share the identifier resolved from metadata.
func Derive(raw *domain.Table, md domain.Metadata, opts DeriveOptions) ([]domain.ChannelRecord, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil table", domain.ErrInvalidInput)
	}
	if opts.Policy == "" {
		opts.Policy = PolicySafe
	}
	if opts.FluorescenceSign == "" {
		opts.FluorescenceSign = SignPositive
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	var missing []string
	for _, c := range domain.RequiredRawColumns() {
		if !raw.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.DerivationError{Missing: missing}
	}

	energy, _ := raw.Column(domain.ColumnEnergy)
	i0, _ := raw.Column(domain.ColumnI0)
	it, _ := raw.Column(domain.ColumnIt)
	ir, _ := raw.Column(domain.ColumnIr)
	iff, _ := raw.Column(domain.ColumnIff)

	sign := 1.0
	if opts.FluorescenceSign == SignNegative {
		sign = -1.0
	}

	mus := map[domain.Channel][]float64{
		domain.ChannelTransmission: mapRows(it, i0, NegLogRatio),
		domain.ChannelFluorescence: mapRows(iff, i0, func(num, den float64) float64 {
			return sign * Ratio(num, den)
		}),
		domain.ChannelReference: mapRows(ir, i0, NegLogRatio),
	}

	nonFinite := make(map[domain.Channel]int)
	for ch, mu := range mus {
		if n := applyPolicy(mu, opts.Policy); n > 0 {
			nonFinite[ch] = n
		}
	}
	if opts.Policy == PolicyStrict && len(nonFinite) > 0 {
		return nil, &domain.DerivationError{NonFinite: nonFinite}
	}

	id := resolveIdentifier(md, opts.NewID)

	records := make([]domain.ChannelRecord, 0, len(mus))
	for _, ch := range domain.Channels() {
		data, err := domain.TableFromColumns(
			[]string{domain.ColumnEnergy, domain.ColumnMu},
			[][]float64{slices.Clone(energy), mus[ch]},
		)
		if err != nil {
			return nil, err
		}

		meta := md.Clone()
		meta.Set(domain.ChannelKey, ch.String())
		meta.Set(domain.IdentifierKey, id)

		records = append(records, domain.ChannelRecord{
			Channel:    ch,
			Identifier: id,
			Data:       data,
			Metadata:   meta,
			NonFinite:  nonFinite[ch],
		})
	}
	return records, nil
}

// Ratio returns num/den, or NaN when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// NegLogRatio returns -ln(num/den), or NaN when the ratio is not a
// positive finite number.
func NegLogRatio(num, den float64) float64 {
	r := Ratio(num, den)
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return math.NaN()
	}
	return -math.Log(r)
}

func mapRows(num, den []float64, f func(num, den float64) float64) []float64 {
	out := make([]float64, len(num))
	for i := range num {
		out[i] = f(num[i], den[i])
	}
	return out
}

// applyPolicy rewrites non-finite values in place and returns how many there were.
func applyPolicy(values []float64, policy NumericPolicy) int {
	n := 0
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			continue
		}
		n++
		switch policy {
		case PolicySafe:
			values[i] = 0
		default:
			values[i] = math.NaN()
		}
	}
	return n
}

// resolveIdentifier returns the first non-empty identifier key, or a
// synthetic identifier when the scan carries none.
func resolveIdentifier(md domain.Metadata, newID func() string) string {
	for _, key := range identifierKeys {
		if v, ok := md.Get(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return domain.SyntheticIdentifierPrefix + newID()
}

// IsSynthetic reports whether an identifier was generated at ingest time.
func IsSynthetic(id string) bool {
	return strings.HasPrefix(id, domain.SyntheticIdentifierPrefix)
}
