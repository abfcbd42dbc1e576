package features

import "shopping-eval/internal/common"

// NumFeatures is the fixed length of every encoded session.
const NumFeatures = 17

// Vector is the positional numeric encoding of a session. Counts and
// categorical codes (OperatingSystems, Browser, Region, TrafficType) are stored
// as plain numbers; they are neither one-hot encoded nor scaled.
type Vector [NumFeatures]float64

// Label is the purchase outcome of a session.
type Label int

const (
	Negative Label = 0
	Positive Label = 1
)

// Valid reports whether l is Negative or Positive.
func (l Label) Valid() bool {
	return l == Negative || l == Positive
}

// FeatureNames lists the source column of each Vector position.
var FeatureNames = [NumFeatures]string{
	common.ColAdministrative,
	common.ColAdministrativeDuration,
	common.ColInformational,
	common.ColInformationalDuration,
	common.ColProductRelated,
	common.ColProductRelatedDuration,
	common.ColBounceRates,
	common.ColExitRates,
	common.ColPageValues,
	common.ColSpecialDay,
	common.ColMonth,
	common.ColOperatingSystems,
	common.ColBrowser,
	common.ColRegion,
	common.ColTrafficType,
	common.ColVisitorType,
	common.ColWeekend,
}

// Vector encodes the session in FeatureNames order.
func (s Session) Vector() Vector {
	return Vector{
		float64(s.Administrative),
		s.AdministrativeDuration,
		float64(s.Informational),
		s.InformationalDuration,
		float64(s.ProductRelated),
		s.ProductRelatedDuration,
		s.BounceRates,
		s.ExitRates,
		s.PageValues,
		s.SpecialDay,
		float64(s.Month),
		float64(s.OperatingSystems),
		float64(s.Browser),
		float64(s.Region),
		float64(s.TrafficType),
		boolToFloat(s.ReturningVisitor),
		boolToFloat(s.Weekend),
	}
}

// Label returns Positive when the session ended in a purchase.
func (s Session) Label() Label {
	if s.Revenue {
		return Positive
	}
	return Negative
}

// Encode parses and encodes a single raw record at position row.
func Encode(row int, raw RawRecord) (Vector, Label, error) {
	s, err := Parse(row, raw)
	if err != nil {
		return Vector{}, Negative, err
	}
	return s.Vector(), s.Label(), nil
}

// EncodeAll encodes records in order. Index i of both results comes from
// records[i]. The first bad row aborts the whole batch.
func EncodeAll(records []RawRecord) ([]Vector, []Label, error) {
	vectors := make([]Vector, len(records))
	labels := make([]Label, len(records))

	for i, raw := range records {
		v, l, err := Encode(i, raw)
		if err != nil {
			return nil, nil, err
		}
		vectors[i] = v
		labels[i] = l
	}

	return vectors, labels, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
