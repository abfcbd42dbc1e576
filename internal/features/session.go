package features

import (
	"math"
	"strconv"

	"shopping-eval/internal/common"
)

// RawRecord is one row of the session table keyed by column name.
type RawRecord map[string]string

// Session is a fully parsed session row. Parse is the only place raw strings
// are converted; everything downstream works with typed values.
type Session struct {
	Administrative         int
	AdministrativeDuration float64
	Informational          int
	InformationalDuration  float64
	ProductRelated         int
	ProductRelatedDuration float64
	BounceRates            float64
	ExitRates              float64
	PageValues             float64
	SpecialDay             float64
	Month                  int // 0 (January) .. 11 (December)
	OperatingSystems       int
	Browser                int
	Region                 int
	TrafficType            int
	ReturningVisitor       bool
	Weekend                bool
	Revenue                bool
}

// monthIndex is built once at init and never mutated. The session table spells
// out June in full, so both forms are accepted.
var monthIndex = map[string]int{
	"Jan":  0,
	"Feb":  1,
	"Mar":  2,
	"Apr":  3,
	"May":  4,
	"Jun":  5,
	"June": 5,
	"Jul":  6,
	"Aug":  7,
	"Sep":  8,
	"Oct":  9,
	"Nov":  10,
	"Dec":  11,
}

// MonthIndex returns the zero-based calendar index of a month abbreviation.
func MonthIndex(s string) (int, bool) {
	idx, ok := monthIndex[s]
	return idx, ok
}

// Parse converts a raw record at position row into a Session.
func Parse(row int, raw RawRecord) (Session, error) {
	p := parser{row: row, raw: raw}

	s := Session{
		Administrative:         p.integer(common.ColAdministrative),
		AdministrativeDuration: p.decimal(common.ColAdministrativeDuration),
		Informational:          p.integer(common.ColInformational),
		InformationalDuration:  p.decimal(common.ColInformationalDuration),
		ProductRelated:         p.integer(common.ColProductRelated),
		ProductRelatedDuration: p.decimal(common.ColProductRelatedDuration),
		BounceRates:            p.decimal(common.ColBounceRates),
		ExitRates:              p.decimal(common.ColExitRates),
		PageValues:             p.decimal(common.ColPageValues),
		SpecialDay:             p.decimal(common.ColSpecialDay),
		Month:                  p.month(common.ColMonth),
		OperatingSystems:       p.integer(common.ColOperatingSystems),
		Browser:                p.integer(common.ColBrowser),
		Region:                 p.integer(common.ColRegion),
		TrafficType:            p.integer(common.ColTrafficType),
		ReturningVisitor:       p.field(common.ColVisitorType) == common.ReturningVisitor,
		Weekend:                p.field(common.ColWeekend) == common.TrueLiteral,
		Revenue:                p.field(common.ColRevenue) == common.TrueLiteral,
	}
	if p.err != nil {
		return Session{}, p.err
	}
	return s, nil
}

// parser keeps the first error and turns later conversions into no-ops, so
// Parse reports the earliest bad field in column order.
type parser struct {
	row int
	raw RawRecord
	err error
}

func (p *parser) field(name string) string {
	if p.err != nil {
		return ""
	}
	v, ok := p.raw[name]
	if !ok {
		p.err = &ParseError{Row: p.row, Field: name, Err: ErrMissingField}
	}
	return v
}

func (p *parser) integer(field string) int {
	v := p.field(field)
	if p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = &ParseError{Row: p.row, Field: field, Value: v, Err: err}
	}
	return n
}

func (p *parser) decimal(field string) float64 {
	v := p.field(field)
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = &ParseError{Row: p.row, Field: field, Value: v, Err: err}
		return 0
	}
	// ParseFloat accepts "NaN" and "Inf"; neither can be placed in the feature space.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		p.err = &ParseError{Row: p.row, Field: field, Value: v, Err: ErrNonFinite}
		return 0
	}
	return f
}

func (p *parser) month(field string) int {
	v := p.field(field)
	if p.err != nil {
		return 0
	}
	idx, ok := MonthIndex(v)
	if !ok {
		p.err = &LookupError{Row: p.row, Value: v}
	}
	return idx
}
