package xbrl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// Context defines the dimensional context for facts (period, entity, segments)
type Context struct {
	ID       string
	Element  *etree.Element
	Document *Document

	EntityScheme     string
	EntityIdentifier string
	Period           Period

	Segment  *etree.Element
	Scenario *etree.Element

	// SegDims and ScenDims hold the first member given for each dimension
	// in the segment and scenario; QNameDims holds both.
	SegDims   map[QName]*DimensionValue
	ScenDims  map[QName]*DimensionValue
	QNameDims map[QName]*DimensionValue
	// ErrorDimValues are members repeating a dimension already given.
	ErrorDimValues []*DimensionValue

	SegNonDim  []*etree.Element
	ScenNonDim []*etree.Element
}

// DimensionValue is one xbrldi:explicitMember or xbrldi:typedMember.
type DimensionValue struct {
	Dimension   QName
	Member      QName          // explicit members
	TypedMember *etree.Element // typed members
	IsExplicit  bool
	InScenario  bool
	Element     *etree.Element
}

// Period defines the time period for a fact (instant or duration)
type Period struct {
	Instant   string // Point in time (balance sheet)
	StartDate string // Duration start (income statement)
	EndDate   string // Duration end
	Forever   bool
}

// IsInstant returns true if this period is a point in time
func (p Period) IsInstant() bool {
	return p.Instant != ""
}

// IsDuration returns true if this period spans a time range
func (p Period) IsDuration() bool {
	return p.StartDate != "" && p.EndDate != ""
}

// EndTime returns the end date of the period, or the instant.
func (p Period) EndTime() (time.Time, error) {
	dateStr := p.EndDate
	if dateStr == "" {
		dateStr = p.Instant
	}
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("period has no end date or instant")
	}
	// Dates may carry a time part.
	if len(dateStr) > 10 {
		return time.Parse("2006-01-02T15:04:05", dateStr)
	}
	return time.Parse("2006-01-02", dateStr)
}

// Label returns a human-readable period label
func (p Period) Label() string {
	switch {
	case p.Forever:
		return "forever"
	case p.Instant != "":
		return p.Instant
	case p.IsDuration():
		return fmt.Sprintf("%s to %s", p.StartDate, p.EndDate)
	}
	return "Unknown"
}

// Unit defines the measurement unit for a fact (USD, shares, etc.)
type Unit struct {
	ID       string
	Element  *etree.Element
	Document *Document

	Measures []QName
	// For ratios like USD/share
	Numerators   []QName
	Denominators []QName
}

// IsDivide reports whether the unit is a ratio.
func (u *Unit) IsDivide() bool {
	return len(u.Numerators) > 0 || len(u.Denominators) > 0
}

// Fact is one item, tuple or inline fact of an instance.
type Fact struct {
	Element  *etree.Element
	Document *Document
	QName    QName
	Concept  *Concept // nil when no schema declares QName

	ID         string
	ContextRef string
	UnitRef    string
	Decimals   string
	Precision  string
	IsNil      bool

	// Tuple structure. Parent is the containing tuple; Children are its
	// members ordered by Order for inline tuples.
	Parent   *Fact
	Children []*Fact

	// Inline XBRL.
	Inline   bool
	Target   string // "" is the default target
	Order    string
	Format   QName
	Scale    string
	Sign     string
	TupleID  string
	TupleRef string
	// Invalid facts keep their place in the tree but have no value.
	Invalid bool

	session *Session
}

// Name returns the prefixed concept name as written in the document.
func (f *Fact) Name() string {
	if f.Inline {
		return attr(f.Element, "name")
	}
	return prefixedName(f.Element)
}

// IsTuple reports whether the fact is a tuple.
func (f *Fact) IsTuple() bool {
	if f.Inline {
		return f.Element.Tag == "tuple"
	}
	return f.Concept != nil && f.Concept.IsTuple()
}

// IsFraction reports whether the fact is an inline fraction or an item with
// xbrli numerator and denominator children.
func (f *Fact) IsFraction() bool {
	if f.Inline {
		return f.Element.Tag == "fraction"
	}
	for _, c := range childElements(f.Element) {
		if elementNamespace(c) == NsXbrli && c.Tag == "numerator" {
			return true
		}
	}
	return false
}

// IsNumeric reports whether the fact carries a number.
func (f *Fact) IsNumeric() bool {
	if f.Inline {
		return f.Element.Tag == "nonFraction" || f.Element.Tag == "fraction"
	}
	return f.UnitRef != ""
}

// Context returns the fact's context, or nil.
func (f *Fact) Context() *Context {
	if f.session == nil {
		return nil
	}
	return f.session.Contexts[f.ContextRef]
}

// Unit returns the fact's unit, or nil.
func (f *Fact) Unit() *Unit {
	if f.session == nil || f.UnitRef == "" {
		return nil
	}
	return f.session.Units[f.UnitRef]
}

// Value returns the text value of the fact. Inline values follow their
// continuations and leave out ix:exclude content. Invalid and nil facts
// have no value.
func (f *Fact) Value() string {
	if f.Invalid || f.IsNil || f.IsTuple() {
		return ""
	}
	if !f.Inline {
		return strings.TrimSpace(textContent(f.Element))
	}
	var b strings.Builder
	b.WriteString(inlineText(f.Element))
	if f.session != nil {
		for _, c := range f.session.ContinuationChain(f.Element) {
			b.WriteString(inlineText(c))
		}
	}
	v := b.String()
	if f.Element.Tag != "nonNumeric" {
		v = strings.TrimSpace(v)
	}
	return v
}

// Float64 returns the numeric value, applying an inline scale and sign.
func (f *Fact) Float64() (float64, error) {
	if !f.IsNumeric() {
		return 0, fmt.Errorf("fact %s is not numeric", f.Name())
	}
	val, err := parseNumericValue(f.Value())
	if err != nil {
		return 0, fmt.Errorf("fact %s has no numeric value: %w", f.Name(), err)
	}
	if f.Scale != "" {
		scale, err := strconv.Atoi(f.Scale)
		if err != nil {
			return 0, fmt.Errorf("fact %s has invalid scale %q: %w", f.Name(), f.Scale, err)
		}
		val *= pow10(scale)
	}
	if f.Sign == "-" {
		val = -val
	}
	return val, nil
}

// parseNumericValue converts a string value to float64
func parseNumericValue(value string) (float64, error) {
	// Remove commas and whitespace
	cleaned := strings.ReplaceAll(value, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	// Handle empty or non-numeric values
	if cleaned == "" || cleaned == "-" || cleaned == "—" {
		return 0, fmt.Errorf("empty or invalid value")
	}
	return strconv.ParseFloat(cleaned, 64)
}

func pow10(n int) float64 {
	scale := 1.0
	for i := 0; i < n; i++ {
		scale *= 10
	}
	for i := 0; i > n; i-- {
		scale /= 10
	}
	return scale
}

// inlineText concatenates the text beneath an inline element, skipping
// ix:exclude subtrees.
func inlineText(el *etree.Element) string {
	var b strings.Builder
	var collect func(*etree.Element)
	collect = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				if t.Tag == "exclude" && IsInlineNamespace(elementNamespace(t)) {
					continue
				}
				collect(t)
			}
		}
	}
	collect(el)
	return b.String()
}
