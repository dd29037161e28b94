package xbrl

// Inline XBRL transformation registry namespaces.
const (
	NsIxtPreRec = "http://www.xbrl.org/2008/inlineXBRL/transformation"
	NsIxtV1     = "http://www.xbrl.org/inlineXBRL/transformation/2010-04-20"
	NsIxtV2     = "http://www.xbrl.org/inlineXBRL/transformation/2011-07-31"
	NsIxtV3     = "http://www.xbrl.org/inlineXBRL/transformation/2015-02-26"
	NsIxtV4     = "http://www.xbrl.org/inlineXBRL/transformation/2020-02-12"
	NsIxtSEC    = "http://www.sec.gov/inlineXBRL/transformation/2015-08-31"
)

var tr1Names = []string{
	"dateslashus", "dateslasheu", "datedotus", "datedoteu", "datelongus", "dateshortus",
	"datelonguk", "dateshortuk", "numcommadot", "numdash", "numspacedot", "numdotcomma",
	"numcomma", "numspacecomma", "datelongdaymonthuk", "dateshortdaymonthuk",
	"datelongmonthdayus", "dateshortmonthdayus", "dateslashdaymontheu", "dateslashmonthdayus",
	"datelongyearmonth", "dateshortyearmonth", "datelongmonthyear", "dateshortmonthyear",
}

var tr2Names = []string{
	"booleanfalse", "booleantrue", "datedaymonth", "datedaymonthen", "datedaymonthyear",
	"datedaymonthyearen", "dateerayearmonthdayjp", "dateerayearmonthjp", "datemonthday",
	"datemonthdayen", "datemonthdayyear", "datemonthdayyearen", "datemonthyearen",
	"dateyearmonthdaycjk", "dateyearmonthen", "dateyearmonthcjk", "nocontent",
	"numcommadecimal", "zerodash", "numdotdecimal", "numunitdecimal",
}

var tr3Additions = []string{
	"calindaymonthyear", "datedaymonthdk", "datedaymonthyeardk", "datedaymonthyearin",
	"datemonthyear", "datemonthyeardk", "datemonthyearin", "dateyearmonthday",
	"numdotdecimalin", "numunitdecimalin",
}

var tr4Names = []string{
	"date-day-month", "date-day-month-year", "date-month-day", "date-month-day-year",
	"date-month-year", "date-year-month", "date-year-month-day", "date-monthname-day-en",
	"date-monthname-day-year-en", "date-ind-day-monthname-year-hi", "date-ind-day-monthname-year",
	"date-jpn-era-year-month-day", "date-jpn-era-year-month", "date-year-monthname-en",
	"fixed-empty", "fixed-false", "fixed-true", "fixed-zero",
	"num-comma-decimal", "num-dot-decimal", "num-unit-decimal",
}

// tr4Languages are the languages of the monthname date transforms.
var tr4Languages = []string{
	"bg", "cs", "cy", "da", "de", "el", "en", "es", "et", "fi", "fr", "hr", "hu", "it",
	"lt", "lv", "nl", "no", "pl", "pt", "ro", "sk", "sl", "sv",
}

var secNames = []string{
	"boolballotbox", "yesnoballotbox", "countrynameen", "datequarterend", "durday",
	"durhour", "durmonth", "durweek", "durwordsen", "duryear", "edgarprovcountryen",
	"entityfilercategoryen", "exchnameen", "numinf", "numnan", "numneginf", "numwordsen",
	"stateprovnameen",
}

// TransformRegistry answers whether an ix:format names a known transform.
type TransformRegistry struct {
	known  map[QName]bool
	custom map[QName]bool
}

// NewTransformRegistry returns the registry of the standard and SEC
// transforms extended by custom.
func NewTransformRegistry(custom map[QName]bool) *TransformRegistry {
	r := &TransformRegistry{known: make(map[QName]bool), custom: make(map[QName]bool)}
	r.add(NsIxtPreRec, tr1Names)
	r.add(NsIxtV1, tr1Names)
	r.add(NsIxtV2, tr2Names)
	r.add(NsIxtV3, tr2Names)
	r.add(NsIxtV3, tr3Additions)
	r.add(NsIxtV4, tr4Names)
	for _, lang := range tr4Languages {
		r.add(NsIxtV4, []string{
			"date-day-monthname-" + lang,
			"date-day-monthname-year-" + lang,
			"date-monthname-year-" + lang,
		})
	}
	r.add(NsIxtSEC, secNames)
	for qn, ok := range custom {
		if ok {
			r.custom[qn] = true
		}
	}
	return r
}

func (r *TransformRegistry) add(ns string, names []string) {
	for _, n := range names {
		r.known[QName{Space: ns, Local: n}] = true
	}
}

// Valid reports whether format is a custom or registered transform.
func (r *TransformRegistry) Valid(format QName) bool {
	return r.custom[format] || r.known[format]
}

// IsTransformNamespace reports whether ns is a registered transform namespace.
func IsTransformNamespace(ns string) bool {
	switch ns {
	case NsIxtPreRec, NsIxtV1, NsIxtV2, NsIxtV3, NsIxtV4, NsIxtSEC:
		return true
	}
	return false
}
