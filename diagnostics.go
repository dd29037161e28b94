package xbrl

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the severity of a diagnostic.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	default:
		return "error"
	}
}

// Kind groups diagnostics by failure category.
type Kind int

const (
	KindUnfetchable Kind = iota
	KindMalformedXML
	KindMisdeclared
	KindPolicyBlocked
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnfetchable:
		return "unfetchable"
	case KindMalformedXML:
		return "malformedXML"
	case KindMisdeclared:
		return "misdeclared"
	case KindPolicyBlocked:
		return "policyBlocked"
	default:
		return "internal"
	}
}

// Diagnostic is one message recorded while loading. Validators downstream
// consume these alongside the discovered model.
type Diagnostic struct {
	Level   Level
	Kind    Kind
	Code    string
	Message string
	URI     string
	Element string // etree path of the offending element, if any
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Level, d.Message)
}

// Diagnostics is the ordered log of a session.
type Diagnostics []Diagnostic

// WithCode returns the diagnostics carrying code.
func (ds Diagnostics) WithCode(code string) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Has reports whether any diagnostic carries code.
func (ds Diagnostics) Has(code string) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Errors returns the error-level diagnostics.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Level == LevelError {
			out = append(out, d)
		}
	}
	return out
}

func (s *Session) report(level Level, kind Kind, code string, el *etree.Element, format string, args ...any) {
	d := Diagnostic{
		Level:   level,
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Element: elementPath(el),
	}
	if el != nil {
		if doc := s.documentOf(el); doc != nil {
			d.URI = doc.URI
		}
	}
	s.diags = append(s.diags, d)

	fields := []zap.Field{
		zap.String("code", code),
		zap.Stringer("kind", kind),
	}
	if d.URI != "" {
		fields = append(fields, zap.String("uri", d.URI))
	}
	if d.Element != "" {
		fields = append(fields, zap.String("element", d.Element))
	}
	var zl zapcore.Level
	switch level {
	case LevelInfo:
		zl = zapcore.InfoLevel
	case LevelWarning:
		zl = zapcore.WarnLevel
	default:
		zl = zapcore.ErrorLevel
	}
	if ce := s.log.Check(zl, d.Message); ce != nil {
		ce.Write(fields...)
	}
}

func (s *Session) errorf(kind Kind, code string, el *etree.Element, format string, args ...any) {
	s.report(LevelError, kind, code, el, format, args...)
}

func (s *Session) warnf(kind Kind, code string, el *etree.Element, format string, args ...any) {
	s.report(LevelWarning, kind, code, el, format, args...)
}

func (s *Session) infof(code string, el *etree.Element, format string, args ...any) {
	s.report(LevelInfo, KindMisdeclared, code, el, format, args...)
}

// Diagnostics returns every message recorded by the session so far.
func (s *Session) Diagnostics() Diagnostics {
	return s.diags
}
