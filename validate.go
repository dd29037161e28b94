package xbrl

import "github.com/beevik/etree"

// noValidation is the default Validator. Documents are accepted as parsed.
type noValidation struct{}

func (noValidation) Validate(*Session, *etree.Element, string) error { return nil }

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(s *Session, el *etree.Element, targetNamespace string) error

func (f ValidatorFunc) Validate(s *Session, el *etree.Element, targetNamespace string) error {
	return f(s, el, targetNamespace)
}
