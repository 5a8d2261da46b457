package mock

import "github.com/wikivault/wikivault"

var _ wikivault.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of wikivault.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*wikivault.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*wikivault.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ wikivault.Converter = (*Converter)(nil)

// Converter is a mock implementation of wikivault.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
