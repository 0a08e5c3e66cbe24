package types

import "fmt"

// ValidationError reports a URL that cannot be rendered. It is raised before
// any network activity.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Reason)
}

// ExtractionFailure reports that a page could not be turned into a usable
// document, either because the browser failed or because nothing readable
// was found.
type ExtractionFailure struct {
	URL    string
	Reason string
	Err    error
}

func (e *ExtractionFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not extract %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("could not extract %s: %s", e.URL, e.Reason)
}

func (e *ExtractionFailure) Unwrap() error {
	return e.Err
}

// NewExtractionFailure wraps err with the URL and a short reason.
func NewExtractionFailure(rawURL, reason string, err error) *ExtractionFailure {
	return &ExtractionFailure{URL: rawURL, Reason: reason, Err: err}
}
