package news

import (
	"errors"
	"fmt"
)

// ErrNoHeadlines is returned when every configured feed failed.
var ErrNoHeadlines = errors.New("no headlines fetched")

// FetchError reports that a source was unreachable or returned something
// that could not be parsed.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("fetching headlines: %v", e.Err)
	}
	return fmt.Sprintf("fetching headlines from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError wraps err in a FetchError unless it already is one.
func AsFetchError(source string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Source: source, Err: err}
}
