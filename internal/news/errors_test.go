package news

import (
	"errors"
	"io"
	"testing"
)

func TestAsFetchErrorWraps(t *testing.T) {
	err := AsFetchError("Google News", io.ErrUnexpectedEOF)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.Source != "Google News" {
		t.Errorf("expected source Google News, got %q", fe.Source)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected wrapped error to be reachable with errors.Is")
	}
}

func TestAsFetchErrorKeepsExisting(t *testing.T) {
	orig := &FetchError{Source: "a", Err: ErrNoHeadlines}
	got := AsFetchError("b", orig)
	if got != error(orig) {
		t.Errorf("expected the original FetchError to be returned unchanged")
	}
}

func TestAsFetchErrorNil(t *testing.T) {
	if AsFetchError("x", nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestFetchErrorMessage(t *testing.T) {
	tests := []struct {
		err  *FetchError
		want string
	}{
		{&FetchError{Err: ErrNoHeadlines}, "fetching headlines: no headlines fetched"},
		{&FetchError{Source: "Reuters", Err: ErrNoHeadlines}, "fetching headlines from Reuters: no headlines fetched"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
