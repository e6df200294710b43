package exitcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeConstants(t *testing.T) {
	if Success != 0 {
		t.Errorf("Success = %v, expected 0", Success)
	}
	if ValidationFailure != 1 {
		t.Errorf("ValidationFailure = %v, expected 1", ValidationFailure)
	}
	if ConfigError != 2 {
		t.Errorf("ConfigError = %v, expected 2", ConfigError)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{ValidationFailure, "Validation failure"},
		{ConfigError, "Configuration or usage error"},
		{42, "Unknown error"},
	}
	for _, tt := range tests {
		if got := String(tt.code); got != tt.expected {
			t.Errorf("String(%d) = %q, expected %q", tt.code, got, tt.expected)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap(ConfigError, nil) != nil {
		t.Fatal("Wrap(nil) should stay nil")
	}

	base := errors.New("bad flag")
	err := fmt.Errorf("outer: %w", Wrap(ConfigError, base))

	var coded *Error
	if !errors.As(err, &coded) {
		t.Fatal("expected *Error in chain")
	}
	if coded.Code != ConfigError {
		t.Errorf("Code = %d, expected %d", coded.Code, ConfigError)
	}
	if !errors.Is(err, base) {
		t.Error("expected base error to remain reachable")
	}
	if coded.Error() != "bad flag" {
		t.Errorf("Error() = %q", coded.Error())
	}
}
