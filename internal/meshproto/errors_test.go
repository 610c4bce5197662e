package meshproto

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrEditDisabled,
		ErrBadRequest,
		ErrInvalidTarget,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestCodedError_Unwraps(t *testing.T) {
	base := errors.New("outside world boundary")
	err := fmt.Errorf("apply: %w", &CodedError{Code: ErrInvalidTarget, Err: base})
	var ce *CodedError
	if !errors.As(err, &ce) || ce.Code != ErrInvalidTarget {
		t.Fatalf("errors.As failed: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("errors.Is failed")
	}
}
