package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrTokenExpired", ErrTokenExpired, "token expired"},
		{"ErrTokenInvalid", ErrTokenInvalid, "token invalid"},
		{"ErrSearchFailed", ErrSearchFailed, "search failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrSearchFailed,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestErrorsIs_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("search posts: %w", ErrSearchFailed)
	if !errors.Is(wrapped, ErrSearchFailed) {
		t.Error("wrapped ErrSearchFailed should match")
	}
	if errors.Is(wrapped, ErrTokenInvalid) {
		t.Error("wrapped ErrSearchFailed should not match ErrTokenInvalid")
	}
}
