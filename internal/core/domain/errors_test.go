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
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrMissingRequirements", ErrMissingRequirements, "requirements text or file is required"},
		{"ErrUnsupportedFileType", ErrUnsupportedFileType, "unsupported file type"},
		{"ErrInvalidHourlyRate", ErrInvalidHourlyRate, "invalid hourly rate"},
		{"ErrVagueRequirements", ErrVagueRequirements, "requirements do not describe an actionable feature"},
		{"ErrLLMUnavailable", ErrLLMUnavailable, "llm service not configured"},
		{"ErrIndexUnavailable", ErrIndexUnavailable, "context index unavailable"},
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
		ErrInvalidInput,
		ErrMissingRequirements,
		ErrUnsupportedFileType,
		ErrInvalidHourlyRate,
		ErrPayloadTooLarge,
		ErrVagueRequirements,
		ErrDocumentNotFound,
		ErrLLMUnavailable,
		ErrIndexUnavailable,
		ErrInvalidProvider,
		ErrServiceUnavailable,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestErrorsWrap(t *testing.T) {
	wrapped := fmt.Errorf("%w: .exe", ErrUnsupportedFileType)
	if !errors.Is(wrapped, ErrUnsupportedFileType) {
		t.Error("wrapped error should match ErrUnsupportedFileType")
	}
	if wrapped.Error() != "unsupported file type: .exe" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}
