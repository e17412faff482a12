package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingRequirements indicates neither requirements text nor a file was provided
	ErrMissingRequirements = errors.New("requirements text or file is required")

	// ErrUnsupportedFileType indicates an uploaded file has an extension we cannot read
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidHourlyRate indicates the hourly rate could not be parsed or is negative
	ErrInvalidHourlyRate = errors.New("invalid hourly rate")

	// ErrPayloadTooLarge indicates the upload exceeds the configured limit
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrVagueRequirements indicates the requirements describe no actionable feature
	ErrVagueRequirements = errors.New("requirements do not describe an actionable feature")

	// ErrDocumentNotFound indicates a reference document is not loaded
	ErrDocumentNotFound = errors.New("document not found")

	// ErrLLMUnavailable indicates no LLM service is configured
	ErrLLMUnavailable = errors.New("llm service not configured")

	// ErrIndexUnavailable indicates the context index has not been built
	ErrIndexUnavailable = errors.New("context index unavailable")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
