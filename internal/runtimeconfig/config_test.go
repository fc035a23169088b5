package runtimeconfig

import (
	"errors"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transliteration.Endpoint = "http://localhost:8080/transliterate"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestValidateRejectsMissingDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Driver = "  "
	if err := cfg.Validate(); !errors.Is(err, ErrStorageDriverRequired) {
		t.Fatalf("expected ErrStorageDriverRequired, got %v", err)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Driver = "oracle"
	if err := cfg.Validate(); !errors.Is(err, ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestValidateRejectsMissingDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DSN = ""
	if err := cfg.Validate(); !errors.Is(err, ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestValidateRejectsMissingEditor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Editor = ""
	if err := cfg.Validate(); !errors.Is(err, ErrEditorRequired) {
		t.Fatalf("expected ErrEditorRequired, got %v", err)
	}
}

func TestValidateRejectsNegativeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transliteration.Timeout = -1
	if err := cfg.Validate(); !errors.Is(err, ErrTransliterationTimeoutInvalid) {
		t.Fatalf("expected ErrTransliterationTimeoutInvalid, got %v", err)
	}
}

func TestValidateRejectsInvalidLoggingLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestValidateRejectsInvalidLoggingFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
