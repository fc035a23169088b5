package janbhas

import "github.com/kunaile/janbhas/internal/runtimeconfig"

var (
	ErrStorageDriverRequired           = runtimeconfig.ErrStorageDriverRequired
	ErrStorageDriverUnknown            = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired              = runtimeconfig.ErrStorageDSNRequired
	ErrContentDirRequired              = runtimeconfig.ErrContentDirRequired
	ErrEditorRequired                  = runtimeconfig.ErrEditorRequired
	ErrTransliterationEndpointRequired = runtimeconfig.ErrTransliterationEndpointRequired
	ErrTransliterationTimeoutInvalid   = runtimeconfig.ErrTransliterationTimeoutInvalid
	ErrLoggingLevelInvalid             = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid            = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config                = runtimeconfig.Config
	ContentConfig         = runtimeconfig.ContentConfig
	StorageConfig         = runtimeconfig.StorageConfig
	TransliterationConfig = runtimeconfig.TransliterationConfig
	LoggingConfig         = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
