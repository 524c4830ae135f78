package settings

import "git.home.luguber.info/inful/wristrelay/internal/foundation/errors"

var (
	// ErrOpenFailed indicates the SQLite database could not be opened.
	ErrOpenFailed = errors.SettingsError("could not open settings database").Build()

	// ErrSchemaFailed indicates the settings table could not be created.
	ErrSchemaFailed = errors.SettingsError("failed to initialize settings schema").Build()

	// ErrQueryFailed indicates reading settings failed.
	ErrQueryFailed = errors.SettingsError("failed to read settings").Build()

	// ErrWriteFailed indicates storing a setting failed.
	ErrWriteFailed = errors.SettingsError("failed to write setting").Build()

	// ErrUnknownSetting indicates a name outside the known settings.
	ErrUnknownSetting = errors.ValidationError("unknown setting").Build()

	// ErrInvalidValue indicates a value outside the setting's range.
	ErrInvalidValue = errors.ValidationError("setting value out of range").Build()
)
