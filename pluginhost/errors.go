package pluginhost

import "errors"

// Error kinds mirror the reference's PluginError enum one-for-one.
var (
	ErrCopyFile        = errors.New("pluginhost: copy to scratch dir failed")
	ErrTempDirIO       = errors.New("pluginhost: scratch dir creation failed")
	ErrMetadataIO      = errors.New("pluginhost: stat failed")
	ErrModifiedTime    = errors.New("pluginhost: reading modified time failed")
	ErrMethodNotFound  = errors.New("pluginhost: lifecycle method not found")
	ErrOnClose         = errors.New("pluginhost: error closing library")
	ErrOnOpen          = errors.New("pluginhost: error opening library")
	ErrUpdateNotLoaded = errors.New("pluginhost: update called before any load")
)
