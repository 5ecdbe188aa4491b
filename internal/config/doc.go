// Package config loads gxdccpp configuration.
//
// Configuration is read from a YAML file over built-in defaults and can be
// overridden by GXDCCPP_* environment variables. See Load.
package config
