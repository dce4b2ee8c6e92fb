// Package config loads server configuration from the environment.
//
// A .env file is honored when present (development convenience); real
// deployments set the variables directly. Values are only checked for
// presence at startup, not validated beyond that.
package config
