// Package config loads and validates the postbundle TOML configuration.
//
// Configuration is resolved from an explicit path, then
// $POSTBUNDLE_HOME/config.toml, then ~/.config/postbundle/config.toml. A
// missing file is not an error; defaults apply. Setting POSTBUNDLE_HOME
// re-roots every default path, which keeps test runs fully isolated.
package config
