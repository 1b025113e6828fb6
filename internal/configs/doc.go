// Package configs resolves tarvault's runtime settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults
//  2. The user config file, $XDG_CONFIG_HOME/tarvault/config.toml
//  3. Environment variables
//
// # Recognized Options
//
//	TOML key      Environment            Default
//	vault_dir     TARVAULT_DIR           ~/.tarvault
//	clear_cache   TARVAULT_CLEAR_CACHE   true
//	backend       TARVAULT_BACKEND       auto
//	history       TARVAULT_HISTORY       true
//
// A missing config file is not an error. Unknown keys in the file are,
// so typos do not silently fall back to defaults.
//
// Settings is a plain value built once at startup and passed down; nothing
// in this package holds mutable global state.
package configs
