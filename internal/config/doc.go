// Package config loads the clubdata TOML configuration.
//
// # Resolution
//
// Load reads an explicit path when one is given, otherwise
// ~/.config/clubdata/config.toml. A missing file is not an error: the
// defaults below are used, so clubdata runs without any setup. Fields that
// are present but blank also keep their defaults.
//
// # Fields
//
//	strategy = "remote"              # remote | bulk | local | none
//	api_base = "http://127.0.0.1:3001/api"
//	cache_path = "~/.local/share/clubdata/cache.db"
//	id_scheme = "timestamp"          # timestamp | uuid7
//	request_timeout = "10s"
//
//	[log]
//	level = "INFO"
//	format = "CONSOLE"               # CONSOLE | JSON
//	file = "~/.local/share/clubdata/clubdata.log"
//
//	[server]
//	bind = "127.0.0.1:3001"
//	backend = "file"                 # file | sqlite
//	data_dir = "~/.local/share/clubdata/data"
//
// Enumerated values are case-insensitive. Paths get tilde expansion and are
// made absolute.
//
// # Errors
//
// Load fails with "parse config" for malformed TOML or an unparseable
// duration, and with "validate config" for an unknown strategy, id scheme,
// backend or log format.
package config
