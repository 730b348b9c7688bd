// Package config provides configuration management for coa.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.coursera; it can be changed with the --config-path flag or the
// COA_CONFIG_PATH environment variable. The same directory holds the
// credential store unless storage.path points elsewhere.
//
// # File Format
//
// The optional config.yaml overrides any subset of the defaults:
//
//	storage:
//	  driver: file        # or sqlite
//	  path: ""            # directory (file) or database file (sqlite)
//	oauth:
//	  authorizeEndpoint: https://accounts.coursera.org/oauth2/v1/auth
//	  tokenEndpoint: https://accounts.coursera.org/oauth2/v1/token
//	  callbackPort: 9876
//	  callbackPath: /callback
//	  tokenTTL: 30m
//	  httpTimeout: 30s
//
// A missing config.yaml is not an error. LoadConfig validates the merged
// result and reports all problems at once.
package config
