// Package config loads configuration structs from environment
// variables (with optional .env file support) using struct tags.
package config
