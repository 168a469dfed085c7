// Package config loads Config from an optional YAML file and WORDNEWS_*
// environment variables using viper, then validates it. Environment
// variables override file values.
package config
