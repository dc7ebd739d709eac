// Package config loads and validates the bridge's YAML configuration.
//
// A config file describes one bridge instance: the namespace its nodes
// live in, how to reach the PLC, client subscription limits, optional
// mDNS discovery, and event capture. All sections have working
// defaults; an empty file yields a simulation-ready configuration.
package config
