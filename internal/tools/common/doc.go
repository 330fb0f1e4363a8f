// Package common provides shared utilities for MCP tool implementations.
// It contains the instrumentation wrapper applied to every registered tool
// handler and small argument-extraction helpers.
package common
