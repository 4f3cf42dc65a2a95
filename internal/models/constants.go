package models

import "bytes"

// GeneratedHeader is the first line of every file delegen writes. Files
// starting with it are ignored by discovery and removed by clean.
const GeneratedHeader = "// Code generated by delegen. DO NOT EDIT."

// DefaultFileSuffix is appended to the snake_case declaration name to form
// the output file name.
const DefaultFileSuffix = "_delegate.go"

// HasGeneratedHeader reports whether content starts with GeneratedHeader
func HasGeneratedHeader(content []byte) bool {
	line, _, _ := bytes.Cut(content, []byte("\n"))
	return string(bytes.TrimRight(line, "\r")) == GeneratedHeader
}
