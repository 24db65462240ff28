// Package file loads application configuration from a TOML file with
// environment variable overrides.
//
// The file is optional: a missing config file yields the defaults. The
// Groq API key is never read from the file, only from the GROQ_API_KEY
// environment variable, so it cannot end up committed to disk by
// accident.
package file
