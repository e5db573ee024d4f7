// Package envstore defines the string-keyed store annotation options are
// persisted in between materialization and resolution.
//
// The process environment is the production store (OS). Memory keeps the
// same contract without touching the real environment so tests can build
// isolated runtimes.
//
// Blank values (empty or whitespace only) are treated as absent by every
// reader in this module; LookupNonBlank centralises that rule.
//
// Dotenv files are read through Dotenv, which parses them with
// github.com/joho/godotenv and returns a plain snapshot. The caller decides
// where that snapshot sits in the layer stack.
package envstore
