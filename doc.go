// Package main is the entry point of sessiond. It restores an authenticated
// session against the ERP identity API, keeps the effective permissions of the
// signed in user up to date and answers permission checks through a JSON
// status API built on fiber and a cobra command line.
package main
