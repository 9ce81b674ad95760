// Package gharchive reads GH Archive hourly gzip files line by line and walks
// the events of a single account out of them
//
// Lines are scanned with a 32MB cap so huge push payloads still fit.
// Malformed lines are skipped; payloads stay raw until classification.
package gharchive
