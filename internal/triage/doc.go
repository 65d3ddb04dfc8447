// Package triage classifies a vitals snapshot into a severity tier.
//
// The Classifier is pure: it holds an immutable threshold table, performs no
// I/O and keeps no state between calls, so one instance can be shared by any
// number of goroutines. Callers supply the patient's recent history (newest
// first); the classifier reads at most the first two entries.
//
// All temperature thresholds are calibrated in Fahrenheit. Temperatures enter
// the package only as a Temperature value built with Fahrenheit or Celsius, so
// a Celsius reading cannot be compared against Fahrenheit thresholds by
// accident.
package triage
