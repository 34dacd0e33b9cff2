// Package system detects host facts the bootstrap depends on: the
// operating system flavor, the available system package manager, and
// whether passwordless elevated privilege is available.
//
// Facts are detected once per run and carried through the pipeline, so
// every step sees the same privilege decision even if a cached sudo
// credential expires mid-run.
package system
