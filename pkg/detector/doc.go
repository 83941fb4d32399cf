// Package detector provides the Detector contract and the catalog of
// concrete detectors: declarative regex and keyword pattern tables plus
// conversation-flow rules. Detectors produce neutral signals; policy packs
// decide what the signals mean.
//
// All detectors in this package are deterministic and side-effect free.
// The single I/O-bearing detector (the external classifier adapter) lives
// in the classifier subpackage.
package detector
