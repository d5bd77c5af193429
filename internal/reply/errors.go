package reply

import "fmt"

// These mirror the error taxonomy in §7 and the literal wording the
// end-to-end scenarios in §8 assert against. original_source/app/messages.py's
// no_gps() returns a 1-tuple due to a trailing comma in the Python source;
// that is a bug, not a behavior to preserve, so this returns a plain string.

func NoGPS() string {
	return "TrekSafer ERROR: No GPS location found"
}

func OutsideOfArea() string {
	return "TrekSafer ERROR: GPS coordinates outside of supported fire perimeter area."
}

func NoFires(effectiveRadiusKM float64) string {
	return fmt.Sprintf("TrekSafer ERROR: No fires found within %g km.", effectiveRadiusKM)
}

func AvalancheUnavailable() string {
	return "TrekSafer ERROR: No avalanche forecast available for this location."
}

func AvalancheOutsideArea() string {
	return "TrekSafer ERROR: GPS coordinates outside of supported avalanche forecast area."
}

// UnknownDataType corresponds to the unknown_data_type entry in §7's
// taxonomy. The parser never produces a DataType outside
// {auto, fire, avalanche}, so this path is not reachable through normal
// routing; it exists for completeness and for router code that dispatches
// on an exhaustive switch.
func UnknownDataType() string {
	return "TrekSafer ERROR: Unrecognized request type."
}
