package domain

// FinalDay is the last day of the program in the app's internal numbering.
//
// The server compresses one calendar checkpoint out of its numbering, so its
// final day is 99 while the app keeps a denser 1..100 range. The two mapping
// functions below are identity everywhere except that single boundary pair
// and must be applied immediately before every outbound request and
// immediately after decoding every inbound payload.
const (
	FinalDay         = 100
	externalFinalDay = 99
)

// ExternalDay translates an internal day index to the server's numbering.
func ExternalDay(internal int) int {
	if internal == FinalDay {
		return externalFinalDay
	}
	return internal
}

// InternalDay translates a server day index to the app's numbering.
func InternalDay(external int) int {
	if external == externalFinalDay {
		return FinalDay
	}
	return external
}
