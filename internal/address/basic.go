package address

// requiredField pairs a field name with its accessor.
type requiredField struct {
	name  string
	value func(Address) string
}

// requiredFields are checked in this order; the first blank one is reported.
// Line1 and Line2 are not checked.
var requiredFields = []requiredField{
	{"city", func(a Address) string { return a.City }},
	{"state", func(a Address) string { return a.State }},
	{"country", func(a Address) string { return a.Country }},
	{"zip", func(a Address) string { return a.Zip }},
	{"latitude", func(a Address) string { return a.Latitude }},
	{"longitude", func(a Address) string { return a.Longitude }},
}

// checkRequiredFields performs the presence checks of the manual cascade.
func checkRequiredFields(a Address) error {
	for _, f := range requiredFields {
		if isBlank(f.value(a)) {
			return errMissingField(f.name)
		}
	}
	return nil
}
