package textmatch

// KnownCities are the pickup cities served from the yard.
var KnownCities = []string{
	"Vancouver",
	"Burnaby",
	"Richmond",
	"Surrey",
	"Langley",
	"Coquitlam",
	"Port Coquitlam",
	"Port Moody",
	"Maple Ridge",
	"Pitt Meadows",
	"Abbotsford",
	"Chilliwack",
	"Mission",
	"Delta",
	"North Vancouver",
	"West Vancouver",
	"New Westminster",
}

// CityAliases maps frequent speech-to-text misses onto a city.
var CityAliases = map[string]string{
	"hobbits":      "Abbotsford",
	"hobits":       "Abbotsford",
	"abotsford":    "Abbotsford",
	"vancover":     "Vancouver",
	"surree":       "Surrey",
	"poco":         "Port Coquitlam",
	"new west":     "New Westminster",
	"north van":    "North Vancouver",
	"west van":     "West Vancouver",
	"chilli whack": "Chilliwack",
}

// KnownMakes are the vehicle makes callers usually name.
var KnownMakes = []string{
	"Acura",
	"Audi",
	"BMW",
	"Buick",
	"Cadillac",
	"Chevrolet",
	"Chrysler",
	"Dodge",
	"Fiat",
	"Ford",
	"GMC",
	"Honda",
	"Hyundai",
	"Infiniti",
	"Jaguar",
	"Jeep",
	"Kia",
	"Land Rover",
	"Lexus",
	"Lincoln",
	"Mazda",
	"Mercedes-Benz",
	"Mini",
	"Mitsubishi",
	"Nissan",
	"Oldsmobile",
	"Plymouth",
	"Pontiac",
	"Porsche",
	"Ram",
	"Saturn",
	"Subaru",
	"Suzuki",
	"Tesla",
	"Toyota",
	"Volkswagen",
	"Volvo",
}

// MakeAliases maps nicknames and common mishearings onto a make.
var MakeAliases = map[string]string{
	"chevy":    "Chevrolet",
	"chev":     "Chevrolet",
	"vw":       "Volkswagen",
	"v w":      "Volkswagen",
	"mercedes": "Mercedes-Benz",
	"benz":     "Mercedes-Benz",
	"beamer":   "BMW",
	"bimmer":   "BMW",
	"b m w":    "BMW",
	"toyoda":   "Toyota",
	"hunda":    "Honda",
	"hyandai":  "Hyundai",
	"g m c":    "GMC",
}

// NewCityMatcher returns a matcher over KnownCities and CityAliases.
func NewCityMatcher() *Matcher {
	return NewMatcher(KnownCities, CityAliases)
}

// NewMakeMatcher returns a matcher over KnownMakes and MakeAliases.
func NewMakeMatcher() *Matcher {
	return NewMatcher(KnownMakes, MakeAliases)
}
