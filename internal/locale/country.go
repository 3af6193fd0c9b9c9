package locale

import "strings"

// alpha2 to alpha3 country codes for the markets the storefront ships to
var countryAlpha3 = map[string]string{
	"AT": "AUT",
	"AU": "AUS",
	"BE": "BEL",
	"CA": "CAN",
	"CH": "CHE",
	"CN": "CHN",
	"CZ": "CZE",
	"DE": "DEU",
	"DK": "DNK",
	"ES": "ESP",
	"FI": "FIN",
	"FR": "FRA",
	"GB": "GBR",
	"IE": "IRL",
	"IT": "ITA",
	"JP": "JPN",
	"MX": "MEX",
	"NL": "NLD",
	"NO": "NOR",
	"NZ": "NZL",
	"PL": "POL",
	"PT": "PRT",
	"SE": "SWE",
	"US": "USA",
}

// CountryFromLocale extracts the upper-case country code from a locale id
// like "en_US", or empty when the locale carries no country.
func CountryFromLocale(localeID string) string {
	parts := strings.Split(localeID, "_")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToUpper(parts[1])
}

// CountryAlpha3 returns the three-letter country code for a locale id, or
// empty when unknown.
func CountryAlpha3(localeID string) string {
	return countryAlpha3[CountryFromLocale(localeID)]
}
