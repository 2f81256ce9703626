package service

import "strings"

var euroCountries = []string{
	"AT", "BE", "CY", "DE", "EE", "ES", "FI", "FR", "GR", "HR", "IE", "IT",
	"LT", "LU", "LV", "MT", "NL", "PT", "SI", "SK", "AD", "MC", "SM", "VA", "ME", "XK",
}

// countryCurrency ISO 3166-1 国家代码到 ISO 4217 货币代码
var countryCurrency = map[string]string{
	"US": "USD", "CA": "CAD", "MX": "MXN", "BR": "BRL", "AR": "ARS", "CL": "CLP", "CO": "COP", "PE": "PEN",
	"GB": "GBP", "CH": "CHF", "NO": "NOK", "SE": "SEK", "DK": "DKK", "PL": "PLN", "CZ": "CZK", "HU": "HUF",
	"RO": "RON", "BG": "BGN", "RS": "RSD", "IS": "ISK", "UA": "UAH", "RU": "RUB", "TR": "TRY", "IL": "ILS",
	"CN": "CNY", "HK": "HKD", "MO": "MOP", "TW": "TWD", "JP": "JPY", "KR": "KRW", "IN": "INR", "PK": "PKR",
	"BD": "BDT", "SG": "SGD", "MY": "MYR", "TH": "THB", "VN": "VND", "ID": "IDR", "PH": "PHP",
	"AU": "AUD", "NZ": "NZD", "AE": "AED", "SA": "SAR", "QA": "QAR", "KW": "KWD", "EG": "EGP",
	"ZA": "ZAR", "NG": "NGN", "KE": "KES", "MA": "MAD",
}

func init() {
	for _, c := range euroCountries {
		countryCurrency[c] = "EUR"
	}
}

// CurrencyForCountry 未收录的国家返回空字符串
func CurrencyForCountry(isoCode string) string {
	return countryCurrency[strings.ToUpper(isoCode)]
}
