package models

// Countries lists the markets offered to rankings lookups.
var Countries = []Country{
	{Code: "US", Name: "United States"},
	{Code: "GB", Name: "United Kingdom"},
	{Code: "CA", Name: "Canada"},
	{Code: "AU", Name: "Australia"},
	{Code: "DE", Name: "Germany"},
	{Code: "FR", Name: "France"},
	{Code: "IT", Name: "Italy"},
	{Code: "ES", Name: "Spain"},
	{Code: "BR", Name: "Brazil"},
	{Code: "MX", Name: "Mexico"},
	{Code: "JP", Name: "Japan"},
	{Code: "KR", Name: "South Korea"},
	{Code: "IN", Name: "India"},
	{Code: "NL", Name: "Netherlands"},
	{Code: "SE", Name: "Sweden"},
	{Code: "NO", Name: "Norway"},
	{Code: "DK", Name: "Denmark"},
	{Code: "FI", Name: "Finland"},
	{Code: "CH", Name: "Switzerland"},
	{Code: "AT", Name: "Austria"},
	{Code: "BE", Name: "Belgium"},
	{Code: "PT", Name: "Portugal"},
	{Code: "IE", Name: "Ireland"},
	{Code: "PL", Name: "Poland"},
	{Code: "CZ", Name: "Czech Republic"},
	{Code: "HU", Name: "Hungary"},
	{Code: "RO", Name: "Romania"},
	{Code: "BG", Name: "Bulgaria"},
	{Code: "HR", Name: "Croatia"},
	{Code: "SI", Name: "Slovenia"},
	{Code: "SK", Name: "Slovakia"},
	{Code: "LT", Name: "Lithuania"},
	{Code: "LV", Name: "Latvia"},
	{Code: "EE", Name: "Estonia"},
	{Code: "GR", Name: "Greece"},
	{Code: "CY", Name: "Cyprus"},
	{Code: "MT", Name: "Malta"},
	{Code: "LU", Name: "Luxembourg"},
	{Code: "IS", Name: "Iceland"},
	{Code: "RU", Name: "Russia"},
	{Code: "UA", Name: "Ukraine"},
	{Code: "BY", Name: "Belarus"},
	{Code: "MD", Name: "Moldova"},
	{Code: "GE", Name: "Georgia"},
	{Code: "AM", Name: "Armenia"},
	{Code: "AZ", Name: "Azerbaijan"},
	{Code: "TR", Name: "Turkey"},
	{Code: "IL", Name: "Israel"},
	{Code: "SA", Name: "Saudi Arabia"},
	{Code: "AE", Name: "United Arab Emirates"},
	{Code: "QA", Name: "Qatar"},
	{Code: "KW", Name: "Kuwait"},
	{Code: "BH", Name: "Bahrain"},
	{Code: "OM", Name: "Oman"},
	{Code: "JO", Name: "Jordan"},
	{Code: "LB", Name: "Lebanon"},
	{Code: "SY", Name: "Syria"},
	{Code: "IQ", Name: "Iraq"},
	{Code: "IR", Name: "Iran"},
	{Code: "AF", Name: "Afghanistan"},
	{Code: "PK", Name: "Pakistan"},
	{Code: "BD", Name: "Bangladesh"},
	{Code: "LK", Name: "Sri Lanka"},
	{Code: "NP", Name: "Nepal"},
	{Code: "BT", Name: "Bhutan"},
	{Code: "MV", Name: "Maldives"},
	{Code: "MY", Name: "Malaysia"},
	{Code: "SG", Name: "Singapore"},
	{Code: "TH", Name: "Thailand"},
	{Code: "VN", Name: "Vietnam"},
	{Code: "PH", Name: "Philippines"},
	{Code: "ID", Name: "Indonesia"},
	{Code: "MM", Name: "Myanmar"},
	{Code: "LA", Name: "Laos"},
	{Code: "KH", Name: "Cambodia"},
	{Code: "BN", Name: "Brunei"},
	{Code: "TL", Name: "Timor-Leste"},
	{Code: "CN", Name: "China"},
	{Code: "TW", Name: "Taiwan"},
	{Code: "HK", Name: "Hong Kong"},
	{Code: "MO", Name: "Macau"},
	{Code: "MN", Name: "Mongolia"},
	{Code: "KP", Name: "North Korea"},
	{Code: "NZ", Name: "New Zealand"},
	{Code: "FJ", Name: "Fiji"},
	{Code: "PG", Name: "Papua New Guinea"},
	{Code: "SB", Name: "Solomon Islands"},
	{Code: "VU", Name: "Vanuatu"},
	{Code: "NC", Name: "New Caledonia"},
	{Code: "PF", Name: "French Polynesia"},
	{Code: "AR", Name: "Argentina"},
	{Code: "CL", Name: "Chile"},
	{Code: "PE", Name: "Peru"},
	{Code: "CO", Name: "Colombia"},
	{Code: "VE", Name: "Venezuela"},
	{Code: "EC", Name: "Ecuador"},
	{Code: "BO", Name: "Bolivia"},
	{Code: "PY", Name: "Paraguay"},
	{Code: "UY", Name: "Uruguay"},
	{Code: "GY", Name: "Guyana"},
	{Code: "SR", Name: "Suriname"},
	{Code: "GF", Name: "French Guiana"},
	{Code: "FK", Name: "Falkland Islands"},
	{Code: "ZA", Name: "South Africa"},
	{Code: "EG", Name: "Egypt"},
	{Code: "NG", Name: "Nigeria"},
	{Code: "KE", Name: "Kenya"},
	{Code: "GH", Name: "Ghana"},
	{Code: "ET", Name: "Ethiopia"},
	{Code: "TZ", Name: "Tanzania"},
	{Code: "UG", Name: "Uganda"},
	{Code: "DZ", Name: "Algeria"},
	{Code: "MA", Name: "Morocco"},
	{Code: "TN", Name: "Tunisia"},
	{Code: "LY", Name: "Libya"},
	{Code: "SD", Name: "Sudan"},
	{Code: "SS", Name: "South Sudan"},
	{Code: "CM", Name: "Cameroon"},
	{Code: "CI", Name: "Ivory Coast"},
	{Code: "BF", Name: "Burkina Faso"},
	{Code: "ML", Name: "Mali"},
	{Code: "NE", Name: "Niger"},
	{Code: "TD", Name: "Chad"},
	{Code: "CF", Name: "Central African Republic"},
	{Code: "CG", Name: "Republic of the Congo"},
	{Code: "CD", Name: "Democratic Republic of the Congo"},
	{Code: "GA", Name: "Gabon"},
	{Code: "GQ", Name: "Equatorial Guinea"},
	{Code: "ST", Name: "São Tomé and Príncipe"},
	{Code: "AO", Name: "Angola"},
	{Code: "ZM", Name: "Zambia"},
	{Code: "ZW", Name: "Zimbabwe"},
	{Code: "BW", Name: "Botswana"},
	{Code: "NA", Name: "Namibia"},
	{Code: "SZ", Name: "Eswatini"},
	{Code: "LS", Name: "Lesotho"},
	{Code: "MG", Name: "Madagascar"},
	{Code: "MU", Name: "Mauritius"},
	{Code: "SC", Name: "Seychelles"},
	{Code: "KM", Name: "Comoros"},
	{Code: "DJ", Name: "Djibouti"},
	{Code: "SO", Name: "Somalia"},
	{Code: "ER", Name: "Eritrea"},
	{Code: "RW", Name: "Rwanda"},
	{Code: "BI", Name: "Burundi"},
	{Code: "MW", Name: "Malawi"},
	{Code: "MZ", Name: "Mozambique"},
	{Code: "MG", Name: "Madagascar"},
	{Code: "RE", Name: "Réunion"},
	{Code: "YT", Name: "Mayotte"},
	{Code: "CV", Name: "Cape Verde"},
	{Code: "GM", Name: "Gambia"},
	{Code: "GN", Name: "Guinea"},
	{Code: "GW", Name: "Guinea-Bissau"},
	{Code: "SL", Name: "Sierra Leone"},
	{Code: "LR", Name: "Liberia"},
	{Code: "TG", Name: "Togo"},
	{Code: "BJ", Name: "Benin"},
	{Code: "SN", Name: "Senegal"},
	{Code: "MR", Name: "Mauritania"},
	{Code: "EH", Name: "Western Sahara"},
	{Code: "SH", Name: "Saint Helena"},
	{Code: "AC", Name: "Ascension Island"},
	{Code: "TA", Name: "Tristan da Cunha"},
}

// CountryName resolves a country code to its display name, falling back to the code itself.
func CountryName(code string) string {
	for _, c := range Countries {
		if c.Code == code {
			return c.Name
		}
	}
	return code
}
