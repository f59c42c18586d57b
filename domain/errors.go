package domain

const (
	CodeBrandAlreadyExists   = "BRAND_ALREADY_EXISTS"
	CodeCountryAlreadyExists = "COUNTRY_ALREADY_EXISTS"
)

// ConflictCodes maps unique constraints to domain error codes. PostgreSQL
// reports index names, SQLite reports "table.column".
func ConflictCodes() map[string]string {
	return map[string]string{
		"brands_common_name_uidx":    CodeBrandAlreadyExists,
		"brands.common_name":         CodeBrandAlreadyExists,
		"countries_alpha2_code_uidx": CodeCountryAlreadyExists,
		"countries.alpha2_code":      CodeCountryAlreadyExists,
	}
}
