package models

import "strings"

// AccountType represents the type of bank account
type AccountType string

const (
	AccountTypePersonalChecking AccountType = "personal_checking"
	AccountTypePersonalSavings  AccountType = "personal_savings"
	AccountTypeBusinessChecking AccountType = "business_checking"
	AccountTypeBusinessSavings  AccountType = "business_savings"
)

// Wire codes for DDAAccountType and CheckType
const (
	DDAAccountTypeChecking = "0"
	DDAAccountTypeSavings  = "1"

	CheckTypePersonal = "0"
	CheckTypeBusiness = "1"
)

// IsSavings reports whether the account is a savings account
func (a AccountType) IsSavings() bool {
	return strings.HasSuffix(string(a), "_savings")
}

// IsBusiness reports whether the account belongs to a business
func (a AccountType) IsBusiness() bool {
	return strings.HasPrefix(string(a), "business_")
}

// Valid reports whether a is one of the known account types
func (a AccountType) Valid() bool {
	switch a {
	case AccountTypePersonalChecking, AccountTypePersonalSavings,
		AccountTypeBusinessChecking, AccountTypeBusinessSavings:
		return true
	}
	return false
}

// DDAAccountType returns the vendor demand deposit account code
func (a AccountType) DDAAccountType() string {
	if a.IsSavings() {
		return DDAAccountTypeSavings
	}
	return DDAAccountTypeChecking
}

// CheckType returns the vendor check type code
func (a AccountType) CheckType() string {
	if a.IsBusiness() {
		return CheckTypeBusiness
	}
	return CheckTypePersonal
}

// AccountTypeFromCodes rebuilds an AccountType from vendor wire codes
func AccountTypeFromCodes(ddaAccountType, checkType string) AccountType {
	savings := ddaAccountType == DDAAccountTypeSavings
	business := checkType == CheckTypeBusiness
	switch {
	case business && savings:
		return AccountTypeBusinessSavings
	case business:
		return AccountTypeBusinessChecking
	case savings:
		return AccountTypePersonalSavings
	default:
		return AccountTypePersonalChecking
	}
}
