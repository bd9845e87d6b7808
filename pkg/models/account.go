package models

import (
	"fmt"
	"strings"
)

// AccountType decides which resource policy applies to a submitter.
type AccountType int

const (
	AccountTypeDefault AccountType = iota
	AccountTypeResearch
	AccountTypeRoot
)

var accountTypeNames = map[AccountType]string{
	AccountTypeDefault:  "Default",
	AccountTypeResearch: "Research",
	AccountTypeRoot:     "Root",
}

// AccountTypes lists every account type in declaration order.
func AccountTypes() []AccountType {
	return []AccountType{AccountTypeDefault, AccountTypeResearch, AccountTypeRoot}
}

func (a AccountType) String() string {
	if name, ok := accountTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AccountType(%d)", int(a))
}

// ParseAccountType returns the account type matching name, case-insensitively.
// An empty name maps to the default account type.
func ParseAccountType(name string) (AccountType, error) {
	if name == "" {
		return AccountTypeDefault, nil
	}
	for _, typ := range AccountTypes() {
		if strings.EqualFold(typ.String(), name) {
			return typ, nil
		}
	}
	return AccountTypeDefault, fmt.Errorf("unknown account type %q", name)
}

func (a AccountType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountType) UnmarshalText(text []byte) error {
	typ, err := ParseAccountType(string(text))
	if err != nil {
		return err
	}
	*a = typ
	return nil
}

// Caller is an already authenticated and authorized identity.
// The scheduler uses it for bookkeeping and policy selection only.
type Caller struct {
	Username    string      `json:"Username"`
	AccountType AccountType `json:"AccountType"`
}
