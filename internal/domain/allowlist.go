package domain

import "strings"

// AllowList is a set of lower-cased GitHub logins.
type AllowList map[string]struct{}

// NewAllowList builds an AllowList from the union of the given login lists.
func NewAllowList(lists ...[]string) AllowList {
	a := make(AllowList)
	for _, list := range lists {
		for _, login := range list {
			a.Add(login)
		}
	}
	return a
}

// Add inserts login, ignoring case and surrounding whitespace. Empty logins are dropped.
func (a AllowList) Add(login string) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return
	}
	a[login] = struct{}{}
}

// Contains reports whether login is allow-listed, ignoring case.
func (a AllowList) Contains(login string) bool {
	if login == "" {
		return false
	}
	_, ok := a[strings.ToLower(login)]
	return ok
}
