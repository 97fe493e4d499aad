package model

import "strings"

// DeSO codes are nine characters: four-digit kommun code (of which the
// first two digits are the län code), a letter A-C for the area class,
// and a four-digit serial, e.g. "0114A0010".
const desoCodeLen = 9

// ValidDesoCode reports whether s looks like a DeSO area code. It checks
// shape only, not existence against the official register.
func ValidDesoCode(s string) bool {
	if len(s) != desoCodeLen {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	if !strings.ContainsRune("ABC", rune(s[4])) {
		return false
	}
	for i := 5; i < desoCodeLen; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// KommunCode returns the four-digit municipality code prefix of a DeSO
// code, or "" if the code is too short.
func KommunCode(deso string) string {
	if len(deso) < 4 {
		return ""
	}
	return deso[:4]
}

// LanCode returns the two-digit county code prefix of a DeSO code, or ""
// if the code is too short.
func LanCode(deso string) string {
	if len(deso) < 2 {
		return ""
	}
	return deso[:2]
}
