package service

import (
	"regexp"
	"strconv"
)

// Compatibility shim for migration-era element ids.
//
// Before stable slide ids existed, element ids embedded the 1-based slide
// position directly (`slide-3-textbox-abc` lived on the third slide). Such
// ids tie an element to a position, not an identity: the moment slides are
// reordered or one is deleted, the encoded number stops matching and the
// element is an orphan. New elements carry ParentSlideID instead; this shim
// only exists until the last positional ids are migrated.

var legacyElementID = regexp.MustCompile(`^slide-(\d+)-`)

// legacyIDMatchesPosition reports whether id uses the legacy positional
// scheme and its encoded slide number matches the slide currently at
// slideIndex (0-based).
func legacyIDMatchesPosition(id string, slideIndex int) bool {
	m := legacyElementID.FindStringSubmatch(id)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return n == slideIndex+1
}
