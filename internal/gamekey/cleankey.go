// SPDX-License-Identifier: MPL-2.0

package gamekey

import (
	"regexp"
	"strings"
)

// suffixRule strips suffix from a key unless the key matches keep.
type suffixRule struct {
	suffix string
	keep   *regexp.Regexp
}

// cleanRules drop packaging suffixes from raw keys. They run in order until
// the key stops changing.
var cleanRules = []suffixRule{
	{suffix: "_base_game"},
	{suffix: "_base", keep: regexp.MustCompile(`(^|_)second_base$`)},
	{suffix: "_game", keep: regexp.MustCompile(`_(the|video|action|adventure|playing)_game$`)},
}

// Clean removes the "_base_game", "_base" and "_game" packaging suffixes
// from a raw game key. Keys ending in "second_base" or in a qualified game
// word such as "the_game" or "video_game" keep their suffix. Clean is
// idempotent.
func Clean(raw string) string {
	key := raw
	for {
		next := key
		for _, rule := range cleanRules {
			if rule.keep != nil && rule.keep.MatchString(next) {
				continue
			}
			next = strings.TrimSuffix(next, rule.suffix)
		}
		if next == key {
			return key
		}
		key = next
	}
}
