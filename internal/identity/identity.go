// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/gogunpack/gogunpack/internal/installer"
)

// SourceTypeInfoFile is the source type whose folders carry !info.txt.
const SourceTypeInfoFile = "gog-service"

var (
	unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

type (
	// Subject is the folder whose identity is being resolved.
	Subject struct {
		SourceType string
		// CleanKey is the game key with packaging suffixes removed.
		CleanKey string
		// Dir is the absolute path of the game's source folder.
		Dir string
	}

	// Identity is a resolved name and optional version.
	Identity struct {
		Name    string
		Version *string
	}

	// Strategy produces one candidate value for a subject.
	Strategy interface {
		Resolve(ctx context.Context, s Subject) (string, bool)
	}

	// StrategyFunc adapts a function to Strategy.
	StrategyFunc func(ctx context.Context, s Subject) (string, bool)

	// NameLookup finds canonical product names by game key.
	NameLookup interface {
		LookupName(ctx context.Context, key string) (string, bool)
	}

	// Resolver runs the name and version strategy chains.
	Resolver struct {
		names    []Strategy
		versions []Strategy
	}
)

// Resolve calls f.
func (f StrategyFunc) Resolve(ctx context.Context, s Subject) (string, bool) {
	return f(ctx, s)
}

// NewResolver builds the standard chains. lookup may be nil to skip the
// database layer.
func NewResolver(lookup NameLookup) *Resolver {
	names := []Strategy{StrategyFunc(infoFileName)}
	if lookup != nil {
		names = append(names, LookupStrategy(lookup))
	}
	names = append(names, StrategyFunc(keyName))

	return NewResolverWith(names, []Strategy{StrategyFunc(infoFileVersion), StrategyFunc(FilenameVersion)})
}

// NewResolverWith builds a resolver from explicit chains.
func NewResolverWith(names, versions []Strategy) *Resolver {
	return &Resolver{names: names, versions: versions}
}

// Resolve runs both chains. Name is empty only if every name strategy fails.
func (r *Resolver) Resolve(ctx context.Context, s Subject) Identity {
	var id Identity
	if name, ok := first(ctx, r.names, s); ok {
		id.Name = name
	}
	if version, ok := first(ctx, r.versions, s); ok {
		id.Version = &version
	}
	return id
}

func first(ctx context.Context, chain []Strategy, s Subject) (string, bool) {
	for _, strategy := range chain {
		if v, ok := strategy.Resolve(ctx, s); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// LookupStrategy resolves names through the product lookup database.
func LookupStrategy(lookup NameLookup) Strategy {
	return StrategyFunc(func(ctx context.Context, s Subject) (string, bool) {
		return lookup.LookupName(ctx, s.CleanKey)
	})
}

// FilenameVersion extracts the version from the base installer name,
// e.g. "setup_mygame_1.5.0_(64bit)_(12345).exe" yields "1.5.0".
func FilenameVersion(_ context.Context, s Subject) (string, bool) {
	base, ok := installer.Base(s.CleanKey, s.Dir)
	if !ok {
		return "", false
	}
	return VersionFromFilename(s.CleanKey, base)
}

// VersionFromFilename applies the installer naming convention to filename.
func VersionFromFilename(cleanKey, filename string) (string, bool) {
	re := regexp.MustCompile(`(?i)^setup_` + installer.KeyPattern(cleanKey) + `(.+?)(?:_\(64bit\))?_\(\d+\)\.exe$`)
	m := re.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return strings.Trim(m[1], "_-"), true
}

func keyName(_ context.Context, s Subject) (string, bool) {
	name := strings.TrimSpace(Title(strings.ReplaceAll(s.CleanKey, "_", " ")))
	slog.Info("could not determine game name, using cleaned key", "key", s.CleanKey, "name", name)
	return name, name != ""
}

// Title upper-cases the first letter of every word and lower-cases the
// rest, where a word starts after any non-letter: "3rd" becomes "3Rd".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeName makes a name usable as a folder name: path-unsafe characters
// become spaces and whitespace runs collapse to one space.
func SanitizeName(name string) string {
	name = unsafeNameChars.ReplaceAllString(name, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))
}

// ASCII drops every non-ASCII rune.
func ASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
}
