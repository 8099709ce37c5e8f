// Package locale holds the translated strings of the recorder and picks a
// language for a request.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default is used when nothing better matches.
const Default = "en"

//go:embed bundles/*.json
var bundleFS embed.FS

// Bundle is the message set of one language.
type Bundle struct {
	code     string
	messages map[string]string
	printer  *message.Printer
	fallback *Bundle
}

var (
	loadOnce sync.Once
	bundles  map[string]*Bundle
	codes    []string
	matcher  language.Matcher
)

func load() {
	entries, err := bundleFS.ReadDir("bundles")
	if err != nil {
		panic(fmt.Sprintf("locale: read bundles: %v", err))
	}
	bundles = make(map[string]*Bundle, len(entries))
	for _, e := range entries {
		code := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		raw, err := bundleFS.ReadFile(path.Join("bundles", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("locale: read %s: %v", e.Name(), err))
		}
		b := &Bundle{code: code}
		if err := json.Unmarshal(raw, &b.messages); err != nil {
			panic(fmt.Sprintf("locale: parse %s: %v", e.Name(), err))
		}
		b.printer = message.NewPrinter(language.Make(code))
		bundles[code] = b
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		// the default goes first so the matcher falls back to it
		if codes[i] == Default || codes[j] == Default {
			return codes[i] == Default
		}
		return codes[i] < codes[j]
	})
	tags := make([]language.Tag, 0, len(codes))
	for _, c := range codes {
		tags = append(tags, language.Make(c))
		if c != Default {
			bundles[c].fallback = bundles[Default]
		}
	}
	matcher = language.NewMatcher(tags)
}

// Languages lists the available two-letter codes, default first.
func Languages() []string {
	loadOnce.Do(load)
	return append([]string(nil), codes...)
}

// Lookup returns the bundle for code, or the default bundle.
func Lookup(code string) *Bundle {
	loadOnce.Do(load)
	if b, ok := bundles[strings.ToLower(strings.TrimSpace(code))]; ok {
		return b
	}
	return bundles[Default]
}

// Match picks a bundle from an Accept-Language header value.
func Match(acceptLanguage string) *Bundle {
	loadOnce.Do(load)
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return bundles[Default]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return bundles[Default]
	}
	return bundles[codes[idx]]
}

func (b *Bundle) Code() string { return b.code }

// T formats the message stored under key. Missing keys fall back to the
// default language, then to the key itself.
func (b *Bundle) T(key string, args ...any) string {
	format, ok := b.messages[key]
	if !ok && b.fallback != nil {
		format, ok = b.fallback.messages[key]
	}
	if !ok {
		return key
	}
	return fmt.Sprintf(format, args...)
}

// Chips formats an amount with the language's digit grouping.
func (b *Bundle) Chips(n int64) string {
	return b.printer.Sprintf("%d", n)
}
