package snippet

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Service translates snippet keys. Lookups for an unknown locale or a key
// missing in the locale fall back to the default locale, then to the key.
type Service struct {
	fallback string

	mu       sync.RWMutex
	catalogs map[string]map[string]string
	tags     []language.Tag
	isos     []string
	matcher  language.Matcher
}

// NewService loads files from fsys. Base bundles are loaded first so other
// bundles of the same locale override them. fallback names the locale used
// when nothing matches.
func NewService(fsys fs.FS, fallback string, files ...File) (*Service, error) {
	ordered := make([]File, len(files))
	copy(ordered, files)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].IsBase() && !ordered[j].IsBase()
	})

	s := &Service{fallback: fallback, catalogs: make(map[string]map[string]string)}
	for _, f := range ordered {
		if err := s.load(fsys, f); err != nil {
			return nil, err
		}
	}
	if _, ok := s.catalogs[fallback]; !ok {
		return nil, fmt.Errorf("no bundle for fallback locale %s", fallback)
	}
	s.buildMatcher()
	return s, nil
}

func (s *Service) load(fsys fs.FS, f File) error {
	data, err := fs.ReadFile(fsys, f.Path())
	if err != nil {
		return fmt.Errorf("read snippet file %s: %w", f.Name(), err)
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse snippet file %s: %w", f.Name(), err)
	}

	if _, err := language.Parse(f.ISO()); err != nil {
		return fmt.Errorf("snippet file %s: invalid locale %q: %w", f.Name(), f.ISO(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	catalog, ok := s.catalogs[f.ISO()]
	if !ok {
		catalog = make(map[string]string)
		s.catalogs[f.ISO()] = catalog
	}
	flatten("", tree, catalog)
	return nil
}

// buildMatcher orders the fallback locale first, which makes it the
// matcher's default.
func (s *Service) buildMatcher() {
	isos := []string{s.fallback}
	for iso := range s.catalogs {
		if iso != s.fallback {
			isos = append(isos, iso)
		}
	}
	sort.Strings(isos[1:])

	tags := make([]language.Tag, len(isos))
	for i, iso := range isos {
		tags[i] = language.MustParse(iso)
	}

	s.isos = isos
	s.tags = tags
	s.matcher = language.NewMatcher(tags)
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			flatten(key, t, out)
		case string:
			out[key] = t
		default:
			out[key] = fmt.Sprint(t)
		}
	}
}

// Resolve maps a requested locale, e.g. "en-US" or "en", to a loaded one.
func (s *Service) Resolve(locale string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.catalogs[locale]; ok {
		return locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return s.fallback
	}
	_, idx, conf := s.matcher.Match(tag)
	if conf == language.No {
		return s.fallback
	}
	return s.isos[idx]
}

// Trans translates key for locale. params replace "%name%" placeholders.
func (s *Service) Trans(locale, key string, params map[string]string) string {
	iso := s.Resolve(locale)

	s.mu.RLock()
	msg, ok := s.catalogs[iso][key]
	if !ok {
		msg, ok = s.catalogs[s.fallback][key]
	}
	s.mu.RUnlock()
	if !ok {
		return key
	}

	if len(params) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "%"+strings.Trim(k, "%")+"%", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Locales returns the loaded locales, fallback first.
func (s *Service) Locales() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.isos))
	copy(out, s.isos)
	return out
}
