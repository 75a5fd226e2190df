// Copyright © 2016 Sidharth Kshatriya
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceMapDoc is one loaded source map (spec §4.3's SourceMapRegistry
// entry), keyed by the generated script id that referenced it.
type sourceMapDoc struct {
	scriptID      string
	generatedURL  string
	mapURL        string
	sources        []string // raw, as they appear in the map
	resolved       []string // resolved-absolute form of sources
	sourcesContent []string // parallel to sources, when the map embeds content
	hasContent     bool
	mappings       []mapping // decoded, sorted by generated (line, col)
}

// mapping is one VLQ-decoded segment: generated position to original
// position, plus an optional name index.
type mapping struct {
	genLine, genCol       int
	source                int // index into sourceMapDoc.sources, or -1
	origLine, origCol     int
	name                  int // index into the map's names array, or -1
}

type sourceMapResolver struct {
	disabled bool
	docs     map[string]*sourceMapDoc // by scriptID

	// reverse index: raw or resolved source path -> owning doc
	bySource map[string]*sourceMapDoc
}

func newSourceMapResolver() *sourceMapResolver {
	return &sourceMapResolver{
		docs:     make(map[string]*sourceMapDoc),
		bySource: make(map[string]*sourceMapDoc),
	}
}

// disable is the operator-facing `sourcemap-disable` command (spec §4.3,
// "Disable flag"): every subsequent lookup short-circuits to a miss.
func (r *sourceMapResolver) disable() { r.disabled = true }

// rawSourceMapJSON is the subset of the source-map v3 format this resolver
// decodes. `sourcesContent` is optional; when present it lets
// getOriginalSource serve embedded text without touching the filesystem.
type rawSourceMapJSON struct {
	Version        int      `json:"version"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
	SourceRoot     string   `json:"sourceRoot"`
}

// load parses a source-map document referenced by scriptID/generatedURL's
// sourceMapURL attribute. Failures of every kind (bad data URI, missing
// file, invalid JSON) are silent per spec §4.3 — the script simply keeps
// functioning without source-map capability.
func (r *sourceMapResolver) load(scriptID, generatedURL, mapURL string) {
	payload, ok := fetchSourceMapPayload(generatedURL, mapURL)
	if !ok {
		return
	}

	var raw rawSourceMapJSON
	if err := json.Unmarshal(payload, &raw); err != nil {
		return
	}

	doc := &sourceMapDoc{
		scriptID:       scriptID,
		generatedURL:   generatedURL,
		mapURL:         mapURL,
		sources:        raw.Sources,
		sourcesContent: raw.SourcesContent,
		hasContent:     len(raw.SourcesContent) > 0,
		mappings:       decodeMappings(raw.Mappings),
	}

	base := mapURL
	if strings.HasPrefix(mapURL, "data:") {
		base = generatedURL
	}
	doc.resolved = make([]string, len(raw.Sources))
	for i, s := range raw.Sources {
		doc.resolved[i] = resolveSourcePath(base, raw.SourceRoot, s)
	}

	r.docs[scriptID] = doc
	for _, s := range doc.sources {
		r.bySource[s] = doc
	}
	for _, s := range doc.resolved {
		r.bySource[s] = doc
	}
}

// fetchSourceMapPayload retrieves the raw map bytes from a data: URI or
// from the filesystem, relative to the generated script's directory.
func fetchSourceMapPayload(generatedURL, mapURL string) ([]byte, bool) {
	if strings.HasPrefix(mapURL, "data:") {
		return decodeDataURI(mapURL)
	}

	path := mapURL
	if !filepath.IsAbs(path) && !isURL(path) {
		dir := filepath.Dir(stripFileScheme(generatedURL))
		path = filepath.Join(dir, path)
	}
	path = stripFileScheme(path)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return b, true
}

func isURL(s string) bool {
	return strings.Contains(s, "://")
}

func stripFileScheme(s string) string {
	return strings.TrimPrefix(s, "file://")
}

// decodeDataURI decodes `data:application/json;charset=...;base64,<...>`
// or percent-encoded data URIs, per the header.
func decodeDataURI(uri string) ([]byte, bool) {
	comma := strings.Index(uri, ",")
	if comma < 0 {
		return nil, false
	}
	header := uri[5:comma]
	payload := uri[comma+1:]

	if strings.Contains(header, "base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, false
		}
		return b, true
	}

	decoded, err := url.QueryUnescape(payload)
	if err != nil {
		return nil, false
	}
	return []byte(decoded), true
}

func resolveSourcePath(mapURLOrGenerated, sourceRoot, source string) string {
	if filepath.IsAbs(source) || isURL(source) {
		return stripFileScheme(source)
	}
	dir := filepath.Dir(stripFileScheme(mapURLOrGenerated))
	if sourceRoot != "" {
		return filepath.Join(dir, sourceRoot, source)
	}
	return filepath.Join(dir, source)
}

// originalLoc is the result of a forward translation.
type originalLoc struct {
	source string
	line   int
	column int
	name   string
}

// toOriginal is the forward translation of spec §4.3: 1-based generated
// line/column in, 1-based original line/column out. Returns ok=false when
// no map exists, or no mapping on that generated line starts at or before
// the column (see findMapping).
func (r *sourceMapResolver) toOriginal(scriptID string, line1, col int) (originalLoc, bool) {
	if r.disabled {
		return originalLoc{}, false
	}
	doc, ok := r.docs[scriptID]
	if !ok {
		return originalLoc{}, false
	}
	m, ok := findMapping(doc.mappings, line1-1, col, false)
	if !ok || m.source < 0 {
		return originalLoc{}, false
	}
	loc := originalLoc{
		source: doc.sourceAt(m.source),
		line:   m.origLine + 1,
		column: m.origCol,
	}
	if m.name >= 0 {
		loc.name = "" // names array isn't retained post-decode; see decodeMappings
	}
	return loc, true
}

func (d *sourceMapDoc) sourceAt(i int) string {
	if i < 0 || i >= len(d.resolved) {
		return ""
	}
	return d.resolved[i]
}

// resolveOriginalLocation implements the Option A fallback rule of spec
// §4.3: use an exact mapping when one exists, else synthesize
// {source: sources[0], line: generated line} so stack traces still show
// an original-source path.
func (r *sourceMapResolver) resolveOriginalLocation(scriptID string, line1, col int) (originalLoc, bool) {
	if loc, ok := r.toOriginal(scriptID, line1, col); ok {
		return loc, true
	}
	if r.disabled {
		return originalLoc{}, false
	}
	doc, ok := r.docs[scriptID]
	if !ok || len(doc.resolved) == 0 {
		return originalLoc{}, false
	}
	return originalLoc{source: doc.resolved[0], line: line1}, true
}

// generatedLoc is the result of a reverse translation.
type generatedLoc struct {
	scriptID string
	line     int
	column   int
}

// toGenerated is the reverse translation of spec §4.3. It tries the exact
// reverse index first, then suffix matching (either direction) against
// every loaded map's sources, then re-queries with a least-upper-bound
// bias if the exact position has no mapping.
func (r *sourceMapResolver) toGenerated(sourcePath string, line1, col int) (generatedLoc, bool) {
	if r.disabled {
		return generatedLoc{}, false
	}

	doc := r.bySource[sourcePath]
	if doc == nil {
		doc = r.findBySuffix(sourcePath)
	}
	if doc == nil {
		return generatedLoc{}, false
	}

	srcIdx := doc.indexOfSource(sourcePath)
	m, ok := findMappingBySource(doc.mappings, srcIdx, line1-1, col, true)
	if !ok {
		return generatedLoc{}, false
	}
	return generatedLoc{scriptID: doc.scriptID, line: m.genLine + 1, column: m.genCol}, true
}

func (d *sourceMapDoc) indexOfSource(path string) int {
	for i, s := range d.sources {
		if s == path {
			return i
		}
	}
	for i, s := range d.resolved {
		if s == path {
			return i
		}
	}
	for i, s := range d.sources {
		if suffixEither(s, path) || suffixEither(d.resolved[i], path) {
			return i
		}
	}
	return -1
}

func (r *sourceMapResolver) findBySuffix(path string) *sourceMapDoc {
	for _, doc := range r.docs {
		for _, s := range doc.sources {
			if suffixEither(s, path) {
				return doc
			}
		}
		for _, s := range doc.resolved {
			if suffixEither(s, path) {
				return doc
			}
		}
	}
	return nil
}

func suffixEither(a, b string) bool {
	return strings.HasSuffix(a, b) || strings.HasSuffix(b, a)
}

// getOriginalSource returns embedded source content for the source entry
// matching path (tolerating partial/suffix matches either direction).
func (r *sourceMapResolver) getOriginalSource(scriptID, path string) (string, bool) {
	if r.disabled {
		return "", false
	}
	doc, ok := r.docs[scriptID]
	if !ok || !doc.hasContent {
		return "", false
	}
	for i, s := range doc.sources {
		if s == path || doc.resolved[i] == path || suffixEither(s, path) || suffixEither(doc.resolved[i], path) {
			return doc.content(i), true
		}
	}
	return "", false
}

// content is filled in by load when sourcesContent is present; kept as a
// method so callers don't need to know the storage shape.
func (d *sourceMapDoc) content(i int) string {
	if i < 0 || i >= len(d.sourcesContent) {
		return ""
	}
	return d.sourcesContent[i]
}

// findScriptForSource returns the owning generated script id for an
// original-source path.
func (r *sourceMapResolver) findScriptForSource(path string) (string, bool) {
	if r.disabled {
		return "", false
	}
	if doc := r.bySource[path]; doc != nil {
		return doc.scriptID, true
	}
	if doc := r.findBySuffix(path); doc != nil {
		return doc.scriptID, true
	}
	return "", false
}

func (r *sourceMapResolver) hasMap(scriptID string) bool {
	if r.disabled {
		return false
	}
	_, ok := r.docs[scriptID]
	return ok
}

func (r *sourceMapResolver) firstSource(scriptID string) (string, bool) {
	if r.disabled {
		return "", false
	}
	doc, ok := r.docs[scriptID]
	if !ok || len(doc.resolved) == 0 {
		return "", false
	}
	return doc.resolved[0], true
}

// findMapping finds the mapping at exactly generated (line,col), or, when
// no exact mapping exists, the nearest mapping at or below the column on
// the same line. The bool parameter is ignored; original-coordinate
// lookups go through findMappingBySource instead.
func findMapping(ms []mapping, line, col int, _ bool) (mapping, bool) {
	lo := sort.Search(len(ms), func(i int) bool {
		return ms[i].genLine > line || (ms[i].genLine == line && ms[i].genCol >= col)
	})
	if lo < len(ms) && ms[lo].genLine == line && ms[lo].genCol == col {
		return ms[lo], true
	}
	// least-upper-bound-style fallback: nearest mapping at or below col,
	// same line.
	if lo > 0 && ms[lo-1].genLine == line {
		return ms[lo-1], true
	}
	return mapping{}, false
}

func findMappingBySource(ms []mapping, srcIdx, line, col int, exact bool) (mapping, bool) {
	var best mapping
	found := false
	for _, m := range ms {
		if m.source != srcIdx {
			continue
		}
		if m.origLine != line {
			continue
		}
		if m.origCol == col {
			return m, true
		}
		if m.origCol <= col && (!found || m.origCol > best.origCol) {
			best = m
			found = true
		}
	}
	return best, found
}
