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
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// StateOptions selects which sections BuildState fills in, mirroring the
// `state` command's optional {vars?, stack?, breakpoints?, code?, frame?,
// allScopes?, generated?, lines?} arguments (spec §4.6). A nil flag means
// "include" — only an explicit false suppresses a section — so a bare
// `state` call still returns the full snapshot.
type StateOptions struct {
	Vars        *bool
	Stack       *bool
	Breakpoints *bool
	Code        *bool
	Frame       string
	AllScopes   bool
	Generated   bool
	Lines       int
}

func optIn(b *bool) bool { return b == nil || *b }

// LocationView is a (url, line, column) triple, translated to original
// source coordinates unless the caller asked for generated ones.
type LocationView struct {
	URL    string
	Line   int
	Column int
}

// CodeView is a window of source lines around the current pause location.
type CodeView struct {
	URL     string
	Lines   []string
	Start   int // 1-based line number of Lines[0]
	Current int
}

// StateView is the `state` command's shape: a snapshot of everything a
// CLI front-end needs to render a prompt without issuing further
// requests (spec §4.6).
type StateView struct {
	Status          string
	Reason          string        `json:",omitempty"`
	Location        *LocationView `json:",omitempty"`
	Source          *CodeView     `json:",omitempty"`
	Locals          []PropView    `json:",omitempty"`
	Stack           []FrameView   `json:",omitempty"`
	BreakpointCount *int          `json:",omitempty"`
}

// BuildState returns a consistent snapshot of the session's top-level
// state, the command behind the CLI's `state` subcommand (spec §4.6).
// When paused, the frame named by opts.Frame (or the top frame) is
// resolved to an index before volatile handles are cleared, so an
// explicitly passed @fN from a previous snapshot still selects the right
// frame even though it no longer resolves afterward.
func (s *Session) BuildState(opts StateOptions) (StateView, error) {
	view := StateView{Status: string(s.state)}
	if s.state != statePaused {
		return view, nil
	}

	idx := 0
	if opts.Frame != "" {
		entry, err := s.refs.resolveKind(opts.Frame, refFrame)
		if err != nil {
			return StateView{}, err
		}
		if i, ok := entry.meta["index"].(int); ok {
			idx = i
		}
	}
	if idx < 0 || idx >= len(s.frames) {
		return StateView{}, ErrUnknownRef{Ref: opts.Frame}
	}

	s.refs.clearVolatile()
	s.remintFrameHandles()
	frame := &s.frames[idx]

	view.Reason = s.pause.reason
	url, line, col := s.translateLocation(frame.scriptID, frame.line, frame.column, opts.Generated)
	view.Location = &LocationView{URL: url, Line: line, Column: col}

	if optIn(opts.Code) {
		view.Source = s.buildCodeWindow(frame.scriptID, line, opts.Lines, opts.Generated)
	}
	if optIn(opts.Stack) {
		stack := make([]FrameView, 0, len(s.frames))
		for i := range s.frames {
			stack = append(stack, s.frameView(&s.frames[i], opts.Generated))
		}
		view.Stack = stack
	}
	if optIn(opts.Vars) {
		vars, err := s.collectFrameVars(frame, opts.AllScopes, nil)
		if err != nil {
			return StateView{}, err
		}
		view.Locals = vars
	}
	if optIn(opts.Breakpoints) {
		count := s.bps.activeCount()
		view.BreakpointCount = &count
	}
	return view, nil
}

// remintFrameHandles allocates a fresh @fN handle for every current frame
// from its preserved remoteID, the step that has to follow
// refTable.clearVolatile whenever a snapshot needs fresh frame handles
// mid-pause (BuildState, GetStack).
func (s *Session) remintFrameHandles() {
	for i := range s.frames {
		s.frames[i].frameID = s.refs.addFrame(s.frames[i].remoteID, i)
	}
}

// selectFrame resolves a frame handle to the underlying frame, defaulting
// to the top of the stack when handle is empty. Shared by GetVars, Eval
// and RestartFrame so a default-frame lookup never depends on whether
// BuildState/GetStack has re-minted handles yet — onPaused always mints
// an initial handle, and the empty-handle path here never touches the
// ref table at all.
func (s *Session) selectFrame(handle string) (*callFrame, error) {
	if s.state != statePaused {
		return nil, ErrBadState{Expected: string(statePaused), Actual: string(s.state)}
	}
	if len(s.frames) == 0 {
		return nil, ErrUnknownRef{Ref: handle}
	}
	if handle == "" {
		return &s.frames[0], nil
	}
	entry, err := s.refs.resolveKind(handle, refFrame)
	if err != nil {
		return nil, err
	}
	idx, _ := entry.meta["index"].(int)
	if idx < 0 || idx >= len(s.frames) {
		return nil, ErrUnknownRef{Ref: handle}
	}
	return &s.frames[idx], nil
}

// translateLocation applies the Option A source-map fallback of spec
// §4.3 to a generated (scriptID, line, column), unless generated is true.
func (s *Session) translateLocation(scriptID string, line, col int, generated bool) (url string, outLine, outCol int) {
	outLine, outCol = line, col
	if sc, ok := s.scripts[scriptID]; ok {
		url = sc.url
	}
	if generated {
		return url, outLine, outCol
	}
	if loc, ok := s.maps.resolveOriginalLocation(scriptID, line, col); ok {
		return loc.source, loc.line, loc.column
	}
	return url, outLine, outCol
}

func (s *Session) frameView(f *callFrame, generated bool) FrameView {
	url, line, col := s.translateLocation(f.scriptID, f.line, f.column, generated)
	return FrameView{Handle: f.frameID, FunctionName: f.functionName, ScriptURL: url, Line: line, Column: col}
}

// FrameView is one entry of GetStack's result.
type FrameView struct {
	Handle       string
	FunctionName string
	ScriptURL    string
	Line         int
	Column       int
}

// buildStackSection clears volatile refs, re-mints fresh @fN handles, and
// returns translated frame views. Used by the standalone GetStack
// command; BuildState inlines the equivalent loop instead of calling
// this, so a single BuildState call only clears volatile refs once.
func (s *Session) buildStackSection(generated bool) []FrameView {
	s.refs.clearVolatile()
	s.remintFrameHandles()
	out := make([]FrameView, 0, len(s.frames))
	for i := range s.frames {
		out = append(out, s.frameView(&s.frames[i], generated))
	}
	return out
}

// GetStack lists the current call frames, most recent first, per spec
// §4.6. Only valid while paused; s.frames is nil outside a pause.
func (s *Session) GetStack(generated bool) ([]FrameView, error) {
	if s.state != statePaused {
		return nil, ErrBadState{Expected: string(statePaused), Actual: string(s.state)}
	}
	return s.buildStackSection(generated), nil
}

// buildCodeWindow fetches source text for scriptID (preferring original
// source via the source map unless generated is true) and slices a
// window of halfWindow lines on either side of displayLine.
func (s *Session) buildCodeWindow(scriptID string, displayLine, halfWindow int, generated bool) *CodeView {
	if halfWindow <= 0 {
		halfWindow = 3
	}
	text, url, err := s.sourceTextFor(scriptID, !generated)
	if err != nil {
		return nil
	}
	lines := strings.Split(text, "\n")
	start := displayLine - halfWindow
	if start < 1 {
		start = 1
	}
	end := displayLine + halfWindow
	if end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) || end < start {
		return &CodeView{URL: url, Current: displayLine}
	}
	return &CodeView{URL: url, Lines: lines[start-1 : end], Start: start, Current: displayLine}
}

// sourceTextFor fetches source text for scriptID. preferOriginal tries
// the source map's embedded or on-disk original source first, falling
// back to the runtime's own Debugger.getScriptSource either way.
func (s *Session) sourceTextFor(scriptID string, preferOriginal bool) (text, url string, err error) {
	sc, ok := s.scripts[scriptID]
	if !ok {
		return "", "", ErrScriptNotFound{Path: scriptID}
	}
	if preferOriginal {
		if src, hasSrc := s.maps.firstSource(scriptID); hasSrc {
			if t, hasText := s.maps.getOriginalSource(scriptID, src); hasText {
				return t, src, nil
			}
			if b, rerr := os.ReadFile(src); rerr == nil {
				return string(b), src, nil
			}
		}
	}

	raw, serr := s.send("Debugger.getScriptSource", dpGetScriptSourceParams{ScriptID: sc.id})
	if serr != nil {
		return "", "", serr
	}
	var res dpGetScriptSourceResult
	if uerr := json.Unmarshal(raw, &res); uerr != nil {
		return "", "", ErrEvalFailed{Text: uerr.Error()}
	}
	return res.ScriptSource, sc.url, nil
}

// resolveScriptByPath finds the script whose generated id or url matches
// path: an exact scriptID, a suffix match against a loaded script's url
// (tolerating a file:// prefix on either side), or a source-map reverse
// lookup when path names an original source instead. Shared by GetSource,
// RunTo and GetBreakable.
func (s *Session) resolveScriptByPath(path string) (string, error) {
	if _, ok := s.scripts[path]; ok {
		return path, nil
	}
	for _, id := range s.scriptsBy {
		if sc, ok := s.scripts[id]; ok && suffixMatchURL(sc.url, path) {
			return id, nil
		}
	}
	if scriptID, ok := s.maps.findScriptForSource(path); ok {
		return scriptID, nil
	}
	return "", ErrScriptNotFound{Path: path}
}

func suffixMatchURL(url, path string) bool {
	u := strings.TrimPrefix(url, "file://")
	p := strings.TrimPrefix(path, "file://")
	return strings.HasSuffix(u, p) || strings.HasSuffix(p, u)
}

type dpCallArgument struct {
	Expression string `json:"expression"`
}

type dpEvaluateOnCallFrameParams struct {
	CallFrameID string `json:"callFrameId"`
	Expression  string `json:"expression"`
}

type dpEvaluateParams struct {
	Expression    string `json:"expression"`
	ReturnByValue bool   `json:"returnByValue"`
}

type dpEvaluateResult struct {
	Result           dpRemoteObjFull     `json:"result"`
	ExceptionDetails *dpExceptionDetails `json:"exceptionDetails,omitempty"`
}

type dpRemoteObjFull struct {
	Type        string      `json:"type"`
	Subtype     string      `json:"subtype"`
	ClassName   string      `json:"className"`
	Description string      `json:"description"`
	ObjectID    string      `json:"objectId"`
	Value       interface{} `json:"value"`
}

// EvalResult is the value returned to a caller of Eval.
type EvalResult struct {
	Handle      string // @vN minted for every result, primitive or reference-typed
	Type        string
	Description string
	Value       interface{}
}

// dpCallFunctionOnArg is one entry of Runtime.callFunctionOn's arguments
// array: either a bound remote object or a plain JSON value.
type dpCallFunctionOnArg struct {
	ObjectID string      `json:"objectId,omitempty"`
	Value    interface{} `json:"value,omitempty"`
}

type dpCallFunctionOnFullParams struct {
	ObjectID             string                `json:"objectId"`
	FunctionDeclaration  string                `json:"functionDeclaration"`
	Arguments            []dpCallFunctionOnArg `json:"arguments,omitempty"`
	ReturnByValue        bool                  `json:"returnByValue"`
}

// handleOccurrenceRE finds every @v/@o/@f-style handle token in an eval
// expression — spec §4.6's handle interpolation.
var handleOccurrenceRE = regexp.MustCompile(`@[vof]\d+`)

// rewriteForHandles implements spec §4.6's handle interpolation: every
// @vN/@oN token in expression is replaced either with a JS literal (when
// it names a primitive) or with a parameter identifier bound through
// Runtime.callFunctionOn (when it names a live object), since DP's plain
// evaluate/evaluateOnCallFrame have no way to splice a remote object into
// an expression string directly.
func (s *Session) rewriteForHandles(expression string) (rewritten string, args []dpCallFunctionOnArg, targetObjectID string, useCallFunctionOn bool, err error) {
	tokens := dedupeStrings(handleOccurrenceRE.FindAllString(expression, -1))
	if len(tokens) == 0 {
		return expression, nil, "", false, nil
	}

	entries := make([]*refEntry, len(tokens))
	hasObjectRef := false
	for i, tok := range tokens {
		entry, ok := s.refs.resolve(tok)
		if !ok {
			return "", nil, "", false, ErrUnknownRef{Ref: tok}
		}
		entries[i] = entry
		if entry.isObject {
			hasObjectRef = true
		}
	}

	if !hasObjectRef {
		rewritten = expression
		for i, tok := range tokens {
			rewritten = strings.ReplaceAll(rewritten, tok, jsLiteralOf(entries[i].meta["value"]))
		}
		return rewritten, nil, "", false, nil
	}

	rewritten = expression
	args = make([]dpCallFunctionOnArg, len(tokens))
	for i, tok := range tokens {
		ident := fmt.Sprintf("__jsdbg_h%d", i)
		rewritten = strings.ReplaceAll(rewritten, tok, ident)
		if entries[i].isObject {
			args[i] = dpCallFunctionOnArg{ObjectID: entries[i].remoteID}
			if targetObjectID == "" {
				targetObjectID = entries[i].remoteID
			}
		} else {
			args[i] = dpCallFunctionOnArg{Value: entries[i].meta["value"]}
		}
	}
	return rewritten, args, targetObjectID, true, nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func jsLiteralOf(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "undefined"
	}
	return string(b)
}

func paramNames(n int) string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("__jsdbg_h%d", i)
	}
	return strings.Join(names, ", ")
}

// Eval evaluates an expression in the context of frameHandle (or the top
// frame when frameHandle is empty) while paused, or the global context
// otherwise (spec §4.6). Any @vN/@oN handle occurring in expression is
// interpolated per rewriteForHandles; when that requires binding a live
// object, the expression is wrapped as a function body and run through
// Runtime.callFunctionOn instead of a plain evaluate call. Every result
// mints a fresh @vN (spec §3's "variable/value" kind covers eval results,
// not just scope properties): a reference-typed result is bound to the
// runtime's objectId rather than returning it raw, and a primitive is
// stored by value under a synthetic eval:<timestamp> id.
func (s *Session) Eval(expression, frameHandle string) (EvalResult, error) {
	rewritten, args, targetObjectID, useCallFunctionOn, err := s.rewriteForHandles(expression)
	if err != nil {
		return EvalResult{}, err
	}

	var raw []byte
	switch {
	case useCallFunctionOn:
		decl := "function(" + paramNames(len(args)) + ") { return (" + rewritten + "); }"
		raw, err = s.send("Runtime.callFunctionOn", dpCallFunctionOnFullParams{
			ObjectID:            targetObjectID,
			FunctionDeclaration: decl,
			Arguments:           args,
			ReturnByValue:       false,
		})
	case s.state == statePaused:
		frame, ferr := s.selectFrame(frameHandle)
		if ferr != nil {
			return EvalResult{}, ferr
		}
		raw, err = s.send("Debugger.evaluateOnCallFrame", dpEvaluateOnCallFrameParams{
			CallFrameID: frame.remoteID,
			Expression:  rewritten,
		})
	default:
		raw, err = s.send("Runtime.evaluate", dpEvaluateParams{Expression: rewritten})
	}
	if err != nil {
		return EvalResult{}, err
	}

	var res dpEvaluateResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return EvalResult{}, ErrEvalFailed{Text: err.Error()}
	}
	if res.ExceptionDetails != nil {
		return EvalResult{}, ErrEvalFailed{Text: res.ExceptionDetails.Text}
	}

	out := EvalResult{Type: res.Result.Type, Description: res.Result.Description, Value: res.Result.Value}
	if res.Result.ObjectID != "" {
		out.Handle = s.refs.addVar(res.Result.ObjectID, true, "", nil)
	} else {
		out.Handle = s.refs.addVar(fmt.Sprintf("eval:%d", time.Now().UnixNano()), false, "", res.Result.Value)
	}
	return out, nil
}

// scopeIncluded applies the scope-kind inclusion policy of spec §9/§4.6:
// local/module/block/script are always surfaced, as are catch/eval/with
// whenever a frame happens to carry one; closure is opt-in via
// allScopes; global and wasm-expression-stack are never surfaced.
func scopeIncluded(kind string, allScopes bool) bool {
	switch kind {
	case "local", "module", "block", "script", "catch", "eval", "with":
		return true
	case "closure":
		return allScopes
	default:
		return false
	}
}

// collectFrameVars walks frame's scope chain applying the inclusion
// policy, minting a fresh @vN handle for every surfaced property (spec
// §3's "variable/value" kind). names, when non-nil, restricts results to
// that set of property names.
func (s *Session) collectFrameVars(frame *callFrame, allScopes bool, names map[string]bool) ([]PropView, error) {
	var out []PropView
	for _, sc := range frame.scopeChain {
		if !scopeIncluded(sc.kind, allScopes) || sc.remoteObjectID == "" {
			continue
		}
		raw, err := s.send("Runtime.getProperties", dpGetPropertiesParams{ObjectID: sc.remoteObjectID, OwnProperties: true})
		if err != nil {
			continue
		}
		var res dpGetPropertiesResult
		if err := json.Unmarshal(raw, &res); err != nil {
			continue
		}
		for _, d := range res.Result {
			if strings.HasPrefix(d.Name, "__") {
				continue
			}
			if names != nil && !names[d.Name] {
				continue
			}
			pv := PropView{Name: d.Name, Writable: d.Writable}
			if d.Value != nil {
				pv.Type = d.Value.Type
				pv.Value = d.Value.Value
				if d.Value.ObjectID != "" {
					pv.Handle = s.refs.addVar(d.Value.ObjectID, true, d.Name, nil)
				} else {
					pv.Handle = s.refs.addVar("", false, d.Name, d.Value.Value)
				}
			}
			out = append(out, pv)
		}
	}
	return out, nil
}

// GetVars lists the variables visible in a frame's scope chain, the
// frame identified by frameHandle, or the top frame when frameHandle is
// empty (spec §4.6's getVars). allScopes opts closure scopes in; names,
// when non-empty, restricts the result to those property names.
func (s *Session) GetVars(frameHandle string, allScopes bool, names []string) ([]PropView, error) {
	frame, err := s.selectFrame(frameHandle)
	if err != nil {
		return nil, err
	}
	var nameSet map[string]bool
	if len(names) > 0 {
		nameSet = make(map[string]bool, len(names))
		for _, n := range names {
			nameSet[n] = true
		}
	}
	return s.collectFrameVars(frame, allScopes, nameSet)
}

// PropView is one property of GetProps's result.
type PropView struct {
	Name     string
	Handle   string // GetVars sets it for every property; GetProps only for reference-typed values
	Type     string
	Value    interface{}
	Writable bool
}

type dpGetPropertiesParams struct {
	ObjectID      string `json:"objectId"`
	OwnProperties bool   `json:"ownProperties"`
}

type dpPropertyDescriptor struct {
	Name     string           `json:"name"`
	Value    *dpRemoteObjFull `json:"value,omitempty"`
	Writable bool             `json:"writable"`
}

type dpGetPropertiesResult struct {
	Result []dpPropertyDescriptor `json:"result"`
}

// GetProps lists the own properties of the object behind handle, minting
// a fresh @oN for any nested object (spec §3's "expanded object property"
// kind, deliberately distinct from @vN: it is not cleared on resume or on
// the next pause, only by clearObjects/clearAll). handle may be an @oN from a prior GetProps call or a
// @vN that turned out to hold an object.
func (s *Session) GetProps(handle string) ([]PropView, error) {
	entry, err := s.refs.resolveValueKind(handle)
	if err != nil {
		return nil, err
	}
	if !entry.isObject {
		return nil, ErrBadRefKind{Ref: handle, ExpectedKind: "object-valued v or o"}
	}

	raw, err := s.send("Runtime.getProperties", dpGetPropertiesParams{ObjectID: entry.remoteID, OwnProperties: true})
	if err != nil {
		return nil, err
	}

	var res dpGetPropertiesResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, ErrEvalFailed{Text: err.Error()}
	}

	out := make([]PropView, 0, len(res.Result))
	for _, d := range res.Result {
		pv := PropView{Name: d.Name, Writable: d.Writable}
		if d.Value != nil {
			pv.Type = d.Value.Type
			pv.Value = d.Value.Value
			if d.Value.ObjectID != "" {
				pv.Handle = s.refs.addObject(d.Value.ObjectID, d.Value.ClassName)
			}
		}
		out = append(out, pv)
	}
	return out, nil
}

// ScriptView is one entry of GetScripts's result.
type ScriptView struct {
	ID           string
	URL          string
	HasSourceMap bool
	Blackboxed   bool
}

// GetScripts lists every parsed script in load order.
func (s *Session) GetScripts() []ScriptView {
	out := make([]ScriptView, 0, len(s.scriptsBy))
	for _, id := range s.scriptsBy {
		sc, ok := s.scripts[id]
		if !ok {
			continue
		}
		out = append(out, ScriptView{
			ID:           sc.id,
			URL:          sc.url,
			HasSourceMap: sc.sourceMapURL != "",
			Blackboxed:   s.isBlackboxed(sc.url),
		})
	}
	return out
}

type dpGetScriptSourceParams struct {
	ScriptID string `json:"scriptId"`
}

type dpGetScriptSourceResult struct {
	ScriptSource string `json:"scriptSource"`
}

// GetSource returns the source text for file — a scriptID, a loaded
// script's url, or an original source path a loaded map covers — via
// resolveScriptByPath, preferring the original source behind a loaded
// source map when one is available and not disabled.
func (s *Session) GetSource(file string) (string, error) {
	scriptID, err := s.resolveScriptByPath(file)
	if err != nil {
		return "", err
	}
	text, _, err := s.sourceTextFor(scriptID, true)
	return text, err
}

// SearchResult is one match from SearchInScripts.
type SearchResult struct {
	ScriptID string
	Line     int
	Text     string
}

// SearchInScripts searches every loaded script's source (or only
// scriptID's) line by line, for query as a literal substring or, with
// isRegex, as a regular expression; caseSensitive false makes either
// match ignore case (spec §4.6's search command). There is no DP search
// endpoint this engine relies on (Debugger.searchInContent exists but
// ties results to the runtime's own line numbering, which would bypass
// source-map translation); fetching via GetSource keeps search results
// consistent with everything else this package already resolves to
// original-source coordinates.
func (s *Session) SearchInScripts(query, scriptID string, isRegex, caseSensitive bool) ([]SearchResult, error) {
	if query == "" {
		return nil, ErrInvalidArgument{Field: "query", Reason: "must not be empty"}
	}
	var re *regexp.Regexp
	if isRegex {
		pattern := query
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, ErrInvalidArgument{Field: "query", Reason: "not a valid regular expression: " + err.Error()}
		}
		re = compiled
	}
	match := func(line string) bool {
		if re != nil {
			return re.MatchString(line)
		}
		if caseSensitive {
			return strings.Contains(line, query)
		}
		return strings.Contains(strings.ToLower(line), strings.ToLower(query))
	}

	ids := s.scriptsBy
	if scriptID != "" {
		ids = []string{scriptID}
	}
	var out []SearchResult
	for _, id := range ids {
		text, err := s.GetSource(id)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(text, "\n") {
			if match(line) {
				out = append(out, SearchResult{ScriptID: id, Line: i + 1, Text: line})
			}
		}
	}
	return out, nil
}

// GetConsole returns up to limit most recent console messages, optionally
// filtered to one exact level and/or to entries since a given timestamp
// (spec §4.6's console{level?,since?}).
func (s *Session) GetConsole(limit int, level string, since int64) []consoleMessage {
	buf := s.console
	if level != "" || since != 0 {
		filtered := make([]consoleMessage, 0, len(buf))
		for _, m := range buf {
			if level != "" && m.level != level {
				continue
			}
			if since != 0 && m.ts <= since {
				continue
			}
			filtered = append(filtered, m)
		}
		buf = filtered
	}
	return tailOf(buf, limit)
}

// ClearConsole empties the console ring buffer (spec §4.6's
// console{clear:true}).
func (s *Session) ClearConsole() {
	s.console = nil
}

// GetExceptions returns up to limit most recent exceptions, optionally
// filtered to entries since a given timestamp (spec §4.6's
// exceptions{since?}).
func (s *Session) GetExceptions(limit int, since int64) []exceptionEntry {
	buf := s.exceptions
	if since != 0 {
		filtered := make([]exceptionEntry, 0, len(buf))
		for _, e := range buf {
			if e.ts > since {
				filtered = append(filtered, e)
			}
		}
		buf = filtered
	}
	return tailOf(buf, limit)
}

func tailOf[T any](buf []T, limit int) []T {
	if limit <= 0 || limit >= len(buf) {
		return buf
	}
	return buf[len(buf)-limit:]
}

type dpBreakLocation struct {
	ScriptID     string `json:"scriptId"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
}

type dpGetPossibleBreakpointsResult struct {
	Locations []dpBreakLocation `json:"locations"`
}

// BreakableLine is one line GetBreakable reports a statement boundary on.
type BreakableLine struct {
	Line   int
	Column int
}

// GetBreakable reports which lines in [startLine, endLine] of a script
// actually have a statement boundary the runtime can stop on, the
// breakable command's job (spec §4.5) — useful for a CLI to avoid
// setting a breakpoint on a comment or a closing brace that the runtime
// would silently relocate. file is resolved to a script through
// resolveScriptByPath.
func (s *Session) GetBreakable(file string, startLine, endLine int) ([]BreakableLine, error) {
	scriptID, err := s.resolveScriptByPath(file)
	if err != nil {
		return nil, err
	}
	raw, err := s.send("Debugger.getPossibleBreakpoints", struct {
		Start dpLocation `json:"start"`
		End   dpLocation `json:"end,omitempty"`
	}{
		Start: dpLocation{ScriptID: scriptID, LineNumber: startLine - 1},
		End:   dpLocation{ScriptID: scriptID, LineNumber: endLine},
	})
	if err != nil {
		return nil, err
	}
	var res dpGetPossibleBreakpointsResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, ErrEvalFailed{Text: err.Error()}
	}
	out := make([]BreakableLine, 0, len(res.Locations))
	for _, loc := range res.Locations {
		out = append(out, BreakableLine{Line: loc.LineNumber + 1, Column: loc.ColumnNumber})
	}
	return out, nil
}

// SourceMapView answers the sourcemap query command: whether a script
// has a loaded map, and the original sources it covers.
type SourceMapView struct {
	ScriptID string
	HasMap   bool
	Sources  []string
}

// GetSourceMapInfo reports source-map status for one script, or for
// every script with a map when scriptID is empty.
func (s *Session) GetSourceMapInfo(scriptID string) []SourceMapView {
	if scriptID != "" {
		if doc, ok := s.maps.docs[scriptID]; ok {
			return []SourceMapView{{ScriptID: scriptID, HasMap: true, Sources: doc.resolved}}
		}
		return []SourceMapView{{ScriptID: scriptID, HasMap: false}}
	}
	out := make([]SourceMapView, 0, len(s.maps.docs))
	for id, doc := range s.maps.docs {
		out = append(out, SourceMapView{ScriptID: id, HasMap: true, Sources: doc.resolved})
	}
	return out
}

func (s *Session) isBlackboxed(url string) bool {
	for _, pattern := range s.blackbox {
		if strings.Contains(url, pattern) {
			return true
		}
	}
	return false
}
