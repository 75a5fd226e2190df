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

package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentdbg/jsdbg/ctlproto"
	"github.com/agentdbg/jsdbg/engine"
)

// dispatch is the closed command set's single entry point, the
// generalization of the teacher's per-command handler functions
// (handleStepInto, handleBreakpointSetLineBreakpoint, etc. across
// step.go/other_commands.go/breakpoints.go) collapsed into one switch
// since this daemon's commands arrive as JSON objects, not DBGp's
// positional command-line syntax that needed a handler per verb anyway.
func dispatch(sess *engine.Session, req ctlproto.Request) ctlproto.Response {
	switch req.Cmd {
	case "ping":
		return ctlproto.OK(map[string]string{"pong": "jsdbg"})

	case "launch":
		var args struct {
			Command []string `json:"command"`
			Brk     bool     `json:"brk"`
			Port    int      `json:"port"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if len(args.Command) == 0 {
			return ctlproto.Fail("launch requires a non-empty command", "pass command: [\"node\", \"script.js\"]")
		}
		warning, err := sess.Launch(context.Background(), engine.LaunchOptions{
			Command: args.Command[0], Args: args.Command[1:],
			BreakOnStart: args.Brk, Port: args.Port,
		})
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.Response{Ok: true, Warning: warning}

	case "attach":
		var args struct {
			Target string `json:"target"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if err := sess.Attach(engine.AttachOptions{WSURL: args.Target}); err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(nil)

	case "status":
		return ctlproto.OK(sess.GetStatus())

	case "state":
		var args struct {
			Compact     string `json:"compact"`
			Depth       string `json:"depth"`
			Vars        *bool  `json:"vars"`
			Stack       *bool  `json:"stack"`
			Breakpoints *bool  `json:"breakpoints"`
			Code        *bool  `json:"code"`
			Frame       string `json:"frame"`
			AllScopes   bool   `json:"allScopes"`
			Generated   bool   `json:"generated"`
			Lines       int    `json:"lines"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if args.Compact != "" {
			_ = sess.SetPref("compact", args.Compact)
		}
		if args.Depth != "" {
			_ = sess.SetPref("depth", args.Depth)
		}
		view, err := sess.BuildState(engine.StateOptions{
			Vars: args.Vars, Stack: args.Stack, Breakpoints: args.Breakpoints, Code: args.Code,
			Frame: args.Frame, AllScopes: args.AllScopes, Generated: args.Generated, Lines: args.Lines,
		})
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(view)

	case "continue":
		info, err := sess.Continue()
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(info)

	case "step":
		var args struct {
			Mode string `json:"mode"`
		}
		_ = ctlproto.Decode(req.Args, &args)
		var info interface{}
		var err error
		switch args.Mode {
		case "over", "":
			info, err = sess.StepOver()
		case "into":
			info, err = sess.StepInto()
		case "out":
			info, err = sess.StepOut()
		default:
			return ctlproto.Fail("unknown step mode "+args.Mode, "use over, into, or out")
		}
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(info)

	case "pause":
		if err := sess.Pause(); err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(nil)

	case "run-to":
		var args struct {
			File string `json:"file"`
			Line int    `json:"line"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		info, err := sess.RunTo(args.File, args.Line, 0)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(info)

	case "break":
		var args struct {
			File      string `json:"file"`
			Line      int    `json:"line"`
			Condition string `json:"condition"`
			HitCount  int    `json:"hitCount"`
			URLRegex  string `json:"urlRegex"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if args.File == "" && args.URLRegex == "" {
			return ctlproto.Fail("break requires file or urlRegex", "pass break{file:\"...\",line:N} or break{urlRegex:\"...\",line:N}")
		}
		handle, err := sess.SetBreakpoint(args.File, args.Line, 0, args.Condition, args.HitCount, args.URLRegex)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(map[string]string{"ref": handle})

	case "break-rm":
		var args struct {
			Ref string `json:"ref"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if err := sess.RemoveBreakpoint(args.Ref); err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(nil)

	case "break-ls":
		return ctlproto.OK(sess.ListBreakpoints())

	case "break-toggle":
		var args struct {
			Ref     string `json:"ref"`
			Enabled bool   `json:"enabled"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if err := sess.ToggleBreakpoint(args.Ref, args.Enabled); err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(nil)

	case "breakable":
		var args struct {
			File      string `json:"file"`
			StartLine int    `json:"startLine"`
			EndLine   int    `json:"endLine"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		lines, err := sess.GetBreakable(args.File, args.StartLine, args.EndLine)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(lines)

	case "logpoint":
		var args struct {
			File     string `json:"file"`
			Line     int    `json:"line"`
			Template string `json:"template"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		handle, err := sess.SetLogpoint(args.File, args.Line, 0, args.Template)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(map[string]string{"ref": handle})

	case "catch":
		var args struct {
			Mode string `json:"mode"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if err := sess.SetExceptionPauseMode(args.Mode); err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(nil)

	case "source":
		var args struct {
			File string `json:"file"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		text, err := sess.GetSource(args.File)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(map[string]string{"source": text})

	case "scripts":
		return ctlproto.OK(sess.GetScripts())

	case "stack":
		var args struct {
			Generated bool `json:"generated"`
		}
		_ = ctlproto.Decode(req.Args, &args)
		frames, err := sess.GetStack(args.Generated)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(frames)

	case "search":
		var args struct {
			Query         string `json:"query"`
			ScriptID      string `json:"scriptId"`
			IsRegex       bool   `json:"isRegex"`
			CaseSensitive bool   `json:"caseSensitive"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		results, err := sess.SearchInScripts(args.Query, args.ScriptID, args.IsRegex, args.CaseSensitive)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(results)

	case "console":
		var args struct {
			Limit int    `json:"limit"`
			Level string `json:"level"`
			Since int64  `json:"since"`
			Clear bool   `json:"clear"`
		}
		_ = ctlproto.Decode(req.Args, &args)
		out := sess.GetConsole(args.Limit, args.Level, args.Since)
		if args.Clear {
			sess.ClearConsole()
		}
		return ctlproto.OK(out)

	case "exceptions":
		var args struct {
			Limit int   `json:"limit"`
			Since int64 `json:"since"`
		}
		_ = ctlproto.Decode(req.Args, &args)
		return ctlproto.OK(sess.GetExceptions(args.Limit, args.Since))

	case "eval":
		var args struct {
			Expression string `json:"expression"`
			Frame      string `json:"frame"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		result, err := sess.Eval(args.Expression, args.Frame)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(result)

	case "vars":
		var args struct {
			Frame     string   `json:"frame"`
			AllScopes bool     `json:"allScopes"`
			Names     []string `json:"names"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		vars, err := sess.GetVars(args.Frame, args.AllScopes, args.Names)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(vars)

	case "props":
		var args struct {
			Ref string `json:"ref"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		props, err := sess.GetProps(args.Ref)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(props)

	case "blackbox":
		var args struct {
			Patterns []string `json:"patterns"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		for _, p := range args.Patterns {
			if err := sess.Blackbox(p); err != nil {
				return fromErr(err)
			}
		}
		return ctlproto.OK(nil)

	case "blackbox-ls":
		return ctlproto.OK(sess.BlackboxList())

	case "blackbox-rm":
		var args struct {
			Patterns []string `json:"patterns"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		for _, p := range args.Patterns {
			if err := sess.BlackboxRemove(p); err != nil {
				return fromErr(err)
			}
		}
		return ctlproto.OK(nil)

	case "set":
		var args struct {
			Ref   string `json:"ref"`
			Name  string `json:"name"`
			Value string `json:"value"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if err := sess.SetVariable(args.Ref, args.Name, args.Value); err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(nil)

	case "set-return":
		var args struct {
			Value string `json:"value"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		if err := sess.SetReturnValue(args.Value); err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(nil)

	case "hotpatch":
		var args struct {
			File   string `json:"file"`
			Source string `json:"source"`
			DryRun bool   `json:"dryRun"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		status, err := sess.Hotpatch(args.File, args.Source, args.DryRun)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(map[string]string{"status": status})

	case "restart-frame":
		var args struct {
			FrameRef string `json:"frameRef"`
		}
		if err := ctlproto.Decode(req.Args, &args); err != nil {
			return invalidArgs(err)
		}
		info, err := sess.RestartFrame(args.FrameRef)
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(info)

	case "sourcemap":
		var args struct {
			File string `json:"file"`
		}
		_ = ctlproto.Decode(req.Args, &args)
		return ctlproto.OK(sess.GetSourceMapInfo(args.File))

	case "sourcemap-disable":
		sess.DisableSourceMaps()
		return ctlproto.OK(nil)

	case "restart":
		warning, err := sess.Restart()
		if err != nil {
			return fromErr(err)
		}
		return ctlproto.Response{Ok: true, Warning: warning}

	case "stop":
		if err := sess.Stop(); err != nil {
			return fromErr(err)
		}
		return ctlproto.OK(nil)

	default:
		return ctlproto.Fail(fmt.Sprintf("unknown command %q", req.Cmd), "see `jsdbg help` for the command list")
	}
}

func invalidArgs(err error) ctlproto.Response {
	return ctlproto.Fail("invalid arguments: "+err.Error(), "")
}

// fromErr translates an engine error into a Response, attaching a
// suggestion for the error kinds where one is obvious — the
// generalization of the teacher's `panicWith`/`log.Fatal` calls
// (features.go, breakpoints.go) that printed a human-actionable message
// straight to the terminal, into a structured field a remote CLI process
// can render however it likes.
func fromErr(err error) ctlproto.Response {
	var suggestion string
	switch {
	case errors.As(err, &engine.ErrBadState{}):
		suggestion = "check `jsdbg status` for the session's current state"
	case errors.As(err, &engine.ErrUnknownRef{}):
		suggestion = "the reference may have been invalidated by a resume; re-fetch it"
	case errors.As(err, &engine.ErrNotConnected{}):
		suggestion = "launch or attach a session first"
	case errors.As(err, &engine.ErrRequestTimedOut{}):
		suggestion = "the runtime may be blocked in a long-running synchronous call"
	}
	return ctlproto.Fail(err.Error(), suggestion)
}
