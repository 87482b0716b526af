package bot

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/registry"
)

//go:embed scripts/default.lua
var defaultScript string

func init() {
	registry.Register("lua", "moves chosen by a Lua script's choose(moves, state)", func(opts registry.Options) (registry.Strategy, error) {
		if opts.ScriptPath == "" {
			return NewLua(defaultScript)
		}
		return LoadLua(opts.ScriptPath)
	})
}

// Lua delegates move selection to a script that defines
// choose(moves, state) and returns a 1-based index into moves.
type Lua struct {
	mu     sync.Mutex
	state  *lua.LState
	closed bool
}

// LoadLua creates a strategy from a script file.
func LoadLua(path string) (*Lua, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bot: read lua script %s: %w", path, err)
	}
	return NewLua(string(src))
}

// NewLua creates a strategy from script source.
func NewLua(source string) (*Lua, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	// only the pure libraries: scripts get no io or os access
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("bot: open lua library %s: %w", lib.name, err)
		}
	}

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("bot: load lua script: %w", err)
	}
	if L.GetGlobal("choose").Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("bot: lua script does not define choose(moves, state)")
	}
	return &Lua{state: L}, nil
}

func (s *Lua) ID() string { return "lua" }

// Close releases the interpreter. Choose fails once the strategy is closed.
func (s *Lua) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.state.Close()
	}
	return nil
}

// Closed reports whether Close has been called.
func (s *Lua) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Lua) Choose(ctx context.Context, snap azul.Snapshot, playerID uuid.UUID) (azul.Move, error) {
	candidates := outcomes(snap, playerID)
	if len(candidates) == 0 {
		return azul.Move{}, ErrNoMoves
	}
	me, _ := snap.Player(playerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return azul.Move{}, ErrClosed
	}

	L := s.state
	L.SetContext(ctx)
	defer L.RemoveContext()

	moves := L.NewTable()
	for _, o := range candidates {
		moves.Append(moveTable(L, snap, me, o))
	}
	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("choose"),
		NRet:    1,
		Protect: true,
	}, moves, stateTable(L, snap, me)); err != nil {
		return azul.Move{}, fmt.Errorf("bot: lua choose: %w", err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return azul.Move{}, fmt.Errorf("bot: lua choose returned %s, want a number", ret.Type())
	}
	idx := int(n)
	if idx < 1 || idx > len(candidates) {
		return azul.Move{}, fmt.Errorf("bot: lua choose returned %d, want 1..%d", idx, len(candidates))
	}
	return candidates[idx-1].move, nil
}

func moveTable(L *lua.LState, snap azul.Snapshot, me azul.PlayerSnapshot, o outcome) *lua.LTable {
	t := L.NewTable()
	src, _ := snap.Source(o.move.SourceID)
	t.RawSetString("source", lua.LString(o.move.SourceID.String()))
	t.RawSetString("center", lua.LBool(src.IsCenter))
	t.RawSetString("color", lua.LString(o.move.Color.String()))
	t.RawSetString("line", lua.LNumber(o.move.LineIndex))
	t.RawSetString("count", lua.LNumber(o.taken))
	room := 0
	if !o.move.IsFloor() {
		line := me.Board.PatternLines[o.move.LineIndex]
		room = line.Length - line.Count
	}
	t.RawSetString("room", lua.LNumber(room))
	return t
}

func stateTable(L *lua.LState, snap azul.Snapshot, me azul.PlayerSnapshot) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("round", lua.LNumber(snap.RoundNumber))
	t.RawSetString("score", lua.LNumber(me.Board.Score))
	t.RawSetString("floor", lua.LNumber(len(me.Board.FloorLine)))
	lines := L.NewTable()
	for _, pl := range me.Board.PatternLines {
		line := L.NewTable()
		line.RawSetString("length", lua.LNumber(pl.Length))
		line.RawSetString("count", lua.LNumber(pl.Count))
		if pl.Count > 0 {
			line.RawSetString("color", lua.LString(pl.Color.String()))
		}
		lines.Append(line)
	}
	t.RawSetString("lines", lines)
	return t
}
