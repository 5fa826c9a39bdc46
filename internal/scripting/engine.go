// Package scripting hosts the Lua VM behind the Sparring and Training
// bot policies (spec §4.11, GLOSSARY "Bot AI actors"). Go owns target
// detection, threat/weight scoring, and motion-generator installation
// — all mechanical, hot-path work with no business tuning. Lua owns
// the which-action-to-take decision table so designers can retune
// aggression/caution without a recompile, mirroring the teacher's
// Go-detects/Lua-decides split from NpcAISystem exactly.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for bot decision scripts.
// Single-goroutine access only (the battle tick). Hot-reload planned
// via atomic swap.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory tree: core/ first, then one subdirectory per bot policy
// (spec §10.4: "core/, then per-concern subdirectories").
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	corePath := filepath.Join(scriptsDir, "core")
	if err := e.loadDir(corePath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load core scripts: %w", err)
	}

	for _, sub := range []string{"sparring", "training"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Policy selects which Lua decision function a bot's ticks resolve to
// (spec §4.11: Sparring vs Training bot actors).
type Policy int

const (
	PolicySparring Policy = iota
	PolicyTraining
)

func (p Policy) luaFunc() string {
	if p == PolicyTraining {
		return "training_decide"
	}
	return "sparring_decide"
}

// ThreatEntry is one ranked hostile the Go layer has already scored;
// Lua only reads the ranking, it never recomputes threat itself.
type ThreatEntry struct {
	TargetID   int
	Dist       int
	Threat     float64
}

// ItemWish is one ranked nearby item from the wish manager.
type ItemWish struct {
	ItemID int
	Wish   float64
	Dist   int
}

// BotDecisionContext is the single struct Go marshals into Lua each
// time a bot needs a new top-level decision — on motion-generator
// completion, on a change in its ranked hostile, or on a scripted
// decision-interval tick (spec §10.4).
type BotDecisionContext struct {
	BotID     int
	X, Y      int
	HP, MaxHP int32
	Stamina, MaxStamina int32
	CanAttack bool
	CanCharge bool
	InSafeZone bool

	Hostiles   []ThreatEntry // pre-sorted descending by threat, index 0 = current hostile target
	Wishes     []ItemWish    // pre-sorted descending by wish score
	HasGoal    bool          // explore generator currently has an unvisited goal
	GoalX, GoalY int

	CurrentMotionKind string // "idle","explore","simple_chase","smart_chase","point","seek","escape" — what's on top of the motion master right now
}

// BotCommand is a single action Lua returns; Go interprets Type and
// installs the corresponding motion generator or combat action.
// Types: "chase" (target_id), "smart_chase" (target_id), "collect"
// (item_id), "attack", "charge", "explore", "seek" (hiding spot via
// Go's own lookup), "escape" (target_id), "idle".
type BotCommand struct {
	Type     string
	TargetID int
	ItemID   int
}

// Decide calls the policy's Lua decision function and returns its
// command list. Returns a single "idle" command if the function is
// missing or errors, so a bot with no script loaded degrades to
// standing still rather than panicking the tick.
func (e *Engine) Decide(policy Policy, ctx BotDecisionContext) []BotCommand {
	name := policy.luaFunc()
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Debug("bot decision function not found, idling", zap.String("func", name), zap.Int("bot_id", ctx.BotID))
		return []BotCommand{{Type: "idle"}}
	}

	t := e.buildContextTable(ctx)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua bot decision error", zap.Error(err), zap.Int("bot_id", ctx.BotID))
		return []BotCommand{{Type: "idle"}}
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return []BotCommand{{Type: "idle"}}
	}

	var cmds []BotCommand
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, BotCommand{
				Type:     lStr(row, "type"),
				TargetID: lInt(row, "target_id"),
				ItemID:   lInt(row, "item_id"),
			})
		}
	})
	if len(cmds) == 0 {
		return []BotCommand{{Type: "idle"}}
	}
	return cmds
}

func (e *Engine) buildContextTable(ctx BotDecisionContext) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("bot_id", lua.LNumber(ctx.BotID))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("hp", lua.LNumber(ctx.HP))
	t.RawSetString("max_hp", lua.LNumber(ctx.MaxHP))
	t.RawSetString("stamina", lua.LNumber(ctx.Stamina))
	t.RawSetString("max_stamina", lua.LNumber(ctx.MaxStamina))
	t.RawSetString("can_attack", lua.LBool(ctx.CanAttack))
	t.RawSetString("can_charge", lua.LBool(ctx.CanCharge))
	t.RawSetString("in_safe_zone", lua.LBool(ctx.InSafeZone))
	t.RawSetString("has_goal", lua.LBool(ctx.HasGoal))
	t.RawSetString("goal_x", lua.LNumber(ctx.GoalX))
	t.RawSetString("goal_y", lua.LNumber(ctx.GoalY))
	t.RawSetString("current_motion_kind", lua.LString(ctx.CurrentMotionKind))

	hostiles := e.vm.NewTable()
	for i, h := range ctx.Hostiles {
		row := e.vm.NewTable()
		row.RawSetString("target_id", lua.LNumber(h.TargetID))
		row.RawSetString("dist", lua.LNumber(h.Dist))
		row.RawSetString("threat", lua.LNumber(h.Threat))
		hostiles.RawSetInt(i+1, row)
	}
	t.RawSetString("hostiles", hostiles)

	wishes := e.vm.NewTable()
	for i, w := range ctx.Wishes {
		row := e.vm.NewTable()
		row.RawSetString("item_id", lua.LNumber(w.ItemID))
		row.RawSetString("wish", lua.LNumber(w.Wish))
		row.RawSetString("dist", lua.LNumber(w.Dist))
		wishes.RawSetInt(i+1, row)
	}
	t.RawSetString("wishes", wishes)

	return t
}

// DecideGuard is the teacher's tickGuardAI-equivalent degenerate
// policy: no scripting involved, used by stationary ItemBox-style
// objects and by tests that need a deterministic decision with no Lua
// VM in the loop (spec §10.4: "a simple Go-only AI path is kept for a
// degenerate policy that needs no scripting").
func DecideGuard(ctx BotDecisionContext) BotCommand {
	if len(ctx.Hostiles) > 0 && ctx.CanAttack {
		return BotCommand{Type: "attack", TargetID: ctx.Hostiles[0].TargetID}
	}
	if len(ctx.Wishes) > 0 {
		return BotCommand{Type: "collect", ItemID: ctx.Wishes[0].ItemID}
	}
	if ctx.HasGoal {
		return BotCommand{Type: "explore"}
	}
	return BotCommand{Type: "idle"}
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
