package motion

import (
	"math"
	"time"

	"github.com/gamenio/arenacore/internal/entity"
	"github.com/gamenio/arenacore/internal/geom"
	"github.com/gamenio/arenacore/internal/protocol"
)

// Spline advances a unit's world position toward the Master's current
// step target at its move speed, emitting MSG_MOVE_START/STOP exactly
// on UNIT_STATE_MOVING transitions (spec §4.3). It owns no entity
// state directly: callers pass the unit's Header/Unit each tick and
// read back the updated position plus any protocol messages to send.
type Spline struct {
	dest    geom.Vec2
	hasDest bool
	counter uint32
}

// MoveMessage pairs an opcode with the movement payload it carries.
type MoveMessage struct {
	Opcode protocol.Opcode
	Info   protocol.MovementInfo
}

// NewSpline returns an idle Spline.
func NewSpline() *Spline { return &Spline{} }

// Advance moves pos toward dest at speed units/sec over dt, returning
// the new position, whether the unit is now moving, and any
// MSG_MOVE_START/STOP messages to emit this tick (spec §4.3: "move
// spline interpolates toward the step destination at current move
// speed; emits MSG_MOVE_START on first step of a run and MSG_MOVE_STOP
// the tick after the run's destination tile is reached").
func (s *Spline) Advance(guid entity.GUID, pos geom.Vec2, dest geom.Point, speed float64, state *entity.UnitState, dt time.Duration) (geom.Vec2, []MoveMessage) {
	destVec := geom.Vec2{float64(dest.X), float64(dest.Y)}
	var msgs []MoveMessage

	wasMoving := state.Has(entity.StateMoving)
	if !s.hasDest || s.dest != destVec {
		s.dest, s.hasDest = destVec, true
	}

	remaining := geom.Dist(pos, s.dest)
	if remaining < 1e-6 {
		if wasMoving {
			*state &^= entity.StateMoving
			msgs = append(msgs, s.moveMsg(protocol.MsgMoveStop, guid, pos))
		}
		s.hasDest = false
		return pos, msgs
	}

	if !wasMoving {
		*state |= entity.StateMoving
		msgs = append(msgs, s.moveMsg(protocol.MsgMoveStart, guid, pos))
	}

	step := speed * dt.Seconds()
	if step >= remaining {
		return s.dest, msgs
	}
	dir := s.dest.Sub(pos)
	dir = dir.Mul(1 / dir.Len())
	next := pos.Add(dir.Mul(step))
	return next, msgs
}

func (s *Spline) moveMsg(op protocol.Opcode, guid entity.GUID, pos geom.Vec2) MoveMessage {
	s.counter++
	orientation := math.Atan2(s.dest[1]-pos[1], s.dest[0]-pos[0])
	return MoveMessage{Opcode: op, Info: protocol.MovementInfo{
		GUID:        uint32(guid),
		Counter:     s.counter,
		X:           float32(pos[0]),
		Y:           float32(pos[1]),
		Orientation: float32(orientation),
	}}
}
