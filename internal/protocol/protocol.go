// Package protocol defines the wire-shaped structs exchanged between
// the simulation core and its external transport (spec §6): movement,
// stamina, and location parcels, coalesced UpdateObject batches, and
// battle-state updates. No encoding/decoding lives here — byte-layout
// serialization is explicitly out of scope for the simulation core
// (spec §1); these are the payloads a transport layer would frame.
package protocol

import "github.com/gamenio/arenacore/internal/fieldmask"

// Opcode names the message kind, mirroring the teacher's
// internal/net/packet opcode-constant convention adapted to the
// MSG_*/SMSG_* names spec §6 gives them.
type Opcode uint16

const (
	MsgMoveStart Opcode = iota + 1
	MsgMoveStop
	MsgMoveSync
	MsgChargeStart
	MsgChargeStop
	MsgStaminaSync
	SmsgUpdateObject
	SmsgDestroyObject
	SmsgBattleUpdate
)

// MovementInfo flags.
const (
	MoveFlagWalking uint32 = 1 << iota
	MoveFlagHandup
)

// MovementInfo accompanies MSG_MOVE_START/STOP/SYNC.
type MovementInfo struct {
	GUID        uint32
	Counter     uint32
	Flags       uint32
	X, Y        float32
	Orientation float32
	Time        int32
}

// StaminaInfo flags.
const (
	StaminaFlagAttack uint32 = 1 << iota
	StaminaFlagCharging
)

// StaminaInfo accompanies MSG_CHARGE_START/STOP and MSG_STAMINA_SYNC.
type StaminaInfo struct {
	GUID                  uint32
	Counter               uint32
	Flags                 uint32
	Stamina               int32
	MaxStamina            int32
	StaminaRegenRate      float32
	ChargeStartStamina    int32
	ChargedStamina        int32
	ChargeConsumesStamina int32
	ChargeCounter         uint32
	Time                  int32
	AttackCounter         uint32
	ConsumedStaminaTotal  uint32
	AttackInfoCounter     uint32
}

// LocationInfo is a minimal remote-tracking parcel for locator objects.
type LocationInfo struct {
	GUID uint32
	X, Y float32
	Time int32
}

// UpdateType distinguishes an UpdateObject block's purpose.
type UpdateType uint8

const (
	UpdateValues UpdateType = iota
	UpdateCreate
	UpdateOutOfRange
)

// TypeID is the CREATE block's object kind discriminant, mirroring
// entity.Kind without importing it (protocol stays a leaf package).
type TypeID uint8

// UpdateBlock is one entry in an UpdateObject batch: a VALUES or
// CREATE record carries a field mask plus the changed field values in
// declared order (opaque here — the caller marshals Values itself,
// since this package defines shape, not encoding).
type UpdateBlock struct {
	Type   UpdateType
	Flags  uint32
	GUID   uint32
	TypeID TypeID // only meaningful when Type == UpdateCreate
	Mask   fieldmask.Mask
	Values []any
}

// OutOfRangeBlock lists GUIDs that left an observer's visible range
// this tick.
type OutOfRangeBlock struct {
	GUIDs []uint32
}

// UpdateObject is one observer's coalesced per-tick delta batch
// (spec §4.1 "coalesced delta emission" / §6 UpdateObject block).
type UpdateObject struct {
	Blocks      []UpdateBlock
	OutOfRange  OutOfRangeBlock
}

// BattleUpdate field-presence flags (spec §6).
const (
	BattleFieldState uint32 = 1 << iota
	BattleFieldPreparationDuration
	BattleFieldBattleDuration
	BattleFieldStartTime
	BattleFieldAliveCount
	BattleFieldMagicBeanCount
)

// BattleUpdate carries battle-lifecycle fields, gated by Flags so only
// changed fields need to be read by the transport layer.
type BattleUpdate struct {
	Flags              uint32
	State              int32
	PreparationDuration int32
	BattleDuration     int32
	StartTime          int64
	AliveCount         int32
	MagicBeanCount     int32
}
