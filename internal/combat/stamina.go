package combat

import (
	"time"

	"github.com/gamenio/arenacore/internal/protocol"
)

// ChargeState is a bot's stamina/charge FSM state (spec §4.6).
type ChargeState int

const (
	ChargeNone ChargeState = iota
	ChargeCharging
	ChargeFully
)

// StaminaMachine implements the stamina/charge state machine (spec
// §4.6): NONE -> CHARGING -> FULLY, with a regen path back to NONE,
// and periodic MSG_STAMINA_SYNC broadcasts while charging.
type StaminaMachine struct {
	State ChargeState

	Stamina, MaxStamina int32
	chargeStartStamina  int32
	chargeDiff          int32 // negative; remaining stamina to drain into charge
	chargedStamina      int32

	regenDiff int32 // remaining stamina to regenerate

	ChargeConsumesStaminaPerSecond float64
	RegenRate                      float64 // fraction of MaxStamina regenerated per second

	timer     time.Duration
	duration  time.Duration
	syncTimer time.Duration
}

const StaminaSyncInterval = 200 * time.Millisecond

// CanAttack implements spec §4.6: `(state == NONE && stamina >=
// attackTakesStamina) || state == FULLY`.
func (m *StaminaMachine) CanAttack(attackTakesStamina int32) bool {
	if m.State == ChargeFully {
		return true
	}
	return m.State == ChargeNone && m.Stamina >= attackTakesStamina
}

// Charge transitions NONE -> CHARGING (spec §4.6). Returns ok=false if
// stamina is already zero (nothing to charge).
func (m *StaminaMachine) Charge(now time.Time) (protocol.StaminaInfo, bool) {
	if m.Stamina <= 0 || m.State != ChargeNone {
		return protocol.StaminaInfo{}, false
	}
	m.chargeStartStamina = m.Stamina
	m.chargeDiff = -m.Stamina
	if m.ChargeConsumesStaminaPerSecond <= 0 {
		m.duration = 0
	} else {
		m.duration = time.Duration(float64(m.Stamina)/m.ChargeConsumesStaminaPerSecond*1000) * time.Millisecond
	}
	m.timer = 0
	m.syncTimer = 0
	m.State = ChargeCharging
	return m.staminaInfo(protocol.StaminaFlagCharging), true
}

// ChargeStop transitions any state back to NONE, then immediately
// starts the regen path (spec §4.6: "any -> NONE: chargeStop()
// broadcasts MSG_CHARGE_STOP then transitions to regen").
func (m *StaminaMachine) ChargeStop() (protocol.StaminaInfo, protocol.StaminaInfo) {
	stop := m.staminaInfo(0)
	m.State = ChargeNone
	m.chargedStamina = m.chargeStartStamina + m.chargeDiff
	regen := m.startRegenStamina()
	return stop, regen
}

// startRegenStamina begins the NONE -> regen path after an attack
// consumes stamina (spec §4.6).
func (m *StaminaMachine) startRegenStamina() protocol.StaminaInfo {
	m.regenDiff = m.MaxStamina - m.Stamina
	if m.RegenRate <= 0 || m.MaxStamina <= 0 {
		m.duration = 0
	} else {
		m.duration = time.Duration(float64(m.regenDiff)/(m.RegenRate*float64(m.MaxStamina))*1000) * time.Millisecond
	}
	m.timer = 0
	return m.staminaInfo(0)
}

// Update advances the active timer by dt, returning any
// MSG_STAMINA_SYNC to broadcast this tick (spec §4.6: "every
// STAMINA_SYNC_INTERVAL (200ms) while charging").
func (m *StaminaMachine) Update(dt time.Duration) (sync protocol.StaminaInfo, hasSync bool, justFullyCharged bool) {
	switch m.State {
	case ChargeCharging:
		m.timer += dt
		if m.timer >= m.duration {
			m.Stamina = 0
			m.State = ChargeFully
			return m.staminaInfo(protocol.StaminaFlagCharging), true, true
		}
		progress := float64(m.timer) / float64(m.duration)
		m.Stamina = m.chargeStartStamina + int32(float64(m.chargeDiff)*progress)

		m.syncTimer += dt
		if m.syncTimer >= StaminaSyncInterval {
			m.syncTimer -= StaminaSyncInterval
			return m.staminaInfo(protocol.StaminaFlagCharging), true, false
		}
	case ChargeNone:
		if m.regenDiff > 0 {
			m.timer += dt
			if m.timer >= m.duration {
				m.Stamina = m.MaxStamina
				m.regenDiff = 0
			} else {
				progress := float64(m.timer) / float64(m.duration)
				m.Stamina = m.MaxStamina - m.regenDiff + int32(float64(m.regenDiff)*progress)
			}
		}
	}
	return protocol.StaminaInfo{}, false, false
}

// DeductForAttack consumes stamina for an attack and sends one sync at
// the event boundary (spec §4.6: "on attack-triggered stamina
// deduction, send one sync at the event boundary").
func (m *StaminaMachine) DeductForAttack(cost int32) protocol.StaminaInfo {
	m.Stamina -= cost
	if m.Stamina < 0 {
		m.Stamina = 0
	}
	if m.State == ChargeNone {
		m.startRegenStamina()
	}
	return m.staminaInfo(protocol.StaminaFlagAttack)
}

func (m *StaminaMachine) staminaInfo(flags uint32) protocol.StaminaInfo {
	return protocol.StaminaInfo{
		Flags:                 flags,
		Stamina:               m.Stamina,
		MaxStamina:            m.MaxStamina,
		StaminaRegenRate:      float32(m.RegenRate),
		ChargeStartStamina:    m.chargeStartStamina,
		ChargedStamina:        m.chargedStamina,
		ChargeConsumesStamina: int32(m.ChargeConsumesStaminaPerSecond),
	}
}
