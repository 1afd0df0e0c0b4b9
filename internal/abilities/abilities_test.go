package abilities

import (
	"testing"

	"github.com/mfriera/go-dota-fights/internal/model"
)

// ev builds a classified event with just the fields the hit index reads.
func ev(typ model.EntryType, tick int, gameTime float64, attacker, target, ability string) model.ClassifiedEvent {
	return model.ClassifiedEvent{
		CombatLogEntry: model.CombatLogEntry{Tick: tick, Type: typ},
		GameTime:       gameTime,
		Attacker:       attacker,
		AttackerIsHero: attacker != "" && attacker != "npc_dota_creep_lane",
		Target:         target,
		TargetIsHero:   target != "" && target != "npc_dota_creep_lane",
		Ability:        ability,
	}
}

func TestSelfBuffIsNotApplicable(t *testing.T) {
	events := []model.ClassifiedEvent{
		ev(model.EntryAbility, 100, 10, "earthshaker", "", "earthshaker_enchant_totem"),
		// Even a correlated damage event must not turn a self-buff into a hit.
		ev(model.EntryDamage, 110, 10.5, "earthshaker", "medusa", "earthshaker_enchant_totem"),
	}
	idx := BuildIndex(events, DefaultHitWindow)
	key := Key{Caster: "earthshaker", Ability: "earthshaker_enchant_totem", Tick: 100}
	if idx[key] != model.HitNotApplicable {
		t.Fatalf("self-buff outcome = %v, want HitNotApplicable", idx[key])
	}

	Annotate(events, idx)
	if events[0].Hit != model.HitNotApplicable {
		t.Error("self-buff ability must keep Hit == HitNotApplicable")
	}
}

func TestHitWithinWindowViaModifier(t *testing.T) {
	events := []model.ClassifiedEvent{
		ev(model.EntryAbility, 100, 280.5, "naga_siren", "", "naga_siren_ensnare"),
		// MODIFIER_ADD carries the modifier_ prefix; normalization must match it.
		ev(model.EntryModifierAdd, 115, 281.0, "naga_siren", "earthshaker", "modifier_naga_siren_ensnare"),
	}
	idx := BuildIndex(events, DefaultHitWindow)
	key := Key{Caster: "naga_siren", Ability: "naga_siren_ensnare", Tick: 100}
	if idx[key] != model.HitLanded {
		t.Fatalf("outcome = %v, want HitLanded", idx[key])
	}

	Annotate(events, idx)
	if events[0].Hit != model.HitLanded {
		t.Error("ability event should be annotated as landed")
	}
}

func TestMissWhenEffectOutsideWindow(t *testing.T) {
	events := []model.ClassifiedEvent{
		ev(model.EntryAbility, 100, 280.0, "disruptor", "", "disruptor_thunder_strike"),
		ev(model.EntryDamage, 400, 283.5, "disruptor", "earthshaker", "disruptor_thunder_strike"),
	}
	idx := BuildIndex(events, 2.0)
	key := Key{Caster: "disruptor", Ability: "disruptor_thunder_strike", Tick: 100}
	if idx[key] != model.HitMissed {
		t.Fatalf("outcome = %v, want HitMissed (effect 3.5s after cast)", idx[key])
	}

	Annotate(events, idx)
	if events[0].Hit != model.HitMissed {
		t.Error("ability event should be annotated as missed")
	}
}

func TestMissWhenEffectBeforeCast(t *testing.T) {
	events := []model.ClassifiedEvent{
		ev(model.EntryDamage, 50, 279.0, "disruptor", "earthshaker", "disruptor_thunder_strike"),
		ev(model.EntryAbility, 100, 280.0, "disruptor", "", "disruptor_thunder_strike"),
	}
	idx := BuildIndex(events, 2.0)
	key := Key{Caster: "disruptor", Ability: "disruptor_thunder_strike", Tick: 100}
	if idx[key] != model.HitMissed {
		t.Fatalf("outcome = %v, want HitMissed (effect precedes cast)", idx[key])
	}
}

func TestEffectOnNonHeroDoesNotCount(t *testing.T) {
	events := []model.ClassifiedEvent{
		ev(model.EntryAbility, 100, 280.0, "disruptor", "", "disruptor_thunder_strike"),
		ev(model.EntryDamage, 110, 280.4, "disruptor", "npc_dota_creep_lane", "disruptor_thunder_strike"),
	}
	idx := BuildIndex(events, 2.0)
	key := Key{Caster: "disruptor", Ability: "disruptor_thunder_strike", Tick: 100}
	if idx[key] != model.HitMissed {
		t.Fatalf("outcome = %v, want HitMissed (creep damage is not an enemy-hero effect)", idx[key])
	}
}

func TestEffectByOtherCasterDoesNotCount(t *testing.T) {
	events := []model.ClassifiedEvent{
		ev(model.EntryAbility, 100, 280.0, "disruptor", "", "disruptor_thunder_strike"),
		ev(model.EntryDamage, 110, 280.4, "medusa", "earthshaker", "disruptor_thunder_strike"),
	}
	idx := BuildIndex(events, 2.0)
	key := Key{Caster: "disruptor", Ability: "disruptor_thunder_strike", Tick: 100}
	if idx[key] != model.HitMissed {
		t.Fatalf("outcome = %v, want HitMissed", idx[key])
	}
}

func TestAnnotateLeavesNonAbilityEventsAlone(t *testing.T) {
	events := []model.ClassifiedEvent{
		ev(model.EntryDamage, 100, 280.0, "disruptor", "earthshaker", "disruptor_thunder_strike"),
	}
	Annotate(events, BuildIndex(events, 2.0))
	if events[0].Hit != model.HitNotApplicable {
		t.Error("damage event must keep Hit == HitNotApplicable")
	}
}
