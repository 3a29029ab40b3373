package tracker

// EffectiveCap maps an optional user override onto an activity's structural
// maximum. A nil or non-positive override means the structural default; any
// other value is clamped into [1, structuralMax].
func EffectiveCap(override *int, structuralMax int) int {
	if override == nil || *override < 1 {
		return structuralMax
	}
	if *override > structuralMax {
		return structuralMax
	}
	return *override
}

// overrideFor returns the settings override slot for an activity, nil when
// the activity has none. The five overridable activities are fixed by the
// catalog.
func overrideFor(settings *AppSettings, id ActivityID) *int {
	if settings == nil {
		return nil
	}
	switch id {
	case ActivityExpedition:
		return settings.ExpeditionCap
	case ActivityAwakening:
		return settings.AwakeningCap
	case ActivityRaid:
		return settings.RaidCap
	case ActivitySimulacrum:
		return settings.SimulacrumCap
	case ActivityHunt:
		return settings.HuntCap
	default:
		return nil
	}
}

// effectiveActivityCap resolves the cap that clamps an activity counter.
func effectiveActivityCap(settings *AppSettings, def *ActivityDef) int {
	if !def.Overridable {
		return def.StructuralMax
	}
	return EffectiveCap(overrideFor(settings, def.ID), def.StructuralMax)
}
