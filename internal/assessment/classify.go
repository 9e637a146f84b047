package assessment

// fatigueGrid maps (mental level, brain level) onto the nine archetypes.
// First index is the mental fatigue level, second the brain fatigue level.
var fatigueGrid = [3][3]FatigueType{
	{TypeMild, TypeInsensitive, TypeBlind},
	{TypeSensitive, TypeBalanced, TypeOverlooked},
	{TypeHyper, TypeAmplified, TypeCritical},
}

// fatigueLevel buckets a score into level 0 (<33), 1 (<66) or 2 (otherwise).
func fatigueLevel(score float64) int {
	switch {
	case score < 33:
		return 0
	case score < 66:
		return 1
	default:
		return 2
	}
}

// Classify maps the mental and brain fatigue scores onto one of the nine
// fatigue archetypes. Total and deterministic: every input pair yields
// exactly one label.
func Classify(mentalFatigue, brainFatigue float64) FatigueType {
	return fatigueGrid[fatigueLevel(mentalFatigue)][fatigueLevel(brainFatigue)]
}
