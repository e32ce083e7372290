package domain

// circuitDays are the fixed calendar exceptions where the program prescribes
// a circuit workout regardless of what the record stores.
var circuitDays = map[int]bool{
	1:        true,
	50:       true,
	FinalDay: true,
}

// EffectiveExecution returns the execution mode that applies on a given day.
// The lookup is deliberately separate from sync code: reconciliation must
// preserve the stored mode verbatim and never bake these exceptions in.
func EffectiveExecution(day int, stored ExecutionMode) ExecutionMode {
	if circuitDays[day] {
		return ExecutionCircuit
	}
	if stored == "" {
		return ExecutionStandard
	}
	return stored
}
