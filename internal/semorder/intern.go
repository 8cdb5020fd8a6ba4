package semorder

// ScriptSentinel is the script-group id for codepoints with no script. It
// sorts after every real script id and never advances the interning
// counter.
const ScriptSentinel = 999

// ScriptInterner assigns dense integer ids to script names in first-seen
// order. The caller fixes the iteration order (the pipeline interns in
// ascending codepoint order), which makes the assignment reproducible.
// Explicit state, passed by handle: there is deliberately no package-level
// table.
type ScriptInterner struct {
	ids  map[string]uint32
	next uint32
}

// NewScriptInterner returns an empty interner.
func NewScriptInterner() *ScriptInterner {
	return &ScriptInterner{ids: make(map[string]uint32, 256)}
}

// Intern returns the id for a script name, assigning the next dense id on
// first sight. The empty script maps to ScriptSentinel without consuming
// an id.
func (si *ScriptInterner) Intern(script string) uint32 {
	if script == "" {
		return ScriptSentinel
	}
	if id, ok := si.ids[script]; ok {
		return id
	}
	id := si.next
	si.ids[script] = id
	si.next++
	return id
}

// Len returns the number of distinct scripts interned so far.
func (si *ScriptInterner) Len() int { return len(si.ids) }
