package tui

// KeyTrie maps key-press sequences to note slots. Most notes are a
// single key; the extended range sits behind a prefix key, so lookups
// walk a prefix tree rather than a flat table. A press that matches
// nothing simply resets the walk (miss policy: ignore).
type KeyTrie struct {
	children map[string]*KeyTrie
	slot     int32
	leaf     bool
}

func NewKeyTrie() *KeyTrie {
	return &KeyTrie{children: make(map[string]*KeyTrie)}
}

// Bind registers a key sequence for a note slot. Later binds win.
func (t *KeyTrie) Bind(seq []string, slot int32) {
	node := t
	for _, k := range seq {
		child, ok := node.children[k]
		if !ok {
			child = NewKeyTrie()
			node.children[k] = child
		}
		node = child
	}
	node.slot = slot
	node.leaf = true
}

// Step advances the walk from node (or the root when node is nil) by
// one key press. It returns the resolved slot when the press completes
// a sequence, the next node while a longer sequence is still possible,
// or a miss.
func (t *KeyTrie) Step(node *KeyTrie, key string) (slot int32, next *KeyTrie, ok bool) {
	if node == nil {
		node = t
	}
	child, found := node.children[key]
	if !found {
		return 0, nil, false
	}
	if child.leaf {
		return child.slot, nil, true
	}
	return 0, child, true
}

// noteRows are the QWERTY rows played as consecutive note slots,
// bottom row lowest.
var noteRows = []string{
	"zxcvbnm,./",
	"asdfghjkl;'",
	"qwertyuiop[]",
	"1234567890-=",
}

// extendPrefix shifts the next key one full keyboard width up.
const extendPrefix = "\\"

// KeyboardWidth is the number of slots covered without the extend
// prefix; with it the reachable window doubles.
func KeyboardWidth() int32 {
	var w int32
	for _, row := range noteRows {
		w += int32(len(row))
	}
	return w
}

// DefaultKeymap builds the standard layout: four key rows of
// consecutive slots, and the same rows again one keyboard width up
// behind the extend prefix.
func DefaultKeymap() *KeyTrie {
	t := NewKeyTrie()
	width := KeyboardWidth()
	var slot int32
	for _, row := range noteRows {
		for _, r := range row {
			k := string(r)
			t.Bind([]string{k}, slot)
			t.Bind([]string{extendPrefix, k}, slot+width)
			slot++
		}
	}
	return t
}
