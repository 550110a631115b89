package normalizer

// Vocabulary is the read-only set of canonical symptom names for a session.
// Entries keep their stored casing; comparisons use their Key form.
type Vocabulary struct {
	entries []string
	keys    []string
	exact   map[string]string
}

// NewVocabulary builds a Vocabulary from canonical names, dropping blanks and
// case-insensitive duplicates while keeping the first spelling seen.
func NewVocabulary(names []string) *Vocabulary {
	v := &Vocabulary{
		entries: make([]string, 0, len(names)),
		keys:    make([]string, 0, len(names)),
		exact:   make(map[string]string, len(names)),
	}
	for _, name := range names {
		k := Key(name)
		if k == "" {
			continue
		}
		if _, dup := v.exact[k]; dup {
			continue
		}
		v.exact[k] = name
		v.entries = append(v.entries, name)
		v.keys = append(v.keys, k)
	}
	return v
}

// Len returns the number of distinct entries
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Entries returns a copy of the canonical names in load order
func (v *Vocabulary) Entries() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.entries...)
}

// Keys returns a copy of the folded comparison keys, parallel to Entries
func (v *Vocabulary) Keys() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Contains reports whether name matches an entry case-insensitively
func (v *Vocabulary) Contains(name string) bool {
	_, ok := v.lookup(Key(name))
	return ok
}

func (v *Vocabulary) lookup(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	entry, ok := v.exact[key]
	return entry, ok
}
