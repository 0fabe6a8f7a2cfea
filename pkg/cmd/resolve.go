package cmd

import "strings"

// Match is the result of resolving free text: the canonical command name
// and the tokens that followed it.
type Match struct {
	Command string
	Args    []string
}

// Find resolves text to a command by the longest leading run of words that
// names one. At each length an alias wins over a command of the same name
// (the registry never allows both). Unmatched text yields false.
func (r *Registry) Find(text string) (Match, bool) {
	tokens := strings.Fields(text)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for n := min(len(tokens), r.maxWords); n > 0; n-- {
		name := strings.Join(tokens[:n], " ")
		canonical, ok := r.aliases[name]
		if !ok {
			if _, ok = r.commands[name]; ok {
				canonical = name
			}
		}
		if ok {
			rest := make([]string, len(tokens)-n)
			copy(rest, tokens[n:])
			return Match{Command: canonical, Args: rest}, true
		}
	}
	return Match{}, false
}
