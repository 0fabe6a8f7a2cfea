package args

// Align maps tokens onto a schema that already passed Validate. It returns
// false when the tokens do not fit; in that case no values are returned.
//
// Parameters before the variadic slot are filled left to right, parameters
// after it right to left, and the variadic parameter captures whatever lies
// in between. Without a variadic slot every token must be consumed.
func Align(s Schema, tokens []string) (Values, bool) {
	if len(tokens) < s.MinTokens() {
		return nil, false
	}

	out := make(Values, len(s))
	splat := -1

	for i, p := range s {
		if _, ok := p.(Variadic); ok {
			splat = i
			break
		}
		tok, present := tokenAt(tokens, i)
		if !assign(out, p, tok, present) {
			return nil, false
		}
	}

	if splat < 0 {
		if len(tokens) > len(s) {
			return nil, false
		}
		return out, true
	}

	tail := s[splat+1:]
	for j := range tail {
		p := tail[len(tail)-1-j]
		tok, present := tokenAt(tokens, len(tokens)-1-j)
		if !assign(out, p, tok, present) {
			return nil, false
		}
	}

	captured := []string{}
	if start, end := splat, len(tokens)-len(tail); start < end {
		captured = append(captured, tokens[start:end]...)
	}
	out[s[splat].ParamName()] = captured

	return out, true
}

func tokenAt(tokens []string, i int) (string, bool) {
	if i < 0 || i >= len(tokens) {
		return "", false
	}
	return tokens[i], true
}

func assign(out Values, p Param, tok string, present bool) bool {
	switch p := p.(type) {
	case Required:
		if !present {
			return false
		}
		out[p.Name] = tok
	case Optional:
		if !present {
			tok = p.Default
		}
		out[p.Name] = tok
	case Restricted:
		if !present {
			if !p.HasDefault {
				return false
			}
			tok = p.Default
		}
		if !p.Allows(tok) {
			return false
		}
		out[p.Name] = tok
	}
	return true
}
