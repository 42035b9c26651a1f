package trigger

import (
	"strings"
	"unicode"
)

// Kind is the shape of a SQL statement.
type Kind int

const (
	KindOther Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
	KindDDL
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindDDL:
		return "ddl"
	default:
		return "other"
	}
}

// DDLAction is what a DDL statement does to its tables.
type DDLAction int

const (
	DDLNone DDLAction = iota
	DDLCreate
	DDLAlter
	DDLDrop
	DDLTruncate
	// DDLRename moves Tables[0] to Tables[1].
	DDLRename
)

// Statement is a classified SQL statement and the tables it touches.
type Statement struct {
	Kind   Kind
	Action DDLAction
	Tables []string
}

// Classify reads enough of sql to tell its kind and target tables. It is
// not a parser: anything it does not recognise is KindOther.
func Classify(sql string) Statement {
	toks := tokenize(sql)
	if len(toks) == 0 {
		return Statement{Kind: KindOther}
	}
	// WITH ... SELECT / INSERT / UPDATE / DELETE
	if toks[0].is("WITH") {
		for i, t := range toks {
			if t.depth == 0 && i > 0 && (t.is("SELECT") || t.is("INSERT") || t.is("UPDATE") || t.is("DELETE")) {
				toks = toks[i:]
				break
			}
		}
	}

	switch {
	case toks[0].is("SELECT"):
		return Statement{Kind: KindSelect, Tables: tablesAfter(toks, "FROM", "JOIN")}
	case toks[0].is("INSERT"), toks[0].is("REPLACE"):
		return Statement{Kind: KindInsert, Tables: nameAfter(toks, 1, "LOW_PRIORITY", "DELAYED", "HIGH_PRIORITY", "IGNORE", "INTO")}
	case toks[0].is("UPDATE"):
		return Statement{Kind: KindUpdate, Tables: nameAfter(toks, 1, "LOW_PRIORITY", "IGNORE", "ONLY")}
	case toks[0].is("DELETE"):
		return Statement{Kind: KindDelete, Tables: deleteTarget(toks)}
	case toks[0].is("CREATE"):
		return classifyCreate(toks)
	case toks[0].is("ALTER"):
		return classifyAlter(toks)
	case toks[0].is("DROP"):
		if len(toks) > 1 && toks[1].is("TABLE") {
			return Statement{Kind: KindDDL, Action: DDLDrop, Tables: nameList(toks, skipWords(toks, 2, "IF", "EXISTS"))}
		}
		if len(toks) > 1 && toks[1].is("INDEX") {
			if on := indexOf(toks, "ON"); on > 0 {
				return Statement{Kind: KindDDL, Action: DDLAlter, Tables: nameAfter(toks, on+1)}
			}
		}
		return Statement{Kind: KindDDL}
	case toks[0].is("TRUNCATE"):
		return Statement{Kind: KindDDL, Action: DDLTruncate, Tables: nameAfter(toks, 1, "TABLE")}
	case toks[0].is("RENAME"):
		// RENAME TABLE a TO b
		if len(toks) >= 5 && toks[1].is("TABLE") && toks[3].is("TO") {
			return Statement{Kind: KindDDL, Action: DDLRename, Tables: []string{toks[2].ident(), toks[4].ident()}}
		}
		return Statement{Kind: KindDDL}
	}
	return Statement{Kind: KindOther}
}

func classifyCreate(toks []token) Statement {
	i := skipWords(toks, 1, "OR", "REPLACE", "GLOBAL", "LOCAL", "TEMPORARY", "TEMP", "UNLOGGED")
	if i < len(toks) && toks[i].is("TABLE") {
		return Statement{Kind: KindDDL, Action: DDLCreate, Tables: nameAfter(toks, i+1, "IF", "NOT", "EXISTS")}
	}
	i = skipWords(toks, i, "UNIQUE", "CLUSTERED", "NONCLUSTERED", "BITMAP")
	if i < len(toks) && toks[i].is("INDEX") {
		if on := indexOf(toks, "ON"); on > 0 {
			return Statement{Kind: KindDDL, Action: DDLAlter, Tables: nameAfter(toks, on+1, "ONLY")}
		}
	}
	return Statement{Kind: KindDDL}
}

func classifyAlter(toks []token) Statement {
	if len(toks) < 2 || !toks[1].is("TABLE") {
		return Statement{Kind: KindDDL}
	}
	i := skipWords(toks, 2, "IF", "EXISTS", "ONLY")
	if i >= len(toks) {
		return Statement{Kind: KindDDL}
	}
	name := toks[i].ident()
	// ALTER TABLE a RENAME TO b
	if i+3 < len(toks) && toks[i+1].is("RENAME") && toks[i+2].is("TO") {
		return Statement{Kind: KindDDL, Action: DDLRename, Tables: []string{name, toks[i+3].ident()}}
	}
	return Statement{Kind: KindDDL, Action: DDLAlter, Tables: []string{name}}
}

func deleteTarget(toks []token) []string {
	from := indexOf(toks, "FROM")
	if from < 0 {
		// DELETE t WHERE ... (T-SQL, Oracle)
		return nameAfter(toks, 1)
	}
	if from == 1 {
		return nameAfter(toks, 2, "ONLY")
	}
	// DELETE t FROM t JOIN ...
	return nameAfter(toks, 1)
}

func tablesAfter(toks []token, keywords ...string) []string {
	var out []string
	for i, t := range toks {
		if t.depth != 0 {
			continue
		}
		for _, k := range keywords {
			if t.is(k) && i+1 < len(toks) && toks[i+1].word {
				out = append(out, toks[i+1].ident())
			}
		}
	}
	return out
}

func nameAfter(toks []token, i int, skip ...string) []string {
	i = skipWords(toks, i, skip...)
	if i < len(toks) && toks[i].word {
		return []string{toks[i].ident()}
	}
	return nil
}

func nameList(toks []token, i int) []string {
	var out []string
	for ; i < len(toks); i++ {
		if toks[i].text == "," {
			continue
		}
		if !toks[i].word || toks[i].is("CASCADE") || toks[i].is("RESTRICT") || toks[i].is("PURGE") {
			break
		}
		out = append(out, toks[i].ident())
	}
	return out
}

func skipWords(toks []token, i int, words ...string) int {
	for i < len(toks) {
		matched := false
		for _, w := range words {
			if toks[i].is(w) {
				matched = true
				break
			}
		}
		if !matched {
			return i
		}
		i++
	}
	return i
}

func indexOf(toks []token, word string) int {
	for i, t := range toks {
		if t.depth == 0 && t.is(word) {
			return i
		}
	}
	return -1
}

// token is a word (possibly quoted and schema-qualified) or a punctuation
// character, tagged with its parenthesis depth.
type token struct {
	text  string
	word  bool
	depth int
}

func (t token) is(keyword string) bool {
	return t.word && strings.EqualFold(t.text, keyword)
}

// ident returns the unquoted last part of a qualified name.
func (t token) ident() string {
	name := t.text
	if i := lastDot(name); i >= 0 {
		name = name[i+1:]
	}
	return unquote(name)
}

func lastDot(s string) int {
	quote := byte(0)
	last := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '`':
			quote = c
		case c == '[':
			quote = ']'
		case c == '.':
			last = i
		}
	}
	return last
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"', s[0] == '`' && s[len(s)-1] == '`', s[0] == '[' && s[len(s)-1] == ']':
			return s[1 : len(s)-1]
		}
	}
	return s
}

func isWordRune(r rune) bool {
	return r == '_' || r == '$' || r == '#' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func tokenize(sql string) []token {
	var toks []token
	rs := []rune(sql)
	depth := 0
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r) || r == ';':
			i++
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			i += 2
			for i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/') {
				i++
			}
			i += 2
		case r == '\'':
			i++
			for i < len(rs) {
				if rs[i] == '\'' {
					if i+1 < len(rs) && rs[i+1] == '\'' {
						i += 2
						continue
					}
					break
				}
				i++
			}
			i++
			toks = append(toks, token{text: "''", depth: depth})
		case r == '(':
			toks = append(toks, token{text: "(", depth: depth})
			depth++
			i++
		case r == ')':
			if depth > 0 {
				depth--
			}
			toks = append(toks, token{text: ")", depth: depth})
			i++
		case isWordRune(r) || r == '"' || r == '`' || r == '[':
			start := i
			for i < len(rs) {
				c := rs[i]
				if c == '"' || c == '`' || c == '[' {
					end := c
					if c == '[' {
						end = ']'
					}
					i++
					for i < len(rs) && rs[i] != end {
						i++
					}
					i++
					continue
				}
				if isWordRune(c) || c == '.' {
					i++
					continue
				}
				break
			}
			if i > len(rs) {
				i = len(rs)
			}
			toks = append(toks, token{text: string(rs[start:i]), word: true, depth: depth})
		default:
			toks = append(toks, token{text: string(r), depth: depth})
			i++
		}
	}
	return toks
}
