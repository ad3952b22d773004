package parser

import "github.com/alecthomas/participle/v2/lexer"

// LoopcLexer tokenizes `.lc` source. A single stateful root state is enough
// for this language; there is no string-interpolation or nested-mode
// lexing the way Kanso's KansoLexer needed.
var LoopcLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"String", `"(\\.|[^"])*"`, nil},
		{"Operator", `(\|\||&&|==|!=|<=|>=|[-+*/%!<>=])`, nil},
		{"Punctuation", `[{}()\[\],;:]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
