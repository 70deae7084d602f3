package css

import (
	"github.com/dhamidi/pegcss/peg"
)

// Grammar recognizes a complete CSS2.1 style sheet from its "root" rule.
var Grammar = define().MustBuild("root")

// Tokens recognizes any input that splits into CSS2.1 core tokens,
// including the bad-string, bad-comment and bad-URI recovery tokens.
var Tokens = define().MustBuild("tokens")

// define returns the rule table shared by Grammar and Tokens.
func define() *peg.Builder {
	b := peg.NewBuilder("css")

	// Lexical building blocks.
	b.Define("h", peg.Class(`0-9a-fA-F`))
	b.Define("nonascii", peg.Class(`\x80-\xff`))
	b.Define("unicode", peg.Seq(peg.Lit(`\`), peg.Repeat(peg.Ref("h"), 1, 6), peg.Optional(peg.Choice(peg.Lit("\r\n"), peg.Class(` \t\r\n\f`)))))
	b.Define("escape", peg.Choice(peg.Ref("unicode"), peg.Seq(peg.Lit(`\`), peg.Class(` -~\x80-\xff`))))
	b.Define("nmstart", peg.Choice(peg.Class(`_a-zA-Z`), peg.Ref("nonascii"), peg.Ref("escape")))
	b.Define("nmchar", peg.Choice(peg.Class(`_a-zA-Z0-9-`), peg.Ref("nonascii"), peg.Ref("escape")))
	b.Define("string1", peg.Seq(peg.Lit(`"`), peg.ZeroOrMore(stringChar(`"`)), peg.Lit(`"`)))
	b.Define("string2", peg.Seq(peg.Lit(`'`), peg.ZeroOrMore(stringChar(`'`)), peg.Lit(`'`)))
	b.Define("badstring1", peg.Seq(peg.Lit(`"`), peg.ZeroOrMore(stringChar(`"`)), peg.Optional(peg.Lit(`\`))))
	b.Define("badstring2", peg.Seq(peg.Lit(`'`), peg.ZeroOrMore(stringChar(`'`)), peg.Optional(peg.Lit(`\`))))
	b.Define("badcomment1", peg.Seq(peg.Lit("/*"), peg.Run(`^*`, 0, -1), peg.OneOrMore(peg.Lit("*")),
		peg.ZeroOrMore(peg.Seq(peg.Class(`^/*`), peg.Run(`^*`, 0, -1), peg.OneOrMore(peg.Lit("*"))))))
	b.Define("badcomment2", peg.Seq(peg.Lit("/*"), peg.Run(`^*`, 0, -1),
		peg.ZeroOrMore(peg.Seq(peg.OneOrMore(peg.Lit("*")), peg.Class(`^/*`), peg.Run(`^*`, 0, -1)))))
	b.Define("baduri1", peg.Seq(peg.Keyword("url"), peg.Lit("("), peg.Ref("w"),
		peg.ZeroOrMore(peg.Choice(peg.Class(`!#$%&*-[\]-~`), peg.Ref("nonascii"), peg.Ref("escape"))), peg.Ref("w")))
	b.Define("baduri2", peg.Seq(peg.Keyword("url"), peg.Lit("("), peg.Ref("w"), peg.Ref("string"), peg.Ref("w")))
	b.Define("baduri3", peg.Seq(peg.Keyword("url"), peg.Lit("("), peg.Ref("w"), peg.Ref("badstring")))
	b.Define("comment", peg.Seq(peg.Lit("/*"), peg.Run(`^*`, 0, -1), peg.OneOrMore(peg.Lit("*")),
		peg.ZeroOrMore(peg.Seq(peg.Class(`^/*`), peg.Run(`^*`, 0, -1), peg.OneOrMore(peg.Lit("*")))), peg.Lit("/")))
	b.Define("ident", peg.Seq(peg.Optional(peg.Lit("-")), peg.Ref("nmstart"), peg.ZeroOrMore(peg.Ref("nmchar"))))
	b.Define("name", peg.OneOrMore(peg.Ref("nmchar")))
	b.Define("num", peg.Choice(peg.Seq(peg.Run(`0-9`, 0, -1), peg.Lit("."), peg.Run(`0-9`, 1, -1)), peg.Run(`0-9`, 1, -1)))
	b.Define("string", peg.Choice(peg.Ref("string1"), peg.Ref("string2")))
	b.Define("badstring", peg.Choice(peg.Ref("badstring1"), peg.Ref("badstring2")))
	b.Define("badcomment", peg.Choice(peg.Ref("badcomment1"), peg.Ref("badcomment2")))
	b.Define("baduri", peg.Choice(peg.Ref("baduri2"), peg.Ref("baduri3"), peg.Ref("baduri1")))
	b.Define("url", peg.ZeroOrMore(peg.Choice(peg.Class(`!#$%&*-~`), peg.Ref("nonascii"), peg.Ref("escape"))))
	b.Define("s", peg.Run(` \t\r\n\f`, 1, -1))
	b.Define("w", peg.Optional(peg.Ref("s")))
	b.Define("nl", peg.Choice(peg.Lit("\n"), peg.Lit("\r\n"), peg.Lit("\r"), peg.Lit("\f")))

	// Tokens.
	b.Define("CDO", peg.Lit("<!--"))
	b.Define("CDC", peg.Lit("-->"))
	b.Define("INCLUDES", peg.Lit("~="))
	b.Define("DASHMATCH", peg.Lit("|="))
	b.Define("STRING", peg.Ref("string"))
	b.Define("BAD_STRING", peg.Ref("badstring"))
	b.Define("IDENT", peg.Ref("ident"))
	b.Define("HASH", peg.Seq(peg.Lit("#"), peg.Ref("name")))
	b.Define("ATKEYWORD", peg.Seq(peg.Lit("@"), peg.Ref("ident")))
	b.Define("IMPORT_SYM", peg.Seq(peg.Lit("@"), peg.Keyword("import")))
	b.Define("PAGE_SYM", peg.Seq(peg.Lit("@"), peg.Keyword("page")))
	b.Define("MEDIA_SYM", peg.Seq(peg.Lit("@"), peg.Keyword("media")))
	b.Define("CHARSET_SYM", peg.Lit("@charset "))
	b.Define("IMPORTANT_SYM", peg.Seq(peg.Lit("!"), peg.Ref("-"), peg.Keyword("important")))
	b.Define("EMS", peg.Seq(peg.Ref("num"), peg.Keyword("em")))
	b.Define("EXS", peg.Seq(peg.Ref("num"), peg.Keyword("ex")))
	b.Define("LENGTH", units("px", "cm", "mm", "in", "pt", "pc"))
	b.Define("ANGLE", units("deg", "rad", "grad"))
	b.Define("TIME", units("ms", "s"))
	b.Define("FREQ", units("hz", "khz"))
	b.Define("RESOLUTION", units("dpi", "dpcm"))
	b.Define("DIMENSION", peg.Seq(peg.Ref("num"), peg.Ref("ident")))
	b.Define("PERCENTAGE", peg.Seq(peg.Ref("num"), peg.Lit("%")))
	b.Define("NUMBER", peg.Ref("num"))
	b.Define("URI", peg.Choice(
		peg.Seq(peg.Keyword("url"), peg.Lit("("), peg.Ref("w"), peg.Ref("string"), peg.Ref("w"), peg.Lit(")")),
		peg.Seq(peg.Keyword("url"), peg.Lit("("), peg.Ref("w"), peg.Ref("url"), peg.Ref("w"), peg.Lit(")")),
	))
	b.Define("BAD_URI", peg.Ref("baduri"))
	b.Define("FUNCTION", peg.Seq(peg.Ref("ident"), peg.Lit("(")))
	b.Define("ONLY", peg.Keyword("only"))
	b.Define("NOT", peg.Keyword("not"))
	b.Define("AND", peg.Keyword("and"))
	b.Define("DELIM", peg.Seq(peg.Not(peg.Class(`"'`)), peg.Any()))

	// Ignorable whitespace and comments between tokens.
	b.Define("-", peg.Seq(peg.ZeroOrMore(peg.Ref("s")), peg.ZeroOrMore(peg.Seq(peg.Ref("comment"), peg.ZeroOrMore(peg.Ref("s"))))))

	// Style sheet structure.
	b.Define("stylesheet", peg.Seq(
		peg.Optional(peg.Seq(peg.Ref("CHARSET_SYM"), peg.Ref("STRING"), peg.Lit(";"))),
		peg.ZeroOrMore(peg.Choice(peg.Ref("s"), peg.Ref("CDO"), peg.Ref("CDC"))),
		peg.ZeroOrMore(peg.Seq(peg.Ref("import"), markupComments())),
		peg.ZeroOrMore(peg.Seq(peg.Choice(peg.Ref("ruleset"), peg.Ref("media"), peg.Ref("page")), markupComments())),
	))
	b.Define("import", peg.Seq(peg.Ref("IMPORT_SYM"), peg.Ref("-"), peg.Choice(peg.Ref("STRING"), peg.Ref("URI")), peg.Ref("-"),
		peg.Optional(peg.Ref("media_query_list")), peg.Lit(";"), peg.Ref("-")))
	b.Define("media", peg.Seq(peg.Ref("MEDIA_SYM"), peg.Ref("-"), peg.Ref("media_query_list"), peg.Lit("{"), peg.Ref("-"),
		peg.ZeroOrMore(peg.Ref("ruleset")), peg.Lit("}"), peg.Ref("-")))
	b.Define("media_query_list", peg.Seq(peg.Ref("-"), peg.Ref("medium_query"),
		peg.ZeroOrMore(peg.Seq(peg.Lit(","), peg.Ref("-"), peg.Ref("medium_query")))))
	b.Define("medium_query", peg.Choice(
		peg.Seq(peg.Optional(peg.Choice(peg.Ref("ONLY"), peg.Ref("NOT"))), peg.Ref("-"), peg.Ref("media_type"), peg.Ref("-"),
			peg.ZeroOrMore(peg.Seq(peg.Ref("AND"), peg.Ref("-"), peg.Ref("expression")))),
		peg.Seq(peg.Ref("expression"), peg.ZeroOrMore(peg.Seq(peg.Ref("AND"), peg.Ref("-"), peg.Ref("expression")))),
	))
	b.Define("media_type", peg.Ref("IDENT"))
	b.Define("expression", peg.Seq(peg.Lit("("), peg.Ref("-"), peg.Ref("media_feature"), peg.Ref("-"),
		peg.Optional(peg.Seq(peg.Lit(":"), peg.Ref("-"), peg.Ref("expr"))), peg.Lit(")"), peg.Ref("-")))
	b.Define("media_feature", peg.Ref("IDENT"))
	b.Define("page", peg.Seq(peg.Ref("PAGE_SYM"), peg.Ref("-"), peg.Optional(peg.Ref("pseudo_page")), declarationBlock()))
	b.Define("pseudo_page", peg.Seq(peg.Lit(":"), peg.Ref("IDENT"), peg.Ref("-")))
	b.Define("operator", peg.Choice(peg.Seq(peg.Lit("/"), peg.Ref("-")), peg.Seq(peg.Lit(","), peg.Ref("-"))))
	b.Define("combinator", peg.Choice(peg.Seq(peg.Lit("+"), peg.Ref("-")), peg.Seq(peg.Lit(">"), peg.Ref("-"))))
	b.Define("unary_operator", peg.Choice(peg.Lit("-"), peg.Lit("+")))
	b.Define("property", peg.Seq(peg.Ref("IDENT"), peg.Ref("-")))
	b.Define("ruleset", peg.Seq(peg.Ref("selector"), peg.ZeroOrMore(peg.Seq(peg.Lit(","), peg.Ref("-"), peg.Ref("selector"))), declarationBlock()))
	b.Define("selector", peg.Seq(peg.Ref("simple_selector"), peg.Optional(peg.Choice(
		peg.Seq(peg.Ref("combinator"), peg.Ref("selector")),
		peg.Seq(peg.OneOrMore(peg.Ref("s")), peg.Optional(peg.Seq(peg.Optional(peg.Ref("combinator")), peg.Ref("selector")))),
	))))
	b.Define("simple_selector", peg.Choice(
		peg.Seq(peg.Optional(peg.Lit("::")), peg.Ref("element_name"), peg.ZeroOrMore(selectorSuffix())),
		peg.OneOrMore(selectorSuffix()),
	))
	b.Define("class", peg.Seq(peg.Lit("."), peg.Ref("IDENT")))
	b.Define("element_name", peg.Choice(peg.Ref("IDENT"), peg.Lit("*")))
	b.Define("attrib", peg.Seq(peg.Lit("["), peg.Ref("-"), peg.Ref("IDENT"), peg.Ref("-"),
		peg.Optional(peg.Seq(peg.Choice(peg.Lit("="), peg.Ref("INCLUDES"), peg.Ref("DASHMATCH")), peg.Ref("-"),
			peg.Choice(peg.Ref("IDENT"), peg.Ref("STRING")), peg.Ref("-"))),
		peg.Lit("]")))
	b.Define("pseudo", peg.Seq(peg.Lit(":"), peg.Optional(peg.Lit(":")), peg.Choice(
		peg.Seq(peg.Ref("FUNCTION"), peg.Ref("-"), peg.Optional(peg.Seq(peg.Ref("IDENT"), peg.Ref("-"))), peg.Lit(")")),
		peg.Ref("IDENT"),
	)))
	b.Define("stopper", peg.Choice(peg.Lit(";"), peg.Lit("}")))
	b.Define("declaration", peg.Choice(
		peg.Seq(peg.Lit("filter"), peg.Ref("-"), peg.Lit(":"), peg.Ref("-"), skipValue()),
		peg.Seq(peg.Ref("property"), peg.Lit(":"), peg.Ref("-"), peg.Ref("expr"), peg.Optional(peg.Ref("prio"))),
		peg.Seq(peg.Lit("*"), peg.Ref("property"), peg.Ref("-"), peg.Lit(":"), peg.Ref("-"), skipValue()),
	))
	b.Define("prio", peg.Seq(peg.Ref("IMPORTANT_SYM"), peg.Ref("-")))
	b.Define("expr", peg.Seq(peg.Ref("term"), peg.ZeroOrMore(peg.Seq(peg.Optional(peg.Ref("operator")), peg.Ref("term")))))
	b.Define("term", peg.Choice(
		peg.Seq(peg.Optional(peg.Ref("unary_operator")), peg.Choice(
			peg.Seq(peg.Ref("PERCENTAGE"), peg.Ref("-")),
			peg.Seq(peg.Ref("LENGTH"), peg.Ref("-")),
			peg.Seq(peg.Ref("EMS"), peg.Ref("-")),
			peg.Seq(peg.Ref("EXS"), peg.Ref("-")),
			peg.Seq(peg.Ref("ANGLE"), peg.Ref("-")),
			peg.Seq(peg.Ref("TIME"), peg.Ref("-")),
			peg.Seq(peg.Ref("FREQ"), peg.Ref("-")),
			peg.Seq(peg.Ref("RESOLUTION"), peg.Ref("-")),
			peg.Seq(peg.Ref("NUMBER"), peg.Ref("-")),
		)),
		peg.Seq(peg.Ref("STRING"), peg.Ref("-")),
		peg.Seq(peg.Ref("URI"), peg.Ref("-")),
		peg.Ref("function"),
		peg.Seq(peg.Ref("IDENT"), peg.Ref("-")),
		peg.Ref("hexcolor"),
	))
	b.Define("function", peg.Seq(peg.Ref("FUNCTION"), peg.Ref("-"), peg.Ref("expr"), peg.Lit(")"), peg.Ref("-")))
	b.Define("hexcolor", peg.Seq(peg.Ref("HASH"), peg.Ref("-")))
	b.Define("root", peg.Seq(peg.Ref("-"), peg.Ref("stylesheet"), peg.Ref("-"), peg.EOF()))

	// Core tokenization, the only consumer of the recovery tokens.
	b.Define("token", peg.Choice(
		peg.Ref("s"),
		peg.Ref("comment"),
		peg.Ref("badcomment"),
		peg.Ref("CDO"),
		peg.Ref("CDC"),
		peg.Ref("INCLUDES"),
		peg.Ref("DASHMATCH"),
		peg.Ref("URI"),
		peg.Ref("BAD_URI"),
		peg.Ref("FUNCTION"),
		peg.Ref("ATKEYWORD"),
		peg.Ref("IDENT"),
		peg.Ref("STRING"),
		peg.Ref("BAD_STRING"),
		peg.Ref("HASH"),
		peg.Ref("PERCENTAGE"),
		peg.Ref("DIMENSION"),
		peg.Ref("NUMBER"),
		peg.Ref("DELIM"),
	))
	b.Define("tokens", peg.Seq(peg.ZeroOrMore(peg.Ref("token")), peg.EOF()))

	return b
}

// stringChar matches one character of a string quoted with q.
func stringChar(q string) peg.Expr {
	return peg.Choice(peg.Class(`^\n\r\f\\`+q), peg.Seq(peg.Lit(`\`), peg.Ref("nl")), peg.Ref("escape"))
}

// units matches a number followed by one of the unit keywords.
func units(names ...string) peg.Expr {
	alts := make([]peg.Expr, len(names))
	for i, n := range names {
		alts[i] = peg.Seq(peg.Ref("num"), peg.Keyword(n))
	}
	return peg.Choice(alts...)
}

// markupComments skips SGML comment delimiters after a statement.
func markupComments() peg.Expr {
	return peg.ZeroOrMore(peg.Choice(peg.Seq(peg.Ref("CDO"), peg.Ref("-")), peg.Seq(peg.Ref("CDC"), peg.Ref("-"))))
}

func selectorSuffix() peg.Expr {
	return peg.Choice(peg.Ref("HASH"), peg.Ref("class"), peg.Ref("attrib"), peg.Ref("pseudo"))
}

func declarationBlock() peg.Expr {
	return peg.Seq(peg.Lit("{"), peg.Ref("-"), peg.Optional(peg.Ref("declaration")),
		peg.ZeroOrMore(peg.Seq(peg.Lit(";"), peg.Ref("-"), peg.Optional(peg.Ref("declaration")))), peg.Lit("}"), peg.Ref("-"))
}

// skipValue consumes anything up to the next ';' or '}'.
func skipValue() peg.Expr {
	return peg.OneOrMore(peg.Seq(peg.Not(peg.Ref("stopper")), peg.Any()))
}
