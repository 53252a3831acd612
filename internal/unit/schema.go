package unit

// The structs below mirror a unit file. TOML and YAML share them; every
// field carries both tags.

type fileSpec struct {
	Decls []declSpec `toml:"decl" yaml:"decl"`
}

// declSpec is one top-level declaration, selected by Kind:
// class, alias, const, enum, template or function.
type declSpec struct {
	Kind string `toml:"kind" yaml:"kind"`
	Name string `toml:"name" yaml:"name"`

	// template parameters of type templates and function templates
	Template []templateParamSpec `toml:"template" yaml:"template"`
	// signature of a type template; absent means short form
	Signature []signatureSpec `toml:"signature" yaml:"signature"`

	Fields  []fieldSpec `toml:"fields" yaml:"fields"`
	Alias   *exprSpec   `toml:"alias" yaml:"alias"`
	Target  *exprSpec   `toml:"target" yaml:"target"`
	Type    *exprSpec   `toml:"type" yaml:"type"`
	Value   *exprSpec   `toml:"value" yaml:"value"`
	Base    *exprSpec   `toml:"base" yaml:"base"`
	Members []string    `toml:"members" yaml:"members"`

	Params []paramSpec `toml:"params" yaml:"params"`
	Ret    *exprSpec   `toml:"ret" yaml:"ret"`
	RetRef bool        `toml:"ret_ref" yaml:"ret_ref"`
	RetMut bool        `toml:"ret_mut" yaml:"ret_mut"`
	Unsafe bool        `toml:"unsafe" yaml:"unsafe"`
	Body   []stmtSpec  `toml:"body" yaml:"body"`
}

type templateParamSpec struct {
	Name string    `toml:"name" yaml:"name"`
	Type *exprSpec `toml:"type" yaml:"type"`
}

type signatureSpec struct {
	Type    *exprSpec `toml:"type" yaml:"type"`
	Default *exprSpec `toml:"default" yaml:"default"`
}

type fieldSpec struct {
	Name string    `toml:"name" yaml:"name"`
	Type *exprSpec `toml:"type" yaml:"type"`
}

type paramSpec struct {
	Name string    `toml:"name" yaml:"name"`
	Type *exprSpec `toml:"type" yaml:"type"`
	Ref  bool      `toml:"ref" yaml:"ref"`
	Mut  bool      `toml:"mut" yaml:"mut"`
}

type stmtSpec struct {
	Let        string    `toml:"let" yaml:"let"`
	Type       *exprSpec `toml:"type" yaml:"type"`
	Init       *exprSpec `toml:"init" yaml:"init"`
	Expr       *exprSpec `toml:"expr" yaml:"expr"`
	Return     *exprSpec `toml:"return" yaml:"return"`
	ReturnVoid bool      `toml:"return_void" yaml:"return_void"`
}

// exprSpec is a tagged expression table. Exactly one tag is set; the
// remaining fields are operands of that tag.
type exprSpec struct {
	Name    string     `toml:"name" yaml:"name"`
	Apply   string     `toml:"apply" yaml:"apply"`
	Array   *exprSpec  `toml:"array" yaml:"array"`
	Tuple   []exprSpec `toml:"tuple" yaml:"tuple"`
	Pointer *exprSpec  `toml:"pointer" yaml:"pointer"`
	Func    *funcSpec  `toml:"func" yaml:"func"`
	Int     *int64     `toml:"int" yaml:"int"`
	Bool    *bool      `toml:"bool" yaml:"bool"`
	Char    string     `toml:"char" yaml:"char"`
	Neg     *exprSpec  `toml:"neg" yaml:"neg"`
	Not     *exprSpec  `toml:"not" yaml:"not"`
	Op      string     `toml:"op" yaml:"op"`
	Member  string     `toml:"member" yaml:"member"`
	Call    *exprSpec  `toml:"call" yaml:"call"`
	Args    []exprSpec `toml:"args" yaml:"args"`
	Size    *exprSpec  `toml:"size" yaml:"size"`
	Suffix  string     `toml:"suffix" yaml:"suffix"`
	X       *exprSpec  `toml:"x" yaml:"x"`
	Y       *exprSpec  `toml:"y" yaml:"y"`
	Of      *exprSpec  `toml:"of" yaml:"of"`
	Path    bool       `toml:"path" yaml:"path"`
}

type funcSpec struct {
	Params []paramSpec `toml:"params" yaml:"params"`
	Ret    *exprSpec   `toml:"ret" yaml:"ret"`
	RetRef bool        `toml:"ret_ref" yaml:"ret_ref"`
	RetMut bool        `toml:"ret_mut" yaml:"ret_mut"`
	Unsafe bool        `toml:"unsafe" yaml:"unsafe"`
}
