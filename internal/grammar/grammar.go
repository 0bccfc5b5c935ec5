// Package grammar holds the tree-sitter Language bindings this server parses
// against. Per spec §1 the grammars themselves are out of scope ("the
// tree-sitter grammar for Rholang and MeTTa (treated as black-box
// parsers)"); this package only defines the registration points a real
// grammar-binding package (analogous to github.com/charliestrawn/tree-sitter-frugal)
// would call from its own init().
package grammar

import sitter "github.com/tree-sitter/go-tree-sitter"

var (
	rholang *sitter.Language
	metta   *sitter.Language
)

// SetRholangLanguage registers the tree-sitter grammar used to parse
// Rholang source. Called from the init() of a grammar-binding package that
// links the generated Rholang parser; nil until a binding registers one.
func SetRholangLanguage(lang *sitter.Language) { rholang = lang }

// SetMettaLanguage registers the tree-sitter grammar used to parse MeTTa
// source found inside embedded regions.
func SetMettaLanguage(lang *sitter.Language) { metta = lang }

// Rholang returns the registered Rholang grammar, or nil if none has been
// linked in.
func Rholang() *sitter.Language { return rholang }

// Metta returns the registered MeTTa grammar, or nil if none has been
// linked in.
func Metta() *sitter.Language { return metta }
