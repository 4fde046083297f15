package dashdoc

import (
	"regexp"
	"strings"
)

// EntryType is the kind of a documentation entry as understood by Dash.
// The set is closed; Category is the fallback for unclassifiable titles.
type EntryType int

// Entry types in declaration order. Declaration order breaks ties when two
// keywords match at the same position of a title.
const (
	TypeAnnotation EntryType = iota
	TypeAttribute
	TypeBinding
	TypeBuiltin
	TypeCallback
	TypeCategory
	TypeClass
	TypeCommand
	TypeComponent
	TypeConstant
	TypeConstructor
	TypeDefine
	TypeDelegate
	TypeDiagram
	TypeDirective
	TypeElement
	TypeEntry
	TypeEnum
	TypeEnvironment
	TypeError
	TypeEvent
	TypeException
	TypeExtension
	TypeField
	TypeFile
	TypeFilter
	TypeFramework
	TypeFunction
	TypeGlobal
	TypeGuide
	TypeHook
	TypeInstance
	TypeInstruction
	TypeInterface
	TypeKeyword
	TypeLibrary
	TypeLiteral
	TypeMacro
	TypeMethod
	TypeMixin
	TypeModifier
	TypeModule
	TypeNamespace
	TypeNotation
	TypeObject
	TypeOperator
	TypeOption
	TypePackage
	TypeParameter
	TypePlugin
	TypeProcedure
	TypeProperty
	TypeProtocol
	TypeProvider
	TypeProvisioner
	TypeQuery
	TypeRecord
	TypeResource
	TypeSample
	TypeSection
	TypeService
	TypeSetting
	TypeShortcut
	TypeStatement
	TypeStruct
	TypeStyle
	TypeSubroutine
	TypeTag
	TypeTest
	TypeTrait
	TypeType
	TypeUnion
	TypeValue
	TypeVariable
	TypeWord
)

var entryTypeNames = [...]string{
	"Annotation", "Attribute", "Binding", "Builtin", "Callback", "Category",
	"Class", "Command", "Component", "Constant", "Constructor", "Define",
	"Delegate", "Diagram", "Directive", "Element", "Entry", "Enum",
	"Environment", "Error", "Event", "Exception", "Extension", "Field",
	"File", "Filter", "Framework", "Function", "Global", "Guide", "Hook",
	"Instance", "Instruction", "Interface", "Keyword", "Library", "Literal",
	"Macro", "Method", "Mixin", "Modifier", "Module", "Namespace", "Notation",
	"Object", "Operator", "Option", "Package", "Parameter", "Plugin",
	"Procedure", "Property", "Protocol", "Provider", "Provisioner", "Query",
	"Record", "Resource", "Sample", "Section", "Service", "Setting",
	"Shortcut", "Statement", "Struct", "Style", "Subroutine", "Tag", "Test",
	"Trait", "Type", "Union", "Value", "Variable", "Word",
}

// entryTypeAliases lists extra keywords for types whose reference titles
// rarely use the Dash name itself.
var entryTypeAliases = map[EntryType][]string{
	TypeCommand: {"cmdlet"},
	TypeEnum:    {"enumeration"},
	TypeStruct:  {"structure"},
}

// String returns the Dash name of the entry type.
func (t EntryType) String() string {
	if t < 0 || int(t) >= len(entryTypeNames) {
		return entryTypeNames[TypeCategory]
	}
	return entryTypeNames[t]
}

// ParseEntryType returns the entry type with the given Dash name.
func ParseEntryType(s string) (EntryType, bool) {
	for i, name := range entryTypeNames {
		if strings.EqualFold(name, s) {
			return EntryType(i), true
		}
	}
	return TypeCategory, false
}

// entryTypePatterns holds one word-bounded, case-insensitive pattern per
// entry type, indexed by EntryType. The first group captures the keyword.
var entryTypePatterns = compileEntryTypePatterns()

func compileEntryTypePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(entryTypeNames))
	for i, name := range entryTypeNames {
		words := append([]string{strings.ToLower(name)}, entryTypeAliases[EntryType(i)]...)
		var alts []string
		for _, w := range words {
			alts = append(alts, regexp.QuoteMeta(w)+"(?:s|es)?")
			if stem, ok := strings.CutSuffix(w, "y"); ok {
				alts = append(alts, regexp.QuoteMeta(stem)+"ies")
			}
		}
		patterns[i] = regexp.MustCompile(`(?i)(?:^|\s)(` + strings.Join(alts, "|") + `)(?:\s|$)`)
	}
	return patterns
}

// ClassifyTitle searches title for entry type keywords and returns the type
// whose match starts leftmost. Ties go to the type declared first.
// The bool result is false when no keyword occurs in the title.
func ClassifyTitle(title string) (EntryType, bool) {
	best, bestPos := TypeCategory, -1
	for i, re := range entryTypePatterns {
		loc := re.FindStringSubmatchIndex(title)
		if loc == nil {
			continue
		}
		pos := loc[2]
		if bestPos == -1 || pos < bestPos {
			best, bestPos = EntryType(i), pos
		}
	}
	return best, bestPos != -1
}
