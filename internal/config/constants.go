package config

// ConfigFileNames are the recognized declaration file names, in lookup order.
var ConfigFileNames = []string{"tagops.yaml", "tagops.yml"}

// Reserved tag ids. These are fixed for the lifetime of a process; every
// other id is handed out to user tags in registration order.
const (
	TagUnknown = iota
	TagCell
	TagBool
	TagChar
	TagFloat
	TagString
	TagVariant
	TagList
	TagMap
	TagIter
	TagRef
	TagTask

	// FirstUserTag is the first id given to a non-reserved tag.
	FirstUserTag
)

// Built-in tag names, indexed by reserved id.
var TagNames = [FirstUserTag]string{
	TagUnknown: "?",
	TagCell:    "_",
	TagBool:    "bool",
	TagChar:    "char",
	TagFloat:   "Float",
	TagString:  "String",
	TagVariant: "Variant",
	TagList:    "List",
	TagMap:     "Map",
	TagIter:    "Iter",
	TagRef:     "Ref",
	TagTask:    "Task",
}

// TagSeparator splits a derived tag name from its base ("Ref@Float").
const TagSeparator = '@'

// Operation names as they appear in declaration files.
const (
	OpAdd    = "add"
	OpSub    = "sub"
	OpMul    = "mul"
	OpDiv    = "div"
	OpMod    = "mod"
	OpNeg    = "neg"
	OpEquals = "equals"
	OpString = "string"
	OpDelete = "delete"
	OpFree   = "free"
	OpCopy   = "copy"
	OpClone  = "clone"
	OpHash   = "hash"
)

// OpNames lists every overridable operation in declaration order.
var OpNames = []string{
	OpAdd, OpSub, OpMul, OpDiv, OpMod, OpNeg,
	OpEquals, OpString, OpDelete, OpFree, OpCopy, OpClone, OpHash,
}

// Format specifier codes.
const (
	SpecArray     = 'a'
	SpecInt       = 'i'
	SpecFloat     = 'f'
	SpecChar      = 'c'
	SpecCharArray = 's'
	SpecString    = 'S'
	SpecVariant   = 'V'
	SpecList      = 'l'
	SpecMap       = 'm'
)

// Extra-argument encoding characters accepted by an override.
const (
	ArgInt    = 'i'
	ArgDec    = 'd'
	ArgChar   = 'c'
	ArgBool   = 'b'
	ArgHex    = 'x'
	ArgFloat  = 'f'
	ArgString = 's'
	ArgOp     = 'e'
)

// ArgFormats lists every valid extra-argument encoding character.
const ArgFormats = "idcbxfse"
