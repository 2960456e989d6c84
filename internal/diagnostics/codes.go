package diagnostics

// Code is a stable diagnostic identifier. This inventory is the
// authoritative list: a truncated BAD_XML_PLACEMENT spelling and a
// dangling duplicate MISSING_ATTRIBUTE declaration seen in an earlier
// reference implementation are treated as authoring noise, not
// additional codes.
type Code string

const (
	XMLNoHandlerForTag      Code = "XML001"
	XMLBadPlacement         Code = "XML002"
	XMLMissingAttribute     Code = "XML003"
	XMLBadAttributeType     Code = "XML004"
	XMLMissingText          Code = "XML005"
	XMLUnexpectedChild      Code = "XML006"
	XMLUnknownSymbol        Code = "XML007"
	SymDuplicate            Code = "SYM001"
	IRTypeMismatch          Code = "IR001"
	IRUnsupportedOp         Code = "IR002"
	GraphRuleFailed         Code = "GB001"
	GraphInvariantViolated  Code = "GB002"
	CodegenRuleFailed       Code = "CG001"
)

// templates maps each code to its message template. Placeholders use
// "{name}" syntax; Format degrades missing placeholders rather than
// raising.
var templates = map[Code]string{
	XMLNoHandlerForTag:     "no handler registered for tag <{tag}>",
	XMLBadPlacement:        "element <{tag}> is not valid inside <{parent}>",
	XMLMissingAttribute:    "element <{tag}> is missing required attribute {attr}",
	XMLBadAttributeType:    "attribute {attr} on <{tag}> expected {expected}, got {actual}",
	XMLMissingText:         "element <{tag}> requires text content",
	XMLUnexpectedChild:     "element <{tag}> does not accept child <{extra}>",
	XMLUnknownSymbol:       "symbol {symbol} is not declared",
	SymDuplicate:           "symbol {symbol} is already declared",
	IRTypeMismatch:         "expected type {expected}, got {actual} for {name}",
	IRUnsupportedOp:        "unsupported operator {op}",
	GraphRuleFailed:        "graph construction rule failed at {node}: {reason}",
	GraphInvariantViolated: "graph invariant violated at {node}: {reason}",
	CodegenRuleFailed:      "code generation rule failed at {node}: {reason}",
}

// Template returns the message template registered for a code, or "" if
// the code is unknown.
func Template(c Code) string {
	return templates[c]
}
