package hlir

// ErrorCode is the closed set of outcomes a BuilderResult may carry.
type ErrorCode string

const (
	Success           ErrorCode = ""
	DuplicateName     ErrorCode = "DuplicateName"
	NotFound          ErrorCode = "NotFound"
	DependencyExists  ErrorCode = "DependencyExists"
	InvalidParameter  ErrorCode = "InvalidParameter"
	InvalidReference  ErrorCode = "InvalidReference"
)

// BuilderResult is the carrier every mutating builder operation returns.
// It is not a control-flow mechanism: callers branch on Ok and consume
// the other fields directly.
type BuilderResult struct {
	Ok           bool
	ID           string
	Component    any
	ErrorCode    ErrorCode
	ErrorMessage string
	Dependencies []string
}

// ResultOK builds a successful result.
func ResultOK(id string, component any) BuilderResult {
	return BuilderResult{Ok: true, ID: id, Component: component}
}

// ResultError builds a failed result with an optional dependency list.
func ResultError(code ErrorCode, message string, deps ...string) BuilderResult {
	return BuilderResult{ErrorCode: code, ErrorMessage: message, Dependencies: deps}
}

// ResultDuplicate is the shortcut for a name collision, carrying the
// existing id so the caller can look it up without a second query.
func ResultDuplicate(existingID string) BuilderResult {
	return BuilderResult{
		ErrorCode:    DuplicateName,
		ErrorMessage: "an entity with this name already exists in this namespace",
		ID:           existingID,
	}
}

// ResultNotFound is the shortcut for a failed lookup or removal target.
func ResultNotFound(what string) BuilderResult {
	return BuilderResult{ErrorCode: NotFound, ErrorMessage: what + " not found"}
}

// ResultHasDependencies is the shortcut for a removal blocked by
// outstanding references; never fatal, the caller decides how to proceed.
func ResultHasDependencies(id, entityType string, deps []string) BuilderResult {
	return BuilderResult{
		ErrorCode:    DependencyExists,
		ErrorMessage: entityType + " has dependent entities",
		ID:           id,
		Dependencies: deps,
	}
}
