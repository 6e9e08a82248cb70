package contract

import "strings"

// returnsMarker splits a doc comment into the input description and the
// return description.
const returnsMarker = "\nReturns:"

// deriveDescriptions fills missing schema descriptions from a doc comment.
// The comment is split once on a "Returns:" marker line: the first part
// becomes the input description, the second the return description (when a
// return schema exists). More than one marker is an error.
func deriveDescriptions(input, returns *Schema, doc string) error {
	if doc == "" {
		return nil
	}

	parts := strings.Split(doc, returnsMarker)
	if len(parts) > 2 {
		return specErr("", "multiple 'Returns:' sections found in doc comment")
	}

	if input != nil && input.description == "" {
		input.description = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 && returns != nil && returns.description == "" {
		returns.description = strings.TrimSpace(parts[1])
	}
	return nil
}
