package content

import "errors"

var (
	// ErrInvalidFrontmatter reports a post whose header cannot be decoded.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
	ErrMissingTitle       = errors.New("post has no title")
)
