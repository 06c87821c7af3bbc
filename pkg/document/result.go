package document

import "fmt"

// Reason classifies a failed resolution
type Reason int

const (
	// NotFound: no asset exists for the ID (or the ID was rejected)
	NotFound Reason = iota + 1
	// ReadError: the asset exists but could not be read or is not UTF-8
	ReadError
	// EmptyContent: the asset was read but is empty or whitespace-only
	EmptyContent
)

func (r Reason) String() string {
	switch r {
	case NotFound:
		return "not_found"
	case ReadError:
		return "read_error"
	case EmptyContent:
		return "empty_content"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// MarshalText renders the reason as its snake_case name
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Failure describes why a resolution did not produce displayable content
type Failure struct {
	Reason Reason
	Detail string
}

// Resolved is the outcome of one resolution. Exactly one of Content (on
// success) or Failure is meaningful; check OK before displaying Content.
type Resolved struct {
	ID       ID
	Location string
	Content  string
	Failure  *Failure
}

// OK reports whether the resolution succeeded
func (r Resolved) OK() bool {
	return r.Failure == nil
}

// Outcome is "ok" on success and the failure reason otherwise
func (r Resolved) Outcome() string {
	if r.OK() {
		return "ok"
	}
	return r.Failure.Reason.String()
}

// Err converts a failed resolution to an error. It returns nil on success.
func (r Resolved) Err() error {
	if r.OK() {
		return nil
	}
	return &ResolveError{
		ID:       r.ID,
		Location: r.Location,
		Reason:   r.Failure.Reason,
		Detail:   r.Failure.Detail,
	}
}

// ResolveError is the error form of a failed resolution
type ResolveError struct {
	ID       ID
	Location string
	Reason   Reason
	Detail   string
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("%s: document %q at %s", e.Reason, e.ID, e.Location)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func success(id ID, location, content string) Resolved {
	return Resolved{ID: id, Location: location, Content: content}
}

func failure(id ID, location string, reason Reason, detail string) Resolved {
	return Resolved{
		ID:       id,
		Location: location,
		Failure:  &Failure{Reason: reason, Detail: detail},
	}
}

// Unlisted is the NotFound result for an ID that is valid but not offered by
// the current registry. It does not touch the backend.
func Unlisted(id ID, location string) Resolved {
	return failure(id, location, NotFound, "document is not in the document list")
}
