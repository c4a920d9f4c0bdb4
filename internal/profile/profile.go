// Package profile defines cleanup profiles: named collections of
// literal paths and glob patterns, each pattern optionally carrying a
// retention rule that keeps some of its matches from deletion.
package profile

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Profile is a named set of cleanup entries. It is built once per run
// by loading a document and never mutated afterwards.
type Profile struct {
	Name    string  `json:"name" yaml:"name"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Kind discriminates the two entry variants.
type Kind string

const (
	// KindPath marks a literal path, used verbatim.
	KindPath Kind = "path"

	// KindPattern marks a glob pattern matched against the filesystem.
	KindPattern Kind = "pattern"
)

// Order is the key a count-based retention ranks matches by.
type Order string

const (
	OrderFileName Order = "fileName"
	OrderCreated  Order = "created"
	OrderModified Order = "modified"
)

// Exception is the legacy single-exclusion retention form carried by
// older profile documents: it names one match to keep rather than a
// count of matches.
type Exception string

const (
	ExceptionFirstAscending  Exception = "firstAscending"
	ExceptionFirstDescending Exception = "firstDescending"
	ExceptionMostRecent      Exception = "mostRecent"
)

// Retention keeps the Count highest-ranked matches of a pattern out of
// the deletion list. Matches are ranked descending by Order's key.
type Retention struct {
	Order Order
	Count int
}

// Entry describes one cleanup target. Exactly one of Path or Pattern
// is set, per Kind. Pattern entries may carry either a Retention or a
// legacy Exception, never both.
type Entry struct {
	Kind      Kind
	Path      string
	Pattern   string
	Retention *Retention
	Exception Exception
}

// String renders the entry the way prompts and summaries refer to it.
func (e Entry) String() string {
	if e.Kind == KindPattern {
		return fmt.Sprintf("Pattern <%s>", e.Pattern)
	}
	return fmt.Sprintf("Path <%s>", e.Path)
}

// entryDoc is the wire shape of an entry, shared by the JSON and YAML
// document formats.
type entryDoc struct {
	Type      string        `json:"type" yaml:"type"`
	Path      string        `json:"path" yaml:"path"`
	Pattern   string        `json:"pattern" yaml:"pattern"`
	Retention *retentionDoc `json:"retention" yaml:"retention"`
	Exception string        `json:"exception" yaml:"exception"`
}

type retentionDoc struct {
	Order string `json:"order" yaml:"order"`
	Count int    `json:"count" yaml:"count"`
}

// UnmarshalJSON decodes the tagged entry form, switching on the type
// discriminator.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var doc entryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return e.fromDoc(doc)
}

// UnmarshalYAML decodes the same tagged form from YAML documents.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	var doc entryDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	return e.fromDoc(doc)
}

func (e *Entry) fromDoc(doc entryDoc) error {
	switch Kind(doc.Type) {
	case KindPath:
		if doc.Path == "" {
			return fmt.Errorf("path entry requires a path")
		}
		if doc.Retention != nil || doc.Exception != "" {
			return fmt.Errorf("path <%s>: retention applies to pattern entries only", doc.Path)
		}
		*e = Entry{Kind: KindPath, Path: doc.Path}
		return nil

	case KindPattern:
		if doc.Pattern == "" {
			return fmt.Errorf("pattern entry requires a pattern")
		}
		if doc.Retention != nil && doc.Exception != "" {
			return fmt.Errorf("pattern <%s>: declares both retention and exception", doc.Pattern)
		}

		entry := Entry{Kind: KindPattern, Pattern: doc.Pattern}
		if doc.Retention != nil {
			retention, err := doc.Retention.parse()
			if err != nil {
				return fmt.Errorf("pattern <%s>: %w", doc.Pattern, err)
			}
			entry.Retention = retention
		}
		if doc.Exception != "" {
			exception, err := parseException(doc.Exception)
			if err != nil {
				return fmt.Errorf("pattern <%s>: %w", doc.Pattern, err)
			}
			entry.Exception = exception
		}
		*e = entry
		return nil

	case "":
		return fmt.Errorf("entry is missing a type")
	default:
		return fmt.Errorf("unknown entry type %q", doc.Type)
	}
}

func (d *retentionDoc) parse() (*Retention, error) {
	switch Order(d.Order) {
	case OrderFileName, OrderCreated, OrderModified:
	default:
		return nil, fmt.Errorf("unknown retention order %q", d.Order)
	}
	if d.Count < 0 {
		return nil, fmt.Errorf("retention count must not be negative, got %d", d.Count)
	}
	return &Retention{Order: Order(d.Order), Count: d.Count}, nil
}

func parseException(s string) (Exception, error) {
	switch Exception(s) {
	case ExceptionFirstAscending, ExceptionFirstDescending, ExceptionMostRecent:
		return Exception(s), nil
	default:
		return "", fmt.Errorf("unknown exception %q", s)
	}
}
