package ast

// Root is the top-level AST node of a rule file.
type Root struct {
	Segments []*Segment // Segments in declaration order
	Source   string     // Name of the rule source (file path or "<memory>")
}

// Segment represents one independent classification axis.
// Names need not be unique; segments are evaluated in declaration order.
type Segment struct {
	Name       string      // Segment name
	Categories []*Category // Categories in declaration order (first match wins)
	Location   Location    // Source location of the segment header
}

// Category represents a named rule inside a segment.
// A category matches when every node in Matches evaluates truthy.
type Category struct {
	Name     string       // Category name
	Matches  []*MatchNode // One or more match expressions (implicit AND)
	Location Location     // Source location of the '@' marker
}

// GetSegment returns the first segment with the given name, or nil if not found.
func (r *Root) GetSegment(name string) *Segment {
	for _, segment := range r.Segments {
		if segment.Name == name {
			return segment
		}
	}
	return nil
}

// SegmentNames returns segment names in declaration order.
func (r *Root) SegmentNames() []string {
	names := make([]string, 0, len(r.Segments))
	for _, segment := range r.Segments {
		names = append(names, segment.Name)
	}
	return names
}

// CategoryCount returns the total number of categories across all segments.
func (r *Root) CategoryCount() int {
	count := 0
	for _, segment := range r.Segments {
		count += len(segment.Categories)
	}
	return count
}

// GetCategory returns the first category with the given name, or nil if not found.
func (s *Segment) GetCategory(name string) *Category {
	for _, category := range s.Categories {
		if category.Name == name {
			return category
		}
	}
	return nil
}
