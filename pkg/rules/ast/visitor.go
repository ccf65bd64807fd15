package ast

// Visitor provides an interface for traversing the AST.
// Implement this interface to perform operations on AST nodes
// (validation, statistics, printing, etc.).
type Visitor interface {
	VisitRoot(*Root) error
	VisitSegment(*Segment) error
	VisitCategory(*Category) error
	VisitMatch(*MatchNode) error
}

// Walk traverses the AST starting from the root node and calls the visitor
// for each node in document order. It returns the first error encountered.
func Walk(root *Root, visitor Visitor) error {
	if err := visitor.VisitRoot(root); err != nil {
		return err
	}

	for _, segment := range root.Segments {
		if err := visitor.VisitSegment(segment); err != nil {
			return err
		}

		for _, category := range segment.Categories {
			if err := visitor.VisitCategory(category); err != nil {
				return err
			}

			for _, match := range category.Matches {
				if err := walkMatch(match, visitor); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// walkMatch recursively traverses match nodes, parents before children.
func walkMatch(match *MatchNode, visitor Visitor) error {
	if err := visitor.VisitMatch(match); err != nil {
		return err
	}

	for _, child := range match.Children {
		if err := walkMatch(child, visitor); err != nil {
			return err
		}
	}

	return nil
}

// BaseVisitor provides no-op implementations of all Visitor methods.
// Embed it to override only the methods you need.
type BaseVisitor struct{}

// VisitRoot does nothing.
func (BaseVisitor) VisitRoot(*Root) error { return nil }

// VisitSegment does nothing.
func (BaseVisitor) VisitSegment(*Segment) error { return nil }

// VisitCategory does nothing.
func (BaseVisitor) VisitCategory(*Category) error { return nil }

// VisitMatch does nothing.
func (BaseVisitor) VisitMatch(*MatchNode) error { return nil }
