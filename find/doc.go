// Package find is the public API of rfind: a find-style recursive search
// driven by a boolean expression over name, type and regex tests.
//
// Basic usage
//
//	matches, err := find.Find(context.Background(), ".", "--name", "go.mod")
//
// With a configuration and a custom sink
//
//	cfg := find.DefaultConfig()
//	cfg.StartingPath = "/src"
//	cfg.MaxDepth = find.Depth(3)
//	cfg.Workers = 4
//
//	sink := find.NewCollector()
//	s, err := find.NewSearcher(cfg, sink, nil)
//	if err != nil {
//		return err
//	}
//	ok, err := s.Run(ctx, []string{"--type", "f", "--and", "--regex", `\.go$`})
//
// Expressions are evaluated left to right with no operator precedence: an
// operator applies to the result so far and everything to its right.
// Parentheses group a sub-expression.
package find
