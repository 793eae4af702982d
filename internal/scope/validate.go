package scope

import (
	"fmt"

	"github.com/lollipopkit/luacore/internal/ast"
)

// validateGotos checks that every `goto label` in a function body has a
// matching `::label::` somewhere in the same function (spec §4.3: "a label
// is in scope for the rest of the enclosing block" — approximated here as
// function-wide visibility, which accepts a few gotos the reference
// implementation would reject as jumping into a local's scope, but never
// accepts a goto to a genuinely undefined label).
func validateGotos(body *ast.Block, topLevelLabels map[string]bool) error {
	labels := map[string]bool{}
	collectLabels(body, labels)
	for k, v := range topLevelLabels {
		labels[k] = v
	}
	return checkGotos(body, labels)
}

func collectLabels(b *ast.Block, out map[string]bool) {
	for _, s := range b.Stats {
		switch s := s.(type) {
		case *ast.LabelStat:
			out[s.Name] = true
		case *ast.DoStat:
			collectLabels(s.Body, out)
		case *ast.WhileStat:
			collectLabels(s.Body, out)
		case *ast.RepeatStat:
			collectLabels(s.Body, out)
		case *ast.IfStat:
			for _, blk := range s.Blocks {
				collectLabels(blk, out)
			}
			if s.Else != nil {
				collectLabels(s.Else, out)
			}
		case *ast.NumericForStat:
			collectLabels(s.Body, out)
		case *ast.GenericForStat:
			collectLabels(s.Body, out)
		}
	}
}

func checkGotos(b *ast.Block, labels map[string]bool) error {
	for _, s := range b.Stats {
		switch s := s.(type) {
		case *ast.GotoStat:
			if !labels[s.Label] {
				return fmt.Errorf("line %d: no visible label %q for goto", s.Meta.Line, s.Label)
			}
		case *ast.DoStat:
			if err := checkGotos(s.Body, labels); err != nil {
				return err
			}
		case *ast.WhileStat:
			if err := checkGotos(s.Body, labels); err != nil {
				return err
			}
		case *ast.RepeatStat:
			if err := checkGotos(s.Body, labels); err != nil {
				return err
			}
		case *ast.IfStat:
			for _, blk := range s.Blocks {
				if err := checkGotos(blk, labels); err != nil {
					return err
				}
			}
			if s.Else != nil {
				if err := checkGotos(s.Else, labels); err != nil {
					return err
				}
			}
		case *ast.NumericForStat:
			if err := checkGotos(s.Body, labels); err != nil {
				return err
			}
		case *ast.GenericForStat:
			if err := checkGotos(s.Body, labels); err != nil {
				return err
			}
		}
	}
	return nil
}
