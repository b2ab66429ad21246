package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/duynguyendang/geoqa/pkg/intent"
	"github.com/duynguyendang/geoqa/pkg/normalize"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

const help = `:intent <question>  show how a question is classified
:stats               aggregate counts over the ontology
:countries           list the known countries
:schema              list the ontology relations
:help                this text
quit                 leave`

func (r *REPL) command(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help":
		fmt.Fprintln(r.out, help)

	case ":intent":
		if arg == "" {
			return fmt.Errorf("usage: :intent <question>")
		}
		c, err := intent.NewClassifier().Classify(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "intent=%s argument=%q key=%q\n", c.Intent, c.Argument, normalize.Key(c.Argument))

	case ":stats":
		sum, err := r.qa.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "countries:       %d\n", sum.Countries)
		fmt.Fprintf(r.out, "presidents:      %d\n", sum.Presidents)
		fmt.Fprintf(r.out, "prime ministers: %d\n", sum.PrimeMinisters)
		fmt.Fprintf(r.out, "republics:       %d\n", sum.Republics)
		fmt.Fprintf(r.out, "monarchies:      %d\n", sum.Monarchies)

	case ":countries":
		names, err := r.qa.CountryNames(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(r.out, strings.ReplaceAll(n, "_", " "))
		}

	case ":schema":
		for _, rel := range vocab.Schema {
			fmt.Fprintf(r.out, "%-20s %s -> %s (%s)\n", rel.Name, rel.Subject, rel.Object, rel.Cardinality)
		}

	default:
		return fmt.Errorf("unknown command %s, try :help", name)
	}
	return nil
}
