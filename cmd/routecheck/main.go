// routecheck prints the redirect table of the routing policy and fails when
// any redirect does not settle on the next page.
//
//	routecheck                               every fixture, every catalog path
//	routecheck -f seeker-onboarding -p /     one fixture, one path
//	routecheck --list                        fixture names
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/policy"
)

// errViolations is returned when CheckTotality finds a loop.
var errViolations = errors.New("routing policy has violations")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errViolations) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		fixtures []string
		paths    []string
		list     bool
		noCheck  bool
	)
	flagSet := pflag.NewFlagSet("routecheck", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringSliceVarP(&fixtures, "fixture", "f", nil, "session fixtures to print (default: all)")
	flagSet.StringSliceVarP(&paths, "path", "p", nil, "paths to resolve (default: route catalog)")
	flagSet.BoolVar(&list, "list", false, "list fixture names and exit")
	flagSet.BoolVar(&noCheck, "no-check", false, "skip the fixed-point check")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	all := policy.Fixtures()
	if list {
		for _, f := range all {
			fmt.Fprintln(out, f.Name)
		}
		return nil
	}

	selected, err := selectFixtures(all, fixtures)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = policy.Catalog
	}

	printTable(out, selected, paths)

	if noCheck {
		return nil
	}
	violations := policy.CheckTotality(paths)
	if len(violations) == 0 {
		fmt.Fprintf(out, "\nok: %d paths settle for every fixture and trigger\n", len(paths))
		return nil
	}
	fmt.Fprintln(out)
	for _, v := range violations {
		fmt.Fprintln(out, v.Error())
	}
	return fmt.Errorf("%w: %d found", errViolations, len(violations))
}

func selectFixtures(all []policy.Fixture, names []string) ([]policy.Fixture, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]policy.Fixture, len(all))
	for _, f := range all {
		byName[f.Name] = f
	}
	out := make([]policy.Fixture, 0, len(names))
	for _, n := range names {
		f, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown fixture %q (see --list)", n)
		}
		out = append(out, f)
	}
	return out, nil
}

func printTable(out io.Writer, fixtures []policy.Fixture, paths []string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIXTURE\tPATH\tENTRY\tNAVIGATION\tGUARD\tSHELL")
	for _, f := range fixtures {
		for _, p := range paths {
			guard := "-"
			if req, ok := policy.RequirementFor(p); ok {
				guard = req.String() + " " + target(f.Session, p, policy.Guarded(req))
			}
			shell := "hidden"
			if policy.ShouldShowSharedShell(p) {
				shell = "shown"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				f.Name,
				domain.NormalizePath(p),
				target(f.Session, p, policy.Entry()),
				target(f.Session, p, policy.Navigation()),
				guard,
				shell,
			)
		}
	}
	_ = w.Flush()
}

func target(s domain.SessionRecord, path string, t policy.Trigger) string {
	if to, ok := policy.ResolveRedirect(s, path, t); ok {
		return "-> " + to
	}
	return "stay"
}
