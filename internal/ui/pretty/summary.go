package pretty

import "fmt"

// Stats counts the outcome of a format run.
type Stats struct {
	// Files is the number of documents processed.
	Files int
	// Changed is the number whose formatted text differs.
	Changed int
	// Written is the number rewritten on disk.
	Written int
	// Failed is the number that could not be processed.
	Failed int
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// FormatSummary formats run statistics as one line. With check set the
// wording reports files that would change.
func (s *Styles) FormatSummary(stats Stats, check bool) string {
	var msg string
	switch {
	case stats.Changed == 0:
		msg = s.Success.Render(plural(stats.Files, "file") + " already formatted")
	case check:
		msg = s.Warning.Render(fmt.Sprintf("%s of %d would be reformatted", plural(stats.Changed, "file"), stats.Files))
	case stats.Written > 0:
		msg = s.Success.Render(fmt.Sprintf("%s of %d reformatted", plural(stats.Written, "file"), stats.Files))
	default:
		msg = fmt.Sprintf("%s of %d differ", plural(stats.Changed, "file"), stats.Files)
	}
	if stats.Failed > 0 {
		msg += ", " + s.Failure.Render(plural(stats.Failed, "file")+" failed")
	}
	return msg + "\n"
}
