package cli

import (
	"fmt"
	"strings"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/links"
)

const (
	mononymMessage = "This name is a mononym. Pretend you're Cher. Or Zeus."
	errorMessage   = "An error occurred."
)

func spoiler(s string) string {
	return "||" + s + "||"
}

// RenderName formats a resolved name with its profile links.
func RenderName(name domain.ResolvedName) string {
	var b strings.Builder
	first := string(name.First)

	if name.IsMononym() {
		fmt.Fprintf(&b, "%s\n\n%s\n\n%s\n", first, mononymMessage, spoiler(name.LastErr.Message))
	} else {
		fmt.Fprintf(&b, "%s\n", name.FullName())
	}

	b.WriteString("\nBehindTheName\n")
	fmt.Fprintf(&b, "  First Name: %s\n", links.Hyperlink(first, links.FirstNameURL(first)))
	if !name.IsMononym() {
		last := string(name.Last)
		fmt.Fprintf(&b, "  Last Name:  %s\n", links.Hyperlink(last, links.LastNameURL(last)))
	}
	return b.String()
}

// RenderError formats a failure with its detail hidden behind spoiler bars.
func RenderError(err error) string {
	return fmt.Sprintf("%s\n\n%s", errorMessage, spoiler(err.Error()))
}

// RenderAbout formats a profile lookup.
func RenderAbout(about links.About) string {
	switch {
	case len(about.Names) == 0:
		return "No name found\n"
	case !about.Found() && len(about.Names) == 1:
		return fmt.Sprintf("Name %s not found.\n", about.Names[0])
	case !about.Found():
		return "No names found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nBehindTheName\n", strings.Join(about.Names, " "))
	for _, f := range about.Fields {
		fmt.Fprintf(&b, "  %-12s %s\n", roleLabel(f.Role)+":", links.Hyperlink(f.Name, f.URL))
	}
	return b.String()
}

func roleLabel(r links.Role) string {
	switch r {
	case links.RoleMiddle:
		return "Middle Name"
	case links.RoleLast:
		return "Last Name"
	default:
		return "First Name"
	}
}
