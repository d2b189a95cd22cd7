// Package prompt renders scoring prompt templates. Templates use {field_name}
// placeholders filled from a merged subject+subsidy context. Missing fields
// substitute an empty string.
package prompt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/subsidiematch/subsidiematch/internal/store"
)

const dateLayout = "2006-01-02"

// Render substitutes {name} placeholders in template with values from ctx.
// Names are [A-Za-z0-9_]+. Unknown names become the empty string. Double
// braces escape to literal braces, and a '{' that does not start a
// placeholder (for example a JSON block inside the template) passes through
// untouched. A placeholder that is opened but never closed is a malformed
// template and returns an error.
func Render(template string, ctx map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		if c == '}' && i+1 < len(template) && template[i+1] == '}' {
			b.WriteByte('}')
			i += 2
			continue
		}
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(template) && template[i+1] == '{' {
			b.WriteByte('{')
			i += 2
			continue
		}

		j := i + 1
		for j < len(template) && isNameChar(template[j]) {
			j++
		}
		if j == i+1 {
			// Not a placeholder, keep the brace literally.
			b.WriteByte('{')
			i++
			continue
		}
		if j >= len(template) || template[j] != '}' {
			return "", fmt.Errorf("malformed template: unterminated placeholder %q", template[i:j])
		}

		b.WriteString(ctx[template[i+1:j]])
		i = j + 1
	}

	return b.String(), nil
}

func isNameChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// Context builds the merged placeholder context for one subject and one
// subsidy. Organisation subjects expose all organisation fields; persona
// subjects expose empty organisation fields with the synthesized
// pseudo-profile under organisatieprofiel, so one template serves both
// subject kinds. Date values are formatted as YYYY-MM-DD.
func Context(subject *store.Subject, sub *store.Subsidy) map[string]string {
	org := subject.Organisation
	if org == nil {
		org = &store.Organisation{}
	}

	ctx := map[string]string{
		"organisatie_id":     formatID(org.ID),
		"organisatie_naam":   org.Name,
		"abonnement_type":    string(org.Subscription),
		"sector":             org.Sector,
		"type_organisatie":   org.OrgType,
		"omzet":              formatID(org.Revenue),
		"aantal_medewerkers": formatID(org.Employees),
		"locatie":            org.Location,
		"organisatieprofiel": org.Profile,
		"website_link":       org.Website,
	}

	if subject.Persona != nil {
		for key := range ctx {
			ctx[key] = ""
		}
		ctx["organisatieprofiel"] = subject.Profile()
	}

	ctx["subsidie_id"] = formatID(sub.ID)
	ctx["subsidie_naam"] = sub.Name
	ctx["bron"] = sub.Source
	ctx["datum_toegevoegd"] = formatDate(sub.DateAdded)
	ctx["sluitingsdatum"] = formatDate(sub.ClosingDate)
	ctx["subsidiebedrag"] = sub.Amount
	ctx["voor_wie"] = sub.Audience
	ctx["samenvatting_eisen"] = sub.Requirements
	ctx["subsidie_tekst_volledig"] = sub.FullText
	ctx["weblink"] = sub.Link

	return ctx
}

func formatID(v int) string {
	return strconv.Itoa(v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
