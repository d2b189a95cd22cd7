package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Subscription is the commercial tier of an organisation. The tier drives the
// default digest lookback window.
type Subscription string

const (
	SubscriptionBasic   Subscription = "basic"
	SubscriptionPremium Subscription = "premium"
)

// LookbackWeeks returns the default digest window for the tier.
func (s Subscription) LookbackWeeks() int {
	if s == SubscriptionPremium {
		return 8
	}
	return 4
}

// MatchType tags which kind of subject a match row refers to.
type MatchType string

const (
	MatchTypeOrganisation MatchType = "organisation"
	MatchTypePersona      MatchType = "persona"
)

// Organisation is a concrete subscriber whose profile text is matched against
// subsidies. The json and prompt tags carry the original Dutch field names:
// they are the wire format of dumps and the placeholder names available to
// prompt templates.
type Organisation struct {
	ID           int          `json:"organisatie_id" prompt:"organisatie_id"`
	Name         string       `json:"organisatie_naam" prompt:"organisatie_naam"`
	Subscription Subscription `json:"abonnement_type" prompt:"abonnement_type"`
	Sector       string       `json:"sector" prompt:"sector"`
	OrgType      string       `json:"type_organisatie" prompt:"type_organisatie"`
	Revenue      int          `json:"omzet" prompt:"omzet"`
	Employees    int          `json:"aantal_medewerkers" prompt:"aantal_medewerkers"`
	Location     string       `json:"locatie" prompt:"locatie"`
	Profile      string       `json:"organisatieprofiel" prompt:"organisatieprofiel"`
	Website      string       `json:"website_link" prompt:"website_link"`
}

// Persona is an archetype subject used for matching when no concrete
// organisation exists yet. Structurally parallel to Organisation but without
// the commercial attributes.
type Persona struct {
	ID          int    `json:"persona_id" prompt:"persona_id"`
	Sector      string `json:"persona_sector" prompt:"persona_sector"`
	OrgType     string `json:"persona_organisatie_type" prompt:"persona_organisatie_type"`
	Description string `json:"persona_omschrijving" prompt:"persona_omschrijving"`
}

// Subsidy is one subsidy program. Subsidies are treated as immutable once
// matched against; later edits do not invalidate existing match rows.
type Subsidy struct {
	ID           int       `json:"subsidie_id" prompt:"subsidie_id"`
	Name         string    `json:"subsidie_naam" prompt:"subsidie_naam"`
	Source       string    `json:"bron" prompt:"bron"`
	DateAdded    time.Time `json:"datum_toegevoegd" prompt:"datum_toegevoegd"`
	ClosingDate  time.Time `json:"sluitingsdatum" prompt:"sluitingsdatum"`
	Amount       string    `json:"subsidiebedrag" prompt:"subsidiebedrag"`
	Audience     string    `json:"voor_wie" prompt:"voor_wie"`
	Requirements string    `json:"samenvatting_eisen" prompt:"samenvatting_eisen"`
	FullText     string    `json:"subsidie_tekst_volledig" prompt:"subsidie_tekst_volledig"`
	Link         string    `json:"weblink" prompt:"weblink"`
}

// Match is one scored (subject, subsidy) pairing. Exactly one of
// OrganisationID and PersonaID is set, consistent with Type. Match ids are
// run-local: the whole table is replaced on every recompute.
type Match struct {
	ID             int       `json:"match_id"`
	SubsidyID      int       `json:"subsidie_id"`
	OrganisationID *int      `json:"organisatie_id,omitempty"`
	PersonaID      *int      `json:"persona_id,omitempty"`
	Type           MatchType `json:"type"`
	Score          int       `json:"match_score"`
	Rationale      string    `json:"match_toelichting"`
	CreatedAt      time.Time `json:"datum_toegevoegd"`
}

// Matches is a whole match table.
type Matches []*Match

// ForOrganisation returns the organisation-type rows for the given id,
// preserving table order.
func (m Matches) ForOrganisation(orgID int) Matches {
	out := make(Matches, 0)
	for _, match := range m {
		if match.Type != MatchTypeOrganisation || match.OrganisationID == nil {
			continue
		}
		if *match.OrganisationID == orgID {
			out = append(out, match)
		}
	}
	return out
}

// ForSubsidies keeps only rows whose subsidy id is present in the given set,
// preserving table order.
func (m Matches) ForSubsidies(ids map[int]bool) Matches {
	out := make(Matches, 0)
	for _, match := range m {
		if ids[match.SubsidyID] {
			out = append(out, match)
		}
	}
	return out
}

// SortByScoreDesc orders rows by score descending. Ties keep the incoming
// table order.
func (m Matches) SortByScoreDesc() {
	sort.SliceStable(m, func(i, j int) bool {
		return m[i].Score > m[j].Score
	})
}

// DumpToTmpFile writes the matches as indented JSON to a temporary file and
// returns its name.
func (m Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// PromptTemplate is one stored scoring prompt. Which template is active is
// tracked by the store's single active-prompt slot, not by this record.
type PromptTemplate struct {
	ID           int       `json:"prompt_id"`
	Name         string    `json:"naam"`
	Template     string    `json:"prompt_template"`
	LastModified time.Time `json:"laatst_gewijzigd"`
	Active       bool      `json:"actief"`
}

// Digest is one generated report for an organisation. Digests are append-only
// and immutable once created.
type Digest struct {
	ID               int       `json:"nieuwsbrief_id"`
	OrganisationID   int       `json:"organisatie_id"`
	OrganisationName string    `json:"organisatie_naam"`
	GeneratedAt      time.Time `json:"nieuwsbrief_datum"`
	Body             string    `json:"nieuwsbrief_content"`
}

// Subject is the entity being scored against a subsidy: either an
// organisation or a persona, never both.
type Subject struct {
	Organisation *Organisation
	Persona      *Persona
}

// SubjectFromOrganisation wraps an organisation as a matching subject.
func SubjectFromOrganisation(org *Organisation) *Subject {
	return &Subject{Organisation: org}
}

// SubjectFromPersona wraps a persona as a matching subject.
func SubjectFromPersona(p *Persona) *Subject {
	return &Subject{Persona: p}
}

func (s *Subject) Type() MatchType {
	if s.Persona != nil {
		return MatchTypePersona
	}
	return MatchTypeOrganisation
}

// Profile returns the free-text signal used for matching: the raw
// organisation profile, or for personas a synthesized pseudo-profile so one
// prompt template can serve both subject kinds.
func (s *Subject) Profile() string {
	if s.Persona != nil {
		return fmt.Sprintf(
			"Persona-sector: %s\nPersona-organisatietype: %s\n\nOmschrijving:\n%s",
			s.Persona.Sector, s.Persona.OrgType, s.Persona.Description,
		)
	}
	if s.Organisation != nil {
		return s.Organisation.Profile
	}
	return ""
}

// Key identifies the subject in logs.
func (s *Subject) Key() string {
	if s.Persona != nil {
		return fmt.Sprintf("persona:%d", s.Persona.ID)
	}
	if s.Organisation != nil {
		return fmt.Sprintf("organisation:%d", s.Organisation.ID)
	}
	return "unknown"
}
