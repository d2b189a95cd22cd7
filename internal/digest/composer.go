// Package digest composes periodic report documents for one organisation:
// the subsidies added within a lookback window, ranked by the organisation's
// match scores. Digests append to their table and are never rewritten.
package digest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/subsidiematch/subsidiematch/internal/store"
)

// ErrOrganisationNotFound is returned when a digest is requested for an
// unknown organisation id.
var ErrOrganisationNotFound = errors.New("organisation not found")

var now = time.Now

type Composer struct {
	store  *store.Store
	logger *zap.Logger
}

func New(st *store.Store, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{store: st, logger: logger}
}

// Generate builds one digest for the given organisation and appends it to
// the digest table. When lookbackWeeks is zero or negative the window
// defaults by subscription tier: 8 weeks for premium, 4 otherwise. The
// window is inclusive on both ends.
func (c *Composer) Generate(orgID int, lookbackWeeks int) (*store.Digest, error) {
	org := c.findOrganisation(orgID)
	if org == nil {
		return nil, fmt.Errorf("%w: id %d", ErrOrganisationNotFound, orgID)
	}

	weeks := lookbackWeeks
	if weeks <= 0 {
		weeks = org.Subscription.LookbackWeeks()
	}

	generatedAt := now()
	windowStart := generatedAt.Add(-time.Duration(weeks) * 7 * 24 * time.Hour)

	inWindow := make([]*store.Subsidy, 0)
	windowIDs := make(map[int]bool)
	for _, sub := range c.store.Subsidies() {
		if sub.DateAdded.Before(windowStart) || sub.DateAdded.After(generatedAt) {
			continue
		}
		inWindow = append(inWindow, sub)
		windowIDs[sub.ID] = true
	}

	body := c.renderBody(org, inWindow, windowIDs, weeks, generatedAt)

	record := &store.Digest{
		ID:               c.store.NextID(store.TableDigests),
		OrganisationID:   org.ID,
		OrganisationName: org.Name,
		GeneratedAt:      generatedAt,
		Body:             body,
	}
	c.store.AppendDigest(record)

	c.logger.Info("generated digest",
		zap.Int("digest_id", record.ID),
		zap.Int("organisation_id", org.ID),
		zap.Int("lookback_weeks", weeks),
		zap.Int("subsidies_in_window", len(inWindow)),
	)

	return record, nil
}

// ForOrganisation returns the organisation's digests sorted by generation
// time, newest first.
func (c *Composer) ForOrganisation(orgID int) []*store.Digest {
	out := make([]*store.Digest, 0)
	for _, d := range c.store.Digests() {
		if d.OrganisationID == orgID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out
}

func (c *Composer) findOrganisation(orgID int) *store.Organisation {
	for _, org := range c.store.Organisations() {
		if org.ID == orgID {
			return org
		}
	}
	return nil
}

func (c *Composer) renderBody(org *store.Organisation, inWindow []*store.Subsidy, windowIDs map[int]bool, weeks int, generatedAt time.Time) string {
	date := generatedAt.Format("2006-01-02")

	if len(inWindow) == 0 {
		return fmt.Sprintf(
			"Nieuwsbrief voor %s op %s.\n\nEr zijn geen nieuwe subsidies toegevoegd in de gekozen periode.",
			org.Name, date,
		)
	}

	ranked := c.store.Matches().ForOrganisation(org.ID).ForSubsidies(windowIDs)
	ranked.SortByScoreDesc()

	lines := []string{
		fmt.Sprintf("Nieuwsbrief voor %s op %s", org.Name, date),
		"",
		fmt.Sprintf("Periode: laatste %d weken.", weeks),
		"",
	}

	if len(ranked) == 0 {
		lines = append(lines, "Er zijn wel subsidies toegevoegd, maar (nog) geen matches gevonden voor deze organisatie.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "Top-subsidies op basis van matchscore:", "")

	subsByID := make(map[int]*store.Subsidy, len(inWindow))
	for _, sub := range inWindow {
		subsByID[sub.ID] = sub
	}

	for _, match := range ranked {
		sub := subsByID[match.SubsidyID]
		if sub == nil {
			continue
		}
		lines = append(lines,
			fmt.Sprintf("- %s (bron: %s) - matchscore %d", sub.Name, sub.Source, match.Score),
			fmt.Sprintf("  Voor wie: %s", sub.Audience),
		)
		if rationale := strings.ReplaceAll(match.Rationale, "\n", " • "); rationale != "" {
			lines = append(lines, fmt.Sprintf("  Toelichting: %s", rationale))
		}
		lines = append(lines, fmt.Sprintf("  Link: %s", sub.Link), "")
	}

	return strings.Join(lines, "\n")
}
