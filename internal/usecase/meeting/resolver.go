package meeting

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// Resolver maps extracted free-text references (assignee email, company
// slug/name) to organization-scoped record ids. All lookups are read-only
// and happen before the commit transaction opens.
type Resolver struct {
	companies *repository.CompanyRepository
	users     *repository.UserRepository
}

// NewResolver creates a resolver over the company and user repositories
func NewResolver(companies *repository.CompanyRepository, users *repository.UserRepository) *Resolver {
	return &Resolver{companies: companies, users: users}
}

// ResolvedTask is an extracted task with its references resolved to ids and
// its loose fields normalized
type ResolvedTask struct {
	Source       entities.ExtractedTask
	CompanyID    *uuid.UUID
	AssignedToID *uuid.UUID
	Priority     entities.TaskPriority
	DueDate      *time.Time
}

// NeedsContact reports whether the commit stage should consider creating a
// company contact for this task's assignee email: the email did not resolve
// to a user and the task landed on a company.
func (t ResolvedTask) NeedsContact() bool {
	return t.AssignedToID == nil &&
		strings.TrimSpace(t.Source.AssigneeEmail) != "" &&
		t.CompanyID != nil
}

// Resolution is the outcome of resolving a task set. NewCompanies are
// staged only; the commit transaction creates them.
type Resolution struct {
	Tasks        []ResolvedTask
	NewCompanies []*entities.Company
}

// Resolve resolves every task's company and assignee within the meeting's
// organization. When autoCreateCompanies is set, unmatched company names are
// staged as new companies first so they become valid resolution targets for
// the tasks in the same commit.
func (r *Resolver) Resolve(ctx context.Context, meeting *entities.Meeting, tasks []entities.ExtractedTask, autoCreateCompanies bool) (*Resolution, error) {
	res := &Resolution{}
	orgID := meeting.OrganizationID

	if autoCreateCompanies {
		staged, err := r.stageNewCompanies(ctx, orgID, tasks)
		if err != nil {
			return nil, err
		}
		res.NewCompanies = staged
	}

	for _, task := range tasks {
		resolved := ResolvedTask{
			Source:   task,
			Priority: entities.ParseTaskPriority(task.Priority),
			DueDate:  parseDueDate(task.DueDate),
		}

		companyID, err := r.resolveCompany(ctx, orgID, meeting, task, res.NewCompanies)
		if err != nil {
			return nil, err
		}
		resolved.CompanyID = companyID

		if email := strings.TrimSpace(task.AssigneeEmail); email != "" {
			user, err := r.users.FindByEmail(ctx, orgID, email)
			if err != nil {
				return nil, fmt.Errorf("failed to look up assignee %q: %w", email, err)
			}
			if user != nil {
				id := user.ID
				resolved.AssignedToID = &id
			}
			// No user match: leave unassigned. Users are never
			// auto-created; the commit stage may create a contact.
		}

		res.Tasks = append(res.Tasks, resolved)
	}

	return res, nil
}

// resolveCompany applies the resolution precedence: explicit id on the
// task, slug lookup, name lookup, the meeting's own company, then nil.
// Staged companies participate in the slug and name lookups.
func (r *Resolver) resolveCompany(ctx context.Context, orgID uuid.UUID, meeting *entities.Meeting, task entities.ExtractedTask, staged []*entities.Company) (*uuid.UUID, error) {
	if task.CompanyID != "" {
		if id, err := uuid.Parse(task.CompanyID); err == nil {
			// The id must belong to the meeting's organization; an
			// unknown or foreign id falls through to the other
			// resolution steps rather than being persisted blindly.
			company, err := r.companies.FindByID(ctx, orgID, id)
			if err != nil {
				return nil, fmt.Errorf("failed to look up company id %q: %w", id, err)
			}
			if company != nil {
				companyID := company.ID
				return &companyID, nil
			}
		}
	}

	if slug := strings.TrimSpace(task.CompanySlug); slug != "" {
		for _, c := range staged {
			if c.Slug == strings.ToLower(slug) {
				id := c.ID
				return &id, nil
			}
		}
		company, err := r.companies.FindBySlug(ctx, orgID, slug)
		if err != nil {
			return nil, fmt.Errorf("failed to look up company slug %q: %w", slug, err)
		}
		if company != nil {
			id := company.ID
			return &id, nil
		}
	}

	if name := strings.TrimSpace(task.CompanyName); name != "" {
		for _, c := range staged {
			if strings.EqualFold(c.Name, name) {
				id := c.ID
				return &id, nil
			}
		}
		company, err := r.companies.FindByName(ctx, orgID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up company name %q: %w", name, err)
		}
		if company != nil {
			id := company.ID
			return &id, nil
		}
	}

	if meeting.CompanyID != nil {
		id := *meeting.CompanyID
		return &id, nil
	}

	return nil, nil
}

// stageNewCompanies collects the distinct referenced company names that
// have no match in the organization and builds company records for them,
// slugs disambiguated against both existing and already-staged slugs.
func (r *Resolver) stageNewCompanies(ctx context.Context, orgID uuid.UUID, tasks []entities.ExtractedTask) ([]*entities.Company, error) {
	existingSlugs, err := r.companies.ListSlugs(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company slugs: %w", err)
	}
	taken := make(map[string]struct{}, len(existingSlugs))
	for _, s := range existingSlugs {
		taken[s] = struct{}{}
	}

	var staged []*entities.Company
	seenNames := make(map[string]struct{})

	for _, task := range tasks {
		name := strings.TrimSpace(task.CompanyName)
		if name == "" {
			continue
		}
		nameKey := strings.ToLower(name)
		if _, ok := seenNames[nameKey]; ok {
			continue
		}
		seenNames[nameKey] = struct{}{}

		existing, err := r.companies.FindByName(ctx, orgID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up company name %q: %w", name, err)
		}
		if existing != nil {
			continue
		}

		slug := uniqueSlug(Slugify(name), taken)
		taken[slug] = struct{}{}
		staged = append(staged, entities.NewCompany(orgID, name, slug))
	}

	return staged, nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a company name into a URL-safe slug
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "company"
	}
	return slug
}

// uniqueSlug disambiguates a slug against the taken set by appending -2,
// -3, …
func uniqueSlug(base string, taken map[string]struct{}) string {
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// parseDueDate accepts an extracted due date only if it parses to a valid
// calendar date; anything else is treated as absent
func parseDueDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
