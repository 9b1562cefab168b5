package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/model"
	"github.com/google/uuid"
)

// ClientPatch holds the client fields to change; nil fields are left alone
type ClientPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// ProjectPatch holds the project fields to change; nil fields are left alone
type ProjectPatch struct {
	ClientID    *string
	Name        *string
	Status      *model.ProjectStatus
	HourlyRate  *float64
	Description *string
}

// Entities stores clients and projects
type Entities struct {
	t *Tracker
}

// AddClient stores a new client and returns it with its assigned id
func (e *Entities) AddClient(ctx context.Context, c model.Client) (model.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return model.Client{}, fmt.Errorf("%w: client name required", ErrValidation)
	}

	now := e.t.now()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now
	e.t.state.Clients = append(e.t.state.Clients, c)

	logger.Info("Client added", logger.F("id", c.ID), logger.F("name", c.Name))
	return c, e.t.persist(ctx, CollectionClients)
}

// UpdateClient applies patch to the client with the given id
func (e *Entities) UpdateClient(ctx context.Context, id string, patch ClientPatch) (model.Client, error) {
	i := e.clientIndex(id)
	if i < 0 {
		return model.Client{}, fmt.Errorf("%w: client %s", ErrNotFound, id)
	}

	c := e.t.state.Clients[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Client{}, fmt.Errorf("%w: client name required", ErrValidation)
		}
		c.Name = name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Address != nil {
		c.Address = *patch.Address
	}
	c.UpdatedAt = e.t.now()
	e.t.state.Clients[i] = c

	logger.Info("Client updated", logger.F("id", id))
	return c, e.t.persist(ctx, CollectionClients)
}

// DeleteClient removes a client that no project references.
// It returns false, leaving the client in place, when projects still point at it.
func (e *Entities) DeleteClient(ctx context.Context, id string) (bool, error) {
	i := e.clientIndex(id)
	if i < 0 {
		return false, fmt.Errorf("%w: client %s", ErrNotFound, id)
	}

	for _, p := range e.t.state.Projects {
		if p.ClientID == id {
			logger.Info("Client delete refused, projects remain", logger.F("id", id))
			return false, nil
		}
	}

	e.t.state.Clients = append(e.t.state.Clients[:i:i], e.t.state.Clients[i+1:]...)
	logger.Info("Client deleted", logger.F("id", id))
	return true, e.t.persist(ctx, CollectionClients)
}

// GetClient returns the client with the given id
func (e *Entities) GetClient(id string) (model.Client, error) {
	i := e.clientIndex(id)
	if i < 0 {
		return model.Client{}, fmt.Errorf("%w: client %s", ErrNotFound, id)
	}
	return e.t.state.Clients[i], nil
}

// ListClients returns all clients sorted by name
func (e *Entities) ListClients() []model.Client {
	clients := append([]model.Client(nil), e.t.state.Clients...)
	sort.SliceStable(clients, func(i, j int) bool {
		return strings.ToLower(clients[i].Name) < strings.ToLower(clients[j].Name)
	})
	return clients
}

// AddProject stores a new project for an existing client.
// An empty status defaults to active.
func (e *Entities) AddProject(ctx context.Context, p model.Project) (model.Project, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Status == "" {
		p.Status = model.ProjectActive
	}
	if err := e.validateProject(p); err != nil {
		return model.Project{}, err
	}

	now := e.t.now()
	p.ID = uuid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now
	e.t.state.Projects = append(e.t.state.Projects, p)

	logger.Info("Project added",
		logger.F("id", p.ID),
		logger.F("name", p.Name),
		logger.F("client", p.ClientID),
		logger.F("rate", p.HourlyRate))
	return p, e.t.persist(ctx, CollectionProjects)
}

// UpdateProject applies patch to the project with the given id.
// Rate changes never touch invoices already generated.
func (e *Entities) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (model.Project, error) {
	i := e.projectIndex(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}

	p := e.t.state.Projects[i]
	if patch.ClientID != nil {
		p.ClientID = *patch.ClientID
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.HourlyRate != nil {
		p.HourlyRate = *patch.HourlyRate
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if err := e.validateProject(p); err != nil {
		return model.Project{}, err
	}

	p.UpdatedAt = e.t.now()
	e.t.state.Projects[i] = p

	logger.Info("Project updated", logger.F("id", id))
	return p, e.t.persist(ctx, CollectionProjects)
}

// DeleteProject removes a project with no time entries and no running timer.
// It returns false, leaving the project in place, when either exists.
func (e *Entities) DeleteProject(ctx context.Context, id string) (bool, error) {
	i := e.projectIndex(id)
	if i < 0 {
		return false, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}

	for _, entry := range e.t.state.Entries {
		if entry.ProjectID == id {
			logger.Info("Project delete refused, time entries remain", logger.F("id", id))
			return false, nil
		}
	}
	if timer := e.t.state.Timer; timer != nil && timer.ProjectID == id {
		logger.Info("Project delete refused, timer active", logger.F("id", id))
		return false, nil
	}

	e.t.state.Projects = append(e.t.state.Projects[:i:i], e.t.state.Projects[i+1:]...)
	logger.Info("Project deleted", logger.F("id", id))
	return true, e.t.persist(ctx, CollectionProjects)
}

// GetProject returns the project with the given id
func (e *Entities) GetProject(id string) (model.Project, error) {
	i := e.projectIndex(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	return e.t.state.Projects[i], nil
}

// ListProjects returns all projects sorted by name
func (e *Entities) ListProjects() []model.Project {
	projects := append([]model.Project(nil), e.t.state.Projects...)
	sort.SliceStable(projects, func(i, j int) bool {
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})
	return projects
}

// ListProjectsByClient returns the projects billed to a client
func (e *Entities) ListProjectsByClient(clientID string) []model.Project {
	var out []model.Project
	for _, p := range e.ListProjects() {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

// ListProjectsByStatus returns projects in the given status
func (e *Entities) ListProjectsByStatus(status model.ProjectStatus) []model.Project {
	var out []model.Project
	for _, p := range e.ListProjects() {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

func (e *Entities) validateProject(p model.Project) error {
	if p.Name == "" {
		return fmt.Errorf("%w: project name required", ErrValidation)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown project status %q", ErrValidation, p.Status)
	}
	if p.HourlyRate < 0 {
		return fmt.Errorf("%w: hourly rate must not be negative", ErrValidation)
	}
	if e.clientIndex(p.ClientID) < 0 {
		return fmt.Errorf("%w: client %s", ErrNotFound, p.ClientID)
	}
	return nil
}

func (e *Entities) clientIndex(id string) int {
	for i, c := range e.t.state.Clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (e *Entities) projectIndex(id string) int {
	for i, p := range e.t.state.Projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// FindClient resolves a client by id, name, or a unique prefix of either
func (e *Entities) FindClient(ref string) (model.Client, error) {
	var ids, names []string
	for _, c := range e.t.state.Clients {
		ids = append(ids, c.ID)
		names = append(names, c.Name)
	}
	i, err := resolveRef(ref, ids, names)
	if err != nil {
		return model.Client{}, fmt.Errorf("client %s: %w", ref, err)
	}
	return e.t.state.Clients[i], nil
}

// FindProject resolves a project by id, name, or a unique prefix of either
func (e *Entities) FindProject(ref string) (model.Project, error) {
	var ids, names []string
	for _, p := range e.t.state.Projects {
		ids = append(ids, p.ID)
		names = append(names, p.Name)
	}
	i, err := resolveRef(ref, ids, names)
	if err != nil {
		return model.Project{}, fmt.Errorf("project %s: %w", ref, err)
	}
	return e.t.state.Projects[i], nil
}

// resolveRef returns the index matching ref, trying exact id, then
// case-insensitive name, then id prefix, then name prefix. Ambiguous
// prefixes are not found.
func resolveRef(ref string, ids, names []string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, ErrNotFound
	}
	for i, id := range ids {
		if id == ref {
			return i, nil
		}
	}
	for i, name := range names {
		if strings.EqualFold(name, ref) {
			return i, nil
		}
	}

	match := -1
	for i, id := range ids {
		if strings.HasPrefix(id, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: ambiguous id prefix", ErrNotFound)
			}
			match = i
		}
	}
	if match >= 0 {
		return match, nil
	}

	lower := strings.ToLower(ref)
	for i, name := range names {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: ambiguous name %q", ErrNotFound, ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, ErrNotFound
	}
	return match, nil
}
