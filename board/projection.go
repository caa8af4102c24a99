package board

import "sync"

// Column is the tasks of one status within a category, ordered by position.
type Column struct {
	Status Status
	Tasks  []Task
}

// CategoryView is one category as it should be rendered.
type CategoryView struct {
	Category Category
	Columns  []Column

	// Count is the number of tasks in the category that pass the filter.
	Count int
}

// Projection is the filtered, ordered view of a board.
type Projection struct {
	Filter     Filter
	Categories []CategoryView
}

// Project builds the view of state under filter. It does not modify state.
// An invalid filter projects as FilterAll.
func Project(state State, filter Filter) *Projection {
	if !filter.IsValid() {
		filter = FilterAll
	}

	type bucketKey struct {
		category string
		status   Status
	}
	buckets := map[bucketKey][]Task{}
	for _, task := range state.Tasks {
		if !filter.Matches(task) {
			continue
		}
		key := bucketKey{task.Category, task.Status}
		buckets[key] = append(buckets[key], task.Clone())
	}

	p := &Projection{Filter: filter, Categories: make([]CategoryView, 0, len(state.CategoryOrder))}
	for _, category := range state.OrderedCategories() {
		view := CategoryView{Category: category}
		for _, status := range StatusOrder() {
			tasks := buckets[bucketKey{category.ID, status}]
			sortByPosition(tasks)
			view.Columns = append(view.Columns, Column{Status: status, Tasks: tasks})
			view.Count += len(tasks)
		}
		p.Categories = append(p.Categories, view)
	}
	return p
}

// Column returns the column for a status.
func (v CategoryView) Column(status Status) Column {
	for _, column := range v.Columns {
		if column.Status == status {
			return column
		}
	}
	return Column{Status: status}
}

// VersionedSource supplies a state together with a version that changes
// whenever the state or its filter does. *Store implements it.
type VersionedSource interface {
	// VersionedFilter returns the version and the current filter without
	// copying the state.
	VersionedFilter() (uint64, Filter)

	// VersionedState returns the version and a copy of the state.
	VersionedState() (uint64, State)
}

// Projector memoizes projections of a source. As long as neither the
// source's version nor the filter changes, Project returns the same pointer
// and the source's state is not copied.
type Projector struct {
	source VersionedSource

	mu      sync.Mutex
	cached  *Projection
	version uint64
	filter  Filter
}

// NewProjector returns a Projector reading from source.
func NewProjector(source VersionedSource) *Projector {
	return &Projector{source: source}
}

// Project returns the projection of the source under filter.
func (p *Projector) Project(filter Filter) *Projection {
	version, _ := p.source.VersionedFilter()
	if cached := p.lookup(version, filter); cached != nil {
		return cached
	}
	version, state := p.source.VersionedState()
	return p.project(version, state, filter)
}

// Current projects the source under its own current filter.
func (p *Projector) Current() *Projection {
	if cached := p.lookup(p.source.VersionedFilter()); cached != nil {
		return cached
	}
	version, state := p.source.VersionedState()
	return p.project(version, state, state.CurrentFilter)
}

func (p *Projector) lookup(version uint64, filter Filter) *Projection {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil && p.version == version && p.filter == filter {
		return p.cached
	}
	return nil
}

func (p *Projector) project(version uint64, state State, filter Filter) *Projection {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil && p.version == version && p.filter == filter {
		return p.cached
	}
	p.cached = Project(state, filter)
	p.version = version
	p.filter = filter
	return p.cached
}
