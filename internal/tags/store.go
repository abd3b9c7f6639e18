package tags

// Store is the ordered set of raw tag lines loaded for one workspace root.
//
// A Store is filled once by a loader and then published; after that it is
// only read. Replacing the index means building a new Store.
type Store struct {
	root  string
	lines []string
}

// NewStore returns an empty store for root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the workspace root the lines belong to.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Add appends a raw line unless it is empty or tag-file metadata.
// It reports whether the line was kept.
func (s *Store) Add(line string) bool {
	if line == "" || IsMeta(line) {
		return false
	}
	s.lines = append(s.lines, line)
	return true
}

// Len returns the number of stored lines.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lines)
}

// Lines returns the stored lines in load order. Callers must not modify the
// returned slice.
func (s *Store) Lines() []string {
	if s == nil {
		return nil
	}
	return s.lines
}
