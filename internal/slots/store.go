package slots

const (
	// Capacity is the number of record slots.
	Capacity = 10
	// MemoryBudget is the byte ceiling shared by all stored records.
	MemoryBudget = 4700
	// RecordOverhead is the fixed size charged per record on the device.
	RecordOverhead = 84
	// maxBodyCapacity is the largest body an empty store can hold.
	maxBodyCapacity = MemoryBudget - RecordOverhead
)

// Removal describes the outcome of removing a record.
type Removal struct {
	// Closed is set when the removal would have emptied the store and the
	// caller asked for the screen to close instead. Nothing was removed.
	Closed           bool
	ID               int32
	DisplayedRemoved bool
}

// Creation describes the outcome of creating a record.
type Creation struct {
	Index            int
	Closed           bool
	Evicted          []int32
	DisplayedEvicted bool
}

// Store is the fixed-capacity notification arena.
type Store struct {
	records  [Capacity]*Record
	count    int
	free     int
	selected int
}

// New returns an empty store with the full budget available.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset releases every record and restores the full budget.
func (s *Store) Reset() {
	for i := range s.records {
		s.records[i] = nil
	}
	s.count = 0
	s.free = MemoryBudget
	s.selected = 0
}

func (s *Store) Len() int      { return s.count }
func (s *Store) Free() int     { return s.free }
func (s *Store) Selected() int { return s.selected }

// Select makes index i the displayed record.
func (s *Store) Select(i int) {
	s.mustIndex(i)
	s.selected = i
}

// At returns a copy of the record at index i.
func (s *Store) At(i int) Record {
	s.mustIndex(i)
	return *s.records[i]
}

// Displayed returns the selected record, if any.
func (s *Store) Displayed() (Record, bool) {
	if s.count == 0 {
		return Record{}, false
	}
	return *s.records[s.selected], true
}

// IsLast reports whether the selected record is the newest one.
func (s *Store) IsLast() bool {
	return s.count > 0 && s.selected == s.count-1
}

// Find returns the index of the record with the given id.
func (s *Store) Find(id int32) (int, bool) {
	for i := 0; i < s.count; i++ {
		if s.records[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Create appends a record whose body can hold declaredLength bytes, evicting
// from index 0 until both a slot and the budget are available. A body that
// could never fit is clamped to what an empty store can hold.
func (s *Store) Create(id int32, declaredLength uint16, closeIfEmpty bool) Creation {
	capacity := min(int(declaredLength)+1, maxBodyCapacity)
	var c Creation

	for s.count > 0 && (s.count >= Capacity || s.free < RecordOverhead+capacity) {
		r := s.Remove(0, closeIfEmpty)
		if r.Closed {
			return Creation{Index: -1, Closed: true, Evicted: c.Evicted, DisplayedEvicted: c.DisplayedEvicted}
		}
		c.Evicted = append(c.Evicted, r.ID)
		c.DisplayedEvicted = c.DisplayedEvicted || r.DisplayedRemoved
	}

	rec := &Record{ID: id, capacity: capacity, body: make([]byte, 0, capacity-1)}
	s.records[s.count] = rec
	s.free -= rec.cost()
	c.Index = s.count
	s.count++
	return c
}

// Update replaces the content of the record at index i and clears its body.
// The body capacity fixed at creation is kept.
func (s *Store) Update(i int, id int32, attrs Attributes, title, subtitle string) {
	s.mustIndex(i)
	rec := s.records[i]
	rec.ID = id
	rec.Attributes = attrs
	rec.Title = Truncate(title, TextCapacity)
	rec.Subtitle = Truncate(subtitle, TextCapacity)
	rec.body = rec.body[:0]
}

// AppendText appends to the body of the record with the given id. Unknown ids
// are ignored; text beyond the fixed capacity is dropped.
func (s *Store) AppendText(id int32, text string) (int, bool) {
	i, ok := s.Find(id)
	if !ok {
		return -1, false
	}
	s.records[i].append(text)
	return i, true
}

// Remove deletes the record at index i and compacts the array.
func (s *Store) Remove(i int, closeIfEmpty bool) Removal {
	if s.count <= 1 && closeIfEmpty {
		return Removal{Closed: true}
	}
	s.mustIndex(i)

	rec := s.records[i]
	s.free += rec.cost()
	copy(s.records[i:s.count-1], s.records[i+1:s.count])
	s.count--
	s.records[s.count] = nil

	displayed := s.selected == i
	if s.selected >= i && s.selected > 0 {
		s.selected--
	}
	return Removal{ID: rec.ID, DisplayedRemoved: displayed}
}

// RemoveOtherListItems removes every in-list record except the one with id
// keep. It reports the removed ids and whether the displayed record was among
// them.
func (s *Store) RemoveOtherListItems(keep int32) (removed []int32, displayedRemoved bool) {
	for i := 0; i < s.count; i++ {
		rec := s.records[i]
		if rec.ID == keep || !rec.InList {
			continue
		}
		r := s.Remove(i, false)
		removed = append(removed, r.ID)
		displayedRemoved = displayedRemoved || r.DisplayedRemoved
		i--
	}
	return removed, displayedRemoved
}

func (s *Store) mustIndex(i int) {
	if i < 0 || i >= s.count {
		panic("slots: index out of range")
	}
}
