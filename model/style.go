package model

// Style, Font, Fill, Border and Alignment mirror the shapes in
// original_source/base/src/types.rs (Style/Font/Fill/Border/Alignment),
// restored here per SPEC_FULL.md's SUPPLEMENTED FEATURES since the
// teacher carries no formatting/style concept at all.
type Font struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strikethrough bool
	Size      float64
	Color     string // "#RRGGBB", empty means automatic
	Name      string
}

type Fill struct {
	ForegroundColor string
	BackgroundColor string
	PatternType     string // "solid", "none", ...
}

type BorderEdge struct {
	Style string // "thin", "medium", "thick", "dashed", ...
	Color string
}

type Border struct {
	Top, Bottom, Left, Right, Diagonal BorderEdge
}

type HorizontalAlign uint8

const (
	AlignGeneral HorizontalAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignFill
	AlignJustify
)

type VerticalAlign uint8

const (
	AlignTop VerticalAlign = iota
	AlignMiddle
	AlignBottom
)

type Alignment struct {
	Horizontal HorizontalAlign
	Vertical   VerticalAlign
	WrapText   bool
}

// Style is one entry in the workbook's style catalog: a cell never
// stores its own Font/Fill/Border, only a StyleID into this
// deduplicated table, matching the teacher's string/formula interning
// pattern (spec: style changes on one cell must not perturb others).
type Style struct {
	Font         Font
	Fill         Fill
	Border       Border
	Alignment    Alignment
	NumberFormat string // numfmt format-code string, "General" by default
}

func DefaultStyle() Style {
	return Style{NumberFormat: "General"}
}

// StyleCatalog interns Style values the same way StringTable interns
// strings: structurally-equal styles share one ID and one refcount.
type StyleCatalog struct {
	index     map[Style]uint32
	byID      map[uint32]Style
	refCounts map[uint32]int
	nextID    uint32
}

func NewStyleCatalog() *StyleCatalog {
	return &StyleCatalog{
		index:     make(map[Style]uint32),
		byID:      map[uint32]Style{0: DefaultStyle()},
		refCounts: make(map[uint32]int),
		nextID:    1,
	}
}

// Intern returns the ID for s, creating a new catalog entry if no
// structurally-identical style exists yet.
func (c *StyleCatalog) Intern(s Style) uint32 {
	if s == DefaultStyle() {
		return 0
	}
	if id, ok := c.index[s]; ok {
		c.refCounts[id]++
		return id
	}
	id := c.nextID
	c.index[s] = id
	c.byID[id] = s
	c.refCounts[id] = 1
	c.nextID++
	return id
}

func (c *StyleCatalog) Get(id uint32) Style {
	if s, ok := c.byID[id]; ok {
		return s
	}
	return DefaultStyle()
}

func (c *StyleCatalog) Release(id uint32) {
	if id == 0 {
		return
	}
	c.refCounts[id]--
	if c.refCounts[id] <= 0 {
		if s, ok := c.byID[id]; ok {
			delete(c.index, s)
		}
		delete(c.byID, id)
		delete(c.refCounts, id)
	}
}
