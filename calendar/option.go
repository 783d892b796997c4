package calendar

// Options controls the calendar view.
type Options struct {
	Month    string
	CellSize int
	// FirstDay is the weekday the rows start on, 0 for Sunday.
	FirstDay int
	// NameMap selects the weekday label language ("en", "cn").
	NameMap string
	Glyphs  []Glyph
}

func DefaultOptions() Options {
	return Options{
		Month:    "2017-03",
		CellSize: 70,
		FirstDay: 1,
		NameMap:  "en",
		Glyphs:   DefaultGlyphs,
	}
}

type Option struct {
	Tooltip  struct{}       `json:"tooltip"`
	Calendar []CalendarSpec `json:"calendar"`
	Series   []CustomSeries `json:"series"`
}

type toggle struct {
	Show bool `json:"show"`
}

type dayLabel struct {
	FirstDay int    `json:"firstDay"`
	NameMap  string `json:"nameMap"`
}

type CalendarSpec struct {
	Left       string   `json:"left"`
	Top        string   `json:"top"`
	CellSize   [2]int   `json:"cellSize"`
	Orient     string   `json:"orient"`
	YearLabel  toggle   `json:"yearLabel"`
	MonthLabel toggle   `json:"monthLabel"`
	DayLabel   dayLabel `json:"dayLabel"`
	Range      string   `json:"range"`
}

// CustomSeries is drawn by a client-side renderItem that reads Glyphs.
type CustomSeries struct {
	Type             string        `json:"type"`
	CoordinateSystem string        `json:"coordinateSystem"`
	Dimensions       []interface{} `json:"dimensions"`
	Data             [][2]string   `json:"data"`
}

// GlyphSet is everything renderItem needs besides the series data.
type GlyphSet struct {
	Glyphs []Glyph `json:"glyphs"`
	// Offsets[n] holds pixel offsets for a cell with n glyphs.
	Offsets     [][]Offset `json:"offsets"`
	Size        int        `json:"size"`
	LabelOffset int        `json:"labelOffset"`
	LabelColor  string     `json:"labelColor"`
}

// View is the full calendar document served to the page.
type View struct {
	Option Option   `json:"option"`
	Glyphs GlyphSet `json:"glyphs"`
}

// BuildView assembles the calendar option for days.
func BuildView(days []Day, o Options) View {
	data := make([][2]string, 0, len(days))
	for _, d := range days {
		data = append(data, [2]string{d.Date.Format(dateLayout), d.Value()})
	}

	offsets := make([][]Offset, MaxGlyphs+1)
	for n := range offsets {
		offsets[n] = Place(n, float64(o.CellSize), float64(o.CellSize))
	}

	return View{
		Option: Option{
			Calendar: []CalendarSpec{{
				Left:     "center",
				Top:      "middle",
				CellSize: [2]int{o.CellSize, o.CellSize},
				Orient:   "vertical",
				DayLabel: dayLabel{FirstDay: o.FirstDay, NameMap: o.NameMap},
				Range:    o.Month,
			}},
			Series: []CustomSeries{{
				Type:             "custom",
				CoordinateSystem: "calendar",
				Dimensions:       []interface{}{nil, map[string]string{"type": "ordinal"}},
				Data:             data,
			}},
		},
		Glyphs: GlyphSet{
			Glyphs:      o.Glyphs,
			Offsets:     offsets,
			Size:        16,
			LabelOffset: 15,
			LabelColor:  "#777",
		},
	}
}
