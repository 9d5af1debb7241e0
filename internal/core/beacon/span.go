package beacon

// Span is the payload of a finished span. Every variant maps to exactly one Stage.
type Span interface {
	Stage() Stage
	isSpan()
}

// Boot covers application startup.
type Boot struct{}

// Update is one run of the runtime's update function.
type Update struct {
	Number        int
	Message       string
	TasksSpawned  int
	Subscriptions int
}

// View builds the widget tree of a window.
type View struct {
	Window string
}

// Layout computes the layout of a window.
type Layout struct {
	Window string
}

// Interact processes user input for a window.
type Interact struct {
	Window string
}

// Draw records draw commands for a window.
type Draw struct {
	Window string
}

// Present submits a frame for a window.
type Present struct {
	Window  string
	Layers  int
	Prepare PrepareStats
}

// PrepareStats counts primitives prepared for a presented frame.
type PrepareStats struct {
	Quads     int
	Triangles int
	Shaders   int
	Images    int
	Texts     int
}

// Prepare is the preparation of a single primitive kind.
type Prepare struct {
	Primitive Primitive
}

// Render is the rendering of a single primitive kind.
type Render struct {
	Primitive Primitive
}

// Custom is a user-defined timing.
type Custom struct {
	Name string
}

func (Boot) Stage() Stage     { return Stage{Kind: StageBoot} }
func (Update) Stage() Stage   { return Stage{Kind: StageUpdate} }
func (View) Stage() Stage     { return Stage{Kind: StageView} }
func (Layout) Stage() Stage   { return Stage{Kind: StageLayout} }
func (Interact) Stage() Stage { return Stage{Kind: StageInteract} }
func (Draw) Stage() Stage     { return Stage{Kind: StageDraw} }
func (Present) Stage() Stage  { return Stage{Kind: StagePresent} }

func (s Prepare) Stage() Stage { return PrepareStage(s.Primitive) }
func (s Render) Stage() Stage  { return RenderStage(s.Primitive) }
func (s Custom) Stage() Stage  { return CustomStage(s.Name) }

func (Boot) isSpan()     {}
func (Update) isSpan()   {}
func (View) isSpan()     {}
func (Layout) isSpan()   {}
func (Interact) isSpan() {}
func (Draw) isSpan()     {}
func (Present) isSpan()  {}
func (Prepare) isSpan()  {}
func (Render) isSpan()   {}
func (Custom) isSpan()   {}
