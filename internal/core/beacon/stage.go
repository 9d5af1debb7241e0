package beacon

import "fmt"

// StageKind is the coarse category of a span.
type StageKind int

const (
	StageBoot StageKind = iota
	StageUpdate
	StageView
	StageLayout
	StageInteract
	StageDraw
	StagePresent
	StagePrepare
	StageRender
	StageCustom
)

var stageKindNames = map[StageKind]string{
	StageBoot:     "boot",
	StageUpdate:   "update",
	StageView:     "view",
	StageLayout:   "layout",
	StageInteract: "interact",
	StageDraw:     "draw",
	StagePresent:  "present",
	StagePrepare:  "prepare",
	StageRender:   "render",
	StageCustom:   "custom",
}

func (k StageKind) String() string {
	if name, ok := stageKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(k))
}

// ParseStageKind is the inverse of StageKind.String.
func ParseStageKind(s string) (StageKind, bool) {
	for kind, name := range stageKindNames {
		if name == s {
			return kind, true
		}
	}
	return 0, false
}

// Primitive is a kind of renderer primitive.
type Primitive int

const (
	Quad Primitive = iota
	Triangle
	Shader
	Image
	Text
)

// Primitives lists every primitive in display order.
var Primitives = []Primitive{Quad, Triangle, Shader, Image, Text}

var primitiveNames = map[Primitive]string{
	Quad:     "quad",
	Triangle: "triangle",
	Shader:   "shader",
	Image:    "image",
	Text:     "text",
}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("primitive(%d)", int(p))
}

// ParsePrimitive is the inverse of Primitive.String.
func ParsePrimitive(s string) (Primitive, bool) {
	for p, name := range primitiveNames {
		if name == s {
			return p, true
		}
	}
	return 0, false
}

// Stage identifies what a span measured. Window ids are not part of it, so
// spans of every window collapse into the same stage. Stage is comparable.
type Stage struct {
	Kind      StageKind
	Primitive Primitive // only for StagePrepare and StageRender
	Name      string    // only for StageCustom
}

var (
	BootStage     = Stage{Kind: StageBoot}
	UpdateStage   = Stage{Kind: StageUpdate}
	ViewStage     = Stage{Kind: StageView}
	LayoutStage   = Stage{Kind: StageLayout}
	InteractStage = Stage{Kind: StageInteract}
	DrawStage     = Stage{Kind: StageDraw}
	PresentStage  = Stage{Kind: StagePresent}
)

func PrepareStage(p Primitive) Stage { return Stage{Kind: StagePrepare, Primitive: p} }
func RenderStage(p Primitive) Stage  { return Stage{Kind: StageRender, Primitive: p} }
func CustomStage(name string) Stage  { return Stage{Kind: StageCustom, Name: name} }

// String returns the chart title of the stage.
func (s Stage) String() string {
	switch s.Kind {
	case StageBoot:
		return "Boot"
	case StageUpdate:
		return "Update"
	case StageView:
		return "View"
	case StageLayout:
		return "Layout"
	case StageInteract:
		return "Interact"
	case StageDraw:
		return "Draw"
	case StagePresent:
		return "Present"
	case StagePrepare:
		return primitiveTitle(s.Primitive) + " (prepare)"
	case StageRender:
		return primitiveTitle(s.Primitive) + " (render)"
	case StageCustom:
		return s.Name
	default:
		return s.Kind.String()
	}
}

func primitiveTitle(p Primitive) string {
	switch p {
	case Quad:
		return "Quad"
	case Triangle:
		return "Triangle"
	case Shader:
		return "Shader"
	case Image:
		return "Image"
	case Text:
		return "Text"
	default:
		return p.String()
	}
}
